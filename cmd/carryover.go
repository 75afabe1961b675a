package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/knagata/kadai/internal/task"
)

var carryoverCmd = &cobra.Command{
	Use:   "carryover",
	Short: "List overdue tasks that are candidates for carryover",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		candidates, err := svc.ListCarryoverCandidates()
		if err != nil {
			return fmt.Errorf("list carryover candidates: %w", err)
		}

		if len(candidates) == 0 {
			fmt.Println("No overdue tasks.")
			return nil
		}
		for _, c := range candidates {
			fmt.Printf("#%d  %s  due %s  overdue %dd\n", c.ID, c.Title, c.DueDate, c.OverdueDays)
		}
		return nil
	},
}

var carryoverApplyCmd = &cobra.Command{
	Use:   "apply <task-id> <action>",
	Short: "Apply a carryover action (today, plus_2d, plus_7d, needs_redefine) to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		svc, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		t, err := svc.ApplyCarryover(id, task.CarryoverAction(args[1]))
		if err != nil {
			return fmt.Errorf("apply carryover: %w", err)
		}

		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Printf("#%d  %s  status=%s  due=%s\n", t.ID, t.Title, t.Status, due)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(carryoverCmd)
	carryoverCmd.AddCommand(carryoverApplyCmd)
}
