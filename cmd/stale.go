package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knagata/kadai/internal/task"
)

var stalePriority string

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List tasks that have not been touched past their priority threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := openService()
		if err != nil {
			return err
		}
		defer cleanup()

		var priority *task.Priority
		if stalePriority != "" {
			p := task.Priority(stalePriority)
			priority = &p
		}

		stale, err := svc.ListStale(priority)
		if err != nil {
			return fmt.Errorf("list stale tasks: %w", err)
		}

		if len(stale) == 0 {
			fmt.Println("No stale tasks.")
			return nil
		}
		for _, st := range stale {
			fmt.Printf("#%d  %s  [%s/%s]  stale %dd (threshold %dd)\n",
				st.ID, st.Title, st.Priority, st.Status, st.StaleDays, st.ThresholdDays)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(staleCmd)

	staleCmd.Flags().StringVar(&stalePriority, "priority", "", "filter by priority (must, should)")
}
