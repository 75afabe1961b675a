package task

import "fmt"

// maxSimpleChildren is the fixed child count up to which a task's structure
// still counts as simplified.
const maxSimpleChildren = 3

// GetConvergence assesses whether an exploratory task is ready to converge.
// A missing exploration limit passes the limit check trivially; reversibility
// must be confirmed as exactly true (nil and false both fail).
func (s *Service) GetConvergence(taskID int64) (*Convergence, error) {
	t, err := s.repo.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	children, err := s.repo.ListTasks(TaskFilter{ParentID: &taskID})
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	used := len(children)

	var remaining *int
	withinLimit := true
	if t.ExplorationLimit != nil {
		r := *t.ExplorationLimit - used
		remaining = &r
		withinLimit = used <= *t.ExplorationLimit
	}

	checklist := ConvergenceChecklist{
		OptionsWithinLimit:  withinLimit,
		StructureSimplified: used <= maxSimpleChildren,
		ReversibleConfirmed: t.Reversible != nil && *t.Reversible,
	}

	return &Convergence{
		TaskID:               taskID,
		ExplorationLimit:     t.ExplorationLimit,
		ExplorationUsed:      used,
		ExplorationRemaining: remaining,
		Reversible:           t.Reversible,
		DecisionCriteria:     t.DecisionCriteria,
		IsConvergeable:       checklist.OptionsWithinLimit && checklist.StructureSimplified && checklist.ReversibleConfirmed,
		ConvergenceChecklist: checklist,
	}, nil
}
