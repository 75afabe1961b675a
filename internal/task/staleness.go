package task

import (
	"fmt"
	"time"
)

// stalenessThresholds maps priority to the number of untouched days after
// which an active task counts as stale.
var stalenessThresholds = map[Priority]int{
	PriorityMust:   7,
	PriorityShould: 21,
}

// defaultStaleThreshold covers priorities outside the known set. Unreachable
// with the current closed enum, but kept as the fallback in case the priority
// set grows.
const defaultStaleThreshold = 21

// ListStale returns active tasks (todo, doing, needs_redefine) untouched for
// at least their priority's threshold, optionally filtered by priority. Days
// are whole elapsed days, truncated.
func (s *Service) ListStale(priority *Priority) ([]StaleTask, error) {
	filter := TaskFilter{
		Statuses: []TaskStatus{StatusTodo, StatusDoing, StatusNeedsRedefine},
		Priority: priority,
	}
	tasks, err := s.repo.ListTasks(filter)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}

	now := time.Now().UTC()
	stale := make([]StaleTask, 0)
	for _, t := range tasks {
		if t.LastUpdatedAt.IsZero() {
			continue
		}
		threshold, ok := stalenessThresholds[t.Priority]
		if !ok {
			threshold = defaultStaleThreshold
		}
		days := int(now.Sub(t.LastUpdatedAt).Hours() / 24)
		if days >= threshold {
			stale = append(stale, StaleTask{
				Task:          t,
				StaleDays:     days,
				ThresholdDays: threshold,
			})
		}
	}
	return stale, nil
}
