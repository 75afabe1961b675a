package task

import (
	"fmt"
	"strings"
	"time"
)

// TaskType classifies what kind of work a task represents.
type TaskType string

const (
	TypeResearch  TaskType = "research"  // Open-ended exploration
	TypeDecision  TaskType = "decision"  // Pick between options
	TypeExecution TaskType = "execution" // Concrete, known work
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo               TaskStatus = "todo"
	StatusDoing              TaskStatus = "doing"
	StatusDone               TaskStatus = "done"
	StatusCarryoverCandidate TaskStatus = "carryover_candidate"
	StatusNeedsRedefine      TaskStatus = "needs_redefine"
	StatusSnoozed            TaskStatus = "snoozed"
)

// Priority represents how binding a task is.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
)

// CarryoverAction is one of the fixed reschedule policies for overdue tasks.
type CarryoverAction string

const (
	CarryoverToday         CarryoverAction = "today"
	CarryoverPlus2d        CarryoverAction = "plus_2d"
	CarryoverPlus7d        CarryoverAction = "plus_7d"
	CarryoverNeedsRedefine CarryoverAction = "needs_redefine"
)

// Date is a calendar date without a time component. It marshals as
// "YYYY-MM-DD" and is what due dates are compared and shifted with.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the whole number of days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

// String returns the date in "YYYY-MM-DD" form.
func (d Date) String() string {
	return d.Time.Format(time.DateOnly)
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Task is a unit of work. DoneCriteria defines what "done" means for it;
// decision-type tasks additionally carry DecisionCriteria, Reversible and
// ExplorationLimit for convergence assessment.
type Task struct {
	ID                    int64      `json:"id"`
	Title                 string     `json:"title"`
	TaskType              TaskType   `json:"task_type"`
	Category              *string    `json:"category"`
	Priority              Priority   `json:"priority"`
	Status                TaskStatus `json:"status"`
	DueDate               *Date      `json:"due_date"`
	ParentID              *int64     `json:"parent_id"`
	DoneCriteria          string     `json:"done_criteria"`
	DecisionCriteria      *string    `json:"decision_criteria"`
	Reversible            *bool      `json:"reversible"`
	ExplorationLimit      *int       `json:"exploration_limit"`
	OriginChecklistItemID *int64     `json:"origin_checklist_item_id"`
	LastUpdatedAt         time.Time  `json:"last_updated_at"`
	CreatedAt             time.Time  `json:"created_at"`
}

// ChecklistItem is an ordered sub-item of a task. An item whose
// ExtractedTaskID is set has been promoted to its own task and no longer
// blocks completion of the owner, regardless of IsDone.
type ChecklistItem struct {
	ID              int64  `json:"id"`
	TaskID          int64  `json:"task_id"`
	Text            string `json:"text"`
	IsDone          bool   `json:"is_done"`
	OrderNo         int    `json:"order_no"`
	ExtractedTaskID *int64 `json:"extracted_task_id"`
}

// CompletionLog is an immutable record of a task-completion event.
type CompletionLog struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
	Note        *string   `json:"note"`
}

// CaptureItem is a free-form note, optionally linked to a task.
type CaptureItem struct {
	ID            int64     `json:"id"`
	RelatedTaskID *int64    `json:"related_task_id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	IsResolved    bool      `json:"is_resolved"`
}

// OriginInfo describes where an extracted task came from.
type OriginInfo struct {
	ParentTaskID      int64  `json:"parent_task_id"`
	ParentTaskTitle   string `json:"parent_task_title"`
	ChecklistItemText string `json:"checklist_item_text"`
}

// TaskDetail is a task together with its children, its ordered checklist and,
// when the task was extracted from a checklist item that still resolves, its
// origin.
type TaskDetail struct {
	Task
	Children  []Task          `json:"children"`
	Checklist []ChecklistItem `json:"checklist"`
	Origin    *OriginInfo     `json:"origin"`
}

// CarryoverCandidate is an overdue active task plus how many days overdue it is.
type CarryoverCandidate struct {
	Task
	OverdueDays int `json:"overdue_days"`
}

// StaleTask is an active task that has not been touched past its
// priority-dependent threshold.
type StaleTask struct {
	Task
	StaleDays     int `json:"stale_days"`
	ThresholdDays int `json:"threshold_days"`
}

// ConvergenceChecklist holds the three boolean checks that gate convergence.
type ConvergenceChecklist struct {
	OptionsWithinLimit  bool `json:"options_within_limit"`
	StructureSimplified bool `json:"structure_simplified"`
	ReversibleConfirmed bool `json:"reversible_confirmed"`
}

// Convergence is the readiness signal for an exploratory task: it is
// convergeable when branching stays bounded, the structure is simple and
// reversibility has been confirmed.
type Convergence struct {
	TaskID               int64                `json:"task_id"`
	ExplorationLimit     *int                 `json:"exploration_limit"`
	ExplorationUsed      int                  `json:"exploration_used"`
	ExplorationRemaining *int                 `json:"exploration_remaining"`
	Reversible           *bool                `json:"reversible"`
	DecisionCriteria     *string              `json:"decision_criteria"`
	IsConvergeable       bool                 `json:"is_convergeable"`
	ConvergenceChecklist ConvergenceChecklist `json:"convergence_checklist"`
}

// TaskFilter restricts ListTasks. All set fields are ANDed together.
// Statuses, when non-empty, matches any of the listed statuses.
type TaskFilter struct {
	Status   *TaskStatus
	Statuses []TaskStatus
	TaskType *TaskType
	Priority *Priority
	ParentID *int64
}
