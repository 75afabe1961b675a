package task

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a single Validate instance; it caches struct metadata.
var validate = validator.New()

// ValidateStruct runs validator tags on a request payload and folds the
// individual failures into one readable error.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", e.Field(), e.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// CreateTaskRequest is the payload for creating a task (standalone or child).
type CreateTaskRequest struct {
	Title            string   `json:"title" validate:"required,min=1,max=255"`
	TaskType         TaskType `json:"task_type" validate:"required,oneof=research decision execution"`
	Category         *string  `json:"category"`
	Priority         Priority `json:"priority" validate:"required,oneof=must should"`
	DueDate          *Date    `json:"due_date"`
	ParentID         *int64   `json:"parent_id"`
	DoneCriteria     string   `json:"done_criteria" validate:"required"`
	DecisionCriteria *string  `json:"decision_criteria"`
	Reversible       *bool    `json:"reversible"`
	ExplorationLimit *int     `json:"exploration_limit" validate:"omitempty,min=0"`
}

// UpdateTaskRequest carries a partial update; nil fields are left untouched.
type UpdateTaskRequest struct {
	Title            *string     `json:"title" validate:"omitempty,min=1,max=255"`
	TaskType         *TaskType   `json:"task_type" validate:"omitempty,oneof=research decision execution"`
	Category         *string     `json:"category"`
	Priority         *Priority   `json:"priority" validate:"omitempty,oneof=must should"`
	Status           *TaskStatus `json:"status" validate:"omitempty,oneof=todo doing done carryover_candidate needs_redefine snoozed"`
	DueDate          *Date       `json:"due_date"`
	DoneCriteria     *string     `json:"done_criteria" validate:"omitempty,min=1"`
	DecisionCriteria *string     `json:"decision_criteria"`
	Reversible       *bool       `json:"reversible"`
	ExplorationLimit *int        `json:"exploration_limit" validate:"omitempty,min=0"`
}

// CreateChecklistItemRequest adds an item to a task's checklist. When OrderNo
// is nil the item is appended with the current item count + 1.
type CreateChecklistItemRequest struct {
	Text    string `json:"text" validate:"required"`
	OrderNo *int   `json:"order_no" validate:"omitempty,min=1"`
}

// UpdateChecklistItemRequest carries a partial checklist item update.
type UpdateChecklistItemRequest struct {
	IsDone *bool   `json:"is_done"`
	Text   *string `json:"text" validate:"omitempty,min=1"`
}

// ExtractRequest promotes a checklist item into its own child task. Absent
// fields inherit from the item (title), the resolved title (done criteria) or
// the parent task (priority).
type ExtractRequest struct {
	Title        *string   `json:"title"`
	TaskType     TaskType  `json:"task_type" validate:"omitempty,oneof=research decision execution"`
	Priority     *Priority `json:"priority" validate:"omitempty,oneof=must should"`
	DueDate      *Date     `json:"due_date"`
	DoneCriteria *string   `json:"done_criteria"`
}

// CompleteRequest finishes a task, optionally with a note for the log.
type CompleteRequest struct {
	Note *string `json:"note"`
}

// CarryoverRequest reschedules an overdue task by a fixed policy.
type CarryoverRequest struct {
	Action CarryoverAction `json:"action" validate:"required,oneof=today plus_2d plus_7d needs_redefine"`
}

// CreateCaptureRequest records a free-form note.
type CreateCaptureRequest struct {
	Text          string `json:"text" validate:"required"`
	RelatedTaskID *int64 `json:"related_task_id"`
}

// UpdateCaptureRequest carries a partial capture update.
type UpdateCaptureRequest struct {
	Text          *string `json:"text" validate:"omitempty,min=1"`
	IsResolved    *bool   `json:"is_resolved"`
	RelatedTaskID *int64  `json:"related_task_id"`
}
