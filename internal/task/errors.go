package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for the workflow core. The HTTP adapter translates these
// into status codes; callers match with errors.Is / errors.As.
var (
	// ErrTaskNotFound is returned when a referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrChecklistItemNotFound is returned when a checklist item does not
	// exist or does not belong to the given task.
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrCaptureNotFound is returned when a capture item does not exist.
	ErrCaptureNotFound = errors.New("capture item not found")

	// ErrInvalidTransition is returned when an update tries to set
	// status=done directly instead of going through Complete.
	ErrInvalidTransition = errors.New("status done can only be set via the completion workflow")

	// ErrAlreadyExtracted is returned on a second extraction attempt for the
	// same checklist item.
	ErrAlreadyExtracted = errors.New("checklist item has already been extracted")
)

// ChecklistIncompleteError blocks completion while unresolved checklist items
// remain. Count carries the number of blocking items for user-facing messages.
type ChecklistIncompleteError struct {
	Count int
}

func (e *ChecklistIncompleteError) Error() string {
	return fmt.Sprintf("%d checklist items are still unresolved", e.Count)
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrChecklistItemNotFound) ||
		errors.Is(err, ErrCaptureNotFound)
}
