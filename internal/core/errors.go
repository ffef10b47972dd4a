package core

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrLoanNotFound = errors.New("loan not found")

	ErrAlreadyPaidThisMonth = errors.New("EMI already paid this month")
	ErrLoanComplete         = errors.New("loan already complete")
	ErrNothingToUndo        = errors.New("no EMI paid this month")
	ErrLoanClosed           = errors.New("loan is closed")

	ErrInvalidAmount = errors.New("invalid amount")
)

// ValidationError is a user-correctable problem with one input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors lists every problem found; nothing is applied when non-empty.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages returns the human-readable messages in order.
func (e ValidationErrors) Messages() []string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message
	}
	return msgs
}

// StorageError wraps a persistence failure. The attempted mutation is not applied.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStateConflict reports whether err is a refused lifecycle transition.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrAlreadyPaidThisMonth) ||
		errors.Is(err, ErrLoanComplete) ||
		errors.Is(err, ErrNothingToUndo) ||
		errors.Is(err, ErrLoanClosed)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
