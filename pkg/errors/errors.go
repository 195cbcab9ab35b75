package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoAssignments       = errors.New("course has no assignments")
	ErrTaskIndexOutOfRange = errors.New("task index out of range")
	ErrMissingGrade        = errors.New("oracle response is missing a grade")
	ErrInvalidGrade        = errors.New("invalid grade value")
	ErrMissingCredentials  = errors.New("missing API credentials")
	ErrEmptyResponse       = errors.New("oracle returned an empty response")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// StudentError marks a failure scoped to a single student. The batch driver
// logs it and moves on; it never aborts the run.
type StudentError struct {
	Student string
	Err     error
}

func (e StudentError) Error() string {
	return fmt.Sprintf("student '%s': %s", e.Student, e.Err.Error())
}

func (e StudentError) Unwrap() error {
	return e.Err
}

func NewStudentError(student string, err error) error {
	return StudentError{
		Student: student,
		Err:     err,
	}
}
