package types

import "fmt"

// PlanError is the error payload returned by the plan generator's backend.
type PlanError struct {
	Status  int
	Message string
	Type    string
	Code    string
	Cause   error
}

func (e *PlanError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("plan request failed (status %d, %s/%s): %s", e.Status, e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("plan request failed (status %d): %s", e.Status, e.Message)
}

func (e *PlanError) Unwrap() error { return e.Cause }
