package typesystem

import (
	"errors"
	"fmt"
)

// ValidationState tracks where a declaration is in its check.
// Transitions only go Unknown -> Checking -> Valid | Invalid.
type ValidationState int

const (
	StateUnknown ValidationState = iota
	StateChecking
	StateValid
	StateInvalid
)

func (s ValidationState) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ErrReentrant is returned by Begin when the declaration is already being
// checked further up the stack, i.e. it refers to itself.
var ErrReentrant = errors.New("declaration refers to itself")

// TransitionError reports a transition the state machine does not allow.
type TransitionError struct {
	From ValidationState
	To   ValidationState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal validation transition %s -> %s", e.From, e.To)
}

// Begin moves Unknown -> Checking.
func (s *ValidationState) Begin() error {
	switch *s {
	case StateUnknown:
		*s = StateChecking
		return nil
	case StateChecking:
		return ErrReentrant
	default:
		return &TransitionError{From: *s, To: StateChecking}
	}
}

// Finish moves Checking -> Valid when ok, Checking -> Invalid otherwise.
func (s *ValidationState) Finish(ok bool) error {
	to := StateInvalid
	if ok {
		to = StateValid
	}
	if *s != StateChecking {
		return &TransitionError{From: *s, To: to}
	}
	*s = to
	return nil
}

// Done reports whether the check has completed, successfully or not.
func (s ValidationState) Done() bool {
	return s == StateValid || s == StateInvalid
}
