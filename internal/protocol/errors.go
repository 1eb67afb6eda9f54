package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrCorruptLink = errors.New("protocol: could not display the menu, the link may be corrupted")
	ErrEmptyToken  = errors.New("protocol: empty token")
)

// Decode steps reported by CorruptLinkError.
const (
	StepRestore = "restore"
	StepBase64  = "base64"
	StepInflate = "inflate"
	StepParse   = "parse"
)

// CorruptLinkError is the single user-facing decode failure. Step and Err are kept
// for diagnostics only.
type CorruptLinkError struct {
	Step string
	Err  error
}

func (e *CorruptLinkError) Error() string {
	return fmt.Sprintf("%s (%s: %v)", ErrCorruptLink.Error(), e.Step, e.Err)
}

func (e *CorruptLinkError) Is(target error) bool {
	return target == ErrCorruptLink
}

func (e *CorruptLinkError) Unwrap() error {
	return e.Err
}

func corrupt(step string, err error) error {
	return &CorruptLinkError{Step: step, Err: err}
}
