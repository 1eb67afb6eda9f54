// Package capacity decides whether an issued link is small enough to render as a QR code.
package capacity

import (
	"errors"
	"unicode/utf8"
)

// Threshold is the largest link length, in characters, still rendered as a QR code.
const Threshold = 2000

var ErrOversizedPayload = errors.New("capacity: link too large for a QR code")

type Outcome int

const (
	Empty Outcome = iota
	WithinBudget
	OverBudget
)

func (o Outcome) String() string {
	switch o {
	case Empty:
		return "empty"
	case WithinBudget:
		return "within_budget"
	case OverBudget:
		return "over_budget"
	default:
		return "unknown"
	}
}

// QRAllowed reports whether QR rendering should be attempted.
func (o Outcome) QRAllowed() bool {
	return o == WithinBudget
}

// Message is the user-facing text for the QR placeholder.
func (o Outcome) Message() string {
	switch o {
	case OverBudget:
		return "Menu is too large for a QR Code."
	case Empty:
		return "Your QR code will appear here."
	default:
		return ""
	}
}

// Classify measures s in characters against Threshold.
func Classify(s string) Outcome {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return Empty
	case n <= Threshold:
		return WithinBudget
	default:
		return OverBudget
	}
}

// Check returns ErrOversizedPayload when s exceeds Threshold.
func Check(s string) error {
	if Classify(s) == OverBudget {
		return ErrOversizedPayload
	}
	return nil
}
