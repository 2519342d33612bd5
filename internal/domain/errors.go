package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource. The message is intentionally
// generic for token lookups: callers cannot distinguish a token that never
// existed from one that no longer resolves.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ErrAlreadyLocked rejects any write against a signed or archived inventory.
var ErrAlreadyLocked = errors.New("inventory already locked")

// ErrEmptyLedger rejects locking an inventory with zero signatures.
var ErrEmptyLedger = errors.New("signature ledger is empty")

// ErrInvalidSignature rejects signature rasters with no visible ink.
var ErrInvalidSignature = errors.New("signature image is blank")

// ValidationError reports a payload that failed boundary validation.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "validation failed"
	}
	return e.Reason
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrValidation is the sentinel error for boundary validation failures.
var ErrValidation = ValidationError{}
