package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrRateLimited        = errors.New("too many requests")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Ledger errors
var (
	ErrCampaignNotActive = errors.New("campaign is not accepting donations")
	ErrInvalidAmount     = errors.New("donation amount must be greater than zero")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid status")
)

// Resource-specific not-found errors, all matching ErrNotFound
var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCampaignNotFound = fmt.Errorf("campaign %w", ErrNotFound)
	ErrGiverNotFound    = fmt.Errorf("giver profile %w", ErrNotFound)
	ErrDonationNotFound = fmt.Errorf("donation %w", ErrNotFound)
)

// WeakPasswordError carries the first violated strength rule
type WeakPasswordError struct {
	Reason string
}

func (e *WeakPasswordError) Error() string {
	return e.Reason
}

func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}

// ValidationError carries per-field validation details
type ValidationError struct {
	Message string
	Details interface{}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// TransitionError records a rejected state change
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
