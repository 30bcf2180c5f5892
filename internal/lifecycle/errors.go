package lifecycle

import (
	"errors"
	"fmt"

	"orangefrog/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrNotInvited         = errors.New("contractor is not invited to this event")
	ErrAlreadyDeclined    = errors.New("contractor already declined this event")
	ErrNotApplied         = errors.New("contractor has not applied to this event")
	ErrInvalidContractor  = errors.New("contractor is not active")
	ErrConflictingWrite   = errors.New("event was modified concurrently")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// TransitionError describes a rejected state change for one contractor on one event
type TransitionError struct {
	Kind         error
	EventID      string
	ContractorID int64
	From         models.MemberStatus
}

func (e *TransitionError) Error() string {
	if e == nil {
		return ""
	}
	from := string(e.From)
	if from == "" {
		from = "not invited"
	}
	return fmt.Sprintf("event %s, contractor %d (%s): %s", e.EventID, e.ContractorID, from, e.Kind.Error())
}

// Unwrap exposes both the specific kind and ErrInvalidTransition
func (e *TransitionError) Unwrap() []error {
	if e.Kind == ErrInvalidTransition {
		return []error{ErrInvalidTransition}
	}
	return []error{e.Kind, ErrInvalidTransition}
}

func transitionErr(kind error, ev *models.Event, contractorID int64, from models.MemberStatus) error {
	return &TransitionError{Kind: kind, EventID: ev.ID, ContractorID: contractorID, From: from}
}

// ContractorError reports ids that did not resolve to an active contractor
type ContractorError struct {
	IDs []int64
}

func (e *ContractorError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidContractor.Error(), e.IDs)
}

func (e *ContractorError) Unwrap() error { return ErrInvalidContractor }
