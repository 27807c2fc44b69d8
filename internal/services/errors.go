package services

import (
	"errors"
	"fmt"

	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/db/repositories"
)

// Kind classifies ledger failures so callers can branch without reading messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindValidationMissing
	KindStorageFailure
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidationMissing:
		return "validation_missing"
	case KindStorageFailure:
		return "storage_failure"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// LedgerError is returned by every ledger, resolver and the coordinator.
// OwnerID is set on identity conflicts to the user already holding the value.
type LedgerError struct {
	Kind    Kind
	Field   string
	Message string
	OwnerID int64
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first LedgerError in err's chain. Untyped
// errors count as storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStorageFailure
}

func errNotFound(message string) *LedgerError {
	return &LedgerError{Kind: KindNotFound, Message: message}
}

func errConflict(field, message string, ownerID int64) *LedgerError {
	return &LedgerError{Kind: KindConflict, Field: field, Message: message, OwnerID: ownerID}
}

func errMissing(field string) *LedgerError {
	return &LedgerError{
		Kind:    KindValidationMissing,
		Field:   field,
		Message: fmt.Sprintf(constants.MsgFieldRequired, field),
	}
}

func errInvalid(field, message string) *LedgerError {
	return &LedgerError{Kind: KindValidationMissing, Field: field, Message: message}
}

func errStorage(err error) *LedgerError {
	return &LedgerError{Kind: KindStorageFailure, Message: constants.MsgStorageFailure, Err: err}
}

func errIntegrity(message string, err error) *LedgerError {
	return &LedgerError{Kind: KindIntegrity, Message: message, Err: err}
}

// fromRepo maps repository sentinels onto ledger kinds. notFoundMsg is used
// when the row is missing.
func fromRepo(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &LedgerError{Kind: KindNotFound, Message: notFoundMsg, Err: err}
	case errors.Is(err, repositories.ErrDuplicate):
		return &LedgerError{Kind: KindConflict, Message: "Value already in use", Err: err}
	default:
		return errStorage(err)
	}
}
