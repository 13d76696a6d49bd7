package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"catalog-service/internal/model"
)

// Kind classifies catalog failures for callers that need to branch on them
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindMalformedReference Kind = "MALFORMED_REFERENCE"
	KindValidation         Kind = "VALIDATION"
	KindInternal           Kind = "INTERNAL"
)

// NotFoundError reports a missing or archived record
type NotFoundError struct {
	Kind model.Kind
	ID   int64
	// Name is set instead of ID for records addressed by name, e.g. attributes
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Conflict reasons
const (
	ReasonSelfReference = "self_reference"
	ReasonDuplicate     = "duplicate"
	ReasonCycle         = "cycle"
	ReasonDefaultSku    = "default_sku"
)

// ConflictError reports a write that would break a uniqueness or shape rule.
// ID and OtherID carry the pair involved, OtherID is zero for single-record conflicts.
type ConflictError struct {
	Kind    model.Kind
	ID      int64
	OtherID int64
	Reason  string
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case ReasonSelfReference:
		return fmt.Sprintf("%s %d cannot reference itself", e.Kind, e.ID)
	case ReasonCycle:
		return fmt.Sprintf("%s %d -> %d would create a cycle", e.Kind, e.ID, e.OtherID)
	case ReasonDefaultSku:
		return fmt.Sprintf("sku %d is the default sku of product %d", e.OtherID, e.ID)
	case ReasonDuplicate:
		return fmt.Sprintf("%s %d -> %d already exists", e.Kind, e.ID, e.OtherID)
	}
	return fmt.Sprintf("%s conflict on %d", e.Kind, e.ID)
}

// MalformedReferenceError reports an href or id that cannot be resolved
type MalformedReferenceError struct {
	Reference string
	Cause     error
}

func (e *MalformedReferenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed reference %q: %v", e.Reference, e.Cause)
	}
	return fmt.Sprintf("malformed reference %q", e.Reference)
}

func (e *MalformedReferenceError) Unwrap() error {
	return e.Cause
}

// ValidationError reports invalid input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFound creates a NotFoundError
func NotFound(kind model.Kind, id int64) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// Conflict creates a ConflictError
func Conflict(kind model.Kind, id, otherID int64, reason string) error {
	return &ConflictError{Kind: kind, ID: id, OtherID: otherID, Reason: reason}
}

// Invalid creates a ValidationError
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// KindOf returns the classification of err
func KindOf(err error) Kind {
	var (
		notFound  *NotFoundError
		conflict  *ConflictError
		malformed *MalformedReferenceError
		invalid   *ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &conflict):
		return KindConflict
	case errors.As(err, &malformed):
		return KindMalformedReference
	case errors.As(err, &invalid):
		return KindValidation
	}
	return KindInternal
}

// HTTPStatus maps err to the status code returned by the API
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindMalformedReference, KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
