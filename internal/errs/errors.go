// Package errs provides the unified error type used across dbscribe.
//
// Every subsystem (catalog adapters, introspector, builders, filestore, …)
// wraps its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to branch on the kind without importing
// driver-specific packages.
//
// Usage:
//
//	// In an adapter, wrap native errors:
//	return errs.Wrap(errs.ErrKindTimeout, "query timed out", pgErr)
//
//	// In a handler, check the error kind:
//	if errs.IsTableNotFound(err) {
//	    http.Error(w, err.Error(), http.StatusNotFound)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing backend-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object, no bucket
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // SQL or storage operation error
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindSchemaNotFound           // schema missing from the catalog
	ErrKindTableNotFound            // table missing from an existing schema
	ErrKindMalformedIndex           // index definition text could not be parsed
	ErrKindUnsupportedType          // no parameter type / converter for a column type
	ErrKindConnectionNotOpen        // operation needs an open connection
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindSchemaNotFound:
		return "schema_not_found"
	case ErrKindTableNotFound:
		return "table_not_found"
	case ErrKindMalformedIndex:
		return "malformed_index_definition"
	case ErrKindUnsupportedType:
		return "unsupported_column_type"
	case ErrKindConnectionNotOpen:
		return "connection_not_open"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all dbscribe subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// SchemaNotFound reports a schema that does not exist in the catalog.
func SchemaNotFound(schema string) *Error {
	return New(ErrKindSchemaNotFound, fmt.Sprintf("schema '%s' does not exist", schema))
}

// TableNotFound reports a table missing from an existing schema.
func TableNotFound(schema, table string) *Error {
	return New(ErrKindTableNotFound, fmt.Sprintf("table '%s' does not exist in schema '%s'", table, schema))
}

// MalformedIndexDefinition reports index definition text with no column list.
func MalformedIndexDefinition(raw string) *Error {
	return New(ErrKindMalformedIndex, fmt.Sprintf("malformed index definition: %q", raw))
}

// UnsupportedColumnType reports a column whose type has no registered mapping.
func UnsupportedColumnType(table, column, typeName string) *Error {
	return New(ErrKindUnsupportedType, fmt.Sprintf(
		"type '%s' not supported (table '%s', column '%s')", typeName, table, column))
}

// InvalidArgument reports a missing or empty required argument.
func InvalidArgument(param string) *Error {
	return New(ErrKindInvalidInput, fmt.Sprintf("invalid argument: %s", param))
}

// ConnectionNotOpen reports use of a closed connection.
func ConnectionNotOpen() *Error {
	return New(ErrKindConnectionNotOpen, "connection should be open")
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result of any
// flavour: missing rows, objects, schemas or tables.
func IsNotFound(err error) bool {
	switch kindOf(err) {
	case ErrKindNotFound, ErrKindSchemaNotFound, ErrKindTableNotFound:
		return true
	}
	return false
}

// IsSchemaNotFound reports whether err is a missing-schema error.
func IsSchemaNotFound(err error) bool {
	return kindOf(err) == ErrKindSchemaNotFound
}

// IsTableNotFound reports whether err is a missing-table error.
func IsTableNotFound(err error) bool {
	return kindOf(err) == ErrKindTableNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsConnectionNotOpen reports whether err was caused by a closed connection.
func IsConnectionNotOpen(err error) bool {
	return kindOf(err) == ErrKindConnectionNotOpen
}

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == ErrKindPermissionDenied
}

// IsMalformedIndexDefinition reports whether err came from the index parser.
func IsMalformedIndexDefinition(err error) bool {
	return kindOf(err) == ErrKindMalformedIndex
}

// IsUnsupportedColumnType reports whether err is a converter configuration gap.
func IsUnsupportedColumnType(err error) bool {
	return kindOf(err) == ErrKindUnsupportedType
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	return kindOf(err)
}

func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
