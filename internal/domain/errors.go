package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - match any typed error below with errors.Is()
var (
	ErrNotFound           = errors.New("not found")
	ErrParentNotFound     = errors.New("parent folder not found")
	ErrNameCollision      = errors.New("name already in use")
	ErrCyclicMove         = errors.New("cannot move folder into itself or its descendants")
	ErrDestinationTrashed = errors.New("destination is in trash")
	ErrNotTrashed         = errors.New("not in trash")
	ErrFolderCreationRace = errors.New("folder creation race")
	ErrTransport          = errors.New("transport error")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Resource types carried by typed errors
const (
	ResourceFolder = "folder"
	ResourceFile   = "file"
)

// OperationError is a typed failure of a workspace operation.
// Kind is one of the sentinel errors above.
type OperationError struct {
	Kind         error
	Op           string // attempted operation, e.g. "move", "restore"
	ResourceType string
	ResourceID   string
	Message      string
}

// NewOperationError builds an OperationError with a default message
func NewOperationError(kind error, op, resourceType, resourceID string) *OperationError {
	return &OperationError{
		Kind:         kind,
		Op:           op,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Message:      fmt.Sprintf("%s %s %s: %v", op, resourceType, resourceID, kind),
	}
}

func (e *OperationError) Error() string { return e.Message }

// Is allows errors.Is() to match against the sentinel Kind
func (e *OperationError) Is(target error) bool { return target == e.Kind }

// StatusCode implements HTTPError
func (e *OperationError) StatusCode() int {
	switch e.Kind {
	case ErrNotFound, ErrParentNotFound:
		return http.StatusNotFound
	case ErrNameCollision, ErrCyclicMove, ErrDestinationTrashed, ErrNotTrashed, ErrFolderCreationRace:
		return http.StatusConflict
	case ErrValidation:
		return http.StatusBadRequest
	case ErrTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ConflictError represents a sibling name collision with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder or file
	ResourceID   string // ID of the existing/conflicting resource, empty if unknown
}

func (e *ConflictError) Error() string { return e.Message }

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrNameCollision
func (e *ConflictError) Is(target error) bool { return target == ErrNameCollision }

// NewNameCollision reports that name is already used by a live sibling
func NewNameCollision(resourceType, name, existingID string) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("a %s named %q already exists in this location", resourceType, name),
		ResourceType: resourceType,
		ResourceID:   existingID,
	}
}

// ValidationError indicates invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError wraps a network or storage I/O failure. It is always surfaced.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrTransport
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// StatusCode implements HTTPError
func (e *TransportError) StatusCode() int { return http.StatusBadGateway }
