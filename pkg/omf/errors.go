package omf

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Model errors.
var (
	// ErrSchemaUnknown indicates a schema string with no registered type
	ErrSchemaUnknown = errors.New("unknown schema")

	// ErrInvalidDataType indicates an unsupported array data type
	ErrInvalidDataType = errors.New("invalid data type")

	// ErrDataTypeMismatch indicates an array was read as the wrong type
	ErrDataTypeMismatch = errors.New("data type mismatch")

	// ErrPayloadMissing indicates a binary payload has not been attached
	ErrPayloadMissing = errors.New("binary payload missing")

	// ErrEmptyArray indicates an array was built from no values
	ErrEmptyArray = errors.New("empty array")

	// ErrInvalidLocation indicates an attribute location the element does not support
	ErrInvalidLocation = errors.New("invalid attribute location")

	// ErrLengthMismatch indicates an attribute array whose length does not
	// match the element geometry at its location
	ErrLengthMismatch = errors.New("attribute length mismatch")
)

// Catalog errors.
var (
	// ErrProjectNotFound indicates a project record was not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrBackendNotFound indicates a storage backend was not registered
	ErrBackendNotFound = errors.New("storage backend not found")

	// ErrProjectNotPacked indicates a project has no stored archive yet
	ErrProjectNotPacked = errors.New("project archive not packed")

	// ErrNoPacker indicates the service was built without an archive packer
	ErrNoPacker = errors.New("archive packer not configured")

	// ErrObjectNotFound indicates a blob store has no object under a key
	ErrObjectNotFound = errors.New("object not found")
)

// ProjectError wraps an error from a catalog operation on a project.
type ProjectError struct {
	ProjectID uuid.UUID
	Op        string
	Err       error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("project operation %s failed for project %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// StorageError wraps an error from a blob storage operation.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ValidationError wraps all violations found while validating a project or
// element tree. Err joins the individual violations.
type ValidationError struct {
	Name string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %v", e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
