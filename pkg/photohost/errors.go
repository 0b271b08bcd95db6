package photohost

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPhotoNotFound indicates a photo record was not found
	ErrPhotoNotFound = errors.New("photo not found")

	// ErrDuplicateName indicates a photo with the same name already exists
	ErrDuplicateName = errors.New("a photo with this name already exists")

	// ErrEmptyName indicates a rename to an empty name was requested
	ErrEmptyName = errors.New("name cannot be empty")
)

// StorageError represents an error from a blob storage operation. The core
// performs no retries; a storage failure surfaces once with its key attached.
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

// VariantError represents a per-variant generation failure. It is reported,
// not fatal: other variants and the photo record itself still proceed.
type VariantError struct {
	Variant string
	Source  string
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("variant %s generation failed for %s: %v", e.Variant, e.Source, e.Err)
}

func (e *VariantError) Unwrap() error {
	return e.Err
}
