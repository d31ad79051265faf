package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned when a record or key cannot be stored
	ErrInvalidRecord = errors.New("invalid tracking record")
	// ErrInvalidKind is returned for an unknown media kind
	ErrInvalidKind = errors.New("invalid media kind")
	// ErrInvalidList is returned for an unknown tracking list
	ErrInvalidList = errors.New("invalid tracking list")
)

// StorageError is a failure of the local tracking persistence
type StorageError struct {
	Op   string // "upsert", "delete", "exists", "list", "validate", "open"
	List List
	Key  string
	Err  error
}

func (e *StorageError) Error() string {
	msg := "storage " + e.Op
	if e.List != "" {
		msg += " " + string(e.List)
	}
	if e.Key != "" {
		msg += " " + e.Key
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// CatalogError is a failure talking to the remote catalog
type CatalogError struct {
	Op     string    // "search", "popular"
	Kind   MediaKind // Which side of the catalog failed
	Status int       // HTTP status, 0 when the request never completed
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s %s failed with status %d: %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("catalog %s %s failed: %v", e.Op, e.Kind, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// IsCatalogError reports whether err carries a CatalogError
func IsCatalogError(err error) bool {
	var ce *CatalogError
	return errors.As(err, &ce)
}
