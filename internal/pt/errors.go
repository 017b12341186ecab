package pt

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a photo ID has no active catalog row.
	ErrNotFound = errors.New("photo not found")

	// ErrInvalidTier is returned for tier names outside the closed tier set.
	ErrInvalidTier = errors.New("invalid tier")

	// ErrHashConflict is returned by Catalog.InsertPhoto when another active
	// photo already holds the content hash.
	ErrHashConflict = errors.New("content hash already active")

	// ErrDecode and ErrEncode mark thumbnail image-format failures.
	// They are always delivered wrapped in an *IOError.
	ErrDecode = errors.New("image decode failed")
	ErrEncode = errors.New("image encode failed")
)

// IOError reports a filesystem read, write, copy or move failure.
// Op names the step that failed ("hash", "copy", "move", "remove", "thumbnail").
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioErr(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIOError reports whether err is or wraps an *IOError.
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
