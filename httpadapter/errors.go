package httpadapter

import (
	"fmt"
	"io/fs"

	"github.com/hairyhenderson/go-remotefs"
	"github.com/sirupsen/logrus"
)

// StatusError represents an HTTP response with an unsuccessful status code.
type StatusError struct {
	Method     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %s failed with status %d", e.Method, e.StatusCode)
}

// notFound wraps cause so that it matches remotefs.ErrNotFound, while keeping
// cause available to errors.As.
func (a *Adapter) notFound(op, name string, cause error) error {
	a.log.WithFields(logrus.Fields{
		"op":   op,
		"path": name,
	}).WithError(cause).Debug("reporting file as not found")

	return &fs.PathError{
		Op:   op,
		Path: name,
		Err:  fmt.Errorf("%w: %w", remotefs.ErrNotFound, cause),
	}
}
