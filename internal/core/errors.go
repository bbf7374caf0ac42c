package core

import (
	"fmt"

	"github.com/reactor/docsproxy/client"
)

// ErrNotFound is returned when a module or version is not found.
var ErrNotFound = client.ErrNotFound

// NotFoundError wraps ErrNotFound with additional context.
type NotFoundError struct {
	Module  string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("module %s: no version matching %s", e.Module, e.Version)
	}
	return fmt.Sprintf("module %s not found", e.Module)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
