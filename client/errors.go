package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a module, a version or a documentation
// path cannot be found.
var ErrNotFound = errors.New("not found")

// ErrNoKDoc is matched by every *KDocUnavailableError.
var ErrNoKDoc = errors.New("kdoc not available")

// HTTPError represents an HTTP error response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// KDocUnavailableError reports that a module version never published
// Kotlin docs. It is distinct from a plain not-found so the caller can
// render a dedicated message.
type KDocUnavailableError struct {
	ArtifactID string
	Version    string
}

func (e *KDocUnavailableError) Error() string {
	return fmt.Sprintf("kdoc not available for %s %s", e.ArtifactID, e.Version)
}

func (e *KDocUnavailableError) Is(target error) bool {
	return target == ErrNoKDoc
}
