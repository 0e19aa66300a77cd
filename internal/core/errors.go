package core

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups of jobs, documents or stored files that do not
// exist. Handlers map it to a structured 404 body.
var ErrNotFound = errors.New("not found")

// UpstreamError wraps a failure from an external service (embedding or LLM)
// so call sites can surface which collaborator broke.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
