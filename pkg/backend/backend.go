// Package backend adapts external text-generation services to a single
// blocking call: messages in, completion text out.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/chatsphere/pkg/llm"
)

// Kind selects which adapter serves completions.
type Kind string

const (
	KindHosted Kind = "hosted"
	KindLocal  Kind = "local"
)

// Backend generates one completion per call. Implementations do not retry
// and do not stream.
type Backend interface {
	Generate(ctx context.Context, messages []llm.Message) (string, error)

	// Name identifies the backend in logs and error messages.
	Name() string
}

// Params are the generation settings fixed for the life of a backend.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Error is returned for every failed generation, whatever the cause
// (network, auth, quota, model).
type Error struct {
	Backend string
	Model   string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s backend (%s) failed", e.Backend, e.Model)
	}
	return fmt.Sprintf("%s backend (%s): %v", e.Backend, e.Model, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrEmptyCompletion is the cause recorded when a backend answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// IsBackendError reports whether err is, or wraps, a backend *Error.
func IsBackendError(err error) bool {
	var be *Error
	return errors.As(err, &be)
}
