// Package generator turns a founder's idea into a StartupPlan.
package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/genie/internal/models"
)

// ErrGenerationFailed matches every error returned by a Generator.
var ErrGenerationFailed = errors.New("generation failed")

type Request struct {
	Idea        string
	FounderName string
	FounderRole string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (models.StartupPlan, error)
}

// Error is the single failure outcome of a generation call. Reason is
// short and human readable; Err carries the underlying cause, if any.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrGenerationFailed }

func fail(reason string, err error) error {
	return &Error{Reason: reason, Err: err}
}

// Unavailable is used when no API key is configured. It always fails, so
// callers fall back to the sample plan.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (models.StartupPlan, error) {
	return models.StartupPlan{}, fail("no API key configured", nil)
}

// Func adapts a function to the Generator interface.
type Func func(ctx context.Context, req Request) (models.StartupPlan, error)

func (f Func) Generate(ctx context.Context, req Request) (models.StartupPlan, error) {
	return f(ctx, req)
}
