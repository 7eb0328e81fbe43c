package pipeline

import (
	"context"
	"log"
)

// ErrorTracker is the external error-reporting collaborator. Generic
// provider failures are reported through it; guardrail outcomes and
// data-shape issues (context overflow, schema violations) are not.
type ErrorTracker interface {
	Notify(ctx context.Context, err error)
}

// LogTracker reports errors to the pipeline log.
type LogTracker struct {
	Logger *log.Logger
}

func (t *LogTracker) Notify(_ context.Context, err error) {
	t.Logger.Printf("[ERROR-TRACKER] %v", err)
}

// NoopTracker discards reports. Used in tests.
type NoopTracker struct{}

func (NoopTracker) Notify(context.Context, error) {}
