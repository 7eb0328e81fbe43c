package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"qna-chat-be/internal/entity"
)

// Step is one unit of the answer composition chain. A step reads and mutates
// the run's Context, may perform external I/O, and stops the remaining chain
// by returning ErrHalted (through Context.Halt). Any other non-nil error is
// treated as a defect and propagates to the caller.
type Step interface {
	Name() string
	Run(ctx context.Context, pc *Context) error
}

// Runner executes a fixed, ordered list of steps against one context per
// question. It performs no error translation itself: it only distinguishes
// "halt signal received" from "error escaped".
type Runner struct {
	steps  []Step
	logger *log.Logger
}

func NewRunner(logger *log.Logger, steps ...Step) *Runner {
	return &Runner{
		steps:  steps,
		logger: logger,
	}
}

// Run executes the chain for a single question and returns the finished
// (possibly unanswered) draft. On a halt the answer is returned as the step
// left it; state was fully written before the signal. A successful full run
// relies on the composer having set the terminal success status — that is a
// contract on step authors, not enforced here.
func (r *Runner) Run(ctx context.Context, question *entity.Question) (*entity.Answer, error) {
	pc := NewContext(question)

	for _, step := range r.steps {
		if err := step.Run(ctx, pc); err != nil {
			if errors.Is(err, ErrHalted) {
				r.logger.Printf("[PIPELINE] halted at %s (status: %s)", step.Name(), pc.Answer.Status)
				return pc.Answer, nil
			}
			return nil, fmt.Errorf("pipeline step %s: %w", step.Name(), err)
		}
	}

	r.logger.Printf("[PIPELINE] completed %d steps (status: %s)", len(r.steps), pc.Answer.Status)
	return pc.Answer, nil
}
