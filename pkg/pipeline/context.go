package pipeline

import (
	"errors"

	"qna-chat-be/internal/entity"
)

// ErrHalted is the signal a step returns (via Context.Halt) to stop the
// remaining chain. The runner is the only place that inspects it; every
// other non-nil error escaping a step is a defect and propagates.
var ErrHalted = errors.New("pipeline halted")

// Context is the mutable unit of work threaded through every step of one
// pipeline run. It is exclusively owned by the runner for the run's duration
// and is never shared between runs.
type Context struct {
	Question *entity.Question
	Answer   *entity.Answer

	questionMessage string
	searchResults   []entity.Passage
	aborted         bool
}

// NewContext creates the per-run state for a question: a pending answer and
// a working copy of the question text.
func NewContext(question *entity.Question) *Context {
	return &Context{
		Question:        question,
		Answer:          entity.NewPendingAnswer(question.Id),
		questionMessage: question.Message,
	}
}

// QuestionMessage returns the working question text used for retrieval and
// composition. It starts as the original message and changes only through
// SetQuestionMessage.
func (c *Context) QuestionMessage() string {
	return c.questionMessage
}

// SetQuestionMessage replaces the working question text. Assigning a value
// different from the original message records it as the rephrased question;
// assigning the original value clears the rephrasing again. This setter is
// the only place that invariant is maintained.
func (c *Context) SetQuestionMessage(message string) {
	c.questionMessage = message
	if message == c.Question.Message {
		c.Answer.RephrasedQuestion = nil
		return
	}
	rephrased := message
	c.Answer.RephrasedQuestion = &rephrased
}

// SearchResults returns the ranked passages set by the retrieval step.
func (c *Context) SearchResults() []entity.Passage {
	return c.searchResults
}

// SetSearchResults stores the ranked passages and derives the answer's
// source list from them: one source per passage, same order, all initially
// unused.
func (c *Context) SetSearchResults(passages []entity.Passage) {
	c.searchResults = passages
	sources := make([]entity.Source, len(passages))
	for i, p := range passages {
		sources[i] = entity.SourceFromPassage(i, p)
	}
	c.Answer.Sources = sources
}

// Aborted reports whether a step stopped the run.
func (c *Context) Aborted() bool {
	return c.aborted
}

// Abort merges the given terminal status and message into the answer and
// marks the run as stopped, without signaling the runner. Steps that only
// need to update state use this form; empty arguments leave the respective
// field untouched.
func (c *Context) Abort(status entity.AnswerStatus, message string) *entity.Answer {
	if status != "" {
		c.Answer.Status = status
	}
	if message != "" {
		c.Answer.Message = message
	}
	c.aborted = true
	return c.Answer
}

// Halt aborts and returns ErrHalted for the step to hand back to the runner.
// All response state must already be written before calling it.
func (c *Context) Halt(status entity.AnswerStatus, message string) error {
	c.Abort(status, message)
	return ErrHalted
}
