package llm

import "fmt"

// RateLimitError signals the provider rejected the call for quota reasons.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// ContextLengthError signals the prompt exceeded the model's context window.
type ContextLengthError struct {
	Provider string
	Model    string
}

func (e *ContextLengthError) Error() string {
	return fmt.Sprintf("%s: context length exceeded for model %s", e.Provider, e.Model)
}

// RequestError is a generic provider/transport failure (non-2xx status,
// network error, unreadable body).
type RequestError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ResponseError signals the provider answered but the payload was not in the
// shape the caller asked for. It carries whatever partial response (and
// usage) was obtained so callers can still record it.
type ResponseError struct {
	Provider string
	Response *Response
	Reason   string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %s", e.Provider, e.Reason)
}
