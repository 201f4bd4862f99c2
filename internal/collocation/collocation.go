// Package collocation defines the contract of the generative backend that
// returns collocations for a word, along with the prompt and response
// decoding shared by every backend.
package collocation

import (
	"context"
	"errors"
)

// Collocation is a word that frequently co-occurs with the looked-up word.
type Collocation struct {
	Collocate        string   `json:"collocate"`
	Frequency        float64  `json:"frequency"`
	ExampleSentences []string `json:"exampleSentences"`
}

// Analyzer returns the collocations of word. An empty, nil-error result means
// the backend found nothing.
type Analyzer interface {
	Analyze(ctx context.Context, word string) ([]Collocation, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, word string) ([]Collocation, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, word string) ([]Collocation, error) {
	return f(ctx, word)
}

// ServiceError is returned when the backend call fails. Message is meant for
// the user and may be empty.
type ServiceError struct {
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "collocation service failed"
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err, using its text as the user-facing message.
func NewServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &ServiceError{Message: msg, Err: err}
}

// UserMessage returns the text to show for a failed lookup, falling back to
// a generic message when err carries none.
func UserMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return GenericFailureMessage
}

const GenericFailureMessage = "Failed to analyze word. Please try again."
