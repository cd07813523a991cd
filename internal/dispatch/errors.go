package dispatch

import (
	"errors"
	"fmt"

	"filterbridge/internal/protocol"
)

// ErrMalformedEnvelope reports inbound text that is not a usable envelope, or
// a payload that does not fit its tag. Callers log and drop the message.
var ErrMalformedEnvelope = errors.New("malformed envelope")

func malformed(err error) error {
	if errors.Is(err, ErrMalformedEnvelope) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
}

// CollaboratorError wraps a failure reported by a backend collaborator.
type CollaboratorError struct {
	Tag       protocol.Tag
	Op        string
	RequestID string
	Err       error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tag, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func collaboratorError(env *protocol.Envelope, op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Tag: env.Type, Op: op, RequestID: env.RequestID, Err: err}
}
