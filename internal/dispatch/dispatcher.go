package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"filterbridge/internal/logging"
	"filterbridge/internal/protocol"
)

// Responder delivers replies to the window that sent the envelope.
type Responder interface {
	// Return writes a synchronous reply.
	Return(reply protocol.Reply) error
	// Push writes an asynchronous reply.
	Push(reply protocol.Reply) error
}

// Dispatcher routes envelopes through a validated handler table. It holds no
// backend state and is safe for concurrent use by many windows.
type Dispatcher struct {
	table  map[protocol.Tag]Handler
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New builds a dispatcher over the default handler table for c.
func New(c Collaborators, logger *slog.Logger) (*Dispatcher, error) {
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("dispatch collaborators: %w", err)
	}
	return NewWithTable(Handlers(c), logger)
}

// NewWithTable builds a dispatcher over table after checking it covers every
// protocol tag with a handler of the right reply kind.
func NewWithTable(table map[protocol.Tag]Handler, logger *slog.Logger) (*Dispatcher, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	owned := make(map[protocol.Tag]Handler, len(table))
	for tag, h := range table {
		owned[tag] = h
	}
	return &Dispatcher{
		table:  owned,
		logger: logging.NewComponentLogger(logger, "dispatch"),
	}, nil
}

// ValidateTable reports every tag without a handler, every handler for an
// unknown tag, and every handler whose reply kind does not match its tag.
func ValidateTable(table map[protocol.Tag]Handler) error {
	var errs []error
	for _, tag := range protocol.Tags() {
		h, ok := table[tag]
		if !ok || isNilHandler(h) {
			errs = append(errs, fmt.Errorf("tag %s has no handler", tag))
			continue
		}
		if h.Reply() != tag.Reply() {
			errs = append(errs, fmt.Errorf("tag %s: handler replies %s, want %s", tag, h.Reply(), tag.Reply()))
		}
	}
	for tag := range table {
		if !tag.Known() {
			errs = append(errs, fmt.Errorf("handler registered for unknown tag %q", tag))
		}
	}
	return errors.Join(errs...)
}

// isNilHandler reports a missing handler, including a nil function stored in
// the interface. Types other than the three handler kinds count as missing
// because Dispatch cannot run them.
func isNilHandler(h Handler) bool {
	switch fn := h.(type) {
	case FireAndForget:
		return fn == nil
	case SyncReturn:
		return fn == nil
	case AsyncPush:
		return fn == nil
	default:
		return true
	}
}

// Dispatch parses raw and runs the matching handler. Malformed input returns
// an error matching ErrMalformedEnvelope; unknown tags are ignored. A
// collaborator failure returns *CollaboratorError; for synchronous tags an
// error reply is written first so the caller is not left waiting.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte, responder Responder) error {
	env, err := protocol.ParseEnvelope(raw)
	if err != nil {
		return malformed(err)
	}
	if !env.Type.Known() {
		d.logger.Debug("ignoring unknown command", logging.String(logging.FieldCommand, string(env.Type)))
		return nil
	}
	if env.RequestID == "" {
		env.RequestID = uuid.NewString()
	}
	ctx = logging.WithRequestID(ctx, env.RequestID)
	logger := logging.WithContext(ctx, d.logger).With(logging.String(logging.FieldCommand, string(env.Type)))
	logger.Debug("dispatching command")

	switch h := d.table[env.Type].(type) {
	case FireAndForget:
		return h(ctx, env)
	case SyncReturn:
		payload, err := h(ctx, env)
		if err != nil && errors.Is(err, ErrMalformedEnvelope) {
			return err
		}
		reply := replyFor(env)
		reply.Payload = payload
		reply.Err = err
		if writeErr := responder.Return(reply); writeErr != nil {
			if err != nil {
				return errors.Join(err, fmt.Errorf("write %s reply: %w", env.Type, writeErr))
			}
			return fmt.Errorf("write %s reply: %w", env.Type, writeErr)
		}
		return err
	case AsyncPush:
		job, err := h(ctx, env)
		if err != nil {
			return err
		}
		if job == nil {
			return fmt.Errorf("tag %s: handler returned no job", env.Type)
		}
		d.wg.Add(1)
		go d.runAsync(ctx, logger, env, job, responder)
		return nil
	default:
		return fmt.Errorf("tag %s has no handler", env.Type)
	}
}

func (d *Dispatcher) runAsync(ctx context.Context, logger *slog.Logger, env *protocol.Envelope, job Job, responder Responder) {
	defer d.wg.Done()

	payload, err := job(ctx)
	reply := replyFor(env)
	reply.Payload = payload
	reply.Err = err
	if err != nil {
		logging.ErrorWithContext(logger, "async command failed", "dispatch.async_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "ui receives an error response"),
		)
	}
	if pushErr := responder.Push(reply); pushErr != nil {
		logging.WarnWithContext(logger, "async reply not delivered", "dispatch.push_failed",
			logging.Error(pushErr),
			logging.String(logging.FieldChannel, reply.Channel),
			logging.String(logging.FieldErrorHint, "window may have closed before the reply was ready"),
		)
	}
}

// Wait blocks until every in-flight asynchronous command has replied.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func replyFor(env *protocol.Envelope) protocol.Reply {
	return protocol.Reply{
		Tag:       env.Type,
		Channel:   env.Type.ResponseChannel(),
		RequestID: env.RequestID,
	}
}
