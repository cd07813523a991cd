package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"filterbridge/internal/dispatch"
	"filterbridge/internal/logging"
	"filterbridge/internal/notifier"
	"filterbridge/internal/protocol"
)

// ErrSessionClosed is returned when writing to a window that has gone away.
var ErrSessionClosed = errors.New("session closed")

// Session is one connected UI window.
type Session struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(parent context.Context, id string, conn *websocket.Conn, writeTimeout time.Duration, logger *slog.Logger) *Session {
	ctx, cancel := context.WithCancel(logging.WithWindowID(parent, id))
	return &Session{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
		logger:       logging.WithContext(ctx, logger),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ID returns the window identifier.
func (s *Session) ID() string {
	return s.id
}

// Send writes payload as a push frame on channel. Failures are returned, not
// retried.
func (s *Session) Send(ctx context.Context, channel string, payload any) error {
	reply := protocol.Reply{Channel: channel, Payload: payload}
	return s.writeReply(ctx, reply, protocol.FramePush)
}

// Return writes a synchronous reply frame.
func (s *Session) Return(reply protocol.Reply) error {
	return s.writeReply(s.ctx, reply, protocol.FrameReturn)
}

// Push writes an asynchronous reply frame.
func (s *Session) Push(reply protocol.Reply) error {
	return s.writeReply(s.ctx, reply, protocol.FrameResponse)
}

func (s *Session) writeReply(ctx context.Context, reply protocol.Reply, kind protocol.FrameKind) error {
	if s.ctx.Err() != nil {
		return ErrSessionClosed
	}
	frame, err := reply.Frame(kind)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", reply.Channel, err)
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", reply.Channel, err)
	}
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write %s frame: %w", reply.Channel, err)
	}
	return nil
}

// relay forwards one backend event to the window.
func (s *Session) relay(evt notifier.Event) {
	msg := protocol.NewEventMessage(evt.Name, evt.Args)
	if err := s.Send(s.ctx, protocol.ChannelPush, msg); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(s.logger, "event relay failed", "ipc.relay_failed",
			logging.String("event", evt.Name),
			logging.String(logging.FieldChannel, protocol.ChannelPush),
			logging.Error(err),
			logging.String(logging.FieldImpact, "window misses a backend update"),
			logging.String(logging.FieldErrorHint, "reload the window to resynchronize"),
		)
	}
}

// serve reads envelopes until the window disconnects or the session ends.
func (s *Session) serve(d *dispatch.Dispatcher) {
	for {
		typ, data, err := s.conn.Read(s.ctx)
		if err != nil {
			s.logDisconnect(err)
			return
		}
		if typ != websocket.MessageText {
			logging.WarnWithContext(s.logger, "dropping binary message", "ipc.binary_message",
				logging.Int("bytes", len(data)),
				logging.String(logging.FieldImpact, "message ignored"),
				logging.String(logging.FieldErrorHint, "send envelopes as text messages"),
			)
			continue
		}
		if err := d.Dispatch(s.ctx, data, s); err != nil {
			s.logDispatchError(err)
		}
	}
}

func (s *Session) logDispatchError(err error) {
	var collab *dispatch.CollaboratorError
	switch {
	case errors.Is(err, dispatch.ErrMalformedEnvelope):
		logging.WarnWithContext(s.logger, "dropping malformed envelope", "ipc.malformed_envelope",
			logging.Error(err),
			logging.String(logging.FieldImpact, "message ignored"),
			logging.String(logging.FieldErrorHint, "check the UI sends a JSON object with a type field"),
		)
	case errors.As(err, &collab):
		logging.ErrorWithContext(s.logger, "command failed", "ipc.command_failed",
			logging.String(logging.FieldCommand, string(collab.Tag)),
			logging.String(logging.FieldRequestID, collab.RequestID),
			logging.String("operation", collab.Op),
			logging.Error(err),
		)
	default:
		logging.ErrorWithContext(s.logger, "dispatch failed", "ipc.dispatch_failed", logging.Error(err))
	}
}

func (s *Session) logDisconnect(err error) {
	status := websocket.CloseStatus(err)
	switch {
	case s.ctx.Err() != nil,
		status == websocket.StatusNormalClosure,
		status == websocket.StatusGoingAway:
		s.logger.Debug("window disconnected")
	case status == websocket.StatusMessageTooBig:
		logging.WarnWithContext(s.logger, "window sent oversized message", "ipc.message_too_big",
			logging.Error(err),
			logging.String(logging.FieldImpact, "window disconnected"),
			logging.String(logging.FieldErrorHint, "raise ui.max_message_bytes if the UI legitimately sends large payloads"),
		)
	default:
		s.logger.Debug("window read ended", logging.Error(err))
	}
}

func (s *Session) close() {
	s.cancel()
	_ = s.conn.Close(websocket.StatusNormalClosure, "")
}
