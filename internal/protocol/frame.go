package protocol

import "encoding/json"

// FrameKind distinguishes outbound frames.
type FrameKind string

const (
	// FrameReturn answers a synchronous command.
	FrameReturn FrameKind = "return"
	// FrameResponse answers an asynchronous command.
	FrameResponse FrameKind = "response"
	// FramePush relays a backend event.
	FramePush FrameKind = "push"
)

// Frame is one outbound message delivered to a UI window.
type Frame struct {
	Kind      FrameKind       `json:"kind"`
	Channel   string          `json:"channel"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Reply is a command result on its way to the UI. Payload is encoded when the
// frame is written.
type Reply struct {
	Tag       Tag
	Channel   string
	RequestID string
	Payload   any
	Err       error
}

// Frame encodes r as a frame of the given kind.
func (r Reply) Frame(kind FrameKind) (Frame, error) {
	frame := Frame{Kind: kind, Channel: r.Channel, RequestID: r.RequestID}
	if r.Err != nil {
		frame.Error = r.Err.Error()
	}
	if r.Payload != nil {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return Frame{}, err
		}
		frame.Payload = data
	}
	return frame, nil
}

// EventMessageType is the "type" of every relayed backend event.
const EventMessageType = "message"

// EventMessage is the push body relaying one backend event. Args holds the
// event name followed by the event arguments, unchanged.
type EventMessage struct {
	Type string `json:"type"`
	Args []any  `json:"args"`
}

// NewEventMessage wraps an event name and its arguments.
func NewEventMessage(name string, args []any) EventMessage {
	all := make([]any, 0, len(args)+1)
	all = append(all, name)
	all = append(all, args...)
	return EventMessage{Type: EventMessageType, Args: all}
}
