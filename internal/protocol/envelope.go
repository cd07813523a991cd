package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingType reports an envelope without a "type" field.
var ErrMissingType = errors.New("envelope has no type")

// Envelope is a parsed inbound message. The tag-specific fields stay raw until
// Decode is called with the matching payload type.
type Envelope struct {
	Type      Tag
	RequestID string

	raw json.RawMessage
}

type envelopeHeader struct {
	Type      *string `json:"type"`
	RequestID string  `json:"requestId,omitempty"`
}

// ParseEnvelope parses JSON envelope text. The returned error describes why
// the text is not a usable envelope.
func ParseEnvelope(data []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty envelope")
	}
	var header envelopeHeader
	if err := json.Unmarshal(trimmed, &header); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if header.Type == nil || strings.TrimSpace(*header.Type) == "" {
		return nil, ErrMissingType
	}
	return &Envelope{
		Type:      Tag(*header.Type),
		RequestID: strings.TrimSpace(header.RequestID),
		raw:       append(json.RawMessage(nil), trimmed...),
	}, nil
}

// NewEnvelope builds the JSON text for tag with the given payload fields
// merged in. payload may be nil or any value that encodes as a JSON object.
func NewEnvelope(tag Tag, requestID string, payload any) ([]byte, error) {
	fields := map[string]any{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("payload must encode as an object: %w", err)
		}
	}
	fields["type"] = string(tag)
	if requestID != "" {
		fields["requestId"] = requestID
	}
	return json.Marshal(fields)
}

// Decode unmarshals the envelope's fields into v.
func (e *Envelope) Decode(v any) error {
	if e == nil || len(e.raw) == 0 {
		return errors.New("envelope has no body")
	}
	if err := json.Unmarshal(e.raw, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Raw returns the original envelope text.
func (e *Envelope) Raw() []byte {
	if e == nil {
		return nil
	}
	return e.raw
}
