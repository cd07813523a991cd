package protocol

import (
	"encoding/json"
	"errors"
)

// ErrMissingField reports a payload without a field its tag requires.
var ErrMissingField = errors.New("missing required field")

// ChangeSetting is the payload of TagChangeSetting.
type ChangeSetting struct {
	Key   *string         `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Validate reports a missing key or value.
func (p ChangeSetting) Validate() error {
	if p.Key == nil || *p.Key == "" {
		return fieldError("key")
	}
	if len(p.Value) == 0 {
		return fieldError("value")
	}
	return nil
}

// DecodedValue returns the setting value as a plain Go value.
func (p ChangeSetting) DecodedValue() (any, error) {
	var v any
	if err := json.Unmarshal(p.Value, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// FilterRef is the payload of TagEnableFilter and TagDisableFilter.
type FilterRef struct {
	FilterID *int `json:"filterId"`
}

// Validate reports a missing filterId.
func (p FilterRef) Validate() error {
	if p.FilterID == nil {
		return fieldError("filterId")
	}
	return nil
}

// GroupRef is the payload of the filter group tags.
type GroupRef struct {
	GroupID *int `json:"groupId"`
}

// Validate reports a missing groupId.
func (p GroupRef) Validate() error {
	if p.GroupID == nil {
		return fieldError("groupId")
	}
	return nil
}

// Content is the payload of TagSaveWhitelist and TagSaveUserRules, and the
// reply body of TagGetWhitelist and TagGetUserRules.
type Content struct {
	Content *string `json:"content"`
}

// Validate reports a missing content field.
func (p Content) Validate() error {
	if p.Content == nil {
		return fieldError("content")
	}
	return nil
}

// Text returns the content or "" when absent.
func (p Content) Text() string {
	if p.Content == nil {
		return ""
	}
	return *p.Content
}

// ContentReply builds a reply body carrying text.
func ContentReply(text string) Content {
	return Content{Content: &text}
}

// WhitelistMode is the payload of TagChangeWhitelistMode.
type WhitelistMode struct {
	Enabled *bool `json:"enabled"`
}

// Validate reports a missing enabled flag.
func (p WhitelistMode) Validate() error {
	if p.Enabled == nil {
		return fieldError("enabled")
	}
	return nil
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string { return "missing required field " + e.field }

func (e *missingFieldError) Unwrap() error { return ErrMissingField }

func fieldError(field string) error {
	return &missingFieldError{field: field}
}
