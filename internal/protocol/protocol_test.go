package protocol_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"testing"

	"filterbridge/internal/protocol"
)

func TestTagsAreClosedAndConsistent(t *testing.T) {
	tags := protocol.Tags()
	if len(tags) != 12 {
		t.Fatalf("expected 12 tags, got %d", len(tags))
	}

	seen := map[protocol.Tag]bool{}
	for _, tag := range tags {
		if seen[tag] {
			t.Fatalf("duplicate tag %s", tag)
		}
		seen[tag] = true
		if !tag.Known() {
			t.Fatalf("tag %s should be known", tag)
		}
		if tag.Reply() == protocol.ReplyNone && tag.ResponseChannel() != "" {
			t.Fatalf("fire-and-forget tag %s has channel %q", tag, tag.ResponseChannel())
		}
		if tag.Reply() != protocol.ReplyNone && tag.ResponseChannel() == "" {
			t.Fatalf("replying tag %s has no channel", tag)
		}
	}

	if protocol.Tag("openSettingsInNewTab").Known() {
		t.Fatal("unexpected known tag openSettingsInNewTab")
	}
	if got := protocol.TagGetUserRules.Reply(); got != protocol.ReplyAsync {
		t.Fatalf("getUserRules replies %s", got)
	}
	if got := protocol.TagGetWhitelist.Reply(); got != protocol.ReplySync {
		t.Fatalf("getWhiteListDomains replies %s", got)
	}
	if got := protocol.TagInitializeOptions.Reply(); got != protocol.ReplySync {
		t.Fatalf("initializeOptionsPage replies %s", got)
	}
}

func TestParseEnvelope(t *testing.T) {
	env, err := protocol.ParseEnvelope([]byte(`{"type":"addAndEnableFilter","filterId":7,"requestId":" r1 "}`))
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	if env.Type != protocol.TagEnableFilter || env.RequestID != "r1" {
		t.Fatalf("unexpected envelope %+v", env)
	}

	var ref protocol.FilterRef
	if err := env.Decode(&ref); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if err := ref.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if *ref.FilterID != 7 {
		t.Fatalf("unexpected filter id %d", *ref.FilterID)
	}
}

func TestParseEnvelopeRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":       "   ",
		"not json":    "{type:",
		"no type":     `{"filterId":7}`,
		"blank type":  `{"type":""}`,
		"array":       `["initializeOptionsPage"]`,
		"number type": `{"type":5}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := protocol.ParseEnvelope([]byte(input)); err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}
	if _, err := protocol.ParseEnvelope([]byte(`{"key":"k"}`)); !errors.Is(err, protocol.ErrMissingType) {
		t.Fatalf("expected ErrMissingType, got %v", err)
	}
}

func TestPayloadValidation(t *testing.T) {
	env, err := protocol.ParseEnvelope([]byte(`{"type":"changeUserSetting","value":true}`))
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	var change protocol.ChangeSetting
	if err := env.Decode(&change); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if err := change.Validate(); !errors.Is(err, protocol.ErrMissingField) {
		t.Fatalf("expected missing key error, got %v", err)
	}

	env, err = protocol.ParseEnvelope([]byte(`{"type":"changeUserSetting","key":"k","value":{"a":[1,2]}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	change = protocol.ChangeSetting{}
	if err := env.Decode(&change); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if err := change.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	value, err := change.DecodedValue()
	if err != nil {
		t.Fatalf("DecodedValue returned error: %v", err)
	}
	if want := map[string]any{"a": []any{float64(1), float64(2)}}; !reflect.DeepEqual(value, want) {
		t.Fatalf("unexpected value %#v", value)
	}

	for name, err := range map[string]error{
		"whitelist mode": protocol.WhitelistMode{}.Validate(),
		"content":        protocol.Content{}.Validate(),
		"group":          protocol.GroupRef{}.Validate(),
	} {
		if !errors.Is(err, protocol.ErrMissingField) {
			t.Fatalf("%s: expected ErrMissingField, got %v", name, err)
		}
	}
}

func TestNewEnvelopeMergesPayload(t *testing.T) {
	data, err := protocol.NewEnvelope(protocol.TagSaveUserRules, "abc", protocol.ContentReply("||ads.example^"))
	if err != nil {
		t.Fatalf("NewEnvelope returned error: %v", err)
	}

	env, err := protocol.ParseEnvelope(data)
	if err != nil {
		t.Fatalf("ParseEnvelope returned error: %v", err)
	}
	if env.Type != protocol.TagSaveUserRules || env.RequestID != "abc" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	var content protocol.Content
	if err := env.Decode(&content); err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if content.Text() != "||ads.example^" {
		t.Fatalf("unexpected content %q", content.Text())
	}

	if _, err := protocol.NewEnvelope(protocol.TagSaveUserRules, "", "not an object"); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestSplitLinesPreservesEmptyEntries(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a.com\r\nb.com\r\n\r\nc.com", []string{"a.com", "b.com", "", "c.com"}},
		{"a.com\nb.com\n", []string{"a.com", "b.com", ""}},
		{"a\rb\nc", []string{"a", "b", "c"}},
		{"", []string{""}},
	}
	for _, tc := range cases {
		if got := protocol.SplitLines(tc.in); !slices.Equal(got, tc.want) {
			t.Fatalf("SplitLines(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	lists := [][]string{
		{"a.com"},
		{"a.com", "b.com", "", "c.com"},
		{"", "x.org", ""},
	}
	for _, list := range lists {
		if got := protocol.SplitLines(protocol.JoinLines(list)); !slices.Equal(got, list) {
			t.Fatalf("round trip of %q gave %q", list, got)
		}
	}
	if got := protocol.JoinLines([]string{"a", "b"}); got != "a\r\nb" {
		t.Fatalf("JoinLines = %q", got)
	}
}

func TestEventMessageKeepsArgumentsInOrder(t *testing.T) {
	msg := protocol.NewEventMessage("filterEnabledDisabled", []any{[]int{2, 3}, true, nil})
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if want := `{"type":"message","args":["filterEnabledDisabled",[2,3],true,null]}`; string(data) != want {
		t.Fatalf("unexpected event JSON %s", data)
	}
}

func TestReplyFrame(t *testing.T) {
	frame, err := protocol.Reply{
		Channel:   protocol.ChannelUserRulesResult,
		RequestID: "r9",
		Payload:   protocol.ContentReply("rule"),
	}.Frame(protocol.FrameResponse)
	if err != nil {
		t.Fatalf("Frame returned error: %v", err)
	}
	if frame.Kind != protocol.FrameResponse || frame.RequestID != "r9" {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if string(frame.Payload) != `{"content":"rule"}` {
		t.Fatalf("unexpected payload %s", frame.Payload)
	}

	frame, err = protocol.Reply{Channel: "c", Err: errors.New("store offline")}.Frame(protocol.FrameReturn)
	if err != nil {
		t.Fatalf("Frame returned error: %v", err)
	}
	if frame.Error != "store offline" || frame.Payload != nil {
		t.Fatalf("unexpected error frame %+v", frame)
	}
}
