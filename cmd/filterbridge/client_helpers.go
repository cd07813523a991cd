package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

// callInto performs a replying command and decodes its payload into v.
func callInto(ctx context.Context, client *ipc.Client, tag protocol.Tag, payload any, v any) error {
	frame, err := client.Call(ctx, tag, payload)
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(frame.Payload, v); err != nil {
		return fmt.Errorf("decode %s reply: %w", tag, err)
	}
	return nil
}

// sendAndWait sends a fire-and-forget command and waits until the daemon has
// handled it. Commands on one window are handled in order, so the reply to a
// later call proves the earlier send was processed.
func sendAndWait(ctx context.Context, client *ipc.Client, tag protocol.Tag, payload any) error {
	if err := client.Send(ctx, tag, "", payload); err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	return callInto(ctx, client, protocol.TagGetWhitelist, nil, nil)
}

// readContent returns text from the named file, or stdin for "" and "-".
func readContent(stdin io.Reader, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
