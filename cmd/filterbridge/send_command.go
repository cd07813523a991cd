package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "send <envelope-json>",
		Short: "Send a raw envelope and print its reply",
		Long: "Send a raw envelope as a UI window would. Commands that reply are correlated by requestId " +
			"and the reply frame is printed; other envelopes are written as-is.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := []byte(args[0])
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				tag, payload, ok := replyingEnvelope(raw)
				if !ok {
					if err := client.SendRaw(c, raw); err != nil {
						return err
					}
					// A reply to a later call shows the envelope was consumed.
					if err := callInto(c, client, protocol.TagGetWhitelist, nil, nil); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Sent")
					return nil
				}
				callCtx, cancel := context.WithTimeout(c, wait)
				defer cancel()
				frame, err := client.Call(callCtx, tag, payload)
				if err != nil && !errors.Is(err, ipc.ErrRemote) {
					return err
				}
				if werr := writeJSON(cmd, frame); werr != nil {
					return werr
				}
				return err
			})
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "How long to wait for a reply")
	return cmd
}

// replyingEnvelope reports whether raw is a well formed envelope for a command
// that replies, returning its tag and remaining fields.
func replyingEnvelope(raw []byte) (protocol.Tag, map[string]any, bool) {
	env, err := protocol.ParseEnvelope(raw)
	if err != nil || env.Type.Reply() == protocol.ReplyNone {
		return "", nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil, false
	}
	delete(fields, "type")
	delete(fields, "requestId")
	return env.Type, fields, true
}
