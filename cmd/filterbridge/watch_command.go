package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print backend events relayed to UI windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				// The window is subscribed once the daemon answers a call.
				if err := callInto(c, client, protocol.TagGetWhitelist, nil, nil); err != nil {
					return err
				}
				if ctx.jsonFlag == nil || !*ctx.jsonFlag {
					fmt.Fprintln(cmd.ErrOrStderr(), "Watching for events (Ctrl+C to stop)")
				}
				seen := 0
				for count <= 0 || seen < count {
					frame, err := client.Next(c)
					if err != nil {
						if errors.Is(err, context.Canceled) {
							return nil
						}
						return err
					}
					if frame.Kind != protocol.FramePush {
						continue
					}
					if err := printEvent(cmd, ctx.wantJSON(cmd), frame); err != nil {
						return err
					}
					seen++
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many events (0 watches forever)")
	return cmd
}

func printEvent(cmd *cobra.Command, asJSON bool, frame protocol.Frame) error {
	out := cmd.OutOrStdout()
	if asJSON {
		line, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(line))
		return nil
	}
	var msg protocol.EventMessage
	if err := json.Unmarshal(frame.Payload, &msg); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if len(msg.Args) == 0 {
		return nil
	}
	rest, err := json.Marshal(msg.Args[1:])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%v %s\n", msg.Args[0], rest)
	return nil
}
