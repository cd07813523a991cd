package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the options page initialization snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				var snap json.RawMessage
				if err := callInto(c, client, protocol.TagInitializeOptions, nil, &snap); err != nil {
					return err
				}
				return writeJSON(cmd, snap)
			})
		},
	}
}
