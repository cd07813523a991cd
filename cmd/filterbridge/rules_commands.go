package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage user filter rules",
	}

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print user rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				var reply protocol.Content
				if err := callInto(c, client, protocol.TagGetUserRules, nil, &reply); err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, reply)
				}
				printContent(cmd, reply.Text())
				return nil
			})
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "save [file|-]",
		Short: "Replace user rules from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			content, err := readContent(cmd.InOrStdin(), source)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				if err := sendAndWait(c, client, protocol.TagSaveUserRules, protocol.ContentReply(content)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes of user rules\n", len(content))
				return nil
			})
		},
	})

	return rulesCmd
}
