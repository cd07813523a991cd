package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newWhitelistCommand(ctx *commandContext) *cobra.Command {
	whitelistCmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Manage whitelisted domains",
	}

	whitelistCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print whitelisted domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				var reply protocol.Content
				if err := callInto(c, client, protocol.TagGetWhitelist, nil, &reply); err != nil {
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

	var domains []string
	saveCmd := &cobra.Command{
		Use:   "save [file|-]",
		Short: "Replace whitelisted domains",
		Long:  "Replace whitelisted domains with one domain per line read from a file, stdin, or --domain flags.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			if len(domains) > 0 {
				if len(args) > 0 {
					return fmt.Errorf("use either --domain or a file, not both")
				}
				content = strings.Join(domains, "\n")
			} else {
				source := ""
				if len(args) > 0 {
					source = args[0]
				}
				text, err := readContent(cmd.InOrStdin(), source)
				if err != nil {
					return err
				}
				content = text
			}
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				if err := sendAndWait(c, client, protocol.TagSaveWhitelist, protocol.ContentReply(content)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d domains\n", len(protocol.SplitLines(content)))
				return nil
			})
		},
	}
	saveCmd.Flags().StringArrayVar(&domains, "domain", nil, "Domain to whitelist (repeatable)")
	whitelistCmd.AddCommand(saveCmd)

	whitelistCmd.AddCommand(&cobra.Command{
		Use:       "mode <on|off>",
		Short:     "Change the default whitelist mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true":
				enabled = true
			case "off", "false":
				enabled = false
			default:
				return fmt.Errorf("invalid mode %q (expected on or off)", args[0])
			}
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				payload := map[string]any{"enabled": enabled}
				if err := sendAndWait(c, client, protocol.TagChangeWhitelistMode, payload); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Default whitelist mode %s\n", yesNo(enabled))
				return nil
			})
		},
	})

	return whitelistCmd
}

func printContent(cmd *cobra.Command, text string) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(out)
	}
}
