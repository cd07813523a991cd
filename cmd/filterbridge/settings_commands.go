package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change user settings",
	}

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored user settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				var snap struct {
					UserSettings map[string]any `json:"userSettings"`
				}
				if err := callInto(c, client, protocol.TagInitializeOptions, nil, &snap); err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, snap.UserSettings)
				}
				keys := slices.Sorted(maps.Keys(snap.UserSettings))
				rows := make([][]string, 0, len(keys))
				for _, key := range keys {
					value, err := json.Marshal(snap.UserSettings[key])
					if err != nil {
						return fmt.Errorf("encode setting %s: %w", key, err)
					}
					rows = append(rows, []string{key, string(value)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, rows, nil))
				return nil
			})
		},
	})

	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a user setting",
		Long:  "Change a user setting. The value is parsed as JSON when possible, otherwise it is stored as a string.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := parseSettingValue(args[1])
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				payload := map[string]any{"key": key, "value": value}
				if err := sendAndWait(c, client, protocol.TagChangeSetting, payload); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)
				return nil
			})
		},
	})

	return settingsCmd
}

func parseSettingValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
