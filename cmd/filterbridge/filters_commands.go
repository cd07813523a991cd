package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"filterbridge/internal/catalog"
	"filterbridge/internal/ipc"
	"filterbridge/internal/protocol"
)

func newFiltersCommand(ctx *commandContext) *cobra.Command {
	filtersCmd := &cobra.Command{
		Use:   "filters",
		Short: "List and toggle filters",
	}

	filtersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List filters by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				meta, err := fetchMetadata(c, client)
				if err != nil {
					return err
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, meta)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFilters(meta))
				return nil
			})
		},
	})

	filtersCmd.AddCommand(newFilterToggleCommand(ctx, "enable", "Enable filters by id", protocol.TagEnableFilter, true))
	filtersCmd.AddCommand(newFilterToggleCommand(ctx, "disable", "Disable filters by id", protocol.TagDisableFilter, false))
	filtersCmd.AddCommand(newGroupToggleCommand(ctx, "enable-group", "Enable every filter in a group", protocol.TagEnableFilterGroup, true))
	filtersCmd.AddCommand(newGroupToggleCommand(ctx, "disable-group", "Disable every filter in a group", protocol.TagDisableFilterGroup, false))

	return filtersCmd
}

func newFilterToggleCommand(ctx *commandContext, use, short string, tag protocol.Tag, enable bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				for _, id := range ids {
					if err := client.Send(c, tag, "", map[string]any{"filterId": id}); err != nil {
						return fmt.Errorf("%s: %w", tag, err)
					}
				}
				meta, err := fetchMetadata(c, client)
				if err != nil {
					return err
				}
				byID := make(map[int]catalog.Filter, len(meta.Filters))
				for _, f := range meta.Filters {
					byID[f.FilterID] = f
				}
				changed := make([]catalog.Filter, 0, len(ids))
				for _, id := range ids {
					f, ok := byID[id]
					if !ok {
						return fmt.Errorf("filter %d is not in the catalog", id)
					}
					if f.Enabled != enable {
						return fmt.Errorf("filter %d was not %sd; check the daemon log", id, use)
					}
					changed = append(changed, f)
				}
				if ctx.wantJSON(cmd) {
					return writeJSON(cmd, changed)
				}
				for _, f := range changed {
					fmt.Fprintf(cmd.OutOrStdout(), "Filter %d (%s) %sd\n", f.FilterID, f.Name, use)
				}
				return nil
			})
		},
	}
}

func newGroupToggleCommand(ctx *commandContext, use, short string, tag protocol.Tag, enable bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			groupID := ids[0]
			return ctx.withClient(cmd, func(c context.Context, client *ipc.Client) error {
				if err := client.Send(c, tag, "", map[string]any{"groupId": groupID}); err != nil {
					return fmt.Errorf("%s: %w", tag, err)
				}
				meta, err := fetchMetadata(c, client)
				if err != nil {
					return err
				}
				for _, category := range meta.Categories {
					if category.GroupID != groupID {
						continue
					}
					for _, f := range category.Filters {
						if f.Enabled != enable {
							return fmt.Errorf("group %d was not %sd; check the daemon log", groupID, use[:len(use)-len("-group")])
						}
					}
					if ctx.wantJSON(cmd) {
						return writeJSON(cmd, category)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Group %d (%s): %d filters updated\n", groupID, category.GroupName, len(category.Filters))
					return nil
				}
				return fmt.Errorf("group %d is not in the catalog", groupID)
			})
		},
	}
}

func fetchMetadata(ctx context.Context, client *ipc.Client) (catalog.Metadata, error) {
	var meta catalog.Metadata
	err := callInto(ctx, client, protocol.TagGetFiltersMetadata, nil, &meta)
	return meta, err
}

func renderFilters(meta catalog.Metadata) string {
	title := cases.Title(language.Und)
	var rows [][]string
	for _, category := range meta.Categories {
		for _, f := range category.Filters {
			rows = append(rows, []string{
				title.String(category.GroupName),
				strconv.Itoa(f.FilterID),
				f.Name,
				strconv.Itoa(f.RulesCount),
				yesNo(f.Enabled),
			})
		}
	}
	return renderTable(
		[]string{"Group", "ID", "Name", "Rules", "Enabled"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft},
	)
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
