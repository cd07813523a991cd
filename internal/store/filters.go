package store

import (
	"context"
	"database/sql"
	"fmt"

	"filterbridge/internal/catalog"
)

const filterColumns = `filter_id, group_id, name, description, homepage, version, display_number, rules_count, enabled`

// SeedCatalog inserts or refreshes catalog metadata. Enabled state of
// existing filters is left untouched; new filters start enabled when the
// catalog marks them enabled by default.
func (s *Store) SeedCatalog(ctx context.Context, cat *catalog.Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, g := range cat.Groups {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO filter_groups (group_id, name, display_number) VALUES (?, ?, ?)
ON CONFLICT(group_id) DO UPDATE SET name = excluded.name, display_number = excluded.display_number`,
				g.GroupID, g.GroupName, g.DisplayNumber); err != nil {
				return fmt.Errorf("seed group %d: %w", g.GroupID, err)
			}
		}
		for _, f := range cat.Filters {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO filters (filter_id, group_id, name, description, homepage, version, display_number, rules_count, installed, enabled)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(filter_id) DO UPDATE SET
    group_id = excluded.group_id,
    name = excluded.name,
    description = excluded.description,
    homepage = excluded.homepage,
    version = excluded.version,
    display_number = excluded.display_number,
    rules_count = excluded.rules_count`,
				f.FilterID, f.GroupID, f.Name, f.Description, f.Homepage, f.Version,
				f.DisplayNumber, f.RulesCount, boolToInt(f.EnabledByDefault), boolToInt(f.EnabledByDefault)); err != nil {
				return fmt.Errorf("seed filter %d: %w", f.FilterID, err)
			}
		}
		return nil
	})
}

// AddAndEnableFilters installs and enables the given filters.
func (s *Store) AddAndEnableFilters(ctx context.Context, ids []int) error {
	if err := s.setFiltersEnabled(ctx, ids, true); err != nil {
		return err
	}
	s.publish(EventFilterEnabledDisabled, append([]int(nil), ids...), true)
	return nil
}

// DisableFilters disables the given filters. They stay installed.
func (s *Store) DisableFilters(ctx context.Context, ids []int) error {
	if err := s.setFiltersEnabled(ctx, ids, false); err != nil {
		return err
	}
	s.publish(EventFilterEnabledDisabled, append([]int(nil), ids...), false)
	return nil
}

func (s *Store) setFiltersEnabled(ctx context.Context, ids []int, enabled bool) error {
	if len(ids) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := timestamp()
		for _, id := range ids {
			var res sql.Result
			var err error
			if enabled {
				res, err = tx.ExecContext(ctx,
					"UPDATE filters SET enabled = 1, installed = 1, updated_at = ? WHERE filter_id = ?", now, id)
			} else {
				res, err = tx.ExecContext(ctx,
					"UPDATE filters SET enabled = 0, updated_at = ? WHERE filter_id = ?", now, id)
			}
			if err != nil {
				return fmt.Errorf("update filter %d: %w", id, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("filter %d: %w", id, ErrUnknownFilter)
			}
		}
		return nil
	})
}

// AddAndEnableFiltersByGroupID installs and enables every filter in the group.
func (s *Store) AddAndEnableFiltersByGroupID(ctx context.Context, groupID int) error {
	if err := s.setGroupEnabled(ctx, groupID, true); err != nil {
		return err
	}
	s.publish(EventFilterGroupEnabledDisabled, groupID, true)
	return nil
}

// DisableAntiBannerFiltersByGroupID disables every filter in the group.
func (s *Store) DisableAntiBannerFiltersByGroupID(ctx context.Context, groupID int) error {
	if err := s.setGroupEnabled(ctx, groupID, false); err != nil {
		return err
	}
	s.publish(EventFilterGroupEnabledDisabled, groupID, false)
	return nil
}

func (s *Store) setGroupEnabled(ctx context.Context, groupID int, enabled bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM filter_groups WHERE group_id = ?", groupID).Scan(&count); err != nil {
			return fmt.Errorf("lookup group %d: %w", groupID, err)
		}
		if count == 0 {
			return fmt.Errorf("group %d: %w", groupID, ErrUnknownGroup)
		}
		query := "UPDATE filters SET enabled = 0, updated_at = ? WHERE group_id = ?"
		if enabled {
			query = "UPDATE filters SET enabled = 1, installed = 1, updated_at = ? WHERE group_id = ?"
		}
		if _, err := tx.ExecContext(ctx, query, timestamp(), groupID); err != nil {
			return fmt.Errorf("update group %d: %w", groupID, err)
		}
		return nil
	})
}

// IsFilterEnabled reports whether the filter is enabled. Unknown ids report
// false.
func (s *Store) IsFilterEnabled(ctx context.Context, id int) (bool, error) {
	var enabled int
	err := s.db.QueryRowContext(ctx, "SELECT enabled FROM filters WHERE filter_id = ?", id).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup filter %d: %w", id, err)
	}
	return enabled == 1, nil
}

// Filters lists every known filter with its enabled state.
func (s *Store) Filters(ctx context.Context) ([]catalog.Filter, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+filterColumns+" FROM filters ORDER BY display_number, filter_id")
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	defer rows.Close()

	filters := []catalog.Filter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filters: %w", err)
	}
	return filters, nil
}

// Groups lists every filter group.
func (s *Store) Groups(ctx context.Context) ([]catalog.Group, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT group_id, name, display_number FROM filter_groups ORDER BY display_number, group_id")
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := []catalog.Group{}
	for rows.Next() {
		var g catalog.Group
		if err := rows.Scan(&g.GroupID, &g.GroupName, &g.DisplayNumber); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// FiltersMetadata returns filters grouped by category.
func (s *Store) FiltersMetadata(ctx context.Context) (catalog.Metadata, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return catalog.Metadata{}, err
	}
	filters, err := s.Filters(ctx)
	if err != nil {
		return catalog.Metadata{}, err
	}
	return catalog.BuildMetadata(groups, filters), nil
}

// RequestFilterInfo sums the rule counts of enabled filters and the active
// user rules.
func (s *Store) RequestFilterInfo(ctx context.Context) (catalog.RequestFilterInfo, error) {
	var total sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT SUM(rules_count) FROM filters WHERE enabled = 1").Scan(&total); err != nil {
		return catalog.RequestFilterInfo{}, fmt.Errorf("sum rules: %w", err)
	}
	text, err := s.UserRulesText(ctx)
	if err != nil {
		return catalog.RequestFilterInfo{}, err
	}
	return catalog.RequestFilterInfo{RulesCount: int(total.Int64) + countRules(text)}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilter(row rowScanner) (catalog.Filter, error) {
	var f catalog.Filter
	var enabled int
	if err := row.Scan(&f.FilterID, &f.GroupID, &f.Name, &f.Description, &f.Homepage,
		&f.Version, &f.DisplayNumber, &f.RulesCount, &enabled); err != nil {
		return catalog.Filter{}, fmt.Errorf("scan filter: %w", err)
	}
	f.Enabled = enabled == 1
	return f, nil
}
