package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WhiteListDomains returns the whitelist in saved order.
func (s *Store) WhiteListDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT domain FROM whitelist_domains ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("list whitelist: %w", err)
	}
	defer rows.Close()

	domains := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan whitelist domain: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate whitelist: %w", err)
	}
	return domains, nil
}

// UpdateWhiteListDomains replaces the whitelist with domains, verbatim and in
// order, and publishes updateWhitelistFilterRules.
func (s *Store) UpdateWhiteListDomains(ctx context.Context, domains []string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM whitelist_domains"); err != nil {
			return fmt.Errorf("clear whitelist: %w", err)
		}
		for i, d := range domains {
			if _, err := tx.ExecContext(ctx, "INSERT INTO whitelist_domains (position, domain) VALUES (?, ?)", i, d); err != nil {
				return fmt.Errorf("insert whitelist domain %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(EventWhitelistUpdated, len(domains))
	return nil
}

// DefaultWhiteListMode reports whether the whitelist acts as an allow list
// (true) or as an inverted block list (false).
func (s *Store) DefaultWhiteListMode(ctx context.Context) (bool, error) {
	var mode int
	if err := s.db.QueryRowContext(ctx, "SELECT default_mode FROM whitelist_state WHERE id = 1").Scan(&mode); err != nil {
		return false, fmt.Errorf("read whitelist mode: %w", err)
	}
	return mode == 1, nil
}

// ChangeDefaultWhiteListMode sets the whitelist mode and publishes
// defaultWhitelistModeChanged.
func (s *Store) ChangeDefaultWhiteListMode(ctx context.Context, enabled bool) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE whitelist_state SET default_mode = ? WHERE id = 1", boolToInt(enabled)); err != nil {
		return fmt.Errorf("change whitelist mode: %w", err)
	}
	s.publish(EventDefaultWhitelistModeChanged, enabled)
	return nil
}
