package store

import (
	"context"
	"fmt"
	"strings"

	"filterbridge/internal/protocol"
)

// UserRulesText returns the stored user rules verbatim.
func (s *Store) UserRulesText(ctx context.Context) (string, error) {
	var content string
	if err := s.db.QueryRowContext(ctx, "SELECT content FROM user_rules WHERE id = 1").Scan(&content); err != nil {
		return "", fmt.Errorf("read user rules: %w", err)
	}
	return content, nil
}

// UpdateUserRulesText replaces the user rules and publishes
// updateUserFilterRules with the number of active rules.
func (s *Store) UpdateUserRulesText(ctx context.Context, text string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE user_rules SET content = ?, updated_at = ? WHERE id = 1", text, timestamp()); err != nil {
		return fmt.Errorf("update user rules: %w", err)
	}
	s.publish(EventUserRulesUpdated, countRules(text))
	return nil
}

// countRules counts non-blank lines that are not "!" comments.
func countRules(text string) int {
	count := 0
	for _, line := range protocol.SplitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		count++
	}
	return count
}
