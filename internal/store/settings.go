package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SetProperty stores value under key and publishes settingUpdated. The key is
// stored verbatim.
func (s *Store) SetProperty(ctx context.Context, key string, value any) error {
	if key == "" {
		return fmt.Errorf("set property: empty key")
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		key, string(encoded), timestamp())
	if err != nil {
		return fmt.Errorf("set property %s: %w", key, err)
	}
	s.publish(EventSettingUpdated, key, value)
	return nil
}

// Property returns the stored value for key and whether it exists.
func (s *Store) Property(ctx context.Context, key string) (any, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value_json FROM settings WHERE key = ?", key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get property %s: %w", key, err)
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return value, true, nil
}

// AllSettings returns every stored setting. The map is never nil.
func (s *Store) AllSettings(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value_json FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode setting %s: %w", key, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return out, nil
}
