package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateUI(); err != nil {
		return err
	}
	if err := c.validateEnvironment(); err != nil {
		return err
	}
	if err := c.validateFilters(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateUI() error {
	if c.UI.MaxMessageBytes <= 0 {
		return errors.New("ui.max_message_bytes must be positive")
	}
	if c.UI.WriteTimeoutSeconds <= 0 {
		return errors.New("ui.write_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEnvironment() error {
	if _, err := language.Parse(c.Environment.Locale); err != nil {
		return fmt.Errorf("environment.locale: unsupported value %q: %w", c.Environment.Locale, err)
	}
	return nil
}

func (c *Config) validateFilters() error {
	seen := make(map[int]string, len(c.Filters.AntiBannerIDs))
	for name, id := range c.Filters.AntiBannerIDs {
		if strings.TrimSpace(name) == "" {
			return errors.New("filters.anti_banner_ids: empty filter name")
		}
		if id <= 0 {
			return fmt.Errorf("filters.anti_banner_ids.%s: id must be positive, got %d", name, id)
		}
		if other, ok := seen[id]; ok {
			return fmt.Errorf("filters.anti_banner_ids: id %d used by both %s and %s", id, other, name)
		}
		seen[id] = name
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
