// Package config loads, normalizes, and validates filterbridge configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as FILTERBRIDGE_SOCKET.
// The Config type carries everything the daemon and CLI need: the data and
// log directories, the UI socket, transport limits, the environment options
// reported to the UI, and the static anti-banner filter identifiers.
//
// Always obtain settings through this package so downstream code receives
// expanded paths and clear validation errors.
package config
