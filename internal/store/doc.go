// Package store is the SQLite-backed implementation of the backend
// subsystems the UI bridge talks to: user settings, filter state and the
// filter catalog, the whitelist, and user rules.
//
// Open applies the embedded migrations and seeds the built-in filter catalog.
// Every successful mutation publishes a domain event (settingUpdated,
// filterEnabledDisabled, ...) to the configured notifier.Publisher after the
// change is committed, which is how open UI windows learn about changes made
// elsewhere.
package store
