// Package catalog describes filter groups and filter lists, and ships the
// built-in catalog the store seeds itself from.
//
// The built-in catalog is an embedded JSONC document so entries can carry
// comments. BuildMetadata shapes groups and filters into the category view
// the options page renders.
package catalog
