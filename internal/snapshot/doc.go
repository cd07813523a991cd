// Package snapshot assembles the options page initialization payload from
// current backend state. A snapshot is built fresh for every request and
// building one never mutates state.
package snapshot
