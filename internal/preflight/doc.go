// Package preflight provides readiness checks for the filesystem paths and
// socket filterbridge depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll before binding the socket and refuses to start
//     when a check fails.
//   - The CLI "filterbridge doctor" command prints every result.
package preflight
