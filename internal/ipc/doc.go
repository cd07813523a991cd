// Package ipc carries UI windows to the daemon over a Unix domain socket and
// ships the matching client used by the CLI.
//
// Each window is a WebSocket connection on /ui. The server gives every
// connection a Session that owns one notifier subscription for its lifetime,
// feeds inbound envelopes to the dispatcher one at a time, and writes reply
// and event frames back. GET /status reports daemon status as JSON.
package ipc
