// Package daemon coordinates the long-running filterbridge process.
//
// It wires configuration, the SQLite store, the notifier hub, the command
// dispatcher and the IPC server into a single lifecycle with flock-based
// locking to prevent multiple instances. Start brings the socket up, Stop tears
// it down and disconnects every window, and Status summarizes the running
// process for the CLI.
package daemon
