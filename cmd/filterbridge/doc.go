// Command filterbridge is the command-line client for the filterbridge
// daemon. It connects to the daemon socket as a scripted UI window, so every
// command travels the same envelope protocol the options page uses.
//
// Output is JSON when --json is given or stdout is not a terminal, and human
// readable otherwise.
package main
