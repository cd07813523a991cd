// Package dispatch routes inbound UI envelopes to backend collaborators.
//
// Every protocol tag maps to exactly one handler, and the handler's Go type
// fixes how the command replies: FireAndForget sends nothing, SyncReturn
// answers on the tag's response channel before Dispatch returns, and
// AsyncPush answers later from its own goroutine. The table is checked
// against protocol.Tags when a Dispatcher is constructed.
package dispatch
