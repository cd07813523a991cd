// Package protocol defines the wire contract between the backend daemon and
// UI windows.
//
// An inbound Envelope is JSON text carrying a "type" Tag, an optional
// "requestId" and tag-specific fields. The Tag set is closed: Tags lists every
// command, and each Tag declares its ReplyKind and, for replying commands, the
// outbound channel its reply travels on. Outbound traffic is a Frame: a
// "return" frame answers a synchronous command, a "response" frame answers an
// asynchronous one, and a "push" frame relays a backend event.
//
// SplitLines and JoinLines convert the multi-line text edited in the UI into
// the ordered lists the whitelist and rule stores expect.
package protocol
