// Package notifier is the process-wide publish/subscribe hub for backend
// events.
//
// Collaborators call Hub.Publish with an event name and arguments; every
// active Subscription receives each event, in publish order, with its
// arguments untouched. Each subscription owns an unbounded FIFO drained by its
// own goroutine, so Publish never waits on a slow consumer and never drops an
// event. A subscription is a scoped resource: whoever subscribes must Close it
// when the consumer (a UI window) goes away.
package notifier
