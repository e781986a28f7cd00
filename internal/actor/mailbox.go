// Package actor implements the Actor Runtime (§4.3): a generic mailbox,
// request/response plumbing and the message-interleaved-with-LNS-iteration
// run loop shared by all four actor kinds.
package actor

import (
	"context"
	"time"

	"github.com/ordinator/ordinator/internal/entity"
)

// Result carries a handler's reply alongside any error, delivered on a
// request's one-shot reply channel.
type Result[Res any] struct {
	Value Res
	Err   error
}

// request is an external Actor(request) message (§4.3) bound to a one-shot
// reply channel.
type request[Req any, Res any] struct {
	Value Req
	Reply chan Result[Res]
}

// Message is the sum type a mailbox carries: either an external request or
// a State(state_link) notification (§4.3).
type Message[Req any, Res any] struct {
	Actor *request[Req, Res]
	State *StateLink
}

// Mailbox is the single-consumer, multi-producer channel an actor's owning
// task drains messages from (§5: "multi-producer single-consumer").
// Senders never block: a full mailbox returns ErrMailboxFull immediately so
// the producer can retry or drop the message with a warning.
type Mailbox[Req any, Res any] struct {
	ch chan Message[Req, Res]
}

// NewMailbox allocates a bounded mailbox.
func NewMailbox[Req any, Res any](capacity int) *Mailbox[Req, Res] {
	return &Mailbox[Req, Res]{ch: make(chan Message[Req, Res], capacity)}
}

// SendState enqueues a state-link notification, non-blocking.
func (m *Mailbox[Req, Res]) SendState(link StateLink) error {
	select {
	case m.ch <- Message[Req, Res]{State: &link}:
		return nil
	default:
		return entity.ErrMailboxFull
	}
}

// Request sends req and blocks until the actor replies, ctx is cancelled, or
// timeout elapses — whichever comes first. A closed mailbox or a full
// mailbox both surface as an error without touching any actor state (§5,
// §7 "Request timeout" / "Mailbox full / closed").
func (m *Mailbox[Req, Res]) Request(ctx context.Context, req Req, timeout time.Duration) (Res, error) {
	var zero Res
	reply := make(chan Result[Res], 1)

	sendErr := func() (err error) {
		defer func() {
			if recover() != nil {
				err = entity.ErrMailboxClosed
			}
		}()
		select {
		case m.ch <- Message[Req, Res]{Actor: &request[Req, Res]{Value: req, Reply: reply}}:
			return nil
		default:
			return entity.ErrMailboxFull
		}
	}()
	if sendErr != nil {
		return zero, sendErr
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-reply:
		return res.Value, res.Err
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		return zero, entity.ErrRequestTimeout
	}
}

// Close closes the mailbox; the owning actor observes this at its next recv
// and exits cleanly (§5 "Cancellation").
func (m *Mailbox[Req, Res]) Close() {
	close(m.ch)
}

// Len reports the number of messages currently queued, used by the
// orchestrator's metrics poller to publish mailbox depth.
func (m *Mailbox[Req, Res]) Len() int {
	return len(m.ch)
}
