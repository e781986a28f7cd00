package actor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handler is what an actor kind (strategic, tactical, supervisor,
// operational) implements to plug into the generic run loop.
type Handler[Req any, Res any] interface {
	// HandleRequest answers one external Actor(request) (§4.3).
	HandleRequest(ctx context.Context, req Req) (Res, error)
	// HandleState folds an external-change notification into the actor's
	// cached parameters (§4.1, §4.5–§4.8).
	HandleState(ctx context.Context, link StateLink) error
	// RunIteration executes exactly one LNS iteration (§4.4).
	RunIteration(ctx context.Context) error
}

// Run drains mailbox messages and interleaves one LNS iteration between
// message handlings (§4.3 "actors are expected to interleave one LNS
// iteration between message handlings", §5 suspension points). It returns
// when ctx is cancelled or the mailbox is closed; a fatal error from
// HandleState or RunIteration is sent on errCh and also ends the loop,
// mirroring §4.3's "fatal errors ... sent on a shared error channel to the
// orchestrator which terminates the run".
func Run[Req any, Res any](ctx context.Context, mailbox *Mailbox[Req, Res], h Handler[Req, Res], errCh chan<- error, pace time.Duration, log *zap.SugaredLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-mailbox.ch:
			if !ok {
				return
			}
			if !dispatch(ctx, msg, h, errCh, log) {
				return
			}
			continue
		default:
		}

		// No pending message: interleave one LNS iteration, then yield.
		if err := h.RunIteration(ctx); err != nil {
			log.Errorw("lns iteration failed", "error", err)
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(pace):
		case msg, ok := <-mailbox.ch:
			if !ok {
				return
			}
			if !dispatch(ctx, msg, h, errCh, log) {
				return
			}
		}
	}
}

// dispatch handles a single mailbox message, returning false if the actor
// must stop (a fatal state-link error).
func dispatch[Req any, Res any](ctx context.Context, msg Message[Req, Res], h Handler[Req, Res], errCh chan<- error, log *zap.SugaredLogger) bool {
	switch {
	case msg.Actor != nil:
		value, err := h.HandleRequest(ctx, msg.Actor.Value)
		msg.Actor.Reply <- Result[Res]{Value: value, Err: err}
		return true
	case msg.State != nil:
		if err := h.HandleState(ctx, *msg.State); err != nil {
			log.Errorw("state-link handling failed", "error", err)
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return false
		}
		return true
	default:
		return true
	}
}
