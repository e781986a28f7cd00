package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ordinator/ordinator/internal/entity"
)

type echoHandler struct {
	iterations int
	states     []StateLink
}

func (h *echoHandler) HandleRequest(_ context.Context, req string) (string, error) {
	return "echo:" + req, nil
}

func (h *echoHandler) HandleState(_ context.Context, link StateLink) error {
	h.states = append(h.states, link)
	return nil
}

func (h *echoHandler) RunIteration(_ context.Context) error {
	h.iterations++
	return nil
}

func TestMailbox_RequestReplyRoundTrip(t *testing.T) {
	mb := NewMailbox[string, string](4)
	h := &echoHandler{}
	errCh := make(chan error, 1)
	log := zaptest.NewLogger(t).Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Run(ctx, mb, h, errCh, time.Millisecond, log)

	res, err := mb.Request(context.Background(), "ping", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", res)
}

func TestMailbox_SendStateIsFoldedIn(t *testing.T) {
	mb := NewMailbox[string, string](4)
	h := &echoHandler{}
	errCh := make(chan error, 1)
	log := zaptest.NewLogger(t).Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Run(ctx, mb, h, errCh, time.Millisecond, log)

	require.NoError(t, mb.SendState(StateLink{Kind: WorkerEnvironment}))

	// Give the run loop a chance to drain the state message before asserting.
	_, err := mb.Request(context.Background(), "sync", time.Second)
	require.NoError(t, err)

	require.Len(t, h.states, 1)
	assert.Equal(t, WorkerEnvironment, h.states[0].Kind)
}

func TestMailbox_FullMailboxReturnsError(t *testing.T) {
	mb := NewMailbox[string, string](0)
	_, err := mb.Request(context.Background(), "x", time.Millisecond)
	assert.ErrorIs(t, err, entity.ErrMailboxFull)
}

func TestMailbox_RequestTimeout(t *testing.T) {
	mb := NewMailbox[string, string](4)
	h := &blockingHandler{release: make(chan struct{})}
	errCh := make(chan error, 1)
	log := zaptest.NewLogger(t).Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Run(ctx, mb, h, errCh, time.Millisecond, log)

	_, err := mb.Request(context.Background(), "slow", 5*time.Millisecond)
	require.Error(t, err)
	close(h.release)
}

type blockingHandler struct {
	release chan struct{}
}

func (h *blockingHandler) HandleRequest(_ context.Context, req string) (string, error) {
	<-h.release
	return req, nil
}

func (h *blockingHandler) HandleState(_ context.Context, _ StateLink) error { return nil }
func (h *blockingHandler) RunIteration(_ context.Context) error            { return nil }
