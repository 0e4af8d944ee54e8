package uci

import (
	"context"
	stdErrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess_uci/internal/domain"
	"chess_uci/internal/errors"
)

func TestReplyFor(t *testing.T) {
	cases := map[string]domain.Reply{
		"uci":                    domain.ReplyUCIOK,
		"isready":                domain.ReplyReadyOK,
		"go depth 10":            domain.ReplyBestMove,
		"go infinite":            domain.ReplyBestMove,
		"stop":                   domain.ReplyBestMove,
		"quit":                   domain.ReplyQuit,
		"position startpos":      "",
		"setoption name a value": "",
		"ucinewgame":             "",
		"ponderhit":              "",
		"gogo":                   "",
	}
	for cmd, want := range cases {
		got, ok := replyFor(cmd)
		assert.Equal(t, want != "", ok, cmd)
		assert.Equal(t, want, got, cmd)
	}
}

func TestReplyWaiterStacksExpectations(t *testing.T) {
	w := newReplyWaiter()
	assert.True(t, w.settled())

	assert.True(t, w.expect(domain.ReplyReadyOK))
	assert.True(t, w.expect(domain.ReplyBestMove))
	assert.False(t, w.expect(domain.ReplyBestMove))
	assert.Equal(t, []domain.Reply{domain.ReplyBestMove, domain.ReplyReadyOK}, w.pending())

	w.clear(domain.ReplyReadyOK)
	assert.False(t, w.settled())
	w.clear(domain.ReplyUCIOK)
	assert.False(t, w.settled())
	w.clear(domain.ReplyBestMove)
	assert.True(t, w.settled())
	assert.Empty(t, w.pending())
}

func TestReplyWaiterWaitSettledImmediately(t *testing.T) {
	w := newReplyWaiter()
	require.NoError(t, w.wait(context.Background(), time.Second, nil))
}

func TestReplyWaiterWaitWithoutTimeout(t *testing.T) {
	w := newReplyWaiter()
	w.expect(domain.ReplyBestMove)

	go func() {
		time.Sleep(20 * time.Millisecond)
		w.clear(domain.ReplyBestMove)
	}()
	require.NoError(t, w.wait(context.Background(), 0, nil))
}

func TestReplyWaiterTimeoutKeepsPending(t *testing.T) {
	w := newReplyWaiter()
	w.expect(domain.ReplyReadyOK)

	start := time.Now()
	err := w.wait(context.Background(), 50*time.Millisecond, nil)
	require.Error(t, err)
	assert.True(t, stdErrors.Is(err, errors.ErrTimeout))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, []domain.Reply{domain.ReplyReadyOK}, w.pending())
}

func TestReplyWaiterContextCancel(t *testing.T) {
	w := newReplyWaiter()
	w.expect(domain.ReplyBestMove)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.wait(ctx, 0, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, w.settled())
}

func TestReplyWaiterAbort(t *testing.T) {
	w := newReplyWaiter()
	w.expect(domain.ReplyBestMove)

	abort := make(chan struct{})
	close(abort)
	err := w.wait(context.Background(), 0, abort)
	assert.ErrorIs(t, err, errors.ErrEngineExited)
}
