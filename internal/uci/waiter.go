package uci

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"chess_uci/internal/domain"
	"chess_uci/internal/errors"
)

// commandReply lists the commands that block until the engine answers.
// quit has no protocol answer; it is cleared when the process exits.
var commandReply = map[string]domain.Reply{
	"uci":     domain.ReplyUCIOK,
	"isready": domain.ReplyReadyOK,
	"go":      domain.ReplyBestMove,
	"stop":    domain.ReplyBestMove,
	"quit":    domain.ReplyQuit,
}

func replyFor(cmd string) (domain.Reply, bool) {
	name, _, _ := strings.Cut(strings.TrimSpace(cmd), " ")
	reply, ok := commandReply[name]
	return reply, ok
}

// replyWaiter tracks the replies still outstanding for commands already sent.
type replyWaiter struct {
	mu      sync.Mutex
	waiting map[domain.Reply]struct{}
	// settledCh is closed whenever waiting becomes empty and replaced on the next expect.
	settledCh chan struct{}
}

func newReplyWaiter() *replyWaiter {
	ch := make(chan struct{})
	close(ch)
	return &replyWaiter{
		waiting:   make(map[domain.Reply]struct{}),
		settledCh: ch,
	}
}

// expect reports whether reply was not already pending.
func (w *replyWaiter) expect(reply domain.Reply) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.waiting[reply]; ok {
		return false
	}
	if len(w.waiting) == 0 {
		w.settledCh = make(chan struct{})
	}
	w.waiting[reply] = struct{}{}
	return true
}

func (w *replyWaiter) clear(reply domain.Reply) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.waiting[reply]; !ok {
		return
	}
	delete(w.waiting, reply)
	if len(w.waiting) == 0 {
		close(w.settledCh)
	}
}

func (w *replyWaiter) settled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiting) == 0
}

func (w *replyWaiter) pending() []domain.Reply {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.Reply, 0, len(w.waiting))
	for r := range w.waiting {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (w *replyWaiter) done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settledCh
}

// wait blocks until nothing is pending. A zero timeout waits without limit.
// On timeout the pending set is left as it is.
func (w *replyWaiter) wait(ctx context.Context, timeout time.Duration, abort <-chan struct{}) error {
	settled := w.done()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-settled:
		return nil
	case <-expired:
		if w.settled() {
			return nil
		}
		return fmt.Errorf("%w after %s, waiting for %v", errors.ErrTimeout, timeout, w.pending())
	case <-abort:
		if w.settled() {
			return nil
		}
		return fmt.Errorf("%w, waiting for %v", errors.ErrEngineExited, w.pending())
	case <-ctx.Done():
		return ctx.Err()
	}
}
