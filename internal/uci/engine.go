package uci

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chess_uci/internal/domain"
	"chess_uci/internal/errors"
)

const (
	DefaultReplyTimeout = 5 * time.Second
	DefaultQuitTimeout  = 5 * time.Second
)

// Process is the engine child process as seen by the driver. Start delivers every
// non-empty output line to onLine, one at a time and in order, then calls onExit once.
type Process interface {
	Start(onLine func(line string), onExit func(code int)) error
	Send(line string) error
	Running() bool
	Kill() error
}

type InfoFunc = func(info domain.SearchInfo)

type ResultFunc = func(result domain.SearchResult)

type Option func(*Engine)

func WithReplyTimeout(d time.Duration) Option {
	return func(e *Engine) { e.replyTimeout = d }
}

func WithQuitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.quitTimeout = d }
}

// WithIOLogging logs every line sent to and received from the engine at debug level.
func WithIOLogging(send, recv bool) Option {
	return func(e *Engine) {
		e.logSend = send
		e.logRecv = recv
	}
}

// Engine drives a UCI engine process. Callbacks passed to Go and StartSearch run on
// the goroutine that reads engine output: they may call Stop or PonderHit but must
// not call methods that wait for a reply.
type Engine struct {
	proc      Process
	log       *zap.SugaredLogger
	sessionID string

	replyTimeout time.Duration
	quitTimeout  time.Duration
	logSend      bool
	logRecv      bool

	waiter *replyWaiter
	search searchState

	mu       sync.RWMutex
	state    domain.EngineState
	id       map[string]string
	options  map[string]domain.OptionSpec
	order    []string
	onInfo   InfoFunc
	onResult ResultFunc

	exited   chan struct{}
	exitOnce sync.Once
}

// NewEngine starts the process without the uci handshake.
func NewEngine(proc Process, log *zap.SugaredLogger, opts ...Option) (*Engine, error) {
	e := &Engine{
		proc:         proc,
		log:          log,
		sessionID:    uuid.New().String(),
		replyTimeout: DefaultReplyTimeout,
		quitTimeout:  DefaultQuitTimeout,
		waiter:       newReplyWaiter(),
		state:        domain.StateIdle,
		id:           make(map[string]string),
		options:      make(map[string]domain.OptionSpec),
		exited:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("session", e.sessionID)

	if err := proc.Start(e.handleLine, e.handleExit); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStartupFailure, err)
	}
	if !proc.Running() {
		return nil, errors.ErrStartupFailure
	}
	e.log.Infow("engine process started")
	return e, nil
}

// Start launches the engine and completes the uci handshake. The process is killed
// if the handshake fails.
func Start(ctx context.Context, proc Process, log *zap.SugaredLogger, opts ...Option) (*Engine, error) {
	e, err := NewEngine(proc, log, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.UCI(ctx); err != nil {
		_ = e.Kill()
		return nil, fmt.Errorf("%w: uci handshake: %w", errors.ErrStartupFailure, err)
	}
	e.log.Infow("engine ready", "name", e.ID()["name"], "author", e.ID()["author"], "options", len(e.Options()))
	return e, nil
}

func (e *Engine) UCI(ctx context.Context) error {
	e.setState(domain.StateHandshaking)
	if err := e.send("uci"); err != nil {
		return err
	}
	return e.Wait(ctx, e.replyTimeout)
}

func (e *Engine) IsReady(ctx context.Context) error {
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.Wait(ctx, e.replyTimeout)
}

func (e *Engine) UCINewGame() error {
	return e.send("ucinewgame")
}

func (e *Engine) SetOption(name, value string) error {
	return e.send(setOptionCommand(domain.Setting{Name: name, Value: value}))
}

func (e *Engine) SetOptions(settings ...domain.Setting) error {
	for _, s := range settings {
		if err := e.send(setOptionCommand(s)); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Position(pos domain.Position) error {
	return e.send(positionCommand(pos))
}

// Go starts a search and blocks until bestmove, ctx cancellation or engine exit.
// There is no timeout: bound the search with a limit or call Stop.
func (e *Engine) Go(ctx context.Context, cmd domain.GoCommand, onInfo InfoFunc, onResult ResultFunc) (domain.SearchResult, error) {
	s, err := e.StartSearch(cmd, onInfo, onResult)
	if err != nil {
		return domain.SearchResult{}, err
	}
	return s.Wait(ctx)
}

// StartSearch sends go and returns without waiting. Callers must not start a new
// search before the previous one has finished.
func (e *Engine) StartSearch(cmd domain.GoCommand, onInfo InfoFunc, onResult ResultFunc) (*Search, error) {
	line := goCommand(cmd)

	e.mu.Lock()
	e.onInfo = onInfo
	e.onResult = onResult
	e.mu.Unlock()
	e.search.reset()

	e.setState(domain.StateSearching)
	if err := e.send(line); err != nil {
		e.transition(domain.StateSearching, domain.StateReady)
		return nil, err
	}
	return &Search{engine: e, command: line}, nil
}

// Stop asks the engine to finish the running search. It never registers bestmove:
// go already did, and a search that ended meanwhile has nothing left to answer.
func (e *Engine) Stop() error {
	return e.write("stop", "")
}

func (e *Engine) PonderHit() error {
	return e.send("ponderhit")
}

// Quit asks the engine to exit and waits for the process to go away. If it does not
// within the quit timeout the process is killed and the timeout returned.
func (e *Engine) Quit(ctx context.Context) error {
	if !e.proc.Running() {
		e.setState(domain.StateTerminated)
		return nil
	}
	e.setState(domain.StateQuitting)
	if err := e.send("quit"); err != nil {
		return err
	}

	err := e.Wait(ctx, e.quitTimeout)
	switch {
	case err == nil, stdErrors.Is(err, errors.ErrEngineExited):
		return nil
	case stdErrors.Is(err, errors.ErrTimeout):
		e.log.Warnw("engine did not quit in time, killing", "timeout", e.quitTimeout)
		if kerr := e.Kill(); kerr != nil {
			e.log.Errorw("failed to kill engine", "error", kerr)
		}
	}
	return err
}

func (e *Engine) Kill() error {
	e.log.Infow("killing engine process")
	return e.proc.Kill()
}

// Send writes a raw command. Commands with a terminal reply are tracked like
// their typed counterparts.
func (e *Engine) Send(cmd string) error {
	return e.send(cmd)
}

// Wait blocks until every reply expected so far has arrived. A zero timeout
// waits without limit.
func (e *Engine) Wait(ctx context.Context, timeout time.Duration) error {
	return e.waiter.wait(ctx, timeout, e.exited)
}

func (e *Engine) Settled() bool {
	return e.waiter.settled()
}

func (e *Engine) Pending() []domain.Reply {
	return e.waiter.pending()
}

func (e *Engine) Running() bool {
	return e.proc.Running()
}

func (e *Engine) SessionID() string {
	return e.sessionID
}

func (e *Engine) State() domain.EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) ID() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]string, len(e.id))
	for k, v := range e.id {
		out[k] = v
	}
	return out
}

// Options returns the declared options in the order the engine listed them.
func (e *Engine) Options() []domain.OptionSpec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.OptionSpec, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.options[name])
	}
	return out
}

func (e *Engine) Option(name string) (domain.OptionSpec, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	opt, ok := e.options[name]
	return opt, ok
}

// PVs is a snapshot of the variations of the current or last search.
func (e *Engine) PVs() []domain.Pv {
	return e.search.pvs()
}

func (e *Engine) Result() domain.SearchResult {
	return e.search.result()
}

func (e *Engine) send(cmd string) error {
	reply, _ := replyFor(cmd)
	return e.write(cmd, reply)
}

func (e *Engine) write(cmd string, reply domain.Reply) error {
	if !e.proc.Running() {
		return fmt.Errorf("%w: %q", errors.ErrEngineNotRunning, cmd)
	}

	added := false
	if reply != "" {
		added = e.waiter.expect(reply)
	}
	if e.logSend {
		e.log.Debugf("-> %q", cmd)
	}
	if err := e.proc.Send(cmd); err != nil {
		if added {
			e.waiter.clear(reply)
		}
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	return nil
}

func (e *Engine) setState(state domain.EngineState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == domain.StateTerminated {
		return
	}
	e.state = state
}

// transition moves from one state to another only if the engine is still in from.
func (e *Engine) transition(from, to domain.EngineState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == from {
		e.state = to
	}
}

func (e *Engine) handleLine(line string) {
	if e.logRecv {
		e.log.Debugf("<- %q", line)
	}

	parsed := ParseLine(line)
	switch parsed.Kind {
	case domain.LineInfo:
		e.search.apply(parsed.Info)
		e.mu.RLock()
		onInfo := e.onInfo
		e.mu.RUnlock()
		if onInfo != nil {
			onInfo(parsed.Info)
		}

	case domain.LineBestMove:
		if parsed.Result.BestMove != "" {
			e.search.finish(parsed.Result)
		}
		e.mu.Lock()
		onResult := e.onResult
		e.onInfo, e.onResult = nil, nil
		if e.state == domain.StateSearching {
			e.state = domain.StateReady
		}
		e.mu.Unlock()
		if onResult != nil {
			onResult(e.search.result())
		}
		e.waiter.clear(domain.ReplyBestMove)

	case domain.LineID:
		e.mu.Lock()
		e.id[parsed.IDKey] = parsed.IDVal
		e.mu.Unlock()

	case domain.LineOption:
		e.mu.Lock()
		if _, ok := e.options[parsed.Option.Name]; !ok {
			e.order = append(e.order, parsed.Option.Name)
		}
		e.options[parsed.Option.Name] = parsed.Option
		e.mu.Unlock()

	case domain.LineUCIOK:
		e.transition(domain.StateHandshaking, domain.StateReady)
		e.waiter.clear(domain.ReplyUCIOK)

	case domain.LineReadyOK:
		e.waiter.clear(domain.ReplyReadyOK)

	case domain.LineQuit:
		e.waiter.clear(domain.ReplyQuit)
	}
}

func (e *Engine) handleExit(code int) {
	e.exitOnce.Do(func() {
		e.log.Infow("engine process exited", "code", code, "pending", e.waiter.pending())
		e.setState(domain.StateTerminated)
		e.waiter.clear(domain.ReplyQuit)
		close(e.exited)
	})
}

// Search is a running go command.
type Search struct {
	engine  *Engine
	command string
}

func (s *Search) Command() string {
	return s.command
}

// Wait blocks until bestmove and returns the result.
func (s *Search) Wait(ctx context.Context) (domain.SearchResult, error) {
	if err := s.engine.Wait(ctx, 0); err != nil {
		return domain.SearchResult{}, err
	}
	return s.engine.Result(), nil
}

func (s *Search) Stop() error {
	return s.engine.Stop()
}
