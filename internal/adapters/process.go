package adapters

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const maxLineSize = 1024 * 1024

// EngineProcess runs an engine binary and exchanges text lines with it over stdin/stdout.
type EngineProcess struct {
	path string
	args []string
	dir  string
	log  *zap.SugaredLogger

	cmd    *exec.Cmd
	stdin  *bufio.Writer
	closer io.Closer
	stdout *bufio.Scanner

	mu      sync.Mutex // guards stdin
	stateMu sync.RWMutex
	running bool
}

func NewEngineProcess(path string, args []string, dir string, log *zap.SugaredLogger) *EngineProcess {
	return &EngineProcess{
		path: path,
		args: args,
		dir:  dir,
		log:  log,
	}
}

func (p *EngineProcess) Start(onLine func(line string), onExit func(code int)) error {
	cmd := exec.Command(p.path, p.args...)
	cmd.Dir = p.dir

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout: %w", err)
	}

	scanner := bufio.NewScanner(stdoutPipe)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	p.cmd = cmd
	p.stdin = bufio.NewWriter(stdinPipe)
	p.closer = stdinPipe
	p.stdout = scanner

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.path, err)
	}
	p.setRunning(true)

	go p.listenForLines(onLine, onExit)
	return nil
}

func (p *EngineProcess) listenForLines(onLine func(line string), onExit func(code int)) {
	for p.stdout.Scan() {
		line := strings.TrimRight(p.stdout.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		onLine(line)
	}
	if err := p.stdout.Err(); err != nil {
		p.log.Errorw("failed to read engine output", "error", err)
	}

	code := 0
	if err := p.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			p.log.Warnw("engine wait failed", "error", err)
			code = -1
		}
	}
	p.setRunning(false)
	onExit(code)
}

func (p *EngineProcess) Send(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return errors.New("process not started")
	}
	if _, err := p.stdin.WriteString(line + "\n"); err != nil {
		return err
	}
	return p.stdin.Flush()
}

func (p *EngineProcess) Running() bool {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.running
}

func (p *EngineProcess) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	p.mu.Lock()
	_ = p.closer.Close()
	p.mu.Unlock()
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *EngineProcess) setRunning(running bool) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.running = running
}
