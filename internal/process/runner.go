package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	eventBuffer = 64
	maxLineSize = 1 << 20
)

// ExecRunner executes the configured VCS binary.
type ExecRunner struct {
	config  Config
	metrics *Metrics

	logger *zap.Logger
}

func NewExecRunner(config Config, metrics *Metrics, logger *zap.Logger) *ExecRunner {
	if strings.TrimSpace(config.Binary) == "" {
		config.Binary = DefaultBinary
	}

	return &ExecRunner{
		config:  config,
		metrics: metrics,

		logger: logger,
	}
}

// Spawn starts the binary with piped standard streams.
// The context is not used to kill the process: once spawned, an invocation runs to completion.
func (r *ExecRunner) Spawn(_ context.Context, dir string, args ...string) (Stream, error) {
	cmd := r.command(dir, args)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %w", ErrSpawnFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %w", ErrSpawnFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %w", ErrSpawnFailed, err)
	}

	started := time.Now()
	if startErr := cmd.Start(); startErr != nil {
		r.metrics.observe(subcommand(args), outcomeSpawnFailed, 0)
		r.logger.Error("failed to spawn process",
			zap.String("binary", r.config.Binary),
			zap.String("dir", dir),
			zap.Error(startErr))
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawnFailed, r.config.Binary, startErr)
	}

	r.logger.Debug("process spawned",
		zap.String("dir", dir),
		zap.String("subcommand", subcommand(args)),
		zap.Int("pid", cmd.Process.Pid))

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		events: make(chan Event, eventBuffer),

		logger: r.logger,
	}

	go func() {
		p.pump(stdout, stderr)
		r.metrics.observe(subcommand(args), outcomeOf(p.exitCode), time.Since(started))
	}()

	return p, nil
}

// Run starts the binary and buffers its output until it exits.
func (r *ExecRunner) Run(_ context.Context, dir string, args ...string) (Output, error) {
	cmd := r.command(dir, args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Start(); err != nil {
		r.metrics.observe(subcommand(args), outcomeSpawnFailed, 0)
		r.logger.Error("failed to spawn process",
			zap.String("binary", r.config.Binary),
			zap.String("dir", dir),
			zap.Error(err))
		return Output{}, fmt.Errorf("%w: %s: %w", ErrSpawnFailed, r.config.Binary, err)
	}

	waitErr := cmd.Wait()
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		r.logger.Warn("process output incomplete", zap.String("dir", dir), zap.Error(waitErr))
	}

	out := Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCodeOf(cmd.ProcessState),
	}
	r.metrics.observe(subcommand(args), outcomeOf(out.ExitCode), time.Since(started))

	return out, nil
}

// CommandLine reconstructs a shell-quoted command line, global arguments included.
func (r *ExecRunner) CommandLine(args ...string) string {
	parts := make([]string, 0, 1+len(r.config.GlobalArgs)+len(args))
	parts = append(parts, quote(r.config.Binary))
	for _, a := range r.config.GlobalArgs {
		parts = append(parts, quote(a))
	}
	for _, a := range args {
		parts = append(parts, quote(a))
	}

	return strings.Join(parts, " ")
}

func (r *ExecRunner) command(dir string, args []string) *exec.Cmd {
	full := make([]string, 0, len(r.config.GlobalArgs)+len(args))
	full = append(full, r.config.GlobalArgs...)
	full = append(full, args...)

	cmd := exec.Command(r.config.Binary, full...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}

	return cmd
}

// Process is a running invocation started by ExecRunner.Spawn.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	events chan Event

	mu          sync.Mutex
	stdinClosed bool

	exitCode *int

	logger *zap.Logger
}

// Events implements Stream.
func (p *Process) Events() <-chan Event {
	return p.events
}

// WriteStdin implements Stream.
func (p *Process) WriteStdin(b []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdinClosed {
		return ErrStdinClosed
	}

	if _, err := p.stdin.Write(b); err != nil {
		return fmt.Errorf("failed to write stdin: %w", err)
	}

	return nil
}

// CloseStdin implements Stream.
func (p *Process) CloseStdin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdinClosed {
		return nil
	}
	p.stdinClosed = true

	if err := p.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to close stdin: %w", err)
	}

	return nil
}

// pump forwards both output pipes as events, then waits for the exit status.
// Pipes must be fully read before cmd.Wait is called.
func (p *Process) pump(stdout, stderr io.Reader) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.scan(stdout, EventStdout)
	}()
	go func() {
		defer wg.Done()
		p.scan(stderr, EventStderr)
	}()
	wg.Wait()

	_ = p.cmd.Wait()
	p.exitCode = exitCodeOf(p.cmd.ProcessState)

	p.events <- Event{Kind: EventTerminated, ExitCode: p.exitCode}
	close(p.events)
}

func (p *Process) scan(r io.Reader, kind EventKind) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	scanner.Split(scanRawLines)
	for scanner.Scan() {
		p.events <- Event{Kind: kind, Line: scanner.Text()}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("discarding unreadable process output",
			zap.Stringer("stream", kind),
			zap.Int("max_line_size", maxLineSize),
			zap.Error(err))
		// keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, r)
	}
}

// scanRawLines splits on '\n' only, so a CR before it stays part of the line.
func scanRawLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

func exitCodeOf(state *os.ProcessState) *int {
	if state == nil {
		return nil
	}

	code := state.ExitCode()
	if code < 0 {
		return nil
	}

	return &code
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return "none"
	}

	return args[0]
}

const shellSpecial = " \t\r\n'\"\\$`*?[]{}()<>|&;#~!"

// quote single-quotes s when a shell would otherwise split or expand it.
func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecial) {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
