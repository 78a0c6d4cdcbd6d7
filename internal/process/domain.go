package process

import (
	"context"
	"strings"
)

// EventKind discriminates the events produced by a running process.
type EventKind int

const (
	EventStdout EventKind = iota
	EventStderr
	EventTerminated
)

func (k EventKind) String() string {
	switch k {
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is a single line of output or the terminal exit notification.
type Event struct {
	Kind     EventKind
	Line     string // Output line without its trailing newline, empty for EventTerminated
	ExitCode *int   // Set only for EventTerminated; nil when the process was killed by a signal
}

// Output is the buffered result of a finished invocation.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode *int
}

// StdoutLines splits Stdout into lines, dropping line terminators.
func (o Output) StdoutLines() []string {
	if o.Stdout == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(o.Stdout, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// Success reports whether the process exited with code zero.
func (o Output) Success() bool {
	return o.ExitCode != nil && *o.ExitCode == 0
}

// Stream is a handle on a spawned process.
//
// Events yields output in the order it was read and closes after the
// EventTerminated event. Writing to stdin does not affect consumption of Events.
type Stream interface {
	Events() <-chan Event
	WriteStdin(p []byte) error
	CloseStdin() error
}

// Runner spawns the external VCS binary.
type Runner interface {
	// Spawn starts the binary in dir and returns a stream of its output.
	Spawn(ctx context.Context, dir string, args ...string) (Stream, error)

	// Run starts the binary in dir and waits for it to finish.
	// A non-zero exit code is reported in Output, not as an error.
	Run(ctx context.Context, dir string, args ...string) (Output, error)

	// CommandLine reconstructs the command line for the given arguments.
	CommandLine(args ...string) string
}
