package process

import "strings"

// Collect drains the stream on a background goroutine and blocks until the
// process has terminated. The goroutine owns the stream exclusively and hands
// over a single result through a one-slot channel.
func Collect(stream Stream) Output {
	done := make(chan Output, 1)

	go func() {
		var stdout, stderr strings.Builder
		var exitCode *int

		for ev := range stream.Events() {
			switch ev.Kind {
			case EventStdout:
				stdout.WriteString(ev.Line)
				stdout.WriteByte('\n')
			case EventStderr:
				stderr.WriteString(ev.Line)
				stderr.WriteByte('\n')
			case EventTerminated:
				exitCode = ev.ExitCode
			}
		}

		done <- Output{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitCode,
		}
	}()

	return <-done
}
