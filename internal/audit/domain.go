package audit

import (
	"strconv"
	"strings"
)

// Record is one invocation of the VCS binary as it is written to the audit log.
type Record struct {
	WorkingDir  string
	CommandLine string
	Stdout      string
	Stderr      string
	ExitCode    *int // nil when the process never reported one
}

// String renders the record in the audit log format.
func (r Record) String() string {
	var b strings.Builder

	b.WriteString("in ")
	b.WriteString(r.WorkingDir)
	b.WriteString("\n$ ")
	b.WriteString(r.CommandLine)
	b.WriteString("\n\nSTDOUT:\n")
	b.WriteString(r.Stdout)
	b.WriteString("\nSTDERR:\n")
	b.WriteString(r.Stderr)
	if r.ExitCode != nil {
		b.WriteString("\nwith exit code: ")
		b.WriteString(strconv.Itoa(*r.ExitCode))
	}
	b.WriteString("\n\n")

	return b.String()
}
