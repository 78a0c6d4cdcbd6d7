package credentials

import "strings"

const (
	lineEndingWindows = "\r\n"
	lineEndingUnix    = "\n"
)

// Credentials identify a repository user on a host.
//
// HostOS is the operating system the caller declares, either as reported by
// the desktop shell ("Windows_NT", "Linux", "Darwin") or as a GOOS value.
type Credentials struct {
	Username string
	Password string
	HostOS   string
}

// LineEnding returns the line terminator the VCS expects when reading a
// password from standard input on hostOS.
func LineEnding(hostOS string) string {
	switch strings.ToLower(strings.TrimSpace(hostOS)) {
	case "windows_nt", "windows":
		return lineEndingWindows
	default:
		return lineEndingUnix
	}
}
