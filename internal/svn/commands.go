package svn

import (
	"regexp"
)

const (
	cmdStatus   = "status"
	cmdCheckout = "checkout"
	cmdAdd      = "add"
	cmdDelete   = "delete"
	cmdCommit   = "commit"
	cmdRevert   = "revert"
	cmdLog      = "log"
	cmdInfo     = "info"
)

var infoURLPattern = regexp.MustCompile(`(?m)^URL: (.+?)\r?$`)

func statusArgs() []string {
	return []string{cmdStatus}
}

func checkoutArgs(url string, auth []string) []string {
	args := []string{cmdCheckout, url, "."}
	return append(args, auth...)
}

func addArgs(paths []string) []string {
	args := []string{cmdAdd, "--force", "--depth=empty"}
	return append(args, paths...)
}

func deleteArgs(paths []string) []string {
	args := []string{cmdDelete, "--force"}
	return append(args, paths...)
}

func commitArgs(message string, auth, paths []string) []string {
	args := make([]string, 0, 4+len(auth)+len(paths))
	args = append(args, cmdCommit, "--force-log", "-m", message)
	args = append(args, auth...)
	return append(args, paths...)
}

func revertArgs(paths []string) []string {
	args := []string{cmdRevert}
	return append(args, paths...)
}

func logArgs(auth []string) []string {
	args := []string{cmdLog, "--xml"}
	return append(args, auth...)
}

func infoArgs() []string {
	return []string{cmdInfo}
}

// repositoryURL extracts the URL line from an info report.
func repositoryURL(info string) (string, bool) {
	m := infoURLPattern.FindStringSubmatch(info)
	if m == nil {
		return "", false
	}

	return m[1], true
}
