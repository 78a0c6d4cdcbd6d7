// Package workingcopy turns status reports of a working copy into change entries.
package workingcopy

// StatusCode is the fixed-width status column of a status line.
type StatusCode string

const codeWidth = 7

// Kind names the state reported in the first column of the code.
func (c StatusCode) Kind() string {
	if c == "" {
		return "unknown"
	}

	switch c[0] {
	case 'A':
		return "added"
	case 'C':
		return "conflicted"
	case 'D':
		return "deleted"
	case 'I':
		return "ignored"
	case 'M':
		return "modified"
	case 'R':
		return "replaced"
	case 'X':
		return "external"
	case '?':
		return "unversioned"
	case '!':
		return "missing"
	case '~':
		return "obstructed"
	case ' ':
		return "unmodified"
	default:
		return "unknown"
	}
}

// IsUnversioned reports whether the path is not tracked yet.
func (c StatusCode) IsUnversioned() bool {
	return len(c) > 0 && c[0] == '?'
}

// ChangeEntry is one path reported by a status query.
type ChangeEntry struct {
	Status      StatusCode `json:"statusCode"`
	Kind        string     `json:"kind"`
	Path        string     `json:"path"` // Relative to the working copy root
	IsDirectory bool       `json:"isDirectory"`
}

// Node is one filesystem entry found by Walk.
type Node struct {
	Path        string
	IsDirectory bool
}
