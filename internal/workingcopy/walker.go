package workingcopy

import (
	"os"
	"path/filepath"
)

// Walk enumerates path and all of its descendants, children before their parent.
//
// Paths that cannot be listed as directories, including symlinks and entries
// that cannot be read, are reported as plain files. Symlinks are never
// followed, so cyclic links terminate.
func Walk(path string) []Node {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return []Node{{Path: path}}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return []Node{{Path: path}}
	}

	var nodes []Node
	for _, entry := range entries {
		nodes = append(nodes, Walk(filepath.Join(path, entry.Name()))...)
	}

	return append(nodes, Node{Path: path, IsDirectory: true})
}

// isDir is a best-effort probe; any failure means "not a directory".
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
