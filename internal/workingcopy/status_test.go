package workingcopy

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestParser_SkipsShortLines(t *testing.T) {
	parser := NewParser(zaptest.NewLogger(t))
	root := t.TempDir()

	for _, line := range []string{"", "M", "?      ", "M      x"[:7], "A     b"} {
		if entries := parser.ParseLine(root, line); len(entries) != 0 {
			t.Errorf("Expected no entries for %q, got %+v", line, entries)
		}
	}
}

func TestParser_SkipsMalformedAndBlankLines(t *testing.T) {
	parser := NewParser(zaptest.NewLogger(t))
	root := t.TempDir()

	lines := []string{
		"Summary of conflicts:",
		"Performing status on external item at 'ext':",
		" M      props-only.txt",
		"        ",
		"      > local edit, incoming delete upon update",
	}

	if entries := parser.Parse(root, lines); len(entries) != 0 {
		t.Errorf("Expected no entries, got %+v", entries)
	}
}

func TestParser_ChangedPaths(t *testing.T) {
	parser := NewParser(zaptest.NewLogger(t))
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "src", "main.c"))

	entries := parser.Parse(root, []string{
		"M       src/main.c",
		"A       src",
		"D       removed.txt",
	})

	want := []ChangeEntry{
		{Status: "M      ", Kind: "modified", Path: "src/main.c"},
		{Status: "A      ", Kind: "added", Path: "src", IsDirectory: true},
		{Status: "D      ", Kind: "deleted", Path: "removed.txt"},
	}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("Entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}

func TestParser_ExpandsUnversionedDirectory(t *testing.T) {
	parser := NewParser(zaptest.NewLogger(t))
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "new", "a.txt"))
	mustWrite(t, filepath.Join(root, "new", "deep", "b.txt"))

	entries := parser.Parse(root, []string{"?       new"})

	got := make(map[string]bool)
	counts := make(map[string]int)
	for _, e := range entries {
		if !e.Status.IsUnversioned() || e.Status != "?      " || e.Kind != "unversioned" {
			t.Errorf("Expected unversioned code on %s, got %q (%s)", e.Path, e.Status, e.Kind)
		}
		got[e.Path] = e.IsDirectory
		counts[e.Path]++
	}

	want := map[string]bool{
		"new":                                 true,
		filepath.Join("new", "a.txt"):         false,
		filepath.Join("new", "deep"):          true,
		filepath.Join("new", "deep", "b.txt"): false,
	}
	if len(got) != len(want) {
		keys := make([]string, 0, len(got))
		for k := range got {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t.Fatalf("Expected %d paths, got %v", len(want), keys)
	}
	for path, isDir := range want {
		gotDir, ok := got[path]
		if !ok {
			t.Errorf("Expected %s in entries", path)
			continue
		}
		if gotDir != isDir {
			t.Errorf("Expected %s isDirectory=%v, got %v", path, isDir, gotDir)
		}
	}
	if counts["new"] != 1 {
		t.Errorf("Expected directory itself exactly once, got %d", counts["new"])
	}
}

func TestParser_UnversionedFile(t *testing.T) {
	parser := NewParser(zaptest.NewLogger(t))
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "notes.txt"))

	entries := parser.Parse(root, []string{"?       notes.txt"})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %+v", entries)
	}
	if entries[0].Path != "notes.txt" || entries[0].IsDirectory {
		t.Errorf("Unexpected entry %+v", entries[0])
	}
}

func TestParser_DirectoryProbeFailureMeansFile(t *testing.T) {
	parser := NewParser(zaptest.NewLogger(t))
	root := t.TempDir()

	entries := parser.Parse(root, []string{"!       vanished"})
	if len(entries) != 1 || entries[0].IsDirectory {
		t.Errorf("Expected single non-directory entry, got %+v", entries)
	}
	if _, err := os.Stat(filepath.Join(root, "vanished")); !os.IsNotExist(err) {
		t.Fatal("test path should not exist")
	}
}
