package workingcopy

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// firstColumn lists the states a status line may open with.
const firstColumn = " ACDIMRX?!~"

// Parser converts status report lines into change entries.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Parse converts the status lines of the working copy at root.
// Malformed lines are skipped; root must be absolute.
func (p *Parser) Parse(root string, lines []string) []ChangeEntry {
	entries := make([]ChangeEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, p.ParseLine(root, line)...)
	}

	return entries
}

// ParseLine converts a single status line.
//
// An unversioned path expands to every file and directory beneath it. Lines
// with a blank first column carry no change and yield nothing.
func (p *Parser) ParseLine(root, line string) []ChangeEntry {
	code, path, ok := splitLine(line)
	if !ok {
		p.logger.Debug("skipping malformed status line", zap.String("line", line))
		return nil
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, path)
	}

	switch {
	case code.IsUnversioned():
		return p.expand(root, code, full)
	case code[0] == ' ':
		return nil
	default:
		return []ChangeEntry{{
			Status:      code,
			Kind:        code.Kind(),
			Path:        path,
			IsDirectory: isDir(full),
		}}
	}
}

func (p *Parser) expand(root string, code StatusCode, full string) []ChangeEntry {
	nodes := Walk(full)
	kind := code.Kind()

	entries := make([]ChangeEntry, 0, len(nodes))
	for _, node := range nodes {
		rel, err := filepath.Rel(root, node.Path)
		if err != nil {
			p.logger.Debug("skipping path outside working copy",
				zap.String("root", root),
				zap.String("path", node.Path),
				zap.Error(err))
			continue
		}

		entries = append(entries, ChangeEntry{
			Status:      code,
			Kind:        kind,
			Path:        rel,
			IsDirectory: node.IsDirectory,
		})
	}

	return entries
}

// splitLine separates the 7-character status column from the path.
func splitLine(line string) (StatusCode, string, bool) {
	if len(line) < codeWidth+1 {
		return "", "", false
	}
	if line[codeWidth] != ' ' || !strings.ContainsRune(firstColumn, rune(line[0])) {
		return "", "", false
	}

	path := strings.TrimSpace(line[codeWidth+1:])
	if path == "" {
		return "", "", false
	}

	return StatusCode(line[:codeWidth]), path, true
}
