package audit

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appDirName = "svndesk"

// PathResolver supplies the application-owned log directory.
type PathResolver interface {
	LogDir() (string, error)
}

// StaticDir is a PathResolver returning a fixed directory.
type StaticDir string

// LogDir implements PathResolver.
func (d StaticDir) LogDir() (string, error) {
	if d == "" {
		return "", fmt.Errorf("%w: empty path", ErrLogDirUnavailable)
	}

	return string(d), nil
}

// StateDir resolves the log directory under the XDG state home.
type StateDir struct{}

// LogDir implements PathResolver.
func (StateDir) LogDir() (string, error) {
	if xdg.StateHome == "" {
		return "", fmt.Errorf("%w: state home not set", ErrLogDirUnavailable)
	}

	return filepath.Join(xdg.StateHome, appDirName), nil
}

// NewPathResolver prefers the configured directory over the XDG state home.
func NewPathResolver(config Config) PathResolver {
	if config.Dir != "" {
		return StaticDir(config.Dir)
	}

	return StateDir{}
}
