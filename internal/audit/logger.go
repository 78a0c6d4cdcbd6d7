package audit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// Logger appends invocation records to the audit log file.
//
// The file is opened in append mode for every record and each record is
// written with a single call, under an exclusive lock file, so concurrent
// operations never interleave within a record.
type Logger struct {
	config   Config
	resolver PathResolver

	logger *zap.Logger
}

func NewLogger(config Config, resolver PathResolver, logger *zap.Logger) *Logger {
	if config.FileName == "" {
		config.FileName = DefaultFileName
	}

	return &Logger{
		config:   config,
		resolver: resolver,

		logger: logger,
	}
}

// Path returns the audit log file path, creating its directory if needed.
func (l *Logger) Path() (string, error) {
	dir, err := l.resolver.LogDir()
	if err != nil {
		return "", err
	}

	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return "", fmt.Errorf("%w: %w", ErrLogDirUnavailable, mkErr)
	}

	return filepath.Join(dir, l.config.FileName), nil
}

// Log appends the record. Failures are reported on the diagnostic logger only.
func (l *Logger) Log(record Record) {
	if err := l.write(record.String(), os.O_APPEND); err != nil {
		l.logger.Warn("failed to write audit log",
			zap.String("dir", record.WorkingDir),
			zap.String("command", record.CommandLine),
			zap.Error(err))
	}
}

// Reset truncates the audit log.
func (l *Logger) Reset() error {
	return l.write("", os.O_TRUNC)
}

func (l *Logger) write(text string, mode int) error {
	path, err := l.Path()
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if lockErr := lock.Lock(); lockErr != nil {
		l.logger.Warn("failed to lock audit log, writing unlocked", zap.String("path", path), zap.Error(lockErr))
	} else {
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				l.logger.Warn("failed to unlock audit log", zap.String("path", path), zap.Error(unlockErr))
			}
		}()
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}

	var writeErr error
	if text != "" {
		_, writeErr = file.WriteString(text)
	}
	if joined := errors.Join(writeErr, file.Close()); joined != nil {
		return fmt.Errorf("failed to write audit log: %w", joined)
	}

	return nil
}
