package svn

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apiarycd/svndesk/internal/audit"
	"github.com/apiarycd/svndesk/internal/credentials"
	"github.com/apiarycd/svndesk/internal/events"
	"github.com/apiarycd/svndesk/internal/history"
	"github.com/apiarycd/svndesk/internal/process"
	"github.com/apiarycd/svndesk/internal/workingcopy"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Service runs working-copy operations against the VCS binary.
//
// Every operation is synchronous and its steps run strictly in order. Every
// invocation is recorded through the Auditor. A non-zero exit code is never
// an error: operations that change the working copy finish with a fresh
// status query, so callers always see what the working copy looks like now.
type Service struct {
	runner   process.Runner
	parser   *workingcopy.Parser
	auditor  Auditor
	emitter  Emitter
	delivery credentials.Delivery

	logger *zap.Logger
}

func NewService(
	runner process.Runner,
	parser *workingcopy.Parser,
	auditor Auditor,
	emitter Emitter,
	delivery credentials.Delivery,
	logger *zap.Logger,
) *Service {
	return &Service{
		runner:   runner,
		parser:   parser,
		auditor:  auditor,
		emitter:  emitter,
		delivery: delivery,

		logger: logger,
	}
}

// Status lists the changes in the working copy at root.
func (s *Service) Status(ctx context.Context, root string) ([]workingcopy.ChangeEntry, error) {
	root, err := absRoot(root)
	if err != nil {
		return nil, err
	}

	s.logger.Info("querying status", zap.String("root", root))

	out, err := s.stream(ctx, root, nil, statusArgs()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatusFailed, err)
	}

	entries := s.parser.Parse(root, out.StdoutLines())

	s.logger.Info("status queried",
		zap.String("root", root),
		zap.Int("entries", len(entries)))

	return entries, nil
}

// Checkout checks url out into root and returns the resulting status.
func (s *Service) Checkout(
	ctx context.Context,
	root, url string,
	creds credentials.Credentials,
) ([]workingcopy.ChangeEntry, error) {
	root, err := absRoot(root)
	if err != nil {
		return nil, err
	}

	s.logger.Info("checking out repository",
		zap.String("root", root),
		zap.String("url", url),
		zap.String("username", creds.Username))

	out, err := s.stream(ctx, root, s.delivery.Payload(creds), checkoutArgs(url, s.delivery.Args(creds))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	s.logOutcome("checkout finished", root, out)

	return s.Status(ctx, root)
}

// Commit stages additions and removals, commits every selected path with
// message, and returns the resulting status.
//
// All three steps run even when an earlier one exits non-zero.
func (s *Service) Commit(
	ctx context.Context,
	root, message string,
	changes []PendingChange,
	creds credentials.Credentials,
) ([]workingcopy.ChangeEntry, error) {
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	root, err := absRoot(root)
	if err != nil {
		return nil, err
	}

	adds, removes := partition(changes)
	paths := lo.Map(changes, func(c PendingChange, _ int) string { return c.Path })

	s.logger.Info("committing changes",
		zap.String("root", root),
		zap.Int("adds", len(adds)),
		zap.Int("removes", len(removes)),
		zap.String("username", creds.Username))

	if _, addErr := s.run(ctx, root, addArgs(adds)...); addErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, addErr)
	}

	if _, deleteErr := s.run(ctx, root, deleteArgs(removes)...); deleteErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, deleteErr)
	}

	out, err := s.stream(ctx, root, s.delivery.Payload(creds), commitArgs(message, s.delivery.Args(creds), paths)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	s.logOutcome("commit finished", root, out)

	return s.Status(ctx, root)
}

// Revert discards local modifications of paths and returns the resulting status.
func (s *Service) Revert(ctx context.Context, root string, paths []string) ([]workingcopy.ChangeEntry, error) {
	if len(paths) == 0 {
		return nil, ErrNoChanges
	}

	root, err := absRoot(root)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reverting changes",
		zap.String("root", root),
		zap.Int("paths", len(paths)))

	out, err := s.run(ctx, root, revertArgs(paths)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRevertFailed, err)
	}

	s.logOutcome("revert finished", root, out)

	return s.Status(ctx, root)
}

// History returns the revision log of the working copy at root.
// Unparsable output fails the call; no partial history is returned.
func (s *Service) History(ctx context.Context, root string, creds credentials.Credentials) ([]history.Revision, error) {
	root, err := absRoot(root)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading history",
		zap.String("root", root),
		zap.String("username", creds.Username))

	out, err := s.stream(ctx, root, s.delivery.Payload(creds), logArgs(s.delivery.Args(creds))...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryFailed, err)
	}

	revisions, err := history.Parse(strings.NewReader(out.Stdout))
	if err != nil {
		s.logger.Error("failed to parse history",
			zap.String("root", root),
			zap.Intp("exit_code", out.ExitCode),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrHistoryFailed, err)
	}

	s.logger.Info("history read",
		zap.String("root", root),
		zap.Int("revisions", len(revisions)))

	return revisions, nil
}

// RepositoryURL reports the repository URL of the working copy at dir.
func (s *Service) RepositoryURL(ctx context.Context, dir string) (string, bool) {
	abs, err := absRoot(dir)
	if err != nil {
		s.logger.Warn("invalid working copy folder", zap.String("dir", dir), zap.Error(err))
		return "", false
	}
	dir = abs

	out, err := s.run(ctx, dir, infoArgs()...)
	if err != nil {
		s.logger.Warn("failed to query working copy info", zap.String("dir", dir), zap.Error(err))
		return "", false
	}

	return repositoryURL(out.Stdout)
}

// Locate describes the folder at path and publishes the result as a
// path change event. A nil path means the selection was cancelled.
// A relative path is reported in its absolute form.
func (s *Service) Locate(ctx context.Context, path *string) ProjectLocation {
	location := ProjectLocation{Path: path}

	if path != nil {
		if abs, err := absRoot(*path); err == nil {
			location.Path = &abs
		}

		if url, ok := s.RepositoryURL(ctx, *location.Path); ok {
			location.RepositoryURL = &url
		}
	}

	s.emitter.Emit(events.NamePathChange, location)

	s.logger.Info("project located",
		zap.Stringp("path", location.Path),
		zap.Stringp("repository_url", location.RepositoryURL))

	return location
}

// stream spawns an invocation, writes payload to its standard input, drains
// its output and records it.
func (s *Service) stream(ctx context.Context, dir string, payload []byte, args ...string) (process.Output, error) {
	stream, err := s.runner.Spawn(ctx, dir, args...)
	if err != nil {
		s.audit(dir, args, process.Output{Stderr: err.Error()})
		return process.Output{}, err
	}

	if payload != nil {
		if writeErr := stream.WriteStdin(payload); writeErr != nil {
			s.logger.Warn("failed to deliver credentials",
				zap.String("dir", dir),
				zap.String("subcommand", args[0]),
				zap.Error(writeErr))
		}
	}
	if closeErr := stream.CloseStdin(); closeErr != nil {
		s.logger.Warn("failed to close stdin", zap.String("dir", dir), zap.Error(closeErr))
	}

	out := process.Collect(stream)
	s.audit(dir, args, out)

	return out, nil
}

// run executes a one-shot invocation and records it.
func (s *Service) run(ctx context.Context, dir string, args ...string) (process.Output, error) {
	out, err := s.runner.Run(ctx, dir, args...)
	if err != nil {
		s.audit(dir, args, process.Output{Stderr: err.Error()})
		return process.Output{}, err
	}

	s.audit(dir, args, out)

	return out, nil
}

func (s *Service) audit(dir string, args []string, out process.Output) {
	s.auditor.Log(audit.Record{
		WorkingDir:  dir,
		CommandLine: s.runner.CommandLine(args...),
		Stdout:      out.Stdout,
		Stderr:      out.Stderr,
		ExitCode:    out.ExitCode,
	})
}

func (s *Service) logOutcome(msg, root string, out process.Output) {
	if out.Success() {
		s.logger.Info(msg, zap.String("root", root))
		return
	}

	s.logger.Warn(msg,
		zap.String("root", root),
		zap.Intp("exit_code", out.ExitCode))
}

func partition(changes []PendingChange) ([]string, []string) {
	path := func(c PendingChange, _ int) string { return c.Path }

	adds := lo.Map(lo.Filter(changes, func(c PendingChange, _ int) bool { return c.Stage == StageAdd }), path)
	removes := lo.Map(lo.Filter(changes, func(c PendingChange, _ int) bool { return c.Stage == StageRemove }), path)

	return adds, removes
}

func absRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}

	return abs, nil
}
