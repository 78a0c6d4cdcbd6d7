package svn

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/apiarycd/svndesk/internal/audit"
	"github.com/apiarycd/svndesk/internal/credentials"
	"github.com/apiarycd/svndesk/internal/events"
	"github.com/apiarycd/svndesk/internal/process"
	"github.com/apiarycd/svndesk/internal/workingcopy"
	"go.uber.org/zap/zaptest"
)

type invocation struct {
	dir     string
	args    []string
	spawned bool
	stdin   string
}

// fakeRunner records invocations and replies with scripted output per subcommand.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []*invocation
	outputs map[string]process.Output
	fail    map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]process.Output),
		fail:    make(map[string]bool),
	}
}

func (r *fakeRunner) record(dir string, args []string, spawned bool) (*invocation, process.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := &invocation{dir: dir, args: append([]string(nil), args...), spawned: spawned}
	r.calls = append(r.calls, call)

	if r.fail[args[0]] {
		return call, process.Output{}, process.ErrSpawnFailed
	}

	out, ok := r.outputs[args[0]]
	if !ok {
		zero := 0
		out = process.Output{ExitCode: &zero}
	}

	return call, out, nil
}

func (r *fakeRunner) Spawn(_ context.Context, dir string, args ...string) (process.Stream, error) {
	call, out, err := r.record(dir, args, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan process.Event, 64)
	for _, line := range out.StdoutLines() {
		ch <- process.Event{Kind: process.EventStdout, Line: line}
	}
	if out.Stderr != "" {
		ch <- process.Event{Kind: process.EventStderr, Line: strings.TrimSuffix(out.Stderr, "\n")}
	}
	ch <- process.Event{Kind: process.EventTerminated, ExitCode: out.ExitCode}
	close(ch)

	return &fakeStream{call: call, events: ch}, nil
}

func (r *fakeRunner) Run(_ context.Context, dir string, args ...string) (process.Output, error) {
	_, out, err := r.record(dir, args, false)
	return out, err
}

func (r *fakeRunner) CommandLine(args ...string) string {
	return "svn " + strings.Join(args, " ")
}

func (r *fakeRunner) subcommands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.args[0]
	}
	return names
}

type fakeStream struct {
	call   *invocation
	events chan process.Event
	closed bool
}

func (s *fakeStream) Events() <-chan process.Event { return s.events }

func (s *fakeStream) WriteStdin(p []byte) error {
	if s.closed {
		return process.ErrStdinClosed
	}
	s.call.stdin += string(p)
	return nil
}

func (s *fakeStream) CloseStdin() error {
	s.closed = true
	return nil
}

type recordingAuditor struct {
	records []audit.Record
}

func (a *recordingAuditor) Log(record audit.Record) {
	a.records = append(a.records, record)
}

type emitted struct {
	name    string
	payload any
}

type recordingEmitter struct {
	events []emitted
}

func (e *recordingEmitter) Emit(name string, payload any) {
	e.events = append(e.events, emitted{name: name, payload: payload})
}

type fixture struct {
	runner  *fakeRunner
	auditor *recordingAuditor
	emitter *recordingEmitter
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	f := &fixture{
		runner:  newFakeRunner(),
		auditor: &recordingAuditor{},
		emitter: &recordingEmitter{},
	}
	f.service = NewService(
		f.runner,
		workingcopy.NewParser(logger),
		f.auditor,
		f.emitter,
		credentials.NewStdinDelivery("linux"),
		logger,
	)

	return f
}

func exit(code int) *int { return &code }

func equalArgs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestService_StatusParsesAndAudits(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	f.runner.outputs[cmdStatus] = process.Output{
		Stdout:   "M       a.txt\nSummary\n",
		ExitCode: exit(0),
	}

	entries, err := f.service.Status(context.Background(), root)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}

	if len(entries) != 1 || entries[0].Path != "a.txt" || entries[0].IsDirectory {
		t.Errorf("Unexpected entries %+v", entries)
	}
	if len(f.auditor.records) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(f.auditor.records))
	}
	record := f.auditor.records[0]
	if record.WorkingDir != root || record.CommandLine != "svn status" {
		t.Errorf("Unexpected audit record %+v", record)
	}
	if record.Stdout != "M       a.txt\nSummary\n" {
		t.Errorf("Expected captured stdout, got %q", record.Stdout)
	}
	if record.ExitCode == nil || *record.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %v", record.ExitCode)
	}
}

func TestService_StatusRejectsEmptyRoot(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Status(context.Background(), " "); !errors.Is(err, ErrInvalidRoot) {
		t.Errorf("Expected ErrInvalidRoot, got %v", err)
	}
	if len(f.runner.calls) != 0 {
		t.Errorf("Expected no invocations, got %d", len(f.runner.calls))
	}
}

func TestService_CheckoutConcludesWithStatusAfterFailure(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	f.runner.outputs[cmdCheckout] = process.Output{
		Stderr:   "svn: E170001: Authentication failed\n",
		ExitCode: exit(1),
	}

	_, err := f.service.Checkout(context.Background(), root, "https://svn.example.com/repo",
		credentials.Credentials{Username: "jdoe", Password: "secret", HostOS: "Windows_NT"})
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if got := f.runner.subcommands(); !equalArgs(got, []string{cmdCheckout, cmdStatus}) {
		t.Fatalf("Expected checkout then status, got %v", got)
	}

	checkout := f.runner.calls[0]
	want := []string{"checkout", "https://svn.example.com/repo", ".", "--non-interactive", "--username", "jdoe", "--password-from-stdin"}
	if !equalArgs(checkout.args, want) {
		t.Errorf("Expected args %v, got %v", want, checkout.args)
	}
	if checkout.stdin != "secret\r\n" {
		t.Errorf("Expected CRLF-terminated password, got %q", checkout.stdin)
	}
	if f.runner.calls[1].dir != root {
		t.Errorf("Expected status in %s, got %s", root, f.runner.calls[1].dir)
	}

	if len(f.auditor.records) != 2 {
		t.Fatalf("Expected 2 audit records, got %d", len(f.auditor.records))
	}
	if strings.Contains(f.auditor.records[0].CommandLine, "secret") {
		t.Error("Password must not be written to the audit log")
	}
	if code := f.auditor.records[0].ExitCode; code == nil || *code != 1 {
		t.Errorf("Expected audited exit code 1, got %v", code)
	}
}

func TestService_CommitPartitionsChanges(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	f.runner.outputs[cmdAdd] = process.Output{Stderr: "svn: warning: W150002: already under version control\n", ExitCode: exit(1)}
	f.runner.outputs[cmdCommit] = process.Output{Stderr: "svn: E155011: out of date\n", ExitCode: exit(1)}

	changes := []PendingChange{
		{Path: "q", Stage: StageRemove},
		{Path: "p", Stage: StageAdd},
	}

	_, err := f.service.Commit(context.Background(), root, "initial import", changes,
		credentials.Credentials{Username: "jdoe", Password: "secret", HostOS: "Linux"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if got := f.runner.subcommands(); !equalArgs(got, []string{cmdAdd, cmdDelete, cmdCommit, cmdStatus}) {
		t.Fatalf("Expected add, delete, commit, status; got %v", got)
	}

	if want := []string{"add", "--force", "--depth=empty", "p"}; !equalArgs(f.runner.calls[0].args, want) {
		t.Errorf("Expected add args %v, got %v", want, f.runner.calls[0].args)
	}
	if want := []string{"delete", "--force", "q"}; !equalArgs(f.runner.calls[1].args, want) {
		t.Errorf("Expected delete args %v, got %v", want, f.runner.calls[1].args)
	}

	commit := f.runner.calls[2]
	want := []string{
		"commit", "--force-log", "-m", "initial import",
		"--non-interactive", "--username", "jdoe", "--password-from-stdin",
		"q", "p",
	}
	if !equalArgs(commit.args, want) {
		t.Errorf("Expected commit args %v, got %v", want, commit.args)
	}
	if !commit.spawned || commit.stdin != "secret\n" {
		t.Errorf("Expected password piped to spawned commit, got spawned=%v stdin=%q", commit.spawned, commit.stdin)
	}

	if len(f.auditor.records) != 4 {
		t.Errorf("Expected every step audited, got %d records", len(f.auditor.records))
	}
}

func TestService_CommitRejectsEmptyChanges(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.Commit(context.Background(), t.TempDir(), "msg", nil, credentials.Credentials{}); !errors.Is(err, ErrNoChanges) {
		t.Errorf("Expected ErrNoChanges, got %v", err)
	}
	if _, err := f.service.Revert(context.Background(), t.TempDir(), []string{}); !errors.Is(err, ErrNoChanges) {
		t.Errorf("Expected ErrNoChanges, got %v", err)
	}
	if len(f.runner.calls) != 0 {
		t.Errorf("Expected no invocations, got %d", len(f.runner.calls))
	}
}

func TestService_Revert(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()

	if _, err := f.service.Revert(context.Background(), root, []string{"a.txt", "dir"}); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}

	if got := f.runner.subcommands(); !equalArgs(got, []string{cmdRevert, cmdStatus}) {
		t.Fatalf("Expected revert then status, got %v", got)
	}
	if want := []string{"revert", "a.txt", "dir"}; !equalArgs(f.runner.calls[0].args, want) {
		t.Errorf("Expected revert args %v, got %v", want, f.runner.calls[0].args)
	}
}

func TestService_SpawnFailureIsFatalAndAudited(t *testing.T) {
	f := newFixture(t)
	f.runner.fail[cmdAdd] = true

	_, err := f.service.Commit(context.Background(), t.TempDir(), "msg",
		[]PendingChange{{Path: "p", Stage: StageAdd}}, credentials.Credentials{})
	if !errors.Is(err, ErrCommitFailed) || !errors.Is(err, process.ErrSpawnFailed) {
		t.Errorf("Expected ErrCommitFailed wrapping ErrSpawnFailed, got %v", err)
	}

	if got := f.runner.subcommands(); !equalArgs(got, []string{cmdAdd}) {
		t.Errorf("Expected no further steps after spawn failure, got %v", got)
	}
	if len(f.auditor.records) != 1 {
		t.Fatalf("Expected spawn failure audited, got %d records", len(f.auditor.records))
	}
	if record := f.auditor.records[0]; record.ExitCode != nil || record.Stderr == "" {
		t.Errorf("Expected error text and no exit code, got %+v", record)
	}
}

func TestService_History(t *testing.T) {
	f := newFixture(t)
	f.runner.outputs[cmdLog] = process.Output{
		Stdout:   `<log><logentry revision="5"><author>a</author><date>d</date><msg>m</msg></logentry></log>` + "\n",
		ExitCode: exit(0),
	}

	revisions, err := f.service.History(context.Background(), t.TempDir(),
		credentials.Credentials{Username: "jdoe", Password: "secret"})
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(revisions) != 1 || revisions[0].Revision != "5" || revisions[0].Message != "m" {
		t.Errorf("Unexpected revisions %+v", revisions)
	}

	call := f.runner.calls[0]
	if want := []string{"log", "--xml", "--non-interactive", "--username", "jdoe", "--password-from-stdin"}; !equalArgs(call.args, want) {
		t.Errorf("Expected args %v, got %v", want, call.args)
	}
	if f.auditor.records[0].CommandLine != "svn log --xml --non-interactive --username jdoe --password-from-stdin" {
		t.Errorf("Unexpected audited command line %q", f.auditor.records[0].CommandLine)
	}
}

func TestService_HistoryMalformedIsFatal(t *testing.T) {
	f := newFixture(t)
	f.runner.outputs[cmdLog] = process.Output{
		Stdout:   `<log><logentry revision="5"><author>a`,
		ExitCode: exit(1),
	}

	revisions, err := f.service.History(context.Background(), t.TempDir(), credentials.Credentials{})
	if !errors.Is(err, ErrHistoryFailed) {
		t.Errorf("Expected ErrHistoryFailed, got %v", err)
	}
	if revisions != nil {
		t.Errorf("Expected no partial history, got %+v", revisions)
	}
}

func TestService_LocateEmitsPathChange(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	f.runner.outputs[cmdInfo] = process.Output{
		Stdout:   "Path: .\r\nWorking Copy Root Path: " + dir + "\r\nURL: https://svn.example.com/repo/trunk\r\nRelative URL: ^/trunk\r\n",
		ExitCode: exit(0),
	}

	location := f.service.Locate(context.Background(), &dir)

	if location.RepositoryURL == nil || *location.RepositoryURL != "https://svn.example.com/repo/trunk" {
		t.Fatalf("Unexpected repository URL %v", location.RepositoryURL)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].name != events.NamePathChange {
		t.Fatalf("Expected one path change event, got %+v", f.emitter.events)
	}
	if payload, ok := f.emitter.events[0].payload.(ProjectLocation); !ok || *payload.Path != dir {
		t.Errorf("Unexpected payload %+v", f.emitter.events[0].payload)
	}
}

func TestService_LocateOutsideWorkingCopy(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	f.runner.outputs[cmdInfo] = process.Output{
		Stderr:   "svn: E155007: not a working copy\n",
		ExitCode: exit(1),
	}

	location := f.service.Locate(context.Background(), &dir)
	if location.RepositoryURL != nil {
		t.Errorf("Expected no repository URL, got %q", *location.RepositoryURL)
	}

	cancelled := f.service.Locate(context.Background(), nil)
	if cancelled.Path != nil || cancelled.RepositoryURL != nil {
		t.Errorf("Expected empty location, got %+v", cancelled)
	}
	if len(f.emitter.events) != 2 {
		t.Errorf("Expected an event per selection, got %d", len(f.emitter.events))
	}
	if got := f.runner.subcommands(); len(got) != 1 {
		t.Errorf("Expected info only for a chosen folder, got %v", got)
	}
}

func TestRepositoryURL(t *testing.T) {
	tests := []struct {
		name   string
		info   string
		want   string
		wantOK bool
	}{
		{name: "unix", info: "Path: .\nURL: svn://host/repo\nRelative URL: ^/\n", want: "svn://host/repo", wantOK: true},
		{name: "crlf", info: "URL: file:///srv/repo\r\n", want: "file:///srv/repo", wantOK: true},
		{name: "relative only", info: "Relative URL: ^/trunk\n", wantOK: false},
		{name: "empty", info: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := repositoryURL(tt.info)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestService_LocateResolvesRelativeFolder(t *testing.T) {
	f := newFixture(t)
	f.runner.outputs[cmdInfo] = process.Output{
		Stdout:   "URL: svn://svn.example.com/repo\n",
		ExitCode: exit(0),
	}

	relative := filepath.Join("projects", "wc")
	want, err := filepath.Abs(relative)
	if err != nil {
		t.Fatal(err)
	}

	location := f.service.Locate(context.Background(), &relative)

	if location.Path == nil || *location.Path != want {
		t.Errorf("Expected absolute path %s, got %v", want, location.Path)
	}
	if len(f.runner.calls) != 1 || f.runner.calls[0].dir != want {
		t.Fatalf("Expected info in %s, got %+v", want, f.runner.calls)
	}
	if len(f.auditor.records) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(f.auditor.records))
	}
	if dir := f.auditor.records[0].WorkingDir; !filepath.IsAbs(dir) || dir != want {
		t.Errorf("Expected audited working dir %s, got %q", want, dir)
	}
}

func TestService_AuditLogAppendsOneBlockPerOperation(t *testing.T) {
	logger := zaptest.NewLogger(t)
	logDir := t.TempDir()
	root := t.TempDir()

	runner := newFakeRunner()
	runner.outputs[cmdStatus] = process.Output{Stdout: "D       gone.txt\n", ExitCode: exit(0)}
	runner.outputs[cmdRevert] = process.Output{Stdout: "Reverted 'gone.txt'\n", ExitCode: exit(0)}

	service := NewService(
		runner,
		workingcopy.NewParser(logger),
		audit.NewLogger(audit.Config{}, audit.StaticDir(logDir), logger),
		&recordingEmitter{},
		credentials.NewStdinDelivery("linux"),
		logger,
	)

	if _, err := service.Status(context.Background(), root); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if _, err := service.Revert(context.Background(), root, []string{"gone.txt"}); err != nil {
		t.Fatalf("Revert failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(logDir, audit.DefaultFileName))
	if err != nil {
		t.Fatal(err)
	}

	status := audit.Record{WorkingDir: root, CommandLine: "svn status", Stdout: "D       gone.txt\n", ExitCode: exit(0)}
	revert := audit.Record{WorkingDir: root, CommandLine: "svn revert gone.txt", Stdout: "Reverted 'gone.txt'\n", ExitCode: exit(0)}
	want := status.String() + revert.String() + status.String()
	if string(content) != want {
		t.Errorf("Expected sequential records\n%q\ngot\n%q", want, string(content))
	}
	if n := strings.Count(string(content), "\n$ "); n != 3 {
		t.Errorf("Expected 3 record blocks, got %d", n)
	}
}
