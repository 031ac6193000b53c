package vcs_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"maskctl/internal/services"
	"maskctl/internal/vcs"
)

type call struct {
	dir  string
	args string
}

type stubExecutor struct {
	calls   []call
	outputs map[string]string
	fail    map[string]error
}

func (s *stubExecutor) Run(_ context.Context, dir, binary string, args []string) (string, error) {
	joined := strings.Join(args, " ")
	s.calls = append(s.calls, call{dir: dir, args: joined})
	if err, ok := s.fail[joined]; ok {
		return "", err
	}
	return s.outputs[joined], nil
}

func (s *stubExecutor) argsList() []string {
	out := make([]string, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.args
	}
	return out
}

func newGit(t *testing.T, exec *stubExecutor) *vcs.Git {
	t.Helper()
	g, err := vcs.New("git", vcs.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return g
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := vcs.New("  "); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

func TestInitSetsFallbackIdentity(t *testing.T) {
	exec := &stubExecutor{fail: map[string]error{
		"config user.email": &services.ProcessError{Command: "git", ExitCode: 1},
	}}
	if err := newGit(t, exec).Init(context.Background(), "/scratch"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	want := []string{"init --quiet", "config user.email", "config user.name maskctl", "config user.email maskctl@localhost"}
	if got := exec.argsList(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected calls:\n got %v\nwant %v", got, want)
	}
	for _, c := range exec.calls {
		if c.dir != "/scratch" {
			t.Fatalf("expected commands to run in /scratch, got %q", c.dir)
		}
	}
}

func TestCloneKeepsExistingIdentity(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]string{"config user.email": "me@example.com\n"}}
	if err := newGit(t, exec).Clone(context.Background(), "git@example.com:me/a.git", "/scratch"); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}
	want := []string{"clone --quiet git@example.com:me/a.git .", "config user.email"}
	if got := exec.argsList(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected calls: %v", got)
	}
}

func TestIsDirty(t *testing.T) {
	cases := []struct {
		name   string
		output string
		want   bool
	}{
		{name: "clean", output: "", want: false},
		{name: "whitespace only", output: " \n\t\n", want: false},
		{name: "modified", output: " M masked-emails.txt\n", want: true},
		{name: "untracked", output: "?? masked-emails.txt\n", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exec := &stubExecutor{outputs: map[string]string{"status --porcelain": tc.output}}
			got, err := newGit(t, exec).IsDirty(context.Background(), "/scratch")
			if err != nil {
				t.Fatalf("IsDirty returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsDirty = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCommitAddPushArguments(t *testing.T) {
	exec := &stubExecutor{outputs: map[string]string{"branch --show-current": "main\n"}}
	g := newGit(t, exec)
	ctx := context.Background()

	if err := g.Add(ctx, "/s", "masked-emails.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := g.Commit(ctx, "/s", "edit aliases"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	branch, err := g.CurrentBranch(ctx, "/s")
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Fatalf("unexpected branch %q", branch)
	}
	if err := g.Push(ctx, "/s", branch); err != nil {
		t.Fatalf("Push: %v", err)
	}

	want := []string{
		"add -- masked-emails.txt",
		"commit --quiet -m edit aliases",
		"branch --show-current",
		"push --atomic origin main",
	}
	if got := exec.argsList(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected calls:\n got %v\nwant %v", got, want)
	}
}

func TestDetachedHeadIsProcessFailure(t *testing.T) {
	exec := &stubExecutor{}
	_, err := newGit(t, exec).CurrentBranch(context.Background(), "/s")
	if !errors.Is(err, services.ErrProcess) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
}

func TestExecutorErrorsBecomeProcessErrors(t *testing.T) {
	exec := &stubExecutor{fail: map[string]error{"push --atomic origin main": errors.New("connection refused")}}
	err := newGit(t, exec).Push(context.Background(), "/s", "main")
	if !errors.Is(err, services.ErrProcess) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	var perr *services.ProcessError
	if !errors.As(err, &perr) || perr.Command != "git" {
		t.Fatalf("expected ProcessError for git, got %#v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected cause in message, got %v", err)
	}
}
