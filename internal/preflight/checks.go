package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"maskctl/internal/config"
	"maskctl/internal/deps"
	"maskctl/internal/jmap"
)

const fastmailCheckName = "Fastmail"

// SessionFetcher fetches the JMAP session resource. *jmap.Client satisfies it.
type SessionFetcher interface {
	Session(ctx context.Context) (*jmap.SessionResource, error)
}

// CheckFastmail verifies that the JMAP session endpoint is reachable, the
// token is accepted, and the account exposes masked e-mail.
// It uses a 15-second timeout and a single attempt.
func CheckFastmail(ctx context.Context, client SessionFetcher) Result {
	if client == nil {
		return Result{Name: fastmailCheckName, Detail: "client not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	session, err := client.Session(checkCtx)
	if err != nil {
		return Result{Name: fastmailCheckName, Detail: summarizeRemoteError(err)}
	}
	account, ok := session.PrimaryAccounts[jmap.MaskedEmailURI]
	if !ok || account == "" {
		return Result{Name: fastmailCheckName, Detail: "session reachable but masked email is not enabled for this token"}
	}
	return Result{Name: fastmailCheckName, Passed: true, Detail: fmt.Sprintf("session ok (account %s)", account)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinaries evaluates the editor and git. Git is optional unless a
// staging remote is configured.
func CheckBinaries(cfg *config.Config) []Result {
	editor := ""
	if argv, err := cfg.EditorArgv(); err == nil && len(argv) > 0 {
		editor = argv[0]
	}
	requirements := []deps.Requirement{
		{
			Name:        "Editor",
			Command:     editor,
			Description: "Required to edit the staged file",
		},
		{
			Name:        "Git",
			Command:     cfg.Git.Binary,
			Description: "Checkpoints staged edits",
			Optional:    cfg.Staging.Remote == "",
		},
	}

	statuses := deps.CheckBinaries(requirements)
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
		switch {
		case status.Available:
			result.Detail = status.Path
		case status.Optional:
			result.Detail = status.Detail + " (optional)"
		default:
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

func summarizeRemoteError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "session check timed out (Fastmail unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "session check timed out (Fastmail unreachable)"
	}
	return err.Error()
}
