package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"maskctl/internal/logging"
)

func mkSession(t *testing.T, base, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(base, name)
	if err := os.Mkdir(dir, 0o700); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "masked-emails.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(dir, stamp, stamp); err != nil {
			t.Fatalf("set time: %v", err)
		}
	}
	return dir
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldSessions(t *testing.T) {
	base := t.TempDir()
	old := mkSession(t, base, SessionDirPrefix+"old", 2*time.Hour)
	recent := mkSession(t, base, SessionDirPrefix+"recent", 0)
	other := mkSession(t, base, "not-a-session", 48*time.Hour)
	if err := os.WriteFile(filepath.Join(base, lockFileName), nil, 0o600); err != nil {
		t.Fatalf("write lock file: %v", err)
	}

	result := CleanStale(context.Background(), base, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != old {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	for _, keep := range []string{recent, other, filepath.Join(base, lockFileName)} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s to survive: %v", keep, err)
		}
	}
}

func TestCleanStaleZeroAgeRemovesAllSessions(t *testing.T) {
	base := t.TempDir()
	mkSession(t, base, SessionDirPrefix+"a", 0)
	mkSession(t, base, SessionDirPrefix+"b", time.Minute)

	result := CleanStale(context.Background(), base, 0, logging.NewNop())
	if len(result.Removed) != 2 {
		t.Fatalf("expected both sessions removed, got %v", result.Removed)
	}
}

func TestListSessionsOrdersOldestFirst(t *testing.T) {
	base := t.TempDir()
	mkSession(t, base, SessionDirPrefix+"new", time.Minute)
	mkSession(t, base, SessionDirPrefix+"old", time.Hour)

	dirs, err := ListSessions(base)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(dirs) != 2 || dirs[0].Name != SessionDirPrefix+"old" || dirs[1].Name != SessionDirPrefix+"new" {
		t.Fatalf("unexpected order %+v", dirs)
	}
	if dirs[0].Size != 1 {
		t.Fatalf("expected size 1, got %d", dirs[0].Size)
	}
}
