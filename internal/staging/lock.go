package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"maskctl/internal/services"
)

const lockFileName = "maskctl.lock"

// Lock is an exclusive advisory lock on a staging base directory.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes the staging lock without blocking. It fails when another
// maskctl process holds it.
func AcquireLock(baseDir string) (*Lock, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, services.Wrap(services.ErrProcess, "staging", "lock", "create staging base", err)
	}
	path := filepath.Join(baseDir, lockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrProcess, "staging", "lock", "acquire "+path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "staging", "lock",
			fmt.Sprintf("another maskctl session holds %s", path), nil)
	}
	return &Lock{lock: lock}, nil
}

// Release drops the lock. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
