package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
)

// FileLock serializes exports that target the same output file. The lock
// file lives in the system temp directory, named after a hash of the
// output's absolute path, so the output directory only ever holds the
// export itself.
type FileLock struct {
	lock   *flock.Flock
	path   string
	target string
}

// NewFileLock creates the lock guarding the given output path.
func NewFileLock(target string) (*FileLock, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}
	path := LockPath(abs)
	return &FileLock{lock: flock.New(path), path: path, target: abs}, nil
}

// LockPath returns the lock file used for the absolute output path abs.
func LockPath(abs string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("sdeexport-%016x.lock", xxhash.Sum64String(abs)))
}

// Lock blocks until no other export is replacing the same output.
func (l *FileLock) Lock() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.target, err)
	}
	if locked {
		return nil
	}

	Log.WithField("file", l.target).Warn("Output is being replaced by another export, waiting")
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", l.target, err)
	}
	return nil
}

// Unlock releases the lock. The lock file stays so a process already
// waiting on it never holds a lock on an unlinked file.
func (l *FileLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unlocking %s: %w", l.target, err)
	}
	return nil
}

// Path returns the lock file location.
func (l *FileLock) Path() string {
	return l.path
}
