package splitgen

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"geosplit/internal/logging"
	"geosplit/internal/manifest"
)

// ErrOutputLocked is returned when another run holds the output lock.
var ErrOutputLocked = errors.New("output is locked by another geosplit run")

func lockPath(output string) string {
	return output + ".lock"
}

// acquireLock takes the output lock. created reports whether the lock file
// did not exist beforehand.
func acquireLock(output string) (lock *flock.Flock, created bool, err error) {
	path := lockPath(output)
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		created = true
	}
	lock = flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrOutputLocked, lock.Path())
	}
	return lock, created, nil
}

// install creates the output directory, takes the output lock and writes the
// manifest. A failed install removes the lock file and the (empty) output
// directory if it created them.
func install(path string, rows []manifest.Row, logger *slog.Logger) (repairs int, err error) {
	dir := filepath.Dir(path)
	createdDir := false
	if _, statErr := os.Stat(dir); errors.Is(statErr, fs.ErrNotExist) {
		createdDir = true
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	defer func() {
		if err != nil && createdDir {
			_ = os.Remove(dir)
		}
	}()

	lock, createdLock, err := acquireLock(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil && createdLock {
			_ = os.Remove(lock.Path())
		}
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Debug("release output lock failed", logging.Error(unlockErr))
		}
	}()

	return writeAtomic(path, rows, logger)
}

// writeAtomic writes rows to a temporary file beside path and renames it over
// path once everything has been flushed and synced.
func writeAtomic(path string, rows []manifest.Row, logger *slog.Logger) (repairs int, err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temporary manifest: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	w := manifest.NewWriter(buf, logger)
	if err = w.WriteHeader(); err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err = w.Write(row); err != nil {
			return 0, err
		}
	}
	if err = w.Flush(); err != nil {
		return 0, err
	}
	if err = buf.Flush(); err != nil {
		return 0, fmt.Errorf("flush manifest: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return 0, fmt.Errorf("chmod manifest: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return 0, fmt.Errorf("sync manifest: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("close manifest: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("install manifest: %w", err)
	}
	return w.Repairs(), nil
}
