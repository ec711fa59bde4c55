// Package guard implements the two sentinel-file controls that gate the
// poller: an operation guard whose presence authorizes polling, and a
// singleton lock preventing two poller instances from running at once.
package guard

import (
	"errors"
	"fmt"
	"os"
)

// ErrAlreadyRunning is returned by AcquireLock when another instance
// already holds the singleton lock file.
var ErrAlreadyRunning = errors.New("guard: another instance holds the singleton lock")

// Present reports whether the operation-guard file exists. The poller
// checks this at each cycle boundary and exits cleanly once it
// disappears.
func Present(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Lock holds the singleton lock file for the process lifetime.
type Lock struct {
	path string
	file *os.File
}

// AcquireLock creates the singleton lock file exclusively, failing with
// ErrAlreadyRunning if it already exists.
func AcquireLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("acquire lock %q: %w", path, err)
	}
	return &Lock{path: path, file: f}, nil
}

// Release closes and removes the lock file.
func (l *Lock) Release() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	return os.Remove(l.path)
}
