package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/curator"
	"github.com/gofrs/flock"
)

// Ensure Lock implements curator.Locker at compile time.
var _ curator.Locker = (*Lock)(nil)

// Lock is an advisory file lock. The operating system releases it when the
// holding process exits, so a crashed run never blocks the next one. The
// lock file itself is left in place on release.
type Lock struct {
	path string
}

// NewLock creates a Lock at path.
func NewLock(path string) *Lock {
	return &Lock{path: path}
}

// Lock acquires the lock or returns ECONFLICT if another holder has it.
func (l *Lock) Lock(ctx context.Context) (func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return nil, err
	}

	fl := flock.New(l.path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, curator.Errorf(curator.EINTERNAL, "lock %s: %v", l.path, err)
	}
	if !ok {
		return nil, curator.Errorf(curator.ECONFLICT, "another run holds %s", l.path)
	}
	return fl.Unlock, nil
}
