//go:build unix

package fs

import (
	"errors"
	"os"
	"syscall"
)

// fileLock takes an exclusive advisory lock on f and returns a function
// that releases it. Filesystems without flock support (typically NFS or
// SMB mounts, reporting ENOTSUP or ENOLCK) yield a no-op release and no
// error; Save then relies on its checkpoint verification alone.
func fileLock(f *os.File) (release func(), err error) {
	fd := int(f.Fd())
	if err := syscall.Flock(fd, syscall.LOCK_EX); err != nil {
		if errors.Is(err, syscall.ENOTSUP) ||
			errors.Is(err, syscall.EOPNOTSUPP) ||
			errors.Is(err, syscall.ENOLCK) {
			return func() {}, nil
		}
		return nil, err
	}
	return func() { syscall.Flock(fd, syscall.LOCK_UN) }, nil
}
