//go:build linux || freebsd || darwin || netbsd || openbsd || dragonfly

package file

import (
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// OpenFile opens the named file
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

// Fs returns the filesystem used for the output file chain.
func Fs() afero.Fs {
	return afero.NewOsFs()
}

// Lock takes an exclusive flock on f, blocking until it is available.
func Lock(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

// TryLock takes an exclusive flock on f, or returns ErrLocked immediately.
func TryLock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrLocked
	}
	return err
}

// Unlock releases a lock taken by Lock or TryLock.
func Unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
