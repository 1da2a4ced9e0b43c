package file

import (
	"os"

	"github.com/kei2100/filesharedelete"
	"github.com/spf13/afero"
	"golang.org/x/sys/windows"
)

// OpenFile opens the named file
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return filesharedelete.OpenFile(name, flag, perm)
}

// Fs returns the filesystem used for the output file chain. Files are opened
// with FILE_SHARE_DELETE so that a rotation can rename them while another
// process still holds them open.
func Fs() afero.Fs {
	return shareDeleteFs{Fs: afero.NewOsFs()}
}

type shareDeleteFs struct {
	afero.Fs
}

func (fs shareDeleteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := OpenFile(name, flag, perm)
	if f == nil {
		// avoid a non-nil interface holding a nil *os.File
		return nil, err
	}
	return f, err
}

func (fs shareDeleteFs) Create(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs shareDeleteFs) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// Lock takes an exclusive lock on the first byte of f, blocking until it is available.
func Lock(f *os.File) error {
	return lockFileEx(f, windows.LOCKFILE_EXCLUSIVE_LOCK)
}

// TryLock takes an exclusive lock on f, or returns ErrLocked immediately.
func TryLock(f *os.File) error {
	err := lockFileEx(f, windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY)
	if err == windows.ERROR_LOCK_VIOLATION {
		return ErrLocked
	}
	return err
}

// Unlock releases a lock taken by Lock or TryLock.
func Unlock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, ol)
}

func lockFileEx(f *os.File, flags uint32) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(f.Fd()), flags, 0, 1, 0, ol)
}
