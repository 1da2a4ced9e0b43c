package linerotate

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kei2100/linerotate/internal"
	"github.com/kei2100/linerotate/internal/file"
	"github.com/kei2100/linerotate/metrics"
)

// Lock is an exclusive advisory lock held on a lock file. It is held until
// the process exits or the owning Writer is closed.
type Lock struct {
	path string
	f    *internal.OnceCloseFile
}

// AcquireLock opens (creating if needed, never truncating) the lock file at
// path and takes an exclusive lock on it, blocking for as long as another
// process holds it.
func AcquireLock(path string, perm os.FileMode) (*Lock, error) {
	log.WithField("path", path).Debug("begin acquire lock")

	f, err := file.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		return nil, errors.Wrapf(err, "open lock file %s", path)
	}

	start := time.Now()
	err = file.TryLock(f)
	if err == file.ErrLocked {
		logLockHolder(path)
		err = file.Lock(f)
	}
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "lock %s", path)
	}
	waited := time.Since(start)
	metrics.LockWaitSecondsTotal.Add(waited.Seconds())

	// The lock file's content is informational only.
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		log.WithFields(log.Fields{"path": path, "err": err}).Warn("failed to record pid in lock file")
	}

	log.WithFields(log.Fields{"path": path, "waited": waited}).Debug("end acquire lock")
	return &Lock{
		path: path,
		f:    &internal.OnceCloseFile{File: f, BeforeClose: file.Unlock},
	}, nil
}

// Path returns the lock file path
func (l *Lock) Path() string {
	return l.path
}

func (l *Lock) release() error {
	return l.f.Close()
}

func logLockHolder(path string) {
	fields := log.Fields{"path": path}
	if pid, ok := lastRecordedPid(path); ok {
		fields["holderPid"] = pid
		if proc, err := ps.FindProcess(pid); err == nil && proc != nil {
			fields["holder"] = proc.Executable()
		}
	}
	log.WithFields(fields).Info("lock is held by another process, waiting")
}

// pidTailSize bounds how much of the lock file is read to find the last pid.
// The file gains a line per acquisition and is never truncated.
const pidTailSize = 64

// lastRecordedPid returns the pid on the last line of the lock file.
func lastRecordedPid(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0, false
	}

	off := fi.Size() - pidTailSize
	if off < 0 {
		off = 0
	}
	b := make([]byte, fi.Size()-off)
	n, err := f.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return 0, false
	}
	b = b[:n]

	b = bytes.TrimRight(b, "\n")
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		b = b[i+1:]
	} else if off > 0 {
		// the last line starts before the tail
		return 0, false
	}
	pid, err := strconv.Atoi(string(b))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
