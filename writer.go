package linerotate

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/kei2100/linerotate/internal/file"
	"github.com/kei2100/linerotate/internal/state"
	"github.com/kei2100/linerotate/metrics"
)

// ErrClosed is returned when writing to a Writer which has terminated.
var ErrClosed = errors.New("linerotate: writer is closed")

// NewWriter creates a *linerotate.Writer for files under dir. It takes the
// lock file first, which blocks while another process holds it, then opens
// the output file for appending.
func NewWriter(dir string, opts ...OptionFunc) (*Writer, error) {
	var opt option
	opt.apply(opts...)
	if err := opt.Validate(); err != nil {
		return nil, errors.Wrap(err, "linerotate: invalid config")
	}
	fs := opt.fs
	if fs == nil {
		fs = file.Fs()
	}

	outputPath := filepath.Join(dir, opt.OutputFileName)
	plan := NewRotationPlan(outputPath, opt.MaxOutputFiles)
	log.WithField("plan", plan).Debug("rotation plan")

	lockPath := filepath.Join(dir, opt.LockFileName)
	lock, err := AcquireLock(lockPath, opt.Permission)
	if err != nil {
		if opt.LockPolicy == LockRequired {
			return nil, err
		}
		log.WithFields(log.Fields{"path": lockPath, "err": err}).Warn("continuing without lock")
	}

	size := initialOutputFileSize(fs, outputPath)
	f, err := fs.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, opt.Permission)
	if err != nil {
		if lock != nil {
			lock.release()
		}
		return nil, errors.Wrapf(err, "open %s", outputPath)
	}

	st := state.NewState()
	st.ResetSize(size)
	st.CompareAndSwapPhase(state.Idle, state.Appending)
	metrics.OutputSizeBytes.Set(float64(size))
	log.WithFields(log.Fields{"path": outputPath, "size": size}).Debug("opened output file")

	return &Writer{
		f:          f,
		fs:         fs,
		state:      st,
		lock:       lock,
		plan:       plan,
		outputPath: outputPath,
		opt:        opt,
	}, nil
}

// Writer appends records to the output file and rotates it once the
// configured size is reached. A Writer is meant to be driven by a single
// goroutine; State and Size may be read from others.
type Writer struct {
	f     afero.File
	fs    afero.Fs
	state *state.State
	lock  *Lock

	plan       RotationPlan
	outputPath string
	opt        option

	closeOnce sync.Once
	closeErr  error
}

// Run appends r to the output file one line at a time until r is exhausted.
// A final line without terminator is written as is. It returns nil at end of
// input and the first read, write or open error otherwise.
func (w *Writer) Run(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, rerr := br.ReadBytes('\n')
		if len(line) > 0 {
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			log.Debug("end of input")
			w.state.StoreAsTerminated()
			return nil
		} else if rerr != nil {
			w.state.StoreAsTerminated()
			return errors.Wrap(rerr, "read input")
		}
	}
}

// Write implements io.Writer. p is appended as a single record, and the
// output file is rotated afterwards if the policy asks for it.
func (w *Writer) Write(p []byte) (int, error) {
	if w.state.IsTerminated() {
		return 0, ErrClosed
	}

	n, err := w.f.Write(p)
	size := w.state.AddSize(int64(n))
	metrics.WrittenBytesTotal.Add(float64(n))
	metrics.OutputSizeBytes.Set(float64(size))
	if err != nil {
		w.state.StoreAsTerminated()
		return n, errors.Wrapf(err, "write %s", w.outputPath)
	}
	metrics.WrittenLinesTotal.Inc()

	if !w.opt.policy.NeedRotate(FileState{Size: size}) {
		return n, nil
	}
	if err := w.rotate(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *Writer) rotate() error {
	if !w.state.CompareAndSwapPhase(state.Appending, state.Rotating) {
		return ErrClosed
	}
	log.WithFields(log.Fields{
		"path": w.outputPath,
		"size": humanize.IBytes(uint64(w.state.Size())),
	}).Info("rotating output file")

	if err := w.f.Close(); err != nil {
		log.WithFields(log.Fields{"path": w.outputPath, "err": err}).Warn("failed to close output file before rotation")
	}
	if errs := w.plan.Apply(w.fs); errs != nil {
		log.WithField("failed", countErrors(errs)).Debug("rotation finished with rename failures")
	}

	f, err := w.fs.OpenFile(w.outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, w.opt.Permission)
	if err != nil {
		w.state.StoreAsTerminated()
		return errors.Wrapf(err, "reopen %s", w.outputPath)
	}
	w.f = f
	w.state.ResetSize(0)
	metrics.OutputSizeBytes.Set(0)
	metrics.RotationsTotal.Inc()
	w.state.CompareAndSwapPhase(state.Rotating, state.Appending)
	return nil
}

// State returns the current phase of the writer loop.
func (w *Writer) State() state.Phase {
	return w.state.Phase()
}

// Size returns the bytes appended since the output file was last opened
// fresh, seeded with its size at startup.
func (w *Writer) Size() int64 {
	return w.state.Size()
}

// Plan returns the rotation plan, computed once at construction.
func (w *Writer) Plan() RotationPlan {
	return w.plan
}

// Config returns the configuration of w.
func (w *Writer) Config() Config {
	return w.opt.Config
}

// Close closes the output file and releases the lock file.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		w.state.StoreAsTerminated()
		// after a failed reopen, w.f is the already closed previous file
		if err := w.f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			w.closeErr = err
		}
		if w.lock != nil {
			if err := w.lock.release(); err != nil && w.closeErr == nil {
				w.closeErr = err
			}
		}
	})
	return w.closeErr
}

// initialOutputFileSize seeds the rotation trigger so that a restart does not
// reset it. A missing file, or a size that cannot be tracked, counts as 0.
func initialOutputFileSize(fs afero.Fs, path string) int64 {
	fi, err := fs.Stat(path)
	if err != nil {
		return 0
	}
	if fi.Size() < 0 {
		log.WithFields(log.Fields{"path": path, "size": fi.Size()}).Debug("unusable output file size, using 0")
		return 0
	}
	return fi.Size()
}

func countErrors(errs []error) int {
	var n int
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}
