package linerotate

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LockPolicy decides what a failure to take the lock file means.
type LockPolicy int

const (
	// LockRequired makes a lock failure fatal before anything is written.
	LockRequired LockPolicy = iota
	// LockBestEffort logs a lock failure and keeps going unlocked.
	LockBestEffort
)

func (p LockPolicy) String() string {
	if p == LockBestEffort {
		return "best-effort"
	}
	return "required"
}

// Config of a Writer. It does not change once the Writer is created.
type Config struct {
	// LockFileName is the advisory lock file.
	LockFileName string
	// OutputFileName is generation 0; backups are OutputFileName.N.
	OutputFileName string
	// MaxFileSize triggers a rotation once reached.
	MaxFileSize int64
	// MaxOutputFiles counts the active file plus MaxOutputFiles-1 backups.
	MaxOutputFiles int
	Permission     os.FileMode
	LockPolicy     LockPolicy
}

// Validate reports the first problem with c, if any.
func (c Config) Validate() error {
	switch {
	case c.LockFileName == "":
		return errors.New("lock file name is empty")
	case c.OutputFileName == "":
		return errors.New("output file name is empty")
	case c.MaxFileSize <= 0:
		return errors.Errorf("max file size must be positive (%d)", c.MaxFileSize)
	case c.MaxOutputFiles < 0:
		return errors.Errorf("max output files must not be negative (%d)", c.MaxOutputFiles)
	case c.Permission&0200 == 0:
		return errors.Errorf("permission %v does not let the owner write", c.Permission)
	}
	// The lock file must stay out of the rename chain, or a rotation moves the
	// locked file away and a second instance can lock a fresh one.
	lock := filepath.Clean(c.LockFileName)
	for gen := 0; gen == 0 || gen < c.MaxOutputFiles; gen++ {
		if name := GenerationName(c.OutputFileName, gen); lock == filepath.Clean(name) {
			return errors.Errorf("lock file %q is generation %d of the output file", c.LockFileName, gen)
		}
	}
	return nil
}
