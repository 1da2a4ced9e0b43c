package internal

import (
	"os"
	"sync"
)

// OnceCloseFile closes the wrapped file at most once, running the optional
// BeforeClose hook (e.g. releasing a lock) first. Later calls return the
// result of the first.
type OnceCloseFile struct {
	once sync.Once
	err  error
	*os.File
	BeforeClose func(*os.File) error
}

func (ocf *OnceCloseFile) Close() error {
	ocf.once.Do(func() {
		if ocf.BeforeClose != nil {
			ocf.err = ocf.BeforeClose(ocf.File)
		}
		if err := ocf.File.Close(); ocf.err == nil {
			ocf.err = err
		}
	})
	return ocf.err
}
