package linerotate

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

type tmpDir string

func createTmpDir() tmpDir {
	s, err := os.MkdirTemp("", "linerotate-test")
	if err != nil {
		panic(err)
	}
	return tmpDir(s)
}

func (d tmpDir) removeAll() {
	os.RemoveAll(string(d))
}

func (d tmpDir) path(filename string) string {
	return filepath.Join(string(d), filename)
}

func (d tmpDir) readFile(filename string) string {
	b, err := os.ReadFile(d.path(filename))
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

func (d tmpDir) writeFile(filename, content string) error {
	return os.WriteFile(d.path(filename), []byte(content), 0600)
}

// filesExist reports an error for every filename missing from fs.
func filesExist(fs afero.Fs, dir tmpDir, filenames ...string) error {
	var err error
	for _, fn := range filenames {
		if ok, _ := afero.Exists(fs, dir.path(fn)); !ok {
			if err == nil {
				err = fmt.Errorf("%s is not exists", fn)
			} else {
				err = fmt.Errorf("%s is not exists: %v", fn, err)
			}
		}
	}
	return err
}

// filesNotExist reports an error for every filename present in fs.
func filesNotExist(fs afero.Fs, dir tmpDir, filenames ...string) error {
	var err error
	for _, fn := range filenames {
		if ok, _ := afero.Exists(fs, dir.path(fn)); ok {
			if err == nil {
				err = fmt.Errorf("%s is exists", fn)
			} else {
				err = fmt.Errorf("%s is exists: %v", fn, err)
			}
		}
	}
	return err
}

func writeNCount(w io.Writer, s string, nCount int) error {
	for nCount > 0 {
		n, err := fmt.Fprint(w, s)
		if err != nil {
			return err
		}
		nCount -= n
	}
	return nil
}

func containsNCount(s string, nCount int, fs afero.Fs, d tmpDir, filenames ...string) error {
	var buf bytes.Buffer
	for _, fn := range filenames {
		b, err := afero.ReadFile(fs, d.path(fn))
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	cat := buf.String()
	count := strings.Count(cat, s)
	if count != nCount {
		return fmt.Errorf("%s contains %d count %v", s, count, filenames)
	}
	return nil
}

func emptyFile(fs afero.Fs, d tmpDir, filename string) error {
	fi, err := fs.Stat(d.path(filename))
	if err != nil {
		return err
	}
	if fi.Size() > 0 {
		return fmt.Errorf("%s is not empty (%d bytes)", filename, fi.Size())
	}
	return nil
}

func touchFiles(fs afero.Fs, d tmpDir, filenames ...string) error {
	for _, fn := range filenames {
		// the content names the file, so renames can be traced
		if err := afero.WriteFile(fs, d.path(fn), []byte(fn), 0600); err != nil {
			return err
		}
	}
	return nil
}

func nGroutinesDo(n int, fn func() error) error {
	eg := errgroup.Group{}
	for i := 0; i < n; i++ {
		eg.Go(fn)
	}
	return eg.Wait()
}

func buildHoldLockProg(dir tmpDir) string {
	dstPath := dir.path("holdlock" + binExtension())
	srcPath := filepath.Join("testdata", "cmd", "holdlock", "main.go")
	cmd := exec.Command("go", "build", "-o", dstPath, srcPath)

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		panic(err)
	}
	if err := cmd.Wait(); err != nil {
		panic(err)
	}
	return dstPath
}

func binExtension() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
