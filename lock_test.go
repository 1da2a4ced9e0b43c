package linerotate

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acquireWithin fails the test if the lock at path is not acquired within d.
func acquireWithin(t *testing.T, path string, d time.Duration) *Lock {
	t.Helper()

	ch := make(chan *Lock, 1)
	errCh := make(chan error, 1)
	go func() {
		l, err := AcquireLock(path, 0644)
		if err != nil {
			errCh <- err
			return
		}
		ch <- l
	}()
	select {
	case l := <-ch:
		return l
	case err := <-errCh:
		t.Fatal(err)
	case <-time.After(d):
		t.Fatalf("lock %s not acquired within %s", path, d)
	}
	return nil
}

func TestAcquireLock_CreatesWithoutTruncating(t *testing.T) {
	t.Parallel()

	dir := createTmpDir()
	defer dir.removeAll()

	l, err := AcquireLock(dir.path("lock"), 0644)
	require.NoError(t, err)
	assert.Equal(t, dir.path("lock"), l.Path())
	require.NoError(t, l.release())
	require.NoError(t, l.release())

	require.NoError(t, dir.writeFile("lock", "left by someone else\n"))
	l, err = AcquireLock(dir.path("lock"), 0644)
	require.NoError(t, err)
	defer l.release()

	pid := strconv.Itoa(os.Getpid())
	assert.Equal(t, "left by someone else\n"+pid+"\n", dir.readFile("lock"))
}

func TestAcquireLock_BlocksUntilReleased(t *testing.T) {
	t.Parallel()

	dir := createTmpDir()
	defer dir.removeAll()

	l1, err := AcquireLock(dir.path("lock"), 0644)
	require.NoError(t, err)

	acquired := make(chan *Lock)
	go func() {
		l2, err := AcquireLock(dir.path("lock"), 0644)
		if err != nil {
			panic(err)
		}
		acquired <- l2
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired twice")
	case <-time.After(200 * time.Millisecond):
	}
	require.NoError(t, l1.release())

	select {
	case l2 := <-acquired:
		require.NoError(t, l2.release())
	case <-time.After(5 * time.Second):
		t.Fatal("lock not acquired after release")
	}
}

func TestAcquireLock_MutualExclusion(t *testing.T) {
	t.Parallel()

	dir := createTmpDir()
	defer dir.removeAll()

	const nGoroutines = 10
	var holders, acquisitions int32

	err := nGroutinesDo(nGoroutines, func() error {
		l, err := AcquireLock(dir.path("lock"), 0644)
		if err != nil {
			return err
		}
		atomic.AddInt32(&acquisitions, 1)
		if n := atomic.AddInt32(&holders, 1); n != 1 {
			return fmt.Errorf("%d holders of the lock", n)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&holders, -1)
		return l.release()
	})
	require.NoError(t, err)
	assert.Equal(t, int32(nGoroutines), atomic.LoadInt32(&acquisitions))
}

func TestAcquireLock_OpenError(t *testing.T) {
	t.Parallel()

	dir := createTmpDir()
	defer dir.removeAll()

	_, err := AcquireLock(dir.path("missing-dir/lock"), 0644)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)), "%v", err)
}

func TestAcquireLock_HeldByAnotherProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a helper program")
	}
	t.Parallel()

	dir := createTmpDir()
	defer dir.removeAll()

	prog := buildHoldLockProg(dir)
	cmd := exec.Command(prog, dir.path("lock"))
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer cmd.Process.Kill()
	go func() { cmd.Wait() }()

	line, err := bufio.NewReader(stdout).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "locked\n", line)

	proc, err := ps.FindProcess(cmd.Process.Pid)
	require.NoError(t, err)
	require.NotNil(t, proc, "process not found")

	pid, ok := lastRecordedPid(dir.path("lock"))
	require.True(t, ok)
	assert.Equal(t, cmd.Process.Pid, pid)

	acquired := make(chan *Lock)
	go func() {
		l, err := AcquireLock(dir.path("lock"), 0644)
		if err != nil {
			panic(err)
		}
		acquired <- l
	}()
	select {
	case <-acquired:
		t.Fatal("lock acquired while held by another process")
	case <-time.After(300 * time.Millisecond):
	}

	// the lock goes away with its holder
	require.NoError(t, cmd.Process.Kill())
	select {
	case l := <-acquired:
		require.NoError(t, l.release())
	case <-time.After(5 * time.Second):
		t.Fatal("lock not acquired after its holder exited")
	}
}

func TestLastRecordedPid(t *testing.T) {
	t.Parallel()

	dir := createTmpDir()
	defer dir.removeAll()

	tt := []struct {
		content string
		want    int
		wantOk  bool
	}{
		{content: "", wantOk: false},
		{content: "123\n", want: 123, wantOk: true},
		{content: "123\n456\n", want: 456, wantOk: true},
		{content: "123\n456", want: 456, wantOk: true},
		{content: "123\ngarbage\n", wantOk: false},
		{content: "-5\n", wantOk: false},
		{content: strings.Repeat("4242\n", 10000) + "77\n", want: 77, wantOk: true},
		{content: "1\n" + strings.Repeat("9", pidTailSize+10) + "\n", wantOk: false},
	}
	for i, te := range tt {
		t.Run(fmt.Sprintf("#%d", i), func(t *testing.T) {
			fn := fmt.Sprintf("lock%d", i)
			require.NoError(t, dir.writeFile(fn, te.content))
			pid, ok := lastRecordedPid(dir.path(fn))
			assert.Equal(t, te.wantOk, ok)
			assert.Equal(t, te.want, pid)
		})
	}

	_, ok := lastRecordedPid(dir.path("missing"))
	assert.False(t, ok)
}
