package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clipv/clipv/internal/client"
	"github.com/clipv/clipv/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.HistorySize = 5
	cfg.PollingInterval = config.Duration(20 * time.Millisecond)
	cfg.SocketPath = filepath.Join(dir, "clipvd.sock")
	cfg.LockPath = filepath.Join(dir, "clipvd.lock")
	return cfg
}

// run starts the daemon and waits until its socket accepts commands.
func run(t *testing.T, cfg *config.Config) (ctx context.Context, cancel context.CancelFunc, done chan error) {
	t.Helper()
	ctx, cancel = context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() {
		done <- New(cfg, zap.NewNop()).Run(ctx)
	}()

	c := client.New(cfg.SocketPath)
	require.Eventually(t, func() bool {
		_, err := c.Snapshot()
		return err == nil
	}, 3*time.Second, 20*time.Millisecond, "daemon did not come up")
	return ctx, cancel, done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not shut down within deadline")
		return nil
	}
}

func TestStopCommandShutsDownAndCleansUp(t *testing.T) {
	cfg := testConfig(t)
	_, cancel, done := run(t, cfg)
	defer cancel()

	resp, err := client.New(cfg.SocketPath).Stop()
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "stop signal received")

	require.NoError(t, waitDone(t, done))

	_, err = os.Stat(cfg.SocketPath)
	assert.True(t, os.IsNotExist(err), "socket file must be removed on shutdown")
	_, err = os.Stat(cfg.LockPath)
	assert.True(t, os.IsNotExist(err), "lock file must be removed on shutdown")
}

func TestContextCancelShutsDown(t *testing.T) {
	cfg := testConfig(t)
	_, cancel, done := run(t, cfg)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestSecondInstanceFailsFast(t *testing.T) {
	cfg := testConfig(t)
	_, cancel, done := run(t, cfg)
	defer cancel()

	err := New(cfg, zap.NewNop()).Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// The second instance must not have torn down the first one's
	// socket: it is still serving.
	_, serr := client.New(cfg.SocketPath).Snapshot()
	assert.NoError(t, serr)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestLockFileRecordsOwnerPID(t *testing.T) {
	cfg := testConfig(t)
	_, cancel, done := run(t, cfg)
	defer cancel()

	pid, err := ReadLockPID(cfg.LockPath)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, Alive(pid))

	st := Probe(cfg.LockPath)
	assert.True(t, st.Running)
	assert.Equal(t, os.Getpid(), st.PID)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestStaleLockFileIsReclaimed(t *testing.T) {
	cfg := testConfig(t)

	// A lock file left behind by a dead daemon: the file exists but
	// no process holds the flock.
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.LockPath), 0o700))
	require.NoError(t, os.WriteFile(cfg.LockPath, []byte("999999"), 0o644))

	_, cancel, done := run(t, cfg)
	defer cancel()

	pid, err := ReadLockPID(cfg.LockPath)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid, "stale lock must be reclaimed by the new owner")

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestProbeWithoutLockFile(t *testing.T) {
	st := Probe(filepath.Join(t.TempDir(), "absent.lock"))
	assert.False(t, st.Running)
}
