package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ReadLockPID returns the PID recorded in the lock file.
func ReadLockPID(lockPath string) (int, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon: invalid pid in lock file %s: %q", lockPath, data)
	}
	return pid, nil
}

// Alive reports whether pid names a live process we may signal.
// Signal 0 performs the existence check without delivering anything.
func Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

// Status describes the daemon a lock file points at.
type Status struct {
	Running bool
	PID     int
}

// Probe inspects the lock file at lockPath.
func Probe(lockPath string) Status {
	pid, err := ReadLockPID(lockPath)
	if err != nil {
		return Status{}
	}
	return Status{Running: Alive(pid), PID: pid}
}
