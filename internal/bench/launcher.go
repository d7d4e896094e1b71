package bench

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/logwriter"
)

// ErrLaunchTimeout means the readiness marker never appeared on the child's
// merged output within the launch bound.
var ErrLaunchTimeout = errors.New("launch timeout")

// ErrExitedEarly means the child terminated before signaling readiness.
var ErrExitedEarly = errors.New("process exited before readiness")

// killTimeout is how long Stop waits after SIGTERM before escalating.
const killTimeout = 5 * time.Second

// Handle is a live child process owned by the current round.
type Handle struct {
	cmd      *exec.Cmd
	exitCh   chan struct{}
	stopOnce sync.Once
}

// PID returns the child's process ID.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Stop terminates the child's process group: SIGTERM, then SIGKILL if it has
// not exited within the kill timeout. Safe to call more than once and on an
// already-dead child.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		pid := h.cmd.Process.Pid
		syscall.Kill(-pid, syscall.SIGTERM)
		select {
		case <-h.exitCh:
		case <-time.After(killTimeout):
			syscall.Kill(-pid, syscall.SIGKILL)
			<-h.exitCh
		}
	})
}

// Launcher starts proxy processes and waits for their readiness marker.
type Launcher struct {
	Readiness   string        // substring signaling the child finished init
	Concurrency int           // --concurrency argument for the child
	Timeout     time.Duration // readiness bound
	LogDir      string        // child output capture directory, "" disables
}

// Launch spawns `<exe> -c <cfg> --concurrency <n>` in its own process group
// with stdout and stderr merged, then scans the merged stream line by line
// until the readiness marker appears. Every line read is teed to a per-round
// rotating log under LogDir, and the stream keeps draining in the background
// after readiness so the child never blocks on a full pipe.
//
// Fails with ErrLaunchTimeout when the marker is not seen within Timeout and
// with ErrExitedEarly when the child dies first; in both cases the child is
// already stopped when Launch returns.
func (l *Launcher) Launch(exePath, cfgPath, key string) (*Handle, error) {
	cmd := exec.Command(exePath, "-c", cfgPath, "--concurrency", strconv.Itoa(l.Concurrency))
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	var childLog *logwriter.RotatingWriter
	if l.LogDir != "" {
		os.MkdirAll(l.LogDir, 0755)
		childLog, _ = logwriter.New(filepath.Join(l.LogDir, key+".log"), 0, 0)
	}

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		if childLog != nil {
			childLog.Close()
		}
		return nil, fmt.Errorf("start %s: %w", exePath, err)
	}
	// The child holds the write side now.
	pw.Close()

	h := &Handle{cmd: cmd, exitCh: make(chan struct{})}
	go func() {
		cmd.Wait()
		close(h.exitCh)
	}()

	ready := make(chan struct{})
	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		defer pr.Close()
		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		seen := false
		for sc.Scan() {
			line := sc.Text()
			if childLog != nil {
				fmt.Fprintln(childLog, line)
			}
			if !seen && strings.Contains(line, l.Readiness) {
				seen = true
				close(ready)
			}
		}
		if childLog != nil {
			childLog.Close()
		}
	}()

	deadline := time.After(l.Timeout)
	select {
	case <-ready:
		return h, nil
	case <-deadline:
		h.Stop()
		return nil, fmt.Errorf("%w: %q not seen within %s", ErrLaunchTimeout, l.Readiness, l.Timeout)
	case <-h.exitCh:
		// The marker may still be buffered in the pipe; wait for the
		// scanner to drain before deciding.
		select {
		case <-ready:
			return h, nil
		case <-scanDone:
			return nil, fmt.Errorf("%w: %s", ErrExitedEarly, exePath)
		case <-deadline:
			return nil, fmt.Errorf("%w: %q not seen within %s", ErrLaunchTimeout, l.Readiness, l.Timeout)
		}
	}
}

// ResolveExecutable follows symlinks to the real binary path, matching what
// the kernel records as the running command. Unresolvable paths are returned
// unchanged; the launch will surface the real error.
func ResolveExecutable(path string) string {
	for i := 0; i < 40; i++ {
		fi, err := os.Lstat(path)
		if err != nil || fi.Mode()&os.ModeSymlink == 0 {
			return path
		}
		target, err := os.Readlink(path)
		if err != nil {
			return path
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = target
	}
	return path
}
