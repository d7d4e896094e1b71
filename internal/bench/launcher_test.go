package bench

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// fakeProxy writes an executable shell script standing in for envoy-static.
// The script receives the usual `-c <cfg> --concurrency <n>` arguments.
func fakeProxy(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func processGone(pid int) bool {
	return syscall.Kill(pid, 0) != nil
}

func TestLaunchReadiness(t *testing.T) {
	exe := fakeProxy(t, "envoy-static",
		`echo "[info] booting"
echo "[info][main] starting main dispatch loop"
sleep 30`)
	l := &Launcher{Readiness: "starting main dispatch loop", Concurrency: 2, Timeout: 5 * time.Second}

	start := time.Now()
	h, err := l.Launch(exe, "dummy.yaml", "v8_1_vm")
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("readiness should return well before the timeout")
	}
	pid := h.PID()
	if pid <= 0 {
		t.Fatalf("PID = %d", pid)
	}

	h.Stop()
	if !processGone(pid) {
		t.Errorf("child %d still alive after Stop", pid)
	}
	// Stop is idempotent.
	h.Stop()
}

func TestLaunchTimeout(t *testing.T) {
	exe := fakeProxy(t, "envoy-static", `echo "no marker here"
sleep 30`)
	l := &Launcher{Readiness: "starting main dispatch loop", Concurrency: 2, Timeout: 300 * time.Millisecond}

	_, err := l.Launch(exe, "dummy.yaml", "v8_1_vm")
	if !errors.Is(err, ErrLaunchTimeout) {
		t.Fatalf("err = %v, want ErrLaunchTimeout", err)
	}
}

func TestLaunchExitedEarly(t *testing.T) {
	exe := fakeProxy(t, "envoy-static", `echo "config error"
exit 1`)
	l := &Launcher{Readiness: "starting main dispatch loop", Concurrency: 2, Timeout: 5 * time.Second}

	start := time.Now()
	_, err := l.Launch(exe, "dummy.yaml", "v8_1_vm")
	if !errors.Is(err, ErrExitedEarly) {
		t.Fatalf("err = %v, want ErrExitedEarly", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("early exit should not wait for the full timeout")
	}
}

func TestLaunchMarkerRightBeforeExit(t *testing.T) {
	// The marker can land in the pipe at the same moment the child exits;
	// the launcher must still see it.
	exe := fakeProxy(t, "envoy-static", `echo "starting main dispatch loop"`)
	l := &Launcher{Readiness: "starting main dispatch loop", Concurrency: 2, Timeout: 5 * time.Second}

	h, err := l.Launch(exe, "dummy.yaml", "v8_1_vm")
	if err != nil {
		t.Fatalf("marker before exit should count as ready: %v", err)
	}
	h.Stop()
}

func TestLaunchCapturesChildOutput(t *testing.T) {
	logDir := t.TempDir()
	exe := fakeProxy(t, "envoy-static",
		`echo "[info] wasm vm created"
echo "starting main dispatch loop"
sleep 30`)
	l := &Launcher{
		Readiness:   "starting main dispatch loop",
		Concurrency: 2,
		Timeout:     5 * time.Second,
		LogDir:      logDir,
	}

	h, err := l.Launch(exe, "dummy.yaml", "wasmtime_2_vm")
	if err != nil {
		t.Fatal(err)
	}
	h.Stop()

	// Stop closes the pipe, the scanner drains and closes the log.
	deadline := time.Now().Add(2 * time.Second)
	logPath := filepath.Join(logDir, "wasmtime_2_vm.log")
	for {
		data, _ := os.ReadFile(logPath)
		if strings.Contains(string(data), "wasm vm created") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("child log not captured: %q", data)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLaunchMissingExecutable(t *testing.T) {
	l := &Launcher{Readiness: "x", Concurrency: 2, Timeout: time.Second}
	_, err := l.Launch(filepath.Join(t.TempDir(), "nope"), "dummy.yaml", "k")
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
}

func TestResolveExecutable(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "envoy-static")
	if err := os.WriteFile(real, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	link1 := filepath.Join(dir, "current")
	link2 := filepath.Join(dir, "envoy")
	if err := os.Symlink(real, link1); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(link1, link2); err != nil {
		t.Fatal(err)
	}

	if got := ResolveExecutable(link2); got != real {
		t.Errorf("ResolveExecutable = %q, want %q", got, real)
	}
	if got := ResolveExecutable(real); got != real {
		t.Errorf("plain file resolved to %q", got)
	}
	missing := filepath.Join(dir, "missing")
	if got := ResolveExecutable(missing); got != missing {
		t.Errorf("missing path resolved to %q", got)
	}
}
