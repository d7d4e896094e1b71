// Package procinspect reads process information from the proc filesystem:
// PID discovery by command path and memory/thread extraction from
// /proc/<pid>/status.
package procinspect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrProcessGone is returned when a process's status file cannot be read,
// typically because the process exited between discovery and read.
var ErrProcessGone = errors.New("process gone")

// Inspector reads process information from a proc filesystem root.
// The zero value reads the real /proc; tests point Root at a fake tree.
type Inspector struct {
	Root string
}

func (in *Inspector) procRoot() string {
	if in.Root != "" {
		return in.Root
	}
	return "/proc"
}

// FindPID enumerates running processes and returns the PID of the first one
// whose command path (argv[0]) starts with pathPrefix. Returns 0 when nothing
// matches; it never fails. First match wins: with several live processes under
// the same path the choice is arbitrary, so callers that launched the child
// themselves should cross-check against the PID they own.
func (in *Inspector) FindPID(pathPrefix string) int {
	entries, err := os.ReadDir(in.procRoot())
	if err != nil {
		return 0
	}
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		if strings.HasPrefix(in.commandPath(pid), pathPrefix) {
			return pid
		}
	}
	return 0
}

// commandPath returns argv[0] of a process, or "" when unreadable.
func (in *Inspector) commandPath(pid int) string {
	data, err := os.ReadFile(filepath.Join(in.procRoot(), strconv.Itoa(pid), "cmdline"))
	if err != nil || len(data) == 0 {
		return ""
	}
	args := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	return args[0]
}

// ReadStatus reads /proc/<pid>/status and returns only the lines whose key
// starts with "Vm", "Rss", or "Threads", verbatim and in original order.
// These are the memory and thread fields the benchmark records.
func (in *Inspector) ReadStatus(pid int) (string, error) {
	path := filepath.Join(in.procRoot(), strconv.Itoa(pid), "status")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrProcessGone, path, err)
	}

	var b strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "Vm") ||
			strings.HasPrefix(line, "Rss") ||
			strings.HasPrefix(line, "Threads") {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
