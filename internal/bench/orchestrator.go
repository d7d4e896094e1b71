// Package bench drives measurement rounds: launch the proxy, wait for it to
// settle, locate it, scrape its status file, record the result, tear it down.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/config"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
)

// ErrProcessNotFound means the locator found no running process matching the
// executable path after the child reported readiness.
var ErrProcessNotFound = errors.New("no running process matches executable path")

// State is a round's position in its lifecycle.
type State string

const (
	StateLaunching  State = "launching"
	StateWaiting    State = "waiting"
	StateLocating   State = "locating"
	StateReading    State = "reading"
	StateRecorded   State = "recorded"
	StateFailed     State = "failed"
	StateTerminated State = "terminated"
)

// Event is a round progress notification for live observers such as the TUI.
type Event struct {
	Index int // zero-based round index
	Total int
	Key   string
	State State
	Err   error // set on StateFailed
}

// Inspector is the process-introspection surface the orchestrator needs.
// *procinspect.Inspector satisfies it.
type Inspector interface {
	FindPID(pathPrefix string) int
	ReadStatus(pid int) (string, error)
}

// RoundEmitter receives recorded rounds, e.g. for telemetry export.
type RoundEmitter interface {
	EmitRound(r report.Round)
}

// Runner executes a benchmark plan round by round, strictly sequentially.
// Rounds fail independently: any per-round error is logged and swallowed, and
// the child process is always stopped before the next round starts.
type Runner struct {
	Plan       *config.Plan
	ReportPath string
	Inspector  Inspector
	Logger     *log.Logger
	Emitter    RoundEmitter // optional
	Events     chan<- Event // optional
}

// Run executes all rounds of the plan and returns how many failed.
func (r *Runner) Run() int {
	rounds := r.Plan.Rounds()
	r.logger().Info("start recording", "rounds", len(rounds), "report", r.ReportPath)

	failed := 0
	for i, rs := range rounds {
		if err := r.runRound(i, len(rounds), rs); err != nil {
			failed++
			r.logger().Error("round failed", "round", rs.Key(), "error", err)
		}
	}
	if failed > 0 {
		r.logger().Warn("recording finished with failures", "failed", failed, "total", len(rounds))
	} else {
		r.logger().Info("recording finished", "rounds", len(rounds))
	}
	return failed
}

// runRound performs one launch-measure-terminate cycle. The deferred blocks
// guarantee the child is stopped and a settle period elapses on every path,
// so a failed round never leaks a process into the next one.
func (r *Runner) runRound(index, total int, rs config.RoundSpec) (err error) {
	settle := r.Plan.Settle.Duration
	defer func() {
		if err != nil {
			r.emit(index, total, rs, StateFailed, err)
		}
		r.emit(index, total, rs, StateTerminated, nil)
		time.Sleep(settle)
	}()

	r.emit(index, total, rs, StateLaunching, nil)
	exe := ResolveExecutable(rs.Executable)
	launcher := &Launcher{
		Readiness:   r.Plan.Readiness,
		Concurrency: r.Plan.Concurrency,
		Timeout:     r.Plan.LaunchTimeout.Duration,
		LogDir:      r.Plan.LogDir,
	}
	h, err := launcher.Launch(exe, rs.Config, rs.Key())
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	defer h.Stop()

	r.emit(index, total, rs, StateWaiting, nil)
	time.Sleep(settle)

	r.emit(index, total, rs, StateLocating, nil)
	pid := r.Inspector.FindPID(exe)
	if pid == 0 {
		return fmt.Errorf("%w: %s", ErrProcessNotFound, exe)
	}
	if pid != h.PID() {
		// Path-prefix matching is first-match-wins; a stale process from an
		// earlier run can shadow ours. The child we launched is authoritative.
		r.logger().Warn("located PID differs from launched child, using child PID",
			"round", rs.Key(), "located", pid, "child", h.PID())
		pid = h.PID()
	}
	r.logger().Info("proxy located", "round", rs.Key(), "pid", pid)

	r.emit(index, total, rs, StateReading, nil)
	text, err := r.Inspector.ReadStatus(pid)
	if err != nil {
		return fmt.Errorf("read status of pid %d: %w", pid, err)
	}

	if err := report.AppendBlock(r.ReportPath, rs.Key(), text); err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	if r.Emitter != nil {
		r.Emitter.EmitRound(report.RoundFromStatus(rs.Label, rs.Instances, text))
	}
	r.emit(index, total, rs, StateRecorded, nil)
	return nil
}

func (r *Runner) emit(index, total int, rs config.RoundSpec, state State, err error) {
	if r.Events == nil {
		return
	}
	r.Events <- Event{Index: index, Total: total, Key: rs.Key(), State: state, Err: err}
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
