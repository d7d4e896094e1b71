package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/bench"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/config"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/display"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/gui"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/procinspect"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	runPlanFile    string
	runReportFile  string
	runTUI         bool
	runCollectOnly bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Record all rounds and append the summary",
	Long: `Execute every round of the benchmark plan: launch the proxy, wait for
readiness, read its /proc/[pid]/status, append the raw block to the
report, and stop it. After the last round the report is re-parsed and
a delta summary is appended and printed.

Rounds fail independently; a failed launch or read is logged and the
run continues with the next round.`,
	Example: `  # Run the default plan, write report_<timestamp>.md
  wasmbench run

  # Run a custom plan into a fixed report with the live TUI
  wasmbench run --plan bench.yaml --report report.md --tui

  # Record only, analyze later with "wasmbench report"
  wasmbench run --collect-only`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runPlanFile, "plan", "", "benchmark plan YAML (default: wasmbench.yaml, then built-in matrix)")
	f.StringVar(&runReportFile, "report", "", "report file to append to (default: report_<timestamp>.md)")
	f.BoolVar(&runTUI, "tui", false, "show the live round progress TUI")
	f.BoolVar(&runCollectOnly, "collect-only", false, "record rounds without appending the summary")
}

func runRun(cmd *cobra.Command, args []string) {
	res, err := config.Load(runPlanFile)
	if err != nil {
		exitError(err.Error())
	}
	plan := res.Plan

	reportPath := runReportFile
	if reportPath == "" {
		reportPath = plan.ReportPath()
	}

	logDest := io.Writer(os.Stderr)
	if runTUI {
		// Log lines would tear the TUI; keep stderr quiet while it runs.
		logDest = io.Discard
	}
	logger := log.NewWithOptions(logDest, log.Options{
		Prefix:          "wasmbench",
		ReportTimestamp: true,
	})
	logger.Info("plan resolved", "source", res.Source, "rounds", len(plan.Rounds()))

	runner := &bench.Runner{
		Plan:       plan,
		ReportPath: reportPath,
		Inspector:  &procinspect.Inspector{},
		Logger:     logger,
	}

	if plan.Telegraf != nil && plan.Telegraf.UDP != "" {
		emitter, err := telemetry.NewTelegrafEmitter(plan.Telegraf.UDP, plan.Telegraf.Measurement)
		if err != nil {
			logger.Warn("telegraf disabled", "error", err)
		} else {
			defer emitter.Close()
			runner.Emitter = emitter
		}
	}

	failed := 0
	if runTUI {
		events := make(chan bench.Event, 16)
		runner.Events = events
		runDone := make(chan struct{})
		go func() {
			failed = runner.Run()
			close(events)
			close(runDone)
		}()
		if err := gui.Run(plan.Rounds(), events); err != nil {
			exitError(fmt.Sprintf("tui failed: %v", err))
		}
		// Quitting the TUI early does not abort the run; rounds keep
		// completing in the background until the batch is done.
		<-runDone
	} else {
		failed = runner.Run()
	}

	rounds, err := report.Parse(reportPath)
	if err != nil {
		exitError(fmt.Sprintf("parse %s: %v", reportPath, err))
	}

	if runCollectOnly {
		fmt.Printf("recorded %d/%d rounds in %s\n", len(rounds), len(plan.Rounds()), reportPath)
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	summary, err := report.Summarize(rounds)
	if err != nil {
		exitError(fmt.Sprintf("summarize %s: %v", reportPath, err))
	}
	if err := report.AppendSummary(reportPath, summary.Markdown()); err != nil {
		exitError(fmt.Sprintf("append summary: %v", err))
	}

	if jsonOutput {
		out, _ := json.MarshalIndent(summary.Rows, "", "  ")
		fmt.Println(string(out))
	} else {
		display.RenderSummary(os.Stdout, summary)
		fmt.Printf("report written to %s\n", reportPath)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
