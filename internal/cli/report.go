package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/display"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportChart string
	reportWrite bool
	reportRawMD bool
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Re-analyze an existing report file",
	Long: `Parse the raw status blocks of a previously recorded report and print
the delta summary. A report that already contains an appended summary
can be analyzed again; summary sections are skipped on parse.`,
	Example: `  # Print the summary table for a finished report
  wasmbench report report_2026-08-26T10-00-00.md

  # Append the summary section to the report file as well
  wasmbench report report.md --write

  # Braille chart of RSS growth per runtime
  wasmbench report report.md --chart VmRSS

  # Raw parsed rounds as JSON
  wasmbench report report.md --json`,
	Args: cobra.ExactArgs(1),
	Run:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportChart, "chart", "", "render a growth chart for the given metric (e.g. VmRSS)")
	f.BoolVar(&reportWrite, "write", false, "append the summary section to the report file")
	f.BoolVar(&reportRawMD, "md", false, "print the summary as a markdown pipe table")
}

func runReport(cmd *cobra.Command, args []string) {
	path := args[0]

	rounds, err := report.Parse(path)
	if err != nil {
		exitError(fmt.Sprintf("parse %s: %v", path, err))
	}
	if len(rounds) == 0 {
		exitError(fmt.Sprintf("no measurement blocks found in %s", path))
	}

	if jsonOutput {
		out, _ := json.MarshalIndent(rounds, "", "  ")
		fmt.Println(string(out))
		return
	}

	summary, err := report.Summarize(rounds)
	if err != nil {
		exitError(fmt.Sprintf("summarize %s: %v", path, err))
	}

	if reportWrite {
		if err := report.AppendSummary(path, summary.Markdown()); err != nil {
			exitError(fmt.Sprintf("append summary: %v", err))
		}
	}

	if reportChart != "" {
		series := display.MetricSeries(summary, reportChart)
		if len(series) == 0 {
			exitError(fmt.Sprintf("no rounds carry metric %q", reportChart))
		}
		display.RenderChart(os.Stdout, display.ChartConfig{
			Title:  reportChart + " by instance count (kB)",
			Width:  60,
			Height: 15,
		}, series)
		return
	}

	if reportRawMD {
		fmt.Print(summary.Markdown())
		return
	}
	display.RenderSummary(os.Stdout, summary)
}
