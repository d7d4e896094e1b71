package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/config"
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
)

// Table renders bordered tables for CLI output.
type Table struct {
	headers []string
	rows    [][]string // raw values (no color) for width calculation
	colored [][]string // colored values for rendering
	widths  []int
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cols ...string) {
	t.AddColoredRow(cols, cols)
}

// AddColoredRow adds a row with separate raw (for widths) and colored (for
// display) values.
func (t *Table) AddColoredRow(raw []string, colored []string) {
	for i, c := range raw {
		if i < len(t.widths) && len(c) > t.widths[i] {
			t.widths[i] = len(c)
		}
	}
	t.rows = append(t.rows, raw)
	t.colored = append(t.colored, colored)
}

// Render writes the table to the given writer with dim borders and bold headers.
func (t *Table) Render(w io.Writer) {
	if len(t.rows) == 0 && len(t.headers) == 0 {
		return
	}
	t.line(w, "┌", "┬", "┐")
	t.headerRow(w)
	t.line(w, "├", "┼", "┤")
	for i := range t.rows {
		t.coloredRow(w, t.rows[i], t.colored[i])
	}
	t.line(w, "└", "┴", "┘")
}

func (t *Table) line(w io.Writer, left, mid, right string) {
	fmt.Fprint(w, dim+left)
	for i, width := range t.widths {
		fmt.Fprint(w, strings.Repeat("─", width+2))
		if i < len(t.widths)-1 {
			fmt.Fprint(w, mid)
		}
	}
	fmt.Fprintln(w, right+reset)
}

func (t *Table) headerRow(w io.Writer) {
	fmt.Fprint(w, dim+"│"+reset)
	for i, width := range t.widths {
		h := ""
		if i < len(t.headers) {
			h = t.headers[i]
		}
		fmt.Fprintf(w, " "+bold+"%-*s"+reset+" "+dim+"│"+reset, width, h)
	}
	fmt.Fprintln(w)
}

func (t *Table) coloredRow(w io.Writer, rawCols, colorCols []string) {
	fmt.Fprint(w, dim+"│"+reset)
	for i, width := range t.widths {
		raw := ""
		col := ""
		if i < len(rawCols) {
			raw = rawCols[i]
		}
		if i < len(colorCols) {
			col = colorCols[i]
		}
		// Pad based on raw (visible) length
		padding := width - len(raw)
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintf(w, " %s%*s "+dim+"│"+reset, col, padding, "")
	}
	fmt.Fprintln(w)
}

// RenderSummary renders the aggregated summary as a bordered console table:
// label and metric, raw values, deltas dimmed, mean delta bold.
func RenderSummary(w io.Writer, s *report.Summary) {
	tbl := NewTable(s.Header()...)
	for _, row := range s.Rows {
		raw := row.Cells()
		colored := make([]string, len(raw))
		colored[0] = Cyan(raw[0])
		colored[1] = raw[1]
		i := 2
		for range row.Values {
			colored[i] = raw[i]
			i++
		}
		for range row.Deltas {
			colored[i] = Dim(raw[i])
			i++
		}
		colored[i] = Bold(raw[i])
		tbl.AddColoredRow(raw, colored)
	}
	tbl.Render(w)
}

// RenderPlan renders the resolved benchmark plan, one row per round.
func RenderPlan(w io.Writer, p *config.Plan) {
	tbl := NewTable("Round", "VM", "Instances", "Executable", "Config")
	for _, rs := range p.Rounds() {
		tbl.AddColoredRow(
			[]string{rs.Key(), rs.Label, strconv.Itoa(rs.Instances), rs.Executable, rs.Config},
			[]string{rs.Key(), Cyan(rs.Label), strconv.Itoa(rs.Instances), rs.Executable, rs.Config},
		)
	}
	tbl.Render(w)
	fmt.Fprintf(w, "readiness: %q  concurrency: %d  launch timeout: %s  settle: %s\n",
		p.Readiness, p.Concurrency, p.LaunchTimeout, p.Settle)
}
