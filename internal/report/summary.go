package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one summary table line: the ordered metric values for a
// configuration, the successive deltas between them, and the mean delta.
type Row struct {
	Label    string
	Metric   string
	Values   []int64
	Deltas   []int64
	AvgDelta float64
}

// Summary is the aggregated view of a parsed report: one Row per
// (configuration, metric) pair, configurations in first-appearance order,
// metrics in declared order.
type Summary struct {
	Rows      []Row
	MaxRounds int // widest value count across rows, sizes the table header
}

// Summarize aggregates parsed rounds. Values for a (label, metric) pair are
// collected in file order, which is the order the rounds were measured in.
// At least two values per pair are required: with fewer there are no deltas
// to average. A metric absent from every round of a configuration produces
// no row.
func Summarize(rounds []Round) (*Summary, error) {
	var labels []string
	seen := make(map[string]bool)
	for _, r := range rounds {
		if !seen[r.Label] {
			seen[r.Label] = true
			labels = append(labels, r.Label)
		}
	}

	s := &Summary{}
	for _, label := range labels {
		for _, metric := range MetricOrder {
			var values []int64
			for _, r := range rounds {
				if r.Label != label {
					continue
				}
				if v, ok := r.Metrics[metric]; ok {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				continue
			}
			deltas, avg, err := Deltas(values)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", label, metric, err)
			}
			s.Rows = append(s.Rows, Row{
				Label:    label,
				Metric:   metric,
				Values:   values,
				Deltas:   deltas,
				AvgDelta: avg,
			})
			if len(values) > s.MaxRounds {
				s.MaxRounds = len(values)
			}
		}
	}
	return s, nil
}

// Deltas computes successive differences between consecutive values and their
// arithmetic mean. Requires at least two values.
func Deltas(values []int64) ([]int64, float64, error) {
	if len(values) < 2 {
		return nil, 0, fmt.Errorf("need at least 2 rounds, have %d", len(values))
	}
	deltas := make([]int64, 0, len(values)-1)
	var sum int64
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		deltas = append(deltas, d)
		sum += d
	}
	return deltas, float64(sum) / float64(len(deltas)), nil
}

// Markdown renders the summary section appended to the report file: a heading,
// a provenance line, and a pipe-delimited table. Row cells are unpadded; the
// header is sized to the widest round count in the summary.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")
	b.WriteString("Collect from */proc/[pid]/status*\n\n")

	header := s.Header()
	b.WriteString("| ")
	b.WriteString(strings.Join(header, " | "))
	b.WriteString(" |\n|")
	b.WriteString(strings.Repeat(" -- |", len(header)))
	b.WriteString("\n")

	for _, row := range s.Rows {
		b.WriteString("|")
		b.WriteString(strings.Join(row.Cells(), "|"))
		b.WriteString("|\n")
	}
	return b.String()
}

// Header returns the table column names for this summary's round count.
func (s *Summary) Header() []string {
	header := []string{"wasm vm", "vm inst amount"}
	for i := 1; i <= s.MaxRounds; i++ {
		if i == 1 {
			header = append(header, "1 vm")
		} else {
			header = append(header, fmt.Sprintf("%d vms", i))
		}
	}
	for i := 1; i < s.MaxRounds; i++ {
		header = append(header, fmt.Sprintf("delta_%d", i))
	}
	return append(header, "delta_avg")
}

// Cells returns the row rendered as table cells: label, metric, values,
// deltas, mean delta.
func (r Row) Cells() []string {
	cells := []string{r.Label, r.Metric}
	for _, v := range r.Values {
		cells = append(cells, strconv.FormatInt(v, 10))
	}
	for _, d := range r.Deltas {
		cells = append(cells, strconv.FormatInt(d, 10))
	}
	return append(cells, strconv.FormatFloat(r.AvgDelta, 'f', -1, 64))
}
