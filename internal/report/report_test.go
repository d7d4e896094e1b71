package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleStatus = `VmPeak:	  200128 kB
VmSize:	  200000 kB
VmRSS:	   45312 kB
RssAnon:	   30208 kB
RssFile:	   15104 kB
RssShmem:	       0 kB
Threads:	12
`

func TestAppendBlockFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	if err := AppendBlock(path, "v8_1_vm", "VmRSS:\t  45312 kB\n"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "## v8_1_vm\n```\nVmRSS:\t  45312 kB\n```\n---\n"
	if string(data) != want {
		t.Errorf("block = %q, want %q", data, want)
	}
}

func TestAppendBlockAddsMissingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	if err := AppendBlock(path, "v8_1_vm", "Threads:\t12"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Threads:\t12\n```\n") {
		t.Errorf("fence not on its own line:\n%s", data)
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	if err := AppendBlock(path, "v8_1_vm", sampleStatus); err != nil {
		t.Fatal(err)
	}

	rounds, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 1 {
		t.Fatalf("len(rounds) = %d, want 1", len(rounds))
	}
	r := rounds[0]
	if r.Label != "v8" || r.Instances != 1 {
		t.Errorf("round = %s/%d, want v8/1", r.Label, r.Instances)
	}
	want := map[string]int64{
		"VmSize":   200000,
		"VmRSS":    45312,
		"RssAnon":  30208,
		"RssFile":  15104,
		"RssShmem": 0,
		"Threads":  12,
	}
	if len(r.Metrics) != len(want) {
		t.Errorf("metrics = %v, want %v", r.Metrics, want)
	}
	for k, v := range want {
		if r.Metrics[k] != v {
			t.Errorf("metric %s = %d, want %d", k, r.Metrics[k], v)
		}
	}
}

func TestParsePartialMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	// Only two of the tracked metrics present; the rest must be absent
	// from the map, not zero.
	if err := AppendBlock(path, "wamr-clone_2_vm", "VmSize:\t  200000 kB\nThreads:\t12\n"); err != nil {
		t.Fatal(err)
	}
	rounds, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != 1 {
		t.Fatalf("len(rounds) = %d, want 1", len(rounds))
	}
	r := rounds[0]
	if len(r.Metrics) != 2 {
		t.Fatalf("metrics = %v, want exactly VmSize and Threads", r.Metrics)
	}
	if r.Metrics["VmSize"] != 200000 || r.Metrics["Threads"] != 12 {
		t.Errorf("metrics = %v", r.Metrics)
	}
	if _, ok := r.Metrics["VmRSS"]; ok {
		t.Error("VmRSS should be absent, not zero")
	}
	if r.Label != "wamr-clone" || r.Instances != 2 {
		t.Errorf("round = %s/%d, want wamr-clone/2", r.Label, r.Instances)
	}
}

func TestParseManyRoundsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	keys := []string{"v8_1_vm", "v8_2_vm", "wasmtime_1_vm", "wasmtime_2_vm"}
	for _, k := range keys {
		if err := AppendBlock(path, k, sampleStatus); err != nil {
			t.Fatal(err)
		}
	}

	rounds, err := Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rounds) != len(keys) {
		t.Fatalf("len(rounds) = %d, want %d", len(rounds), len(keys))
	}
	for i, k := range keys {
		if rounds[i].BlockKey() != k {
			t.Errorf("rounds[%d] = %s, want %s", i, rounds[i].BlockKey(), k)
		}
	}
}

func TestParseSkipsAppendedSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")

	if err := AppendBlock(path, "v8_1_vm", sampleStatus); err != nil {
		t.Fatal(err)
	}
	if err := AppendSummary(path, "# Summary\n\n| wasm vm |\n| -- |\n|v8|\n"); err != nil {
		t.Fatal(err)
	}

	rounds, err := Parse(path)
	if err != nil {
		t.Fatalf("reparse after summary: %v", err)
	}
	if len(rounds) != 1 {
		t.Errorf("len(rounds) = %d, want 1", len(rounds))
	}
}

func TestParseBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	os.WriteFile(path, []byte("## not-a-round-header\n"), 0644)

	if _, err := Parse(path); err == nil {
		t.Fatal("expected malformed report error")
	}
}

func TestParseBadMetricLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	// VmRSS missing the kB unit required for memory metrics.
	content := "## v8_1_vm\n```\nVmRSS:\tgarbage\n```\n---\n"
	os.WriteFile(path, []byte(content), 0644)

	if _, err := Parse(path); err == nil {
		t.Fatal("expected malformed report error")
	}
}

func TestDeltas(t *testing.T) {
	deltas, avg, err := Deltas([]int64{10, 15, 13})
	if err != nil {
		t.Fatal(err)
	}
	if len(deltas) != 2 || deltas[0] != 5 || deltas[1] != -2 {
		t.Errorf("deltas = %v, want [5 -2]", deltas)
	}
	if avg != 1.5 {
		t.Errorf("avg = %v, want 1.5", avg)
	}
}

func TestDeltasTooFewValues(t *testing.T) {
	if _, _, err := Deltas([]int64{100}); err == nil {
		t.Fatal("expected error for a single value")
	}
	if _, _, err := Deltas(nil); err == nil {
		t.Fatal("expected error for no values")
	}
}

func TestSummaryRowFormat(t *testing.T) {
	rounds := []Round{
		{Label: "x", Instances: 1, Metrics: map[string]int64{"VmRSS": 100}},
		{Label: "x", Instances: 2, Metrics: map[string]int64{"VmRSS": 140}},
		{Label: "x", Instances: 3, Metrics: map[string]int64{"VmRSS": 175}},
	}
	s, err := Summarize(rounds)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(s.Rows))
	}
	line := "|" + strings.Join(s.Rows[0].Cells(), "|") + "|"
	if line != "|x|VmRSS|100|140|175|40|35|37.5|" {
		t.Errorf("row = %s", line)
	}
}

func TestSummarizeLabelAndMetricOrder(t *testing.T) {
	mk := func(label string, n int, rss, threads int64) Round {
		return Round{Label: label, Instances: n, Metrics: map[string]int64{
			"VmRSS": rss, "Threads": threads,
		}}
	}
	rounds := []Round{
		mk("wasmtime", 1, 100, 10),
		mk("wasmtime", 2, 120, 12),
		mk("v8", 1, 200, 20),
		mk("v8", 2, 260, 24),
	}
	s, err := Summarize(rounds)
	if err != nil {
		t.Fatal(err)
	}
	// First-appearance label order, declared metric order within a label.
	wantOrder := [][2]string{
		{"wasmtime", "VmRSS"}, {"wasmtime", "Threads"},
		{"v8", "VmRSS"}, {"v8", "Threads"},
	}
	if len(s.Rows) != len(wantOrder) {
		t.Fatalf("rows = %d, want %d", len(s.Rows), len(wantOrder))
	}
	for i, w := range wantOrder {
		if s.Rows[i].Label != w[0] || s.Rows[i].Metric != w[1] {
			t.Errorf("rows[%d] = %s/%s, want %s/%s",
				i, s.Rows[i].Label, s.Rows[i].Metric, w[0], w[1])
		}
	}
}

func TestSummarizeRejectsSingleRound(t *testing.T) {
	rounds := []Round{
		{Label: "v8", Instances: 1, Metrics: map[string]int64{"VmRSS": 100}},
	}
	if _, err := Summarize(rounds); err == nil {
		t.Fatal("expected error: one round has no deltas to average")
	}
}

func TestSummaryMarkdown(t *testing.T) {
	rounds := []Round{
		{Label: "x", Instances: 1, Metrics: map[string]int64{"VmRSS": 100}},
		{Label: "x", Instances: 2, Metrics: map[string]int64{"VmRSS": 140}},
		{Label: "x", Instances: 3, Metrics: map[string]int64{"VmRSS": 175}},
	}
	s, err := Summarize(rounds)
	if err != nil {
		t.Fatal(err)
	}
	md := s.Markdown()
	if !strings.HasPrefix(md, "# Summary\n") {
		t.Errorf("missing heading:\n%s", md)
	}
	if !strings.Contains(md, "| wasm vm | vm inst amount | 1 vm | 2 vms | 3 vms | delta_1 | delta_2 | delta_avg |") {
		t.Errorf("bad header:\n%s", md)
	}
	if !strings.Contains(md, "|x|VmRSS|100|140|175|40|35|37.5|\n") {
		t.Errorf("missing row:\n%s", md)
	}
}
