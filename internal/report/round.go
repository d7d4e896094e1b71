package report

import "fmt"

// Metrics tracked per round, in the order they appear in summary tables.
// Memory metrics are kilobytes as reported by /proc/<pid>/status; Threads
// is a plain count.
var MetricOrder = []string{"VmSize", "VmRSS", "RssAnon", "RssFile", "RssShmem", "Threads"}

// Round is one launch-measure-terminate cycle reconstructed from the report
// file: a configuration label, the number of wasm VM instances requested, and
// the metric values scraped from the child's status file. A metric missing
// from the source block is absent from the map, never zero.
type Round struct {
	Label     string
	Instances int
	Metrics   map[string]int64
}

// BlockKey returns the report block header name for this round,
// e.g. "wasmtime_2_vm".
func (r Round) BlockKey() string {
	return fmt.Sprintf("%s_%d_vm", r.Label, r.Instances)
}
