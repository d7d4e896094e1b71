package report

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is returned when the report file contains a block header or
// metric line that does not match the format produced by AppendBlock. The
// report is the sole source of truth between the collection and analysis
// phases, so a malformed line means the file is corrupt and parsing stops.
var ErrMalformed = errors.New("malformed report")

var (
	headerPattern  = regexp.MustCompile(`^## (\S+)_(\d+)_vm`)
	memoryPattern  = regexp.MustCompile(`^(VmSize|VmRSS|RssAnon|RssFile|RssShmem):\s+(\d+)\s+kB`)
	threadsPattern = regexp.MustCompile(`^Threads:\s+(\d+)`)
)

// Parse reads the report file back into the rounds it was built from, in file
// order. It is a single forward pass with a local accumulator: a block header
// opens a round, known metric lines fill it, a separator emits it. Lines that
// belong to no known metric (other filtered status keys, code fences, the
// trailing summary section) are skipped, so a report that already carries a
// summary parses cleanly.
func Parse(path string) ([]Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	var rounds []Round
	var current *Round
	lineNo := 0

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		lineNo++

		switch {
		case strings.HasPrefix(line, "##"):
			m := headerPattern.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("%w: line %d: bad block header %q", ErrMalformed, lineNo, line)
			}
			instances, _ := strconv.Atoi(m[2])
			current = &Round{
				Label:     m[1],
				Instances: instances,
				Metrics:   make(map[string]int64),
			}

		case strings.HasPrefix(line, "--"):
			if current != nil {
				rounds = append(rounds, *current)
				current = nil
			}

		default:
			if current == nil {
				continue
			}
			name, ok := metricName(line)
			if !ok {
				continue
			}
			value, err := parseMetricLine(name, line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
			}
			current.Metrics[name] = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return rounds, nil
}

// RoundFromStatus builds a Round directly from filtered status text, without
// going through the report file. Lines that are not tracked metrics or do not
// parse are skipped; this is the lenient path used for telemetry and live
// views, not the strict report parse.
func RoundFromStatus(label string, instances int, text string) Round {
	r := Round{Label: label, Instances: instances, Metrics: make(map[string]int64)}
	for _, line := range strings.Split(text, "\n") {
		name, ok := metricName(line)
		if !ok {
			continue
		}
		if v, err := parseMetricLine(name, line); err == nil {
			r.Metrics[name] = v
		}
	}
	return r
}

// metricName reports which tracked metric a status line belongs to, if any.
// Prefix matching mirrors the writer's filter: untracked keys such as VmPeak
// or VmSwap pass through the filter but are not metrics.
func metricName(line string) (string, bool) {
	for _, name := range MetricOrder {
		if strings.HasPrefix(line, name) {
			return name, true
		}
	}
	return "", false
}

// parseMetricLine extracts the integer value from a status line. Memory
// metrics require a trailing kB unit, Threads is a bare count.
func parseMetricLine(name, line string) (int64, error) {
	if name == "Threads" {
		m := threadsPattern.FindStringSubmatch(line)
		if m == nil {
			return 0, fmt.Errorf("bad Threads line %q", line)
		}
		return strconv.ParseInt(m[1], 10, 64)
	}
	m := memoryPattern.FindStringSubmatch(line)
	if m == nil || m[1] != name {
		return 0, fmt.Errorf("bad %s line %q", name, line)
	}
	return strconv.ParseInt(m[2], 10, 64)
}
