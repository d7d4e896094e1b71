// Package telemetry exports recorded round metrics to Telegraf over UDP in
// InfluxDB line protocol. Emission is strictly best effort: a benchmark run
// never fails because a metrics endpoint is down.
package telemetry

import (
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
)

const defaultMeasurement = "wasmvm_bench"

// TelegrafEmitter sends one line-protocol point per recorded round.
type TelegrafEmitter struct {
	conn        *net.UDPConn
	measurement string
	hostname    string
}

// NewTelegrafEmitter dials the Telegraf UDP socket. addr is "host:port".
func NewTelegrafEmitter(addr, measurement string) (*TelegrafEmitter, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("telegraf resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("telegraf dial: %w", err)
	}
	if measurement == "" {
		measurement = defaultMeasurement
	}
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	return &TelegrafEmitter{
		conn:        conn,
		measurement: measurement,
		hostname:    hostname,
	}, nil
}

// EmitRound sends one point tagged with the wasm VM label and instance count,
// with a field per metric present in the round.
func (e *TelegrafEmitter) EmitRound(r report.Round) {
	if e == nil || e.conn == nil || len(r.Metrics) == 0 {
		return
	}

	names := make([]string, 0, len(r.Metrics))
	for name := range r.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		fields = append(fields, fmt.Sprintf("%s=%di", name, r.Metrics[name]))
	}

	line := fmt.Sprintf("%s,vm=%s,instances=%d,host=%s %s %d\n",
		e.measurement,
		escapeTag(r.Label),
		r.Instances,
		escapeTag(e.hostname),
		strings.Join(fields, ","),
		time.Now().UnixNano(),
	)
	e.conn.Write([]byte(line)) // fire-and-forget
}

// Close closes the UDP connection.
func (e *TelegrafEmitter) Close() {
	if e != nil && e.conn != nil {
		e.conn.Close()
	}
}

// escapeTag escapes special characters in InfluxDB line protocol tag values.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}
