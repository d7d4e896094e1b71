package telemetry

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
)

func TestEmitRound(t *testing.T) {
	lc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	defer lc.Close()

	e, err := NewTelegrafEmitter(lc.LocalAddr().String(), "bench")
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	e.EmitRound(report.Round{
		Label:     "v8",
		Instances: 2,
		Metrics:   map[string]int64{"VmRSS": 45312, "Threads": 12},
	})

	lc.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 2048)
	n, _, err := lc.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	line := string(buf[:n])
	if !strings.HasPrefix(line, "bench,vm=v8,instances=2,host=") {
		t.Errorf("unexpected tags: %q", line)
	}
	// Fields are sorted by metric name.
	if !strings.Contains(line, " Threads=12i,VmRSS=45312i ") {
		t.Errorf("unexpected fields: %q", line)
	}
}

func TestEmitRoundNilSafe(t *testing.T) {
	var e *TelegrafEmitter
	e.EmitRound(report.Round{Label: "v8", Instances: 1, Metrics: map[string]int64{"Threads": 1}})
	e.Close()
}
