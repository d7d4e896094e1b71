package main

import (
	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/cli"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	cli.Version = Version
	cli.Execute()
}
