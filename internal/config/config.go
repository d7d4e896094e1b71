// Package config defines the benchmark plan: which proxy builds to measure,
// with which configs, and the timing knobs that pace a run. A plan can be
// loaded from a YAML file; without one the embedded default matrix is used.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirroring the original benchmark methodology. The settle time is a
// deliberate fixed delay, not a tunable optimization target: it gives the OS
// time to account the child's memory before reading, and to reap it after.
const (
	DefaultReadiness     = "starting main dispatch loop"
	DefaultConcurrency   = 2
	DefaultLaunchTimeout = 5 * time.Second
	DefaultSettle        = 1 * time.Second
)

// Target is one proxy build under test: a label for the report, the
// executable path, and the ordered per-instance-count config files. The
// first config runs with 1 VM instance, the second with 2, and so on.
type Target struct {
	Label      string   `yaml:"label"`
	Executable string   `yaml:"executable"`
	Configs    []string `yaml:"configs"`
}

// Telegraf configures optional round-metric emission over UDP.
type Telegraf struct {
	UDP         string `yaml:"udp"`
	Measurement string `yaml:"measurement"`
}

// Plan is the full benchmark configuration.
type Plan struct {
	Readiness     string    `yaml:"readiness"`
	Concurrency   int       `yaml:"concurrency"`
	LaunchTimeout Duration  `yaml:"launch_timeout"`
	Settle        Duration  `yaml:"settle"`
	Report        string    `yaml:"report"`
	LogDir        string    `yaml:"log_dir"`
	Telegraf      *Telegraf `yaml:"telegraf"`
	Targets       []Target  `yaml:"targets"`
}

// RoundSpec is one resolved measurement round.
type RoundSpec struct {
	Label      string
	Instances  int
	Executable string
	Config     string
}

// Key returns the report block header name for this round.
func (r RoundSpec) Key() string {
	return fmt.Sprintf("%s_%d_vm", r.Label, r.Instances)
}

// Rounds flattens the plan's targets into the ordered round list.
func (p *Plan) Rounds() []RoundSpec {
	var rounds []RoundSpec
	for _, t := range p.Targets {
		for i, cfg := range t.Configs {
			rounds = append(rounds, RoundSpec{
				Label:      t.Label,
				Instances:  i + 1,
				Executable: t.Executable,
				Config:     cfg,
			})
		}
	}
	return rounds
}

// ReportPath returns the plan's report path, or a timestamped default in the
// current directory.
func (p *Plan) ReportPath() string {
	if p.Report != "" {
		return p.Report
	}
	return fmt.Sprintf("report_%s.md", time.Now().Format("2006-01-02T15-04-05"))
}

// LoadResult carries the resolved plan and where it came from.
type LoadResult struct {
	Plan   *Plan
	Path   string // file path used, empty when the embedded default applies
	Source string // "--plan flag", "found", "default"
}

// BenchHome returns the wasmbench state directory, respecting WASMBENCH_HOME.
func BenchHome() string {
	if h := os.Getenv("WASMBENCH_HOME"); h != "" {
		return h
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wasmbench")
}

// Load resolves the plan. Search order: planFlag (if set, must exist), then
// ./wasmbench.yaml, then <BenchHome>/wasmbench.yaml, then the embedded
// default plan.
func Load(planFlag string) (*LoadResult, error) {
	if planFlag != "" {
		p, err := loadFile(planFlag)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Plan: p, Path: planFlag, Source: "--plan flag"}, nil
	}

	for _, path := range []string{
		"wasmbench.yaml",
		filepath.Join(BenchHome(), "wasmbench.yaml"),
	} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		p, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Plan: p, Path: path, Source: "found"}, nil
	}

	return &LoadResult{Plan: DefaultPlan(), Source: "default"}, nil
}

func loadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan file not readable: %s - %w", path, err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: invalid YAML - %w", path, err)
	}
	applyDefaults(&p)
	if err := validate(&p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func applyDefaults(p *Plan) {
	if p.Readiness == "" {
		p.Readiness = DefaultReadiness
	}
	if p.Concurrency == 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.LaunchTimeout.Duration == 0 {
		p.LaunchTimeout = Duration{DefaultLaunchTimeout}
	}
	if p.Settle.Duration == 0 {
		p.Settle = Duration{DefaultSettle}
	}
}

func validate(p *Plan) error {
	if len(p.Targets) == 0 {
		return fmt.Errorf("plan has no targets")
	}
	for i, t := range p.Targets {
		if t.Label == "" {
			return fmt.Errorf("target %d: missing label", i)
		}
		if t.Executable == "" {
			return fmt.Errorf("target %q: missing executable", t.Label)
		}
		if len(t.Configs) < 2 {
			return fmt.Errorf("target %q: needs at least 2 configs to compute deltas", t.Label)
		}
	}
	return nil
}
