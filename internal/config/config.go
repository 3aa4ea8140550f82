package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Solver holds the tunables shared by every entry point. Zero values are
// replaced by defaults in Normalize.
type Solver struct {
	MaxExpansions int    `yaml:"max_expansions"`
	TimeoutMs     int    `yaml:"timeout_ms"`
	Theme         string `yaml:"theme"`
	RulesPath     string `yaml:"rules_path"`
	ToolboxPreset string `yaml:"toolbox_preset"`

	BatchWorkers int `yaml:"batch_workers"`

	DataDir   string `yaml:"data_dir"`
	IndexPath string `yaml:"index_path"`

	Server Server `yaml:"server"`
}

type Server struct {
	Addr            string `yaml:"addr"`
	MaxMessageBytes int64  `yaml:"max_message_bytes"`
	SendQueue       int    `yaml:"send_queue"`
}

const (
	DefaultMaxExpansions = 2_000_000
	DefaultTimeoutMs     = 30_000
	DefaultBatchWorkers  = 4
	DefaultDataDir       = "./data"
	DefaultAddr          = ":8090"
	DefaultMaxMessage    = 4 << 20
	DefaultSendQueue     = 16
)

func Defaults() Solver {
	s := Solver{}
	s.Normalize()
	return s
}

// Load reads path, or returns Defaults when path is empty.
func Load(path string) (Solver, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Solver{}, err
	}
	var s Solver
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Solver{}, fmt.Errorf("solver.yaml: %w", err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return Solver{}, fmt.Errorf("solver.yaml: %w", err)
	}
	return s, nil
}

func (s *Solver) Normalize() {
	if s.MaxExpansions == 0 {
		s.MaxExpansions = DefaultMaxExpansions
	}
	if s.TimeoutMs == 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}
	if s.BatchWorkers <= 0 {
		s.BatchWorkers = DefaultBatchWorkers
	}
	s.Theme = strings.TrimSpace(s.Theme)
	s.ToolboxPreset = strings.TrimSpace(s.ToolboxPreset)
	if strings.TrimSpace(s.DataDir) == "" {
		s.DataDir = DefaultDataDir
	}
	if s.Server.Addr == "" {
		s.Server.Addr = DefaultAddr
	}
	if s.Server.MaxMessageBytes <= 0 {
		s.Server.MaxMessageBytes = DefaultMaxMessage
	}
	if s.Server.SendQueue <= 0 {
		s.Server.SendQueue = DefaultSendQueue
	}
}

func (s Solver) Validate() error {
	if s.MaxExpansions < 0 {
		return fmt.Errorf("max_expansions must be >= 0, got %d", s.MaxExpansions)
	}
	if s.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms must be >= 0, got %d", s.TimeoutMs)
	}
	if s.BatchWorkers > 256 {
		return fmt.Errorf("batch_workers too large: %d", s.BatchWorkers)
	}
	return nil
}

// Timeout is the per-level search deadline; zero disables it.
func (s Solver) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}
