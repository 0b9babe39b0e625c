package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/optix/internal/config"
	"github.com/san-kum/optix/internal/optics"
)

// Scenario is a batch of lattices analyzed together.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep selects a lattice from a preset or a file and overrides
// some of its parameters. With neither, the default lattice is used.
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	File   string             `yaml:"file"`
	Gamma  float64            `yaml:"gamma"`
	Params map[string]float64 `yaml:"params"`
	Save   bool               `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Config resolves a step. Relative lattice files are read from baseDir.
func (st ScenarioStep) Config(baseDir string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Preset != "" && st.File != "":
		return nil, fmt.Errorf("preset and file are mutually exclusive")
	case st.Preset != "":
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", st.Preset)
		}
	case st.File != "":
		path := st.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if st.Name != "" {
		cfg.Name = st.Name
	}
	if st.Gamma != 0 {
		cfg.Gamma = st.Gamma
	}
	for k, v := range st.Params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Cells resolves every step into an engine cell and the thresholds its
// lattice asks for.
func (s *Scenario) Cells(baseDir string) ([]optics.Cell, []optics.Config, error) {
	cells := make([]optics.Cell, 0, len(s.Steps))
	limits := make([]optics.Config, 0, len(s.Steps))
	for i, st := range s.Steps {
		cfg, err := st.Config(baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := cfg.Thresholds.Validate(); err != nil {
			return nil, nil, fmt.Errorf("step %d (%s): %w", i+1, cfg.Name, err)
		}
		cell, err := cfg.Cell()
		if err != nil {
			return nil, nil, fmt.Errorf("step %d (%s): %w", i+1, cfg.Name, err)
		}
		cells = append(cells, cell)
		limits = append(limits, cfg.Thresholds)
	}
	return cells, limits, nil
}

// StepResult is the report of one scenario step and the thresholds it was
// analyzed with.
type StepResult struct {
	Report     optics.Report
	Thresholds optics.Config
}

// RunScenario analyzes all steps concurrently, one engine per distinct set
// of thresholds. Results keep step order.
func RunScenario(ctx context.Context, logger *log.Logger, s *Scenario, baseDir string) ([]StepResult, error) {
	cells, limits, err := s.Cells(baseDir)
	if err != nil {
		return nil, err
	}

	groups := make(map[optics.Config][]int)
	var order []optics.Config
	for i, c := range limits {
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], i)
	}

	results := make([]StepResult, len(cells))
	for _, c := range order {
		eng, err := optics.New(c, logger)
		if err != nil {
			return nil, err
		}
		idx := groups[c]
		batch := make([]optics.Cell, len(idx))
		for j, i := range idx {
			batch[j] = cells[i]
		}
		reports, err := eng.AnalyzeAll(ctx, batch)
		if err != nil {
			return nil, err
		}
		for j, i := range idx {
			results[i] = StepResult{Report: reports[j], Thresholds: c}
		}
	}
	return results, nil
}
