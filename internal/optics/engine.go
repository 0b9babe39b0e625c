package optics

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
)

// Default numeric thresholds.
const (
	// DefaultConditionLimit is the largest cond₂(I−T) for which the full
	// six-dimensional fixed-point system is trusted.
	DefaultConditionLimit = 1e12

	// DefaultPhaseSnapEpsilon is the width of the band (−ε, 0) that point-to-point
	// phase advance snaps to zero.
	DefaultPhaseSnapEpsilon = 1e-2

	// DefaultZeroTolerance bounds the momentum-coupling vector treated as zero.
	DefaultZeroTolerance = 1e-15
)

// Config carries the numeric thresholds of an [Engine].
type Config struct {
	ConditionLimit   float64 `json:"condition_limit" yaml:"condition_limit" toml:"condition_limit"`
	PhaseSnapEpsilon float64 `json:"phase_snap_epsilon" yaml:"phase_snap_epsilon" toml:"phase_snap_epsilon"`
	ZeroTolerance    float64 `json:"zero_tolerance" yaml:"zero_tolerance" toml:"zero_tolerance"`
	Workers          int     `json:"workers" yaml:"workers" toml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		ConditionLimit:   DefaultConditionLimit,
		PhaseSnapEpsilon: DefaultPhaseSnapEpsilon,
		ZeroTolerance:    DefaultZeroTolerance,
		Workers:          0,
	}
}

// Validate rejects thresholds that would make the calculators meaningless.
func (c Config) Validate() error {
	if !(c.ConditionLimit > 0) {
		return fmt.Errorf("condition limit must be positive, got %g", c.ConditionLimit)
	}
	if c.PhaseSnapEpsilon < 0 || math.IsNaN(c.PhaseSnapEpsilon) {
		return fmt.Errorf("phase snap epsilon must be non-negative, got %g", c.PhaseSnapEpsilon)
	}
	if c.ZeroTolerance < 0 || math.IsNaN(c.ZeroTolerance) {
		return fmt.Errorf("zero tolerance must be non-negative, got %g", c.ZeroTolerance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// Engine computes periodic optics from transfer matrices. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *log.Logger
}

// New returns an engine with the given thresholds. A nil logger discards output.
func New(cfg Config, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Default returns an engine with [DefaultConfig] and no logging.
func Default() *Engine {
	e, err := New(DefaultConfig(), nil)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }
