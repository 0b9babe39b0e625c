package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/optics"
)

const (
	DefaultGamma = 1.0
	DefaultBeta  = 10.0
	DefaultTune  = 0.25
)

// Lattice file formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid lattice")
)

// Config describes one lattice cell and the thresholds used to analyze it.
// When Matrix is empty the transfer matrix is built from Lattice.
type Config struct {
	Name         string        `yaml:"name" toml:"name"`
	Gamma        float64       `yaml:"gamma" toml:"gamma"`
	EnergyGain   float64       `yaml:"energy_gain,omitempty" toml:"energy_gain,omitempty"`
	Matrix       [][]float64   `yaml:"matrix,omitempty" toml:"matrix,omitempty"`
	Lattice      LatticeConfig `yaml:"lattice" toml:"lattice"`
	InitialTwiss []beam.Twiss  `yaml:"initial_twiss,omitempty" toml:"initial_twiss,omitempty"`
	FinalTwiss   []beam.Twiss  `yaml:"final_twiss,omitempty" toml:"final_twiss,omitempty"`
	Thresholds   optics.Config `yaml:"thresholds" toml:"thresholds"`
}

// LatticeConfig is a Courant–Snyder shorthand for an uncoupled cell.
type LatticeConfig struct {
	X PlaneConfig `yaml:"x" toml:"x"`
	Y PlaneConfig `yaml:"y" toml:"y"`
	Z PlaneConfig `yaml:"z" toml:"z"`

	// Dispersion holds rows 0-3 of the z' column.
	Dispersion []float64 `yaml:"dispersion,omitempty" toml:"dispersion,omitempty"`
	// Kick is the translation column.
	Kick []float64 `yaml:"kick,omitempty" toml:"kick,omitempty"`
	// Skew is the strength of a thin skew quadrupole appended to the cell.
	Skew float64 `yaml:"skew,omitempty" toml:"skew,omitempty"`
}

type PlaneConfig struct {
	Tune  float64 `yaml:"tune" toml:"tune"`
	Alpha float64 `yaml:"alpha" toml:"alpha"`
	Beta  float64 `yaml:"beta" toml:"beta"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:  "lattice",
		Gamma: DefaultGamma,
		Lattice: LatticeConfig{
			X: PlaneConfig{Tune: DefaultTune, Beta: DefaultBeta},
			Y: PlaneConfig{Tune: DefaultTune, Beta: DefaultBeta},
			Z: PlaneConfig{Tune: 0, Beta: DefaultBeta},
		},
		Thresholds: optics.DefaultConfig(),
	}
}

// FormatOf picks the file format from the path extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}

// Decode parses a lattice in the given format on top of [DefaultConfig].
func Decode(data []byte, format string) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so callers can override fields freely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Matrix != nil {
		out.Matrix = make([][]float64, len(c.Matrix))
		for i, r := range c.Matrix {
			out.Matrix[i] = append([]float64(nil), r...)
		}
	}
	out.Lattice.Dispersion = append([]float64(nil), c.Lattice.Dispersion...)
	out.Lattice.Kick = append([]float64(nil), c.Lattice.Kick...)
	out.InitialTwiss = append([]beam.Twiss(nil), c.InitialTwiss...)
	out.FinalTwiss = append([]beam.Twiss(nil), c.FinalTwiss...)
	return &out
}

func (c *Config) Validate() error {
	if err := beam.ValidateGamma(c.Gamma); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: thresholds: %v", ErrInvalid, err)
	}
	if (c.InitialTwiss == nil) != (c.FinalTwiss == nil) {
		return fmt.Errorf("%w: initial_twiss and final_twiss must be given together", ErrInvalid)
	}
	if len(c.Matrix) > 0 {
		return nil
	}

	for _, p := range []struct {
		name  string
		plane PlaneConfig
	}{{"x", c.Lattice.X}, {"y", c.Lattice.Y}, {"z", c.Lattice.Z}} {
		if !(p.plane.Beta > 0) || math.IsInf(p.plane.Beta, 0) {
			return fmt.Errorf("%w: lattice.%s.beta must be positive, got %g", ErrInvalid, p.name, p.plane.Beta)
		}
	}
	if n := len(c.Lattice.Dispersion); n != 0 && n != 4 {
		return fmt.Errorf("%w: lattice.dispersion needs 4 entries, got %d", ErrInvalid, n)
	}
	if n := len(c.Lattice.Kick); n != 0 && n != 6 {
		return fmt.Errorf("%w: lattice.kick needs 6 entries, got %d", ErrInvalid, n)
	}
	return nil
}

// Twiss returns the shorthand ellipse parameters of each plane.
func (l LatticeConfig) Twiss() beam.TwissSet {
	return beam.TwissSet{
		{Alpha: l.X.Alpha, Beta: l.X.Beta},
		{Alpha: l.Y.Alpha, Beta: l.Y.Beta},
		{Alpha: l.Z.Alpha, Beta: l.Z.Beta},
	}
}

// Advances returns 2π times each plane's tune.
func (l LatticeConfig) Advances() [3]float64 {
	return [3]float64{2 * math.Pi * l.X.Tune, 2 * math.Pi * l.Y.Tune, 2 * math.Pi * l.Z.Tune}
}

// Build assembles the transfer matrix described by the shorthand.
func (l LatticeConfig) Build() beam.PhaseMatrix {
	m := beam.FromTwiss(l.Twiss(), l.Advances())

	if len(l.Dispersion) == 4 {
		col := m.Column(beam.IndexZP)
		copy(col[:4], l.Dispersion)
		m = m.WithColumn(beam.IndexZP, col)
	}
	if l.Skew != 0 {
		m = skew(l.Skew).Mul(m)
	}
	if len(l.Kick) == 6 {
		var d [6]float64
		copy(d[:], l.Kick)
		m = m.WithTranslation(d)
	}
	return m
}

// skew is a thin skew quadrupole: x' += k·y and y' += k·x.
func skew(k float64) beam.PhaseMatrix {
	return beam.Identity().
		WithColumn(beam.IndexY, [6]float64{0, k, 1, 0, 0, 0}).
		WithColumn(beam.IndexX, [6]float64{1, 0, 0, k, 0, 0})
}

// PhaseMatrix returns the explicit matrix if one is given, otherwise the
// shorthand lattice.
func (c *Config) PhaseMatrix() (beam.PhaseMatrix, error) {
	if len(c.Matrix) > 0 {
		return beam.NewPhaseMatrix(c.Matrix)
	}
	return c.Lattice.Build(), nil
}

// Cell validates the configuration and converts it for the engine.
func (c *Config) Cell() (optics.Cell, error) {
	if err := c.Validate(); err != nil {
		return optics.Cell{}, err
	}
	m, err := c.PhaseMatrix()
	if err != nil {
		return optics.Cell{}, err
	}

	cell := optics.Cell{Name: c.Name, Matrix: m, Gamma: c.Gamma}
	if c.InitialTwiss != nil {
		initial, err := beam.NewTwissSet(c.InitialTwiss)
		if err != nil {
			return optics.Cell{}, fmt.Errorf("initial_twiss: %w", err)
		}
		final, err := beam.NewTwissSet(c.FinalTwiss)
		if err != nil {
			return optics.Cell{}, fmt.Errorf("final_twiss: %w", err)
		}
		cell.Initial, cell.Final = &initial, &final
	}
	return cell, nil
}

// TwissIn returns the initial Twiss set, falling back to the shorthand
// lattice ellipses when none is configured.
func (c *Config) TwissIn() (beam.TwissSet, error) {
	if c.InitialTwiss != nil {
		return beam.NewTwissSet(c.InitialTwiss)
	}
	return c.Lattice.Twiss(), nil
}
