package config

import (
	"sort"

	"github.com/san-kum/optix/internal/beam"
	"github.com/san-kum/optix/internal/optics"
)

var Presets = map[string]*Config{
	"fodo-60": {
		Name: "fodo-60", Gamma: 10,
		Lattice: LatticeConfig{
			X:          PlaneConfig{Tune: 1.0 / 6, Alpha: 0, Beta: 17.1},
			Y:          PlaneConfig{Tune: 1.0 / 6, Alpha: 0, Beta: 5.9},
			Z:          PlaneConfig{Tune: 0.01, Alpha: 0, Beta: 400},
			Dispersion: []float64{0.05, 0, 0, 0},
		},
		Thresholds: optics.DefaultConfig(),
	},
	"fodo-90": {
		Name: "fodo-90", Gamma: 10,
		Lattice: LatticeConfig{
			X:          PlaneConfig{Tune: 0.25, Alpha: 0, Beta: 13.7},
			Y:          PlaneConfig{Tune: 0.25, Alpha: 0, Beta: 2.3},
			Z:          PlaneConfig{Tune: 0.01, Alpha: 0, Beta: 400},
			Dispersion: []float64{0.03, 0, 0, 0},
		},
		Thresholds: optics.DefaultConfig(),
	},
	"ring-coupled": {
		Name: "ring-coupled", Gamma: 3000,
		Lattice: LatticeConfig{
			X:          PlaneConfig{Tune: 0.31, Alpha: -0.4, Beta: 9.2},
			Y:          PlaneConfig{Tune: 0.28, Alpha: 0.6, Beta: 4.4},
			Z:          PlaneConfig{Tune: 0.005, Alpha: 0, Beta: 1200},
			Dispersion: []float64{1.2e3, 90, 0, 0},
			Kick:       []float64{1e-4, 0, -2e-5, 0, 0, 0},
			Skew:       0.02,
		},
		Thresholds: optics.DefaultConfig(),
	},
	"near-integer": {
		Name: "near-integer", Gamma: 2,
		Lattice: LatticeConfig{
			X:          PlaneConfig{Tune: 0.999, Alpha: 0.3, Beta: 8},
			Y:          PlaneConfig{Tune: 0.21, Alpha: 0, Beta: 6},
			Z:          PlaneConfig{Tune: 0, Alpha: 0, Beta: 1},
			Dispersion: []float64{0.02, 0, 0, 0},
			Kick:       []float64{1e-5, 0, 0, 0, 1e-3, 0},
		},
		Thresholds: optics.DefaultConfig(),
	},
	"linac-cell": {
		Name: "linac-cell", Gamma: 3, EnergyGain: 2.5,
		Matrix: [][]float64{
			{0.9, 1.2, 0, 0, 0, 0.05, 0},
			{-0.3, 0.7, 0, 0, 0, 0.01, 0},
			{0, 0, 0.8, 0.9, 0, 0, 0},
			{0, 0, -0.35, 0.8, 0, 0, 0},
			{0, 0, 0, 0, 1, 0.5, 0},
			{0, 0, 0, 0, 0, 0.98, 0},
		},
		InitialTwiss: []beam.Twiss{
			{Alpha: -0.5, Beta: 2.0, Emittance: 1e-6},
			{Alpha: 0.2, Beta: 1.5, Emittance: 1e-6},
			{Alpha: 0, Beta: 5.0, Emittance: 1e-4},
		},
		FinalTwiss: []beam.Twiss{
			{Alpha: 0.4, Beta: 2.6, Emittance: 1e-6},
			{Alpha: -0.1, Beta: 1.9, Emittance: 1e-6},
			{Alpha: 0, Beta: 5.2, Emittance: 1e-4},
		},
		Thresholds: optics.DefaultConfig(),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
