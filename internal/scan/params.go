package scan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/optix/internal/config"
)

var (
	ErrUnknownParam = errors.New("scan: unknown parameter")
	ErrNeedsLattice = errors.New("scan: parameter needs a lattice shorthand, not an explicit matrix")
)

type setter struct {
	lattice bool
	apply   func(c *config.Config, v float64)
}

var params = map[string]setter{
	"gamma":   {false, func(c *config.Config, v float64) { c.Gamma = v }},
	"tune-x":  {true, func(c *config.Config, v float64) { c.Lattice.X.Tune = v }},
	"tune-y":  {true, func(c *config.Config, v float64) { c.Lattice.Y.Tune = v }},
	"tune-z":  {true, func(c *config.Config, v float64) { c.Lattice.Z.Tune = v }},
	"alpha-x": {true, func(c *config.Config, v float64) { c.Lattice.X.Alpha = v }},
	"alpha-y": {true, func(c *config.Config, v float64) { c.Lattice.Y.Alpha = v }},
	"beta-x":  {true, func(c *config.Config, v float64) { c.Lattice.X.Beta = v }},
	"beta-y":  {true, func(c *config.Config, v float64) { c.Lattice.Y.Beta = v }},
	"skew":    {true, func(c *config.Config, v float64) { c.Lattice.Skew = v }},
}

// Params lists the parameter names accepted by [SetParam].
func Params() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetParam overrides one lattice parameter in place.
func SetParam(c *config.Config, name string, v float64) error {
	s, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if s.lattice && len(c.Matrix) > 0 {
		return fmt.Errorf("%w: %s", ErrNeedsLattice, name)
	}
	s.apply(c, v)
	return nil
}

// GetParam reads back a parameter set by [SetParam].
func GetParam(c *config.Config, name string) (float64, error) {
	switch name {
	case "gamma":
		return c.Gamma, nil
	case "tune-x":
		return c.Lattice.X.Tune, nil
	case "tune-y":
		return c.Lattice.Y.Tune, nil
	case "tune-z":
		return c.Lattice.Z.Tune, nil
	case "alpha-x":
		return c.Lattice.X.Alpha, nil
	case "alpha-y":
		return c.Lattice.Y.Alpha, nil
	case "beta-x":
		return c.Lattice.X.Beta, nil
	case "beta-y":
		return c.Lattice.Y.Beta, nil
	case "skew":
		return c.Lattice.Skew, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}
