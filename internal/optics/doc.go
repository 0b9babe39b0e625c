// Package optics derives periodic beam-optics quantities from a one-period
// transfer matrix.
//
// The [Engine] groups four calculators:
//
//   - [Engine.FixedPoint]: closed orbit of the affine map
//   - [Engine.PhaseAdvancePerCell], [Engine.TunePerCell], [Engine.PhaseAdvance]
//   - [Engine.MatchedTwiss]: periodic ellipse parameters
//   - [Engine.ChromaticAberration], [Engine.Dispersion]
//
// # Example
//
//	eng, _ := optics.New(optics.DefaultConfig(), logger)
//	orbit := eng.FixedPoint(m)
//	tunes := eng.TunePerCell(m)
//	eta, _ := eng.Dispersion(m, gamma)
//
// # Numerical degeneracy
//
// Near-singular resolvents never surface as errors. The fixed point drops
// to the transverse sub-system and dispersion returns zero, both logged.
// NaN emittance in matched results is deliberate.
//
// # Thread Safety
//
// An Engine holds only its thresholds and logger. All methods are safe for
// concurrent use; [Engine.AnalyzeAll] fans independent cells out across
// goroutines.
package optics
