// Package analysis turns engine results into pictures and numbers a
// person can check by eye.
//
//   - [TwissEllipse]: phase-space ellipse of a Twiss triple
//   - [Track]: turn-by-turn coordinates through the one-period map
//   - [PortraitToASCII]: terminal rendering of either
//   - [TuneFFT]: fractional tune from turn-by-turn data
//   - [SavePlot]: PNG, SVG or PDF line plots of sweep results
//
// # Tune Measurement
//
// Tracking a particle and taking the spectrum of its position gives the
// same fractional tune as the trace formula, up to the bin width:
//
//	p := analysis.Track(m, start, beam.X, 1024)
//	q, err := analysis.TuneFFT(p.Xs())
package analysis
