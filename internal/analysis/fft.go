package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrFFTLength = errors.New("analysis: too few samples for a spectrum")

// FFT returns the discrete Fourier transform of data. Any length works;
// powers of two are fastest.
func FFT(data []float64) ([]complex128, error) {
	if len(data) == 0 {
		return nil, ErrFFTLength
	}
	return fft.FFTReal(data), nil
}

// PowerSpectrum returns the magnitude of bins 0 through len(data)/2.
func PowerSpectrum(data []float64) ([]float64, error) {
	f, err := FFT(data)
	if err != nil {
		return nil, err
	}
	ps := make([]float64, len(f)/2+1)

	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}

	return ps, nil
}

// TuneFFT estimates the fractional tune in [0, 0.5] of turn-by-turn
// positions. The mean is removed first so the closed orbit does not
// dominate the spectrum.
func TuneFFT(xs []float64) (float64, error) {
	if len(xs) < 4 {
		return 0, ErrFFTLength
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	centered := make([]float64, len(xs))
	for i, x := range xs {
		centered[i] = x - mean
	}

	ps, err := PowerSpectrum(centered)
	if err != nil {
		return 0, err
	}

	peak := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	return float64(peak) / float64(len(xs)), nil
}
