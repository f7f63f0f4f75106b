package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform operations for temporal analysis
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the Fast Fourier Transform using mjibson/go-dsp
// Handles all sizes efficiently, including non-power-of-2
func (f *FFT) Compute(signal []float64) []complex128 {
	if len(signal) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(signal)
}

// Magnitude computes the magnitude spectrum of a real signal
func (f *FFT) Magnitude(signal []float64) []float64 {
	spectrum := f.Compute(signal)
	magnitudes := make([]float64, len(spectrum))
	for i, bin := range spectrum {
		magnitudes[i] = cmplx.Abs(bin)
	}
	return magnitudes
}

// Autocorrelate computes the autocorrelation function via the
// Wiener-Khinchin theorem: IFFT(|FFT(x)|^2). The signal is zero-padded to
// twice its length to avoid circular wrap-around. The result is normalized
// by the zero-lag value and truncated to maxLag entries.
func (f *FFT) Autocorrelate(signal []float64, maxLag int) []float64 {
	n := len(signal)
	if n == 0 || maxLag <= 0 {
		return []float64{}
	}
	if maxLag > n {
		maxLag = n
	}

	padded := make([]float64, 2*n)
	copy(padded, signal)

	spectrum := fft.FFTReal(padded)
	for i, bin := range spectrum {
		re := real(bin)
		im := imag(bin)
		spectrum[i] = complex(re*re+im*im, 0)
	}

	corr := fft.IFFT(spectrum)

	result := make([]float64, maxLag)
	zeroLag := real(corr[0])
	if zeroLag == 0 {
		return result
	}
	for lag := 0; lag < maxLag; lag++ {
		result[lag] = real(corr[lag]) / zeroLag
	}
	return result
}
