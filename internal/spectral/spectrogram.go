// Package spectral computes log-magnitude power grids from mono PCM
// signals via an overlapped, windowed DFT.
package spectral

import (
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// Window size and hop size are fixed by the fingerprinting scheme: 50%
// overlap keeps peak-localization error bounded to ±H/2 frames, which in
// turn keeps Δt stable under small alignment shifts between a reference
// track and a noisy snippet of it.
const (
	WindowSize = 4096
	HopSize    = WindowSize / 2
)

// ErrEmptySignal is returned when every sample in a signal is zero, so
// no normalization factor exists.
var ErrEmptySignal = errors.New("spectral: signal is empty or silent")

// ErrSignalTooShort is returned when a signal yields no frame under
// N = (L - WindowSize) / HopSize, i.e. when it is shorter than
// WindowSize + HopSize samples.
var ErrSignalTooShort = errors.New("spectral: signal shorter than one analysis window")

// Grid is a log-magnitude power grid indexed [freqBin][timeFrame].
// Values are finite and non-negative.
type Grid struct {
	Freq   [][]float64 // Freq[bin][frame]
	Bins   int
	Frames int
}

// At returns the power at (bin, frame).
func (g *Grid) At(bin, frame int) float64 {
	return g.Freq[bin][frame]
}

// Column copies out all bins at a given frame.
func (g *Grid) Column(frame int) []float64 {
	col := make([]float64, g.Bins)
	for b := 0; b < g.Bins; b++ {
		col[b] = g.Freq[b][frame]
	}
	return col
}

var hammingWindow = func() [WindowSize]float64 {
	var w [WindowSize]float64
	for n := 0; n < WindowSize; n++ {
		w[n] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/float64(WindowSize-1))
	}
	return w
}()

// Compute normalizes signal by its peak absolute amplitude, then runs a
// Hamming-windowed DFT over overlapping frames, returning the
// frequency axis, time axis (seconds), and the resulting power grid.
func Compute(signal []float64, sampleRate int) (freqAxis, timeAxis []float64, grid *Grid, err error) {
	peak := 0.0
	for _, s := range signal {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return nil, nil, nil, ErrEmptySignal
	}

	l := len(signal)
	n := (l - WindowSize) / HopSize
	if n < 1 {
		return nil, nil, nil, fmt.Errorf("%w: have %d samples, need at least %d", ErrSignalTooShort, l, WindowSize+HopSize)
	}

	normalized := make([]float64, l)
	for i, s := range signal {
		normalized[i] = s / peak
	}

	bins := WindowSize / 2
	freqBins := make([][]float64, bins)
	for b := range freqBins {
		freqBins[b] = make([]float64, n)
	}

	frame := make([]float64, WindowSize)
	for i := 0; i < n; i++ {
		start := i * HopSize
		for j := 0; j < WindowSize; j++ {
			frame[j] = normalized[start+j] * hammingWindow[j]
		}

		spectrum := fft.FFTReal(frame)
		for b := 0; b < bins; b++ {
			mag := cmplxAbs(spectrum[b])
			v := math.Log1p(mag)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			freqBins[b][i] = v
		}
	}

	freqAxis = make([]float64, bins)
	for k := 0; k < bins; k++ {
		freqAxis[k] = float64(k) * float64(sampleRate) / float64(WindowSize)
	}
	timeAxis = make([]float64, n)
	for i := 0; i < n; i++ {
		timeAxis[i] = float64(i*HopSize) / float64(sampleRate)
	}

	grid = &Grid{Freq: freqBins, Bins: bins, Frames: n}
	return freqAxis, timeAxis, grid, nil
}

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}
