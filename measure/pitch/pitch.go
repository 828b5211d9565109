package pitch

import (
	"errors"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/dsp/window"
)

const (
	defaultMinHz      = 20.0
	defaultMaxHz      = 8000.0
	defaultSubRatio   = 0.3
	maxSubharmonic    = 4
	defaultWindowType = window.TypeHann
)

var (
	// ErrEmptySignal is returned for signals too short to analyze.
	ErrEmptySignal = errors.New("pitch: signal too short")
	// ErrNoPeak is returned when the search range holds no energy.
	ErrNoPeak = errors.New("pitch: no spectral peak in range")
)

// Config holds estimator parameters. Zero fields take defaults.
type Config struct {
	SampleRate float64
	FFTSize    int
	MinHz      float64
	MaxHz      float64
	// SubharmonicRatio is the level, relative to the strongest peak, a
	// sub-harmonic needs to be chosen as the fundamental.
	SubharmonicRatio float64
	WindowType       window.Type
}

// Result is the outcome of an estimate.
type Result struct {
	Frequency float64
	// Level is the linear peak magnitude at the fundamental bin.
	Level float64
	// Harmonics holds magnitudes of harmonics 2.. relative to Level.
	Harmonics []float64
}

// Estimator analyzes blocks with a reusable FFT plan.
type Estimator struct {
	cfg  Config
	plan *algofft.Plan[complex128]
	win  []float64
	in   []complex128
	out  []complex128
	re   []float64
	im   []float64
	mag  []float64
}

// NewEstimator creates an estimator for cfg.
func NewEstimator(cfg Config) (*Estimator, error) {
	cfg = normalizeConfig(cfg)

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, err
	}

	bins := cfg.FFTSize/2 + 1
	return &Estimator{
		cfg:  cfg,
		plan: plan,
		in:   make([]complex128, cfg.FFTSize),
		out:  make([]complex128, cfg.FFTSize),
		re:   make([]float64, bins),
		im:   make([]float64, bins),
		mag:  make([]float64, bins),
	}, nil
}

// Estimate is a one-shot analysis of signal.
func Estimate(signal []float64, cfg Config) (Result, error) {
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = nextPowerOf2(len(signal))
	}
	e, err := NewEstimator(cfg)
	if err != nil {
		return Result{}, err
	}
	return e.Estimate(signal)
}

// EstimateFloat32 converts a rendered float32 buffer and estimates it.
func EstimateFloat32(signal []float32, cfg Config) (Result, error) {
	x := make([]float64, len(signal))
	for i, v := range signal {
		x[i] = float64(v)
	}
	return Estimate(x, cfg)
}

// Estimate analyzes up to FFTSize samples of signal.
func (e *Estimator) Estimate(signal []float64) (Result, error) {
	n := min(len(signal), e.cfg.FFTSize)
	if n < 4 {
		return Result{}, ErrEmptySignal
	}

	if len(e.win) != n {
		e.win = window.Generate(e.cfg.WindowType, n)
	}
	for i := range e.in {
		e.in[i] = 0
	}
	for i := range n {
		e.in[i] = complex(signal[i]*e.win[i], 0)
	}

	if err := e.plan.Forward(e.out, e.in); err != nil {
		return Result{}, err
	}
	for i := range e.re {
		e.re[i] = real(e.out[i])
		e.im[i] = imag(e.out[i])
	}
	vecmath.Magnitude(e.mag, e.re, e.im)

	return e.analyze()
}

func (e *Estimator) analyze() (Result, error) {
	binHz := e.cfg.SampleRate / float64(e.cfg.FFTSize)
	maxBin := len(e.mag) - 2
	lo := clampInt(int(math.Floor(e.cfg.MinHz/binHz)), 1, maxBin)
	hi := clampInt(int(math.Ceil(e.cfg.MaxHz/binHz)), lo, maxBin)

	peak := argmax(e.mag, lo, hi)
	if e.mag[peak] <= 0 {
		return Result{}, ErrNoPeak
	}

	// Walk down from the lowest sub-harmonic; the first strong one wins.
	fund := peak
	for k := maxSubharmonic; k >= 2; k-- {
		center := int(math.Round(float64(peak) / float64(k)))
		if center < lo {
			continue
		}
		cand := argmax(e.mag, max(lo, center-1), min(hi, center+1))
		if e.mag[cand] >= e.cfg.SubharmonicRatio*e.mag[peak] && isLocalMax(e.mag, cand) {
			fund = cand
			break
		}
	}

	res := Result{
		Frequency: (float64(fund) + e.interpolate(fund)) * binHz,
		Level:     e.mag[fund],
	}
	for h := 2; h*fund <= maxBin && h <= 16; h++ {
		b := argmax(e.mag, h*fund-1, min(maxBin, h*fund+1))
		res.Harmonics = append(res.Harmonics, e.mag[b]/res.Level)
	}
	return res, nil
}

// interpolate returns the fractional bin offset of the peak at k.
func (e *Estimator) interpolate(k int) float64 {
	if k < 1 || k+1 >= len(e.mag) {
		return 0
	}
	a := logMag(e.mag[k-1])
	b := logMag(e.mag[k])
	c := logMag(e.mag[k+1])
	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	return 0.5 * (a - c) / den
}

func logMag(m float64) float64 {
	return math.Log(math.Max(m, 1e-300))
}

func isLocalMax(mag []float64, k int) bool {
	return k > 0 && k+1 < len(mag) && mag[k] >= mag[k-1] && mag[k] >= mag[k+1]
}

func argmax(x []float64, lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}

func normalizeConfig(cfg Config) Config {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 8192
	}
	cfg.FFTSize = nextPowerOf2(cfg.FFTSize)
	if cfg.MinHz <= 0 {
		cfg.MinHz = defaultMinHz
	}
	if cfg.MaxHz <= 0 {
		cfg.MaxHz = defaultMaxHz
	}
	cfg.MaxHz = math.Min(cfg.MaxHz, cfg.SampleRate/2)
	if cfg.SubharmonicRatio <= 0 {
		cfg.SubharmonicRatio = defaultSubRatio
	}
	if cfg.WindowType == window.TypeRectangular {
		cfg.WindowType = defaultWindowType
	}
	return cfg
}

func nextPowerOf2(n int) int {
	p := 4
	for p < n {
		p <<= 1
	}
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
