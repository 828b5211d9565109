package core

import "math"

// ProcessorConfig defines common rendering settings shared by the graph and
// the analysis packages.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is the render quantum in frames. Parameter automation is
	// evaluated per sample, graph topology changes take effect per block.
	BlockSize int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns 48 kHz with a 128-frame render quantum.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  128,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the render quantum.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// FrameTime returns the time in seconds of frame index n.
func (c ProcessorConfig) FrameTime(n int64) float64 {
	return float64(n) / c.SampleRate
}

// FrameAt returns the first frame whose time is at or after t seconds.
func (c ProcessorConfig) FrameAt(t float64) int64 {
	if t <= 0 {
		return 0
	}
	return int64(math.Ceil(t*c.SampleRate - 1e-9))
}

// Nyquist returns half the sample rate.
func (c ProcessorConfig) Nyquist() float64 {
	return c.SampleRate / 2
}
