// Package wav writes RIFF WAVE files from rendered float32 samples.
package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Format describes the output file.
type Format struct {
	SampleRate int
	Channels   int
	// PCM16 writes 16-bit integer samples instead of 32-bit float.
	PCM16 bool
}

// Encode writes samples, interleaved per Format.Channels, as a WAV stream.
func Encode(w io.Writer, samples []float32, f Format) error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("wav: sample rate must be > 0: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		f.Channels = 1
	}
	if len(samples)%f.Channels != 0 {
		return errors.New("wav: sample count is not a multiple of the channel count")
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, len(samples), f); err != nil {
		return fmt.Errorf("wav: header: %w", err)
	}

	var err error
	if f.PCM16 {
		pcm := make([]int16, len(samples))
		for i, v := range samples {
			pcm[i] = toPCM16(v)
		}
		err = binary.Write(bw, binary.LittleEndian, pcm)
	} else {
		err = binary.Write(bw, binary.LittleEndian, samples)
	}
	if err != nil {
		return fmt.Errorf("wav: data: %w", err)
	}
	return bw.Flush()
}

func toPCM16(v float32) int16 {
	s := math.Round(float64(v) * math.MaxInt16)
	switch {
	case s > math.MaxInt16:
		return math.MaxInt16
	case s < math.MinInt16:
		return math.MinInt16
	case math.IsNaN(s):
		return 0
	}
	return int16(s)
}

func writeHeader(w io.Writer, n int, f Format) error {
	bytesPerSample, fmtSize, waveFormat := 4, 18, uint16(3)
	if f.PCM16 {
		bytesPerSample, fmtSize, waveFormat = 2, 16, 1
	}
	dataSize := n * bytesPerSample
	riffSize := 4 + (8 + fmtSize) + 8 + dataSize
	if !f.PCM16 {
		riffSize += 12
	}

	le := binary.LittleEndian
	fields := []any{
		[4]byte{'R', 'I', 'F', 'F'}, uint32(riffSize), [4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '}, uint32(fmtSize),
		waveFormat,
		uint16(f.Channels),
		uint32(f.SampleRate),
		uint32(f.SampleRate * f.Channels * bytesPerSample),
		uint16(f.Channels * bytesPerSample),
		uint16(8 * bytesPerSample),
	}
	if !f.PCM16 {
		fields = append(fields,
			uint16(0),
			[4]byte{'f', 'a', 'c', 't'}, uint32(4), uint32(n/f.Channels))
	}
	fields = append(fields, [4]byte{'d', 'a', 't', 'a'}, uint32(dataSize))

	for _, v := range fields {
		if err := binary.Write(w, le, v); err != nil {
			return err
		}
	}
	return nil
}
