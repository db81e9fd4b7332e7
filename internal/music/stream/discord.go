// /internal/music/stream/discord.go
package stream

import (
	"fmt"

	"github.com/gopxl/beep"
	"layeh.com/gopus"
)

// Encoder turns one PCM frame into an Opus packet.
type Encoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// NewOpusEncoder returns a gopus encoder for 48kHz stereo music.
func NewOpusEncoder() (Encoder, error) {
	encoder, err := gopus.NewEncoder(SampleRate, Channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return encoder, nil
}

// frameReader pulls fixed 20ms frames out of a beep streamer.
type frameReader struct {
	src     beep.Streamer
	samples [][2]float64
	pcm     []int16
}

func newFrameReader(src beep.Streamer) *frameReader {
	return &frameReader{
		src:     src,
		samples: make([][2]float64, FrameSize),
		pcm:     make([]int16, FrameSize*Channels),
	}
}

// next fills the next frame. A short final frame is padded with silence.
// It returns false once the source is drained.
func (f *frameReader) next() ([]int16, bool, error) {
	filled := 0
	for filled < FrameSize {
		n, ok := f.src.Stream(f.samples[filled:])
		filled += n
		if !ok {
			break
		}
	}
	if filled == 0 {
		return nil, false, f.src.Err()
	}

	for i := range f.samples {
		if i >= filled {
			f.samples[i] = [2]float64{}
		}
		f.pcm[i*2] = toInt16(f.samples[i][0])
		f.pcm[i*2+1] = toInt16(f.samples[i][1])
	}
	return f.pcm, true, nil
}

func toInt16(v float64) int16 {
	switch {
	case v >= 1:
		return 32767
	case v <= -1:
		return -32767
	}
	return int16(v * 32767)
}
