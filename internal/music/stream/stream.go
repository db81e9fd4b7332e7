// /internal/music/stream/stream.go
package stream

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz

	maxOpusBytes     = FrameSize * Channels * 2
	resampleQuality  = 4
	outputSampleRate = beep.SampleRate(SampleRate)
)

// TrackStream is a decoded source producing 48kHz stereo samples.
type TrackStream struct {
	beep.Streamer
	closer  io.Closer
	locator string
	format  beep.Format
}

// Close releases the decoder and the underlying reader.
func (t *TrackStream) Close() error {
	return t.closer.Close()
}

// Locator returns the source the stream was opened from.
func (t *TrackStream) Locator() string {
	return t.locator
}

// Format returns the format of the source before resampling.
func (t *TrackStream) Format() beep.Format {
	return t.format
}

// Decode wraps rc in a decoder chosen by the locator's extension and
// resamples to the Discord output rate. It takes ownership of rc.
func Decode(rc io.ReadCloser, locator string) (*TrackStream, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	switch strings.ToLower(filepath.Ext(locator)) {
	case ".wav":
		s, format, err = wav.Decode(rc)
	default:
		s, format, err = mp3.Decode(rc)
	}
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", locator, err)
	}

	var out beep.Streamer = s
	if format.SampleRate != outputSampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, outputSampleRate, s)
	}

	return &TrackStream{
		Streamer: out,
		closer:   s, // decoders close rc with themselves
		locator:  locator,
		format:   format,
	}, nil
}
