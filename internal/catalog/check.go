package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dhowden/tag"

	"github.com/egroblox/ifebot/pkg/util"
)

const (
	// sniffSize is enough for an ID3v2 header or a container magic.
	sniffSize    = 64 * 1024
	checkWorkers = 4
)

var ErrUnsupportedAudio = errors.New("unrecognised audio format")

// Opener opens the byte stream behind a track source.
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Report is the outcome of checking one track source.
type Report struct {
	Track    Track
	FileType string
	Err      error
}

// Check opens every source and identifies its audio format. Reports come
// back in catalog order.
func (c *Catalog) Check(ctx context.Context, opener Opener) []Report {
	reports := make([]Report, len(c.tracks))
	_ = util.Parallel(ctx, c.tracks, checkWorkers, func(ctx context.Context, i int, t Track) error {
		ft, err := identify(ctx, opener, t.Source)
		reports[i] = Report{Track: t, FileType: ft, Err: err}
		return nil
	})
	return reports
}

func identify(ctx context.Context, opener Opener, locator string) (string, error) {
	rc, err := opener.Open(ctx, locator)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	head, err := io.ReadAll(io.LimitReader(rc, sniffSize))
	if err != nil {
		return "", fmt.Errorf("read %q: %w", locator, err)
	}
	return Sniff(head)
}

// Sniff classifies the leading bytes of an audio file.
func Sniff(head []byte) (string, error) {
	_, ft, err := tag.Identify(bytes.NewReader(head))
	if err == nil && ft != tag.UnknownFileType {
		return string(ft), nil
	}

	switch {
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return "WAV", nil
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// bare MPEG audio frame sync, no ID3 header
		return string(tag.MP3), nil
	}
	return "", ErrUnsupportedAudio
}
