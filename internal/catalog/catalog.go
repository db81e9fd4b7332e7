// Package catalog holds the fixed set of playable IFE tracks.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyCatalog = errors.New("catalog has no tracks")
	ErrDuplicateID  = errors.New("duplicate track id")
	ErrInvalidTrack = errors.New("invalid track")
)

// Track is a catalog entry naming a playable audio resource.
type Track struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
}

// Catalog is an ordered, immutable set of tracks with unique ids.
// Insertion order is display order.
type Catalog struct {
	tracks []Track
	index  map[string]int
}

// New validates tracks and builds a catalog from them.
func New(tracks []Track) (*Catalog, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		tracks: slices.Clone(tracks),
		index:  make(map[string]int, len(tracks)),
	}
	for i, t := range c.tracks {
		if err := validateTrack(t); err != nil {
			return nil, fmt.Errorf("track #%d: %w", i+1, err)
		}
		if _, ok := c.index[t.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)
		}
		c.index[t.ID] = i
	}
	return c, nil
}

func validateTrack(t Track) error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidTrack)
	case t.Label == "":
		return fmt.Errorf("%w: %q has no label", ErrInvalidTrack, t.ID)
	case t.Source == "":
		return fmt.Errorf("%w: %q has no source", ErrInvalidTrack, t.ID)
	}
	return nil
}

type file struct {
	Tracks []Track `yaml:"tracks"`
}

// LoadFile reads a YAML catalog of the form `tracks: [{id, label, description, source}]`.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return New(f.Tracks)
}

// Load returns the catalog at path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Lookup returns the track with the given id.
func (c *Catalog) Lookup(id string) (Track, bool) {
	i, ok := c.index[id]
	if !ok {
		return Track{}, false
	}
	return c.tracks[i], true
}

// Tracks returns a copy of all tracks in display order.
func (c *Catalog) Tracks() []Track {
	return slices.Clone(c.tracks)
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}
