// Package catalog holds the fixed, ordered list of tour stops.
package catalog

import (
	_ "embed"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jscyril/tourguide/api"
	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

//go:embed default.yaml
var defaultDocument []byte

var validate = validator.New()

// record is the on-disk form of a track.
type record struct {
	ID              int    `yaml:"id" validate:"gt=0"`
	Title           string `yaml:"title" validate:"required"`
	Subtitle        string `yaml:"subtitle,omitempty"`
	DurationSeconds int    `yaml:"duration_seconds" validate:"gt=0"`
	Image           string `yaml:"image,omitempty"`
	Audio           string `yaml:"audio,omitempty"`
	Description     string `yaml:"description,omitempty"`
}

type document struct {
	Title  string   `yaml:"title"`
	Tracks []record `yaml:"tracks" validate:"required,min=1,unique=ID,dive"`
}

// Catalog is an immutable ordered sequence of tracks.
type Catalog struct {
	title  string
	tracks []api.Track
}

// New builds a catalog from tracks, enforcing positive unique IDs and
// positive nominal durations.
func New(title string, tracks []api.Track) (*Catalog, error) {
	doc := document{Title: title, Tracks: make([]record, len(tracks))}
	for i, t := range tracks {
		doc.Tracks[i] = toRecord(t)
	}
	return fromDocument(doc)
}

// Default returns the built-in tour.
func Default() *Catalog {
	c, err := Parse(defaultDocument)
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "embedded catalog"))
	}
	return c
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse catalog"), playerrors.ErrInvalidCatalog)
	}
	return fromDocument(doc)
}

func fromDocument(doc document) (*Catalog, error) {
	if err := validate.Struct(doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "validate catalog"), playerrors.ErrInvalidCatalog)
	}

	tracks := make([]api.Track, len(doc.Tracks))
	for i, r := range doc.Tracks {
		tracks[i] = api.Track{
			ID:          r.ID,
			Title:       r.Title,
			Subtitle:    r.Subtitle,
			Description: r.Description,
			Duration:    time.Duration(r.DurationSeconds) * time.Second,
			ImageRef:    r.Image,
			Audio:       api.AudioFrom(r.Audio),
		}
	}
	return &Catalog{title: doc.Title, tracks: tracks}, nil
}

func toRecord(t api.Track) record {
	audio, _ := t.Audio.Ref()
	return record{
		ID:              t.ID,
		Title:           t.Title,
		Subtitle:        t.Subtitle,
		DurationSeconds: int(t.Duration / time.Second),
		Image:           t.ImageRef,
		Audio:           audio,
		Description:     t.Description,
	}
}

// Encode writes the catalog as YAML.
func (c *Catalog) Encode(w io.Writer) error {
	doc := document{Title: c.title, Tracks: make([]record, len(c.tracks))}
	for i, t := range c.tracks {
		doc.Tracks[i] = toRecord(t)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	return enc.Close()
}

// Title returns the tour name.
func (c *Catalog) Title() string {
	return c.title
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// At returns the track at index. An invalid index is an assertion failure.
func (c *Catalog) At(index int) (api.Track, error) {
	if index < 0 || index >= len(c.tracks) {
		return api.Track{}, playerrors.OutOfRange(index, len(c.tracks))
	}
	return c.tracks[index], nil
}

// Tracks returns a copy of all tracks in order.
func (c *Catalog) Tracks() []api.Track {
	result := make([]api.Track, len(c.tracks))
	copy(result, c.tracks)
	return result
}

// Next returns the index after index, wrapping around.
func (c *Catalog) Next(index int) int {
	return (index + 1) % len(c.tracks)
}

// Prev returns the index before index, wrapping around.
func (c *Catalog) Prev(index int) int {
	return (index - 1 + len(c.tracks)) % len(c.tracks)
}
