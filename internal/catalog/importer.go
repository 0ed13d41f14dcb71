package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jscyril/tourguide/api"
	"github.com/jscyril/tourguide/internal/audio"
)

// Importer builds a catalog from a directory of audio files using a bounded
// pool of workers.
type Importer struct {
	workers int
	probe   func(path string) (time.Duration, error)
}

// NewImporter creates an importer
func NewImporter(workers int) *Importer {
	if workers <= 0 {
		workers = 4
	}
	return &Importer{
		workers: workers,
		probe:   audio.Probe,
	}
}

type scanned struct {
	path     string
	trackNum int
	track    api.Track
	ok       bool
}

// Import scans dir for supported audio files. Files that cannot be read or
// decoded are skipped and logged.
func (im *Importer) Import(ctx context.Context, dir, title string) (*Catalog, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && audio.IsSupported(p) {
			paths = append(paths, p)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}

	results := make([]scanned, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := im.read(p)
			if err != nil {
				zlog.Warn().Err(err).Str("path", p).Msg("skipping file")
				return nil
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "import")
	}

	found := make([]scanned, 0, len(results))
	for _, s := range results {
		if s.ok {
			found = append(found, s)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].trackNum != found[j].trackNum {
			return found[i].trackNum < found[j].trackNum
		}
		return found[i].path < found[j].path
	})

	tracks := make([]api.Track, len(found))
	for i, s := range found {
		tracks[i] = s.track
		tracks[i].ID = i + 1
	}
	return New(title, tracks)
}

// read extracts tags and the real duration of one file.
func (im *Importer) read(path string) (scanned, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return scanned{}, err
	}

	duration, err := im.probe(abs)
	if err != nil {
		return scanned{}, errors.Wrap(err, "probe")
	}

	base := filepath.Base(abs)
	s := scanned{
		path: abs,
		ok:   true,
		track: api.Track{
			Title:    strings.TrimSuffix(base, filepath.Ext(base)),
			Duration: roundUpSecond(duration),
			Audio:    api.AudioFrom(abs),
		},
	}

	file, err := os.Open(abs)
	if err != nil {
		return scanned{}, err
	}
	defer file.Close()

	// Untagged files keep the file name as title.
	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return s, nil
	}
	if metadata.Title() != "" {
		s.track.Title = metadata.Title()
	}
	s.track.Subtitle = metadata.Album()
	s.track.Description = metadata.Comment()
	s.trackNum, _ = metadata.Track()
	return s, nil
}

func roundUpSecond(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Second
	}
	return ((d + time.Second - 1) / time.Second) * time.Second
}
