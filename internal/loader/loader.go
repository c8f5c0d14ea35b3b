// Package loader decodes a folder's photos into previews in parallel.
package loader

import (
	"context"
	"runtime"
	"sync/atomic"

	"cull/internal/imaging"
	"cull/internal/log"
	"cull/internal/scan"
	"cull/internal/triage"
	"cull/pkg/types"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each photo is decoded. Calls may come from
// several goroutines at once; each call carries a distinct done count.
type ProgressFunc func(done, total int)

// Options controls a Load
type Options struct {
	Workers    int // Concurrent decodes; <= 0 means one per CPU
	Width      int // Preview bounds
	Height     int
	AutoOrient bool // Rotate previews upright using EXIF orientation
	Progress   ProgressFunc
}

// Load reads metadata for and decodes every photo, returning entries in the
// same order as photos. The first decode failure cancels the remaining work
// and is returned as is.
func Load(ctx context.Context, photos []types.Photo, opts Options) ([]triage.Entry, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	total := len(photos)
	entries := make([]triage.Entry, total)
	var done atomic.Int64

	log.LogWithFields(log.F("count", total), log.F("workers", workers)).Debug("Loading images")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range photos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			photo := photos[i]
			meta, err := scan.ReadMetadata(photo.Path)
			if err != nil {
				log.LogWithError(err).Debug("Skipping metadata")
			}
			photo.Metadata = meta

			orientation := 1
			if opts.AutoOrient {
				orientation = meta.Orientation
			}

			img, err := imaging.Decode(photo.Path, opts.Width, opts.Height, orientation)
			if err != nil {
				return err
			}

			// Each task owns its slot
			entries[i] = triage.Entry{Photo: photo, Preview: img}

			n := int(done.Add(1))
			if opts.Progress != nil {
				opts.Progress(n, total)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
