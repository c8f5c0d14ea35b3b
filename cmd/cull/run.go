package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"cull/internal/config"
	"cull/internal/gui"
	"cull/internal/loader"
	"cull/internal/log"
	"cull/internal/organize"
	"cull/internal/preview"
	"cull/internal/scan"
	"cull/internal/triage"
	"cull/internal/tui"
	"cull/internal/watch"
	"cull/pkg/types"

	"golang.org/x/term"
)

// prepare scans dir and decodes every image it holds. An empty folder
// prints a notice and yields no entries and no error.
func prepare(ctx context.Context, cfg *config.Config, dir string, out io.Writer, interactive bool) ([]triage.Entry, error) {
	scanner, err := scan.New(cfg.Images.Extensions)
	if err != nil {
		return nil, err
	}

	photos, err := scanner.Scan(dir)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		fmt.Fprintf(out, "No valid JPG pictures in %s!\n", dir)
		return nil, nil
	}

	width, height := cfg.PreviewBounds()
	opts := loader.Options{
		Workers:    cfg.Workers(),
		Width:      width,
		Height:     height,
		AutoOrient: cfg.Display.AutoOrient,
	}

	var entries []triage.Entry
	if interactive {
		err = tui.RunProgress(ctx, len(photos), func(ctx context.Context, report func(done, total int)) error {
			opts.Progress = report
			var loadErr error
			entries, loadErr = loader.Load(ctx, photos, opts)
			return loadErr
		})
	} else {
		entries, err = loadWithLines(ctx, photos, opts, out)
	}
	if err != nil {
		return nil, err
	}

	log.LogWithFields(log.F("dir", dir), log.F("count", len(entries))).Info("Loaded images")
	return entries, nil
}

// loadWithLines loads photos printing one progress line per image
func loadWithLines(ctx context.Context, photos []types.Photo, opts loader.Options, out io.Writer) ([]triage.Entry, error) {
	var mu sync.Mutex
	fmt.Fprintf(out, "Loading %d images...\n", len(photos))
	opts.Progress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "Loaded %d/%d...\n", done, total)
	}

	entries, err := loader.Load(ctx, photos, opts)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "Loaded images!")
	return entries, nil
}

// launch opens the triage window over entries and blocks until it closes
func launch(cfg *config.Config, dir string, entries []triage.Entry) error {
	scanner, err := scan.New(cfg.Images.Extensions)
	if err != nil {
		return err
	}

	width, height := cfg.PreviewBounds()
	win := gui.NewWindow(gui.NewApp(), gui.Options{
		Width:      width,
		Height:     height,
		Fullscreen: cfg.Display.Fullscreen,
	})

	ctrl := triage.NewController(
		triage.NewSession(entries),
		organize.NewWithConfig(cfg),
		preview.New(cfg.Preview.Command),
		win,
		triage.Options{
			Folder:      dir,
			BadDir:      cfg.BadDir(dir),
			SidecarExts: cfg.Triage.SidecarExtensions,
			RawExts:     cfg.Triage.RawExtensions,
		},
	)
	win.Bind(ctrl)

	if cfg.Watch.Enabled {
		watcher, err := startWatcher(dir, scanner.Match)
		if err != nil {
			log.LogWithError(err).Warn("Not watching folder for external changes")
		} else {
			win.Watch(watcher.Events(), ctrl.FileRemoved)
			defer watcher.Stop()
		}
	}

	ctrl.Start()
	win.ShowAndRun()

	stats := ctrl.Stats()
	log.LogWithFields(
		log.F("bad", stats[types.ActionBad]),
		log.F("raw", stats[types.ActionRaw]),
		log.F("keep", stats[types.ActionKeep]),
		log.F("left", ctrl.Session().Len()),
	).Info("Triage finished")
	return nil
}

func startWatcher(dir string, match func(string) bool) (*watch.Watcher, error) {
	w, err := watch.New()
	if err != nil {
		return nil, err
	}
	w.SetFilter(match)
	if err := w.AddDirectory(dir); err != nil {
		w.Stop()
		return nil, err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
