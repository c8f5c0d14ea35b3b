package triage

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"cull/internal/errors"
	"cull/internal/log"
	"cull/internal/organize"
	"cull/pkg/types"

	"github.com/dustin/go-humanize"
)

// Frame is everything a view needs to draw the current state
type Frame struct {
	Image    image.Image
	Title    string // File name, or the folder name once done
	Position string // "3/12"
	Details  string // Size and EXIF summary
	Done     bool
}

// View renders frames and transient status messages
type View interface {
	Render(Frame)
	ShowMessage(string)
}

// Previewer opens an image in an external viewer
type Previewer interface {
	Preview(path string) error
}

// Options configures what the controller moves and where
type Options struct {
	Folder      string   // Folder being triaged
	BadDir      string   // Destination of mark-bad and remove-raw
	SidecarExts []string // Moved by MarkBad
	RawExts     []string // Moved by RemoveRaw
}

// Controller applies user actions to a session, moving files through the
// mover and keeping the view in sync.
type Controller struct {
	session   *Session
	mover     organize.Mover
	previewer Previewer
	view      View
	opts      Options
}

// NewController wires a session to its collaborators
func NewController(session *Session, mover organize.Mover, previewer Previewer, view View, opts Options) *Controller {
	return &Controller{
		session:   session,
		mover:     mover,
		previewer: previewer,
		view:      view,
		opts:      opts,
	}
}

// Session returns the controlled session
func (c *Controller) Session() *Session {
	return c.session
}

// Start draws the first frame
func (c *Controller) Start() {
	c.render()
}

// Next shows the following image, wrapping at the end
func (c *Controller) Next() error {
	if err := c.session.Next(); err != nil {
		return err
	}
	c.render()
	return nil
}

// Prev shows the previous image, wrapping at the start
func (c *Controller) Prev() error {
	if err := c.session.Prev(); err != nil {
		return err
	}
	c.render()
	return nil
}

// Preview opens the current image in the platform quick-look tool
func (c *Controller) Preview() error {
	entry, err := c.session.Current()
	if err != nil {
		return err
	}
	if err := c.previewer.Preview(entry.Photo.Path); err != nil {
		if errors.IsUnsupported(err) {
			c.view.ShowMessage(err.Error())
		} else {
			c.view.ShowMessage(fmt.Sprintf("Preview failed: %v", err))
		}
		log.LogWithError(err).Warn("Preview failed")
		return err
	}
	return nil
}

// MarkBad moves the current image and its sidecars into the bad folder and
// takes it off the list. The image's own extension is always included.
func (c *Controller) MarkBad() error {
	exts := c.opts.SidecarExts
	if entry, err := c.session.Current(); err == nil {
		exts = withOwnExt(entry.Photo.Path, exts)
	}
	return c.moveAndRemove(types.ActionBad, exts)
}

// RemoveRaw moves only the raw sidecars into the bad folder and takes the
// image off the list.
func (c *Controller) RemoveRaw() error {
	return c.moveAndRemove(types.ActionRaw, c.opts.RawExts)
}

// Keep takes the current image off the list without touching the disk
func (c *Controller) Keep() error {
	r, err := c.session.Remove(types.ActionKeep, nil)
	if err != nil {
		return err
	}
	log.LogWithFields(log.F("path", r.Entry.Photo.Path)).Debug("Kept")
	c.render()
	return nil
}

// Undo reverts the most recent bad, raw or keep action, moving its files
// back out of the bad folder.
func (c *Controller) Undo() error {
	r, err := c.session.Peek()
	if err != nil {
		c.view.ShowMessage("Nothing to undo")
		return err
	}

	if err := c.mover.Restore(r.Moves); err != nil {
		log.LogWithError(err).Error("Undo failed")
		c.view.ShowMessage(fmt.Sprintf("Undo failed: %v", err))
		return err
	}

	if _, err := c.session.Undo(); err != nil {
		return err
	}
	log.LogWithFields(log.F("path", r.Entry.Photo.Path), log.F("action", r.Action.String())).Info("Undone")
	c.render()
	c.view.ShowMessage(fmt.Sprintf("Restored %s (%s)", r.Entry.Photo.Name(), r.Action))
	return nil
}

// FileRemoved drops the entry for a file that disappeared from disk. Paths
// that are not in the session, or that exist again by the time the event is
// handled, are ignored.
func (c *Controller) FileRemoved(path string) {
	if _, err := os.Stat(path); err == nil {
		return
	}
	if !c.session.Drop(path) {
		return
	}
	log.LogWithFields(log.F("path", path)).Info("File removed outside cull")
	c.render()
	c.view.ShowMessage(fmt.Sprintf("%s was removed from disk", filepath.Base(path)))
}

// Stats counts removals by action
func (c *Controller) Stats() map[types.Action]int {
	stats := make(map[types.Action]int)
	for _, r := range c.session.Removed() {
		stats[r.Action]++
	}
	return stats
}

func (c *Controller) moveAndRemove(action types.Action, exts []string) error {
	entry, err := c.session.Current()
	if err != nil {
		return err
	}

	path := entry.Photo.Path
	log.Infof("Moving [%s] to %s for: %s", strings.Join(exts, ", "), filepath.Base(c.opts.BadDir), path)

	moves, err := c.mover.MoveSidecars(path, exts, c.opts.BadDir)
	if err != nil {
		log.LogWithError(err).Error("Move failed")
		if rerr := c.mover.Restore(moves); rerr != nil {
			log.LogWithError(rerr).Error("Failed to roll back partial move")
			if anyMoved(moves) {
				// Files are stuck in the bad folder; record them so Undo can retry
				if _, serr := c.session.Remove(action, moves); serr == nil {
					c.render()
				}
				c.view.ShowMessage(fmt.Sprintf("Could not move %s: %v (press U to restore)", entry.Photo.Name(), err))
				return err
			}
		}
		c.view.ShowMessage(fmt.Sprintf("Could not move %s: %v", entry.Photo.Name(), err))
		return err
	}

	if _, err := c.session.Remove(action, moves); err != nil {
		return err
	}
	c.render()
	return nil
}

func anyMoved(moves []types.MoveResult) bool {
	for _, m := range moves {
		if m.Moved {
			return true
		}
	}
	return false
}

// withOwnExt puts the extension of path in front of exts unless it is
// already listed.
func withOwnExt(path string, exts []string) []string {
	own := strings.TrimPrefix(filepath.Ext(path), ".")
	if own == "" {
		return exts
	}
	for _, ext := range exts {
		if strings.EqualFold(ext, own) {
			return exts
		}
	}
	return append([]string{own}, exts...)
}

func (c *Controller) render() {
	if c.session.Empty() {
		c.view.Render(Frame{
			Title:   filepath.Base(c.opts.Folder),
			Details: "All images triaged",
			Done:    true,
		})
		return
	}

	entry, _ := c.session.Current()
	i, n := c.session.Position()
	c.view.Render(Frame{
		Image:    entry.Preview,
		Title:    entry.Photo.Name(),
		Position: fmt.Sprintf("%d/%d", i, n),
		Details:  Details(entry.Photo),
	})
}

// Details summarizes a photo's size and EXIF fields for the status line
func Details(p types.Photo) string {
	parts := []string{humanize.Bytes(uint64(p.Size))}
	if p.Metadata.CameraModel != "" {
		parts = append(parts, p.Metadata.CameraModel)
	}
	if p.Metadata.DateTimeOriginal != "" {
		parts = append(parts, p.Metadata.DateTimeOriginal)
	}
	return strings.Join(parts, " | ")
}
