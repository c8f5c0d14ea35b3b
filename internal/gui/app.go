// Package gui is the fyne window that shows one preview at a time and maps
// buttons and keys onto triage actions.
package gui

import (
	"image/color"

	"cull/internal/errors"
	"cull/internal/log"
	"cull/internal/triage"
	"cull/internal/watch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// AppID identifies cull to fyne for preferences storage
const AppID = "io.github.cull"

// Actions are the operations the window triggers
type Actions interface {
	Next() error
	Prev() error
	Preview() error
	MarkBad() error
	RemoveRaw() error
	Keep() error
	Undo() error
}

// Options configures the window
type Options struct {
	Width      int // Initial preview area when not full screen, in fyne units
	Height     int
	Fullscreen bool
}

// Window is the triage window. It implements triage.View.
type Window struct {
	app     fyne.App
	win     fyne.Window
	actions Actions

	image    *canvas.Image
	doneText *canvas.Text
	position *widget.Label
	details  *widget.Label
	status   *widget.Label

	prevButton *widget.Button
	nextButton *widget.Button
	badButton  *widget.Button
	rawButton  *widget.Button
	keepButton *widget.Button
	undoButton *widget.Button
}

var _ triage.View = (*Window)(nil)

// NewApp creates the fyne application
func NewApp() fyne.App {
	return app.NewWithID(AppID)
}

// NewWindow builds the triage window on a. Bind must be called before the
// buttons do anything.
func NewWindow(a fyne.App, opts Options) *Window {
	w := &Window{
		app: a,
		win: a.NewWindow("cull"),
	}

	w.image = canvas.NewImageFromImage(nil)
	w.image.FillMode = canvas.ImageFillContain
	w.image.ScaleMode = canvas.ImageScaleSmooth

	w.doneText = canvas.NewText("All images triaged", color.Black)
	w.doneText.Alignment = fyne.TextAlignCenter
	w.doneText.TextSize = 24
	w.doneText.Hide()

	w.position = widget.NewLabel("")
	w.details = widget.NewLabel("")
	w.status = widget.NewLabel("")

	w.prevButton = widget.NewButton("<", func() { w.dispatch("prev", Actions.Prev) })
	w.nextButton = widget.NewButton(">", func() { w.dispatch("next", Actions.Next) })
	w.badButton = widget.NewButton("[B]ad", func() { w.dispatch("bad", Actions.MarkBad) })
	w.rawButton = widget.NewButton("Remove [R]AW", func() { w.dispatch("raw", Actions.RemoveRaw) })
	w.keepButton = widget.NewButton("[K]eep", func() { w.dispatch("keep", Actions.Keep) })
	w.undoButton = widget.NewButton("[U]ndo", func() { w.dispatch("undo", Actions.Undo) })

	background := canvas.NewRectangle(color.White)
	preview := container.NewStack(background, w.image, container.NewCenter(w.doneText))

	buttons := container.NewHBox(
		w.prevButton,
		w.nextButton,
		layout.NewSpacer(),
		w.badButton,
		w.rawButton,
		w.keepButton,
		w.undoButton,
	)
	statusBar := container.NewHBox(w.position, w.details, layout.NewSpacer(), w.status)

	w.win.SetContent(container.NewBorder(nil, container.NewVBox(buttons, statusBar), nil, nil, preview))
	if opts.Fullscreen {
		w.win.SetFullScreen(true)
	} else if opts.Width > 0 && opts.Height > 0 {
		w.win.Resize(fyne.NewSize(float32(opts.Width), float32(opts.Height)))
	}
	w.win.Canvas().SetOnTypedKey(w.typedKey)

	return w
}

// Bind connects the window's buttons and keys to actions
func (w *Window) Bind(actions Actions) {
	w.actions = actions
}

// Window returns the underlying fyne window
func (w *Window) Window() fyne.Window {
	return w.win
}

// Render draws frame. It must run on the fyne event thread.
func (w *Window) Render(frame triage.Frame) {
	w.win.SetTitle(frame.Title)
	w.status.SetText("")

	if frame.Done {
		w.image.Image = nil
		w.image.Hide()
		w.doneText.Show()
		w.position.SetText("")
		w.details.SetText(frame.Details)
		w.setNavigation(false)
		w.image.Refresh()
		return
	}

	w.doneText.Hide()
	w.image.Show()
	w.image.Image = frame.Image
	w.image.Refresh()
	w.position.SetText(frame.Position)
	w.details.SetText(frame.Details)
	w.setNavigation(true)
}

// ShowMessage puts msg in the status line until the next render
func (w *Window) ShowMessage(msg string) {
	w.status.SetText(msg)
}

// Watch forwards removal events to onRemoved on the fyne event thread
// until events is closed.
func (w *Window) Watch(events <-chan watch.Event, onRemoved func(path string)) {
	go func() {
		for ev := range events {
			path := ev.Path
			fyne.Do(func() {
				onRemoved(path)
			})
		}
	}()
}

// ShowAndRun shows the window and blocks until it is closed
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

// Close closes the window, which quits the app
func (w *Window) Close() {
	w.win.Close()
}

func (w *Window) setNavigation(enabled bool) {
	for _, b := range []*widget.Button{w.prevButton, w.nextButton, w.badButton, w.rawButton, w.keepButton} {
		if enabled {
			b.Enable()
		} else {
			b.Disable()
		}
	}
}

func (w *Window) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft:
		w.dispatch("prev", Actions.Prev)
	case fyne.KeyRight:
		w.dispatch("next", Actions.Next)
	case fyne.KeySpace:
		w.dispatch("preview", Actions.Preview)
	case fyne.KeyB:
		w.dispatch("bad", Actions.MarkBad)
	case fyne.KeyR:
		w.dispatch("raw", Actions.RemoveRaw)
	case fyne.KeyK:
		w.dispatch("keep", Actions.Keep)
	case fyne.KeyU:
		w.dispatch("undo", Actions.Undo)
	case fyne.KeyQ, fyne.KeyEscape:
		w.Close()
	}
}

// dispatch runs an action. Failures are already reported in the status
// line by the controller, so they are only logged here.
func (w *Window) dispatch(name string, action func(Actions) error) {
	if w.actions == nil {
		return
	}
	if err := action(w.actions); err != nil && !errors.IsEmpty(err) {
		log.LogWithError(err).With(log.F("action", name)).Debug("Action failed")
	}
}
