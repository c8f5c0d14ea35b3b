// Package preview hands an image to the platform quick-look tool.
package preview

import (
	"io"
	"os/exec"

	"cull/internal/errors"
	"cull/internal/log"
)

// ErrUnsupported is returned when no preview command is configured
var ErrUnsupported = errors.NewKind("Preview only supported on OS X for now!", errors.UnsupportedPlatform)

// Previewer runs an external viewer without waiting for it
type Previewer struct {
	command []string
	start   func(*exec.Cmd) error
}

// New creates a previewer that runs command with the image path appended.
// An empty command makes every Preview fail with ErrUnsupported.
func New(command []string) *Previewer {
	return &Previewer{
		command: command,
		start:   startDetached,
	}
}

// Supported reports whether a preview command is configured
func (p *Previewer) Supported() bool {
	return len(p.command) > 0
}

// Preview launches the viewer for path. Its output is discarded.
func (p *Previewer) Preview(path string) error {
	if !p.Supported() {
		return ErrUnsupported
	}

	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.Command(p.command[0], args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := p.start(cmd); err != nil {
		return errors.NewFileError("failed to start preview", path, errors.FileOperationFailed, err)
	}
	log.LogWithFields(log.F("path", path), log.F("command", p.command[0])).Debug("Preview started")
	return nil
}

// startDetached starts cmd and reaps it in the background
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debugf("Preview exited: %v", err)
		}
	}()
	return nil
}
