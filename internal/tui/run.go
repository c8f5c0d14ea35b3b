package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// LoadFunc performs the load, calling report after each decoded image
type LoadFunc func(ctx context.Context, report func(done, total int)) error

// RunProgress runs load while drawing a progress bar. It returns load's
// error, or context.Canceled when the user quits first.
func RunProgress(ctx context.Context, total int, load LoadFunc, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(total), opts...)
	result := make(chan error, 1)

	go func() {
		err := load(ctx, func(done, total int) {
			p.Send(ProgressMsg{Done: done, Total: total})
		})
		result <- err
		p.Send(DoneMsg{Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		cancel()
		<-result
		return fmt.Errorf("progress display failed: %w", err)
	}

	if m, ok := final.(*Model); ok && m.Interrupted() {
		cancel()
		<-result
		return context.Canceled
	}
	return <-result
}
