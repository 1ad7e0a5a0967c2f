package bubbletea

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/pagewatch"
)

// Compile-time interface verification.
var _ pagewatch.Notifier = (*Notifier)(nil)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Notifier forwards every round outcome to the dashboard.
type Notifier struct {
	sender Sender
}

// NewNotifier creates a Notifier sending events to s.
func NewNotifier(s Sender) *Notifier {
	return &Notifier{sender: s}
}

// Notify sends e to the dashboard as an EventMsg.
func (n *Notifier) Notify(ctx context.Context, e pagewatch.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.sender.Send(EventMsg{Event: e})
	return nil
}

// Dashboard runs the dashboard program.
type Dashboard struct {
	model   Model
	options []tea.ProgramOption
}

// NewDashboard creates a Dashboard for m. The program uses the alternate
// screen unless other program options are given.
func NewDashboard(m Model, opts ...tea.ProgramOption) *Dashboard {
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
	return &Dashboard{model: m, options: opts}
}

// Run starts the program and calls monitor with a notifier feeding it. The
// program quits when monitor returns, and monitor's context is cancelled when
// the user quits. The error of monitor takes precedence.
func (d *Dashboard) Run(ctx context.Context, monitor func(ctx context.Context, n pagewatch.Notifier) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(d.model, append(d.options, tea.WithContext(ctx))...)

	done := make(chan error, 1)
	go func() {
		err := monitor(ctx, NewNotifier(p))
		p.Quit()
		done <- err
	}()

	_, uiErr := p.Run()
	cancel()
	if err := <-done; err != nil {
		return err
	}
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return uiErr
	}
	return nil
}
