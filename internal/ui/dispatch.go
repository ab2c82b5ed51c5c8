package ui

import tea "github.com/charmbracelet/bubbletea"

// applyMsg carries presenter work back into the program loop.
type applyMsg struct{ f func() }

// Dispatcher runs interactor calls on goroutines and funnels their results
// into the Bubble Tea event loop, where Update applies them.
type Dispatcher struct {
	send func(tea.Msg)
}

func NewDispatcher() *Dispatcher { return &Dispatcher{} }

func (d *Dispatcher) Background(f func()) { go f() }

func (d *Dispatcher) Main(f func()) {
	if d.send == nil {
		return
	}
	d.send(applyMsg{f: f})
}

func (d *Dispatcher) bind(p *tea.Program) { d.send = p.Send }
