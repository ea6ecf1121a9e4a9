package tui

import tea "github.com/charmbracelet/bubbletea"

// ChannelObserver forwards events raised outside the Bubble Tea loop
// (notifier timers, debounced search) into it.
type ChannelObserver struct {
	ch chan tea.Msg
}

// NewChannelObserver creates an observer with room for size pending events
func NewChannelObserver(size int) *ChannelObserver {
	return &ChannelObserver{ch: make(chan tea.Msg, size)}
}

// Send queues msg (non-blocking if full)
func (o *ChannelObserver) Send(msg tea.Msg) {
	select {
	case o.ch <- msg:
	default: // Non-blocking if channel full
	}
}

// Listen waits for the next event. Re-issue it after each delivery.
func (o *ChannelObserver) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-o.ch
	}
}
