package service

import (
	"sync"
	"time"

	"github.com/mmcdole/kiosk/internal/clock"
	"github.com/mmcdole/kiosk/internal/domain"
)

// DefaultNotifyDuration is how long a notification stays visible
const DefaultNotifyDuration = 3 * time.Second

// Notifications is the sink controllers report user-facing outcomes to
type Notifications interface {
	Show(text string, kind domain.NotificationKind)
}

// Notifier holds a single notification slot with auto-hide.
// A new Show replaces the current message and restarts the timer.
type Notifier struct {
	clock    clock.Clock
	duration time.Duration

	mu       sync.Mutex
	current  domain.Notification
	timer    clock.Timer
	gen      uint64
	onChange func(domain.Notification)
}

var _ Notifications = (*Notifier)(nil)

// NewNotifier creates a notifier. A nil clock uses real time.
func NewNotifier(duration time.Duration, clk clock.Clock) *Notifier {
	if clk == nil {
		clk = clock.Real()
	}
	if duration <= 0 {
		duration = DefaultNotifyDuration
	}
	return &Notifier{clock: clk, duration: duration}
}

// OnChange registers fn to receive every change, including auto-hide.
// fn is called without the notifier lock held.
func (n *Notifier) OnChange(fn func(domain.Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

// Show replaces the current notification
func (n *Notifier) Show(text string, kind domain.NotificationKind) {
	n.mu.Lock()
	n.stopLocked()
	n.current = domain.Notification{Text: text, Kind: kind, Visible: true}
	gen := n.gen
	n.timer = n.clock.AfterFunc(n.duration, func() { n.expire(gen) })
	cur, fn := n.current, n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(cur)
	}
}

// Hide clears the notification immediately
func (n *Notifier) Hide() {
	n.mu.Lock()
	n.stopLocked()
	n.current.Visible = false
	cur, fn := n.current, n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(cur)
	}
}

// Current returns the notification slot
func (n *Notifier) Current() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.current.Visible = false
	cur, fn := n.current, n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(cur)
	}
}

// stopLocked cancels the pending auto-hide and invalidates late callbacks
func (n *Notifier) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
}
