package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/kiosk/internal/clock"
	"github.com/mmcdole/kiosk/internal/domain"
)

func newTestNotifier() (*Notifier, *clock.Fake) {
	clk := clock.NewFake(time.Unix(0, 0))
	return NewNotifier(3*time.Second, clk), clk
}

func TestNotifierSecondShowReplacesFirst(t *testing.T) {
	n, clk := newTestNotifier()

	n.Show("saved", domain.NotifySuccess)
	clk.Advance(500 * time.Millisecond)
	n.Show("failed", domain.NotifyError)

	cur := n.Current()
	assert.Equal(t, "failed", cur.Text)
	assert.Equal(t, domain.NotifyError, cur.Kind)
	assert.True(t, cur.Visible)
	assert.Equal(t, 1, clk.Pending(), "first timer cancelled")

	// First timer's deadline passes without hiding the second message
	clk.Advance(2600 * time.Millisecond)
	assert.True(t, n.Current().Visible)

	clk.Advance(400 * time.Millisecond)
	assert.False(t, n.Current().Visible)
	assert.Zero(t, clk.Pending())
}

func TestNotifierHideCancelsTimer(t *testing.T) {
	n, clk := newTestNotifier()
	var changes []domain.Notification
	n.OnChange(func(cur domain.Notification) { changes = append(changes, cur) })

	n.Show("hello", domain.NotifyInfo)
	n.Hide()

	assert.False(t, n.Current().Visible)
	assert.Zero(t, clk.Pending())

	clk.Advance(10 * time.Second)
	assert.Len(t, changes, 2, "no late auto-hide after explicit hide")
}

func TestNotifierAutoHideNotifiesObserver(t *testing.T) {
	n, clk := newTestNotifier()
	var last domain.Notification
	n.OnChange(func(cur domain.Notification) { last = cur })

	n.Show("hello", domain.NotifyInfo)
	assert.True(t, last.Visible)

	clk.Advance(3 * time.Second)
	assert.False(t, last.Visible)
	assert.Equal(t, "hello", last.Text)
}

func TestNotifierDefaultDuration(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	n := NewNotifier(0, clk)

	n.Show("x", domain.NotifyInfo)
	clk.Advance(DefaultNotifyDuration - time.Millisecond)
	assert.True(t, n.Current().Visible)
	clk.Advance(time.Millisecond)
	assert.False(t, n.Current().Visible)
}
