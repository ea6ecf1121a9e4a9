package debounce

import (
	"testing"
	"time"

	"github.com/mmcdole/kiosk/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestTriggerRunsAfterQuiescence(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	d := New(500*time.Millisecond, clk)

	var got []string
	d.Trigger(func() { got = append(got, "p") })
	clk.Advance(300 * time.Millisecond)
	d.Trigger(func() { got = append(got, "ph") })
	clk.Advance(300 * time.Millisecond)
	d.Trigger(func() { got = append(got, "pho") })

	clk.Advance(499 * time.Millisecond)
	assert.Empty(t, got)
	assert.True(t, d.Pending())

	clk.Advance(time.Millisecond)
	assert.Equal(t, []string{"pho"}, got)
	assert.False(t, d.Pending())
}

func TestCancelDropsPendingAction(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	d := New(time.Second, clk)

	called := false
	d.Trigger(func() { called = true })
	d.Cancel()

	clk.Advance(time.Minute)
	assert.False(t, called)
	assert.Equal(t, 0, clk.Pending())
}

func TestDefaultDelay(t *testing.T) {
	clk := clock.NewFake(time.Unix(0, 0))
	d := New(0, clk)

	called := false
	d.Trigger(func() { called = true })
	clk.Advance(DefaultDelay - time.Millisecond)
	assert.False(t, called)
	clk.Advance(time.Millisecond)
	assert.True(t, called)
}
