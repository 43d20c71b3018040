package hittest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/chloropleth-cli/internal/source"
)

func hoverFixture(t *testing.T) *Hover {
	t.Helper()
	records := []source.CountyRecord{
		{GEOID: "a", Name: "Alpha", Geometry: mpoly(t, [][]float64{square(0, 0, 10, 10)})},
		{GEOID: "b", Name: "Beta", Geometry: mpoly(t, [][]float64{square(20, 0, 30, 10)})},
	}
	index, err := NewIndex(records)
	require.NoError(t, err)
	return NewHover(index, 100*time.Millisecond, time.Second)
}

func TestHoverShowsAfterDelay(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	update := h.Move(5, 5, now)
	assert.False(t, update.Hide)
	assert.Nil(t, update.Show)
	assert.Equal(t, HoverPending, h.State())

	// Resting short of the delay shows nothing.
	update = h.Tick(now.Add(900 * time.Millisecond))
	assert.Nil(t, update.Show)
	assert.Equal(t, HoverPending, h.State())

	update = h.Tick(now.Add(time.Second))
	require.NotNil(t, update.Show)
	assert.Equal(t, "a", update.Show.GEOID)
	assert.Equal(t, HoverShowing, h.State())
}

func TestHoverMovePromotesAfterDelay(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	h.Move(5, 5, now)
	update := h.Move(6, 6, now.Add(1100*time.Millisecond))
	require.NotNil(t, update.Show)
	assert.Equal(t, "a", update.Show.GEOID)
}

func TestHoverMovingOffCancels(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	h.Move(5, 5, now)
	h.Tick(now.Add(time.Second))
	require.Equal(t, HoverShowing, h.State())

	// Off all counties: hide immediately.
	update := h.Move(15, 5, now.Add(1200*time.Millisecond))
	assert.True(t, update.Hide)
	assert.Nil(t, update.Show)
	assert.Equal(t, HoverIdle, h.State())
	assert.Nil(t, h.Current())
}

func TestHoverSwitchingCountyRestartsDelay(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	h.Move(5, 5, now)
	h.Tick(now.Add(time.Second))
	require.Equal(t, HoverShowing, h.State())

	// Moving onto another county hides the old tooltip and starts pending.
	update := h.Move(25, 5, now.Add(1200*time.Millisecond))
	assert.True(t, update.Hide)
	assert.Equal(t, HoverPending, h.State())
	require.NotNil(t, h.Current())
	assert.Equal(t, "b", h.Current().GEOID)

	// The new county's delay runs from the switch, not from the first hover.
	update = h.Tick(now.Add(1300 * time.Millisecond))
	assert.Nil(t, update.Show)
	update = h.Tick(now.Add(2200 * time.Millisecond))
	require.NotNil(t, update.Show)
	assert.Equal(t, "b", update.Show.GEOID)
}

func TestHoverThrottleCoalescesMoves(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	h.Move(5, 5, now)
	// Within the throttle window the move is ignored entirely, so the
	// cursor "leaving" is not observed yet.
	update := h.Move(15, 5, now.Add(50*time.Millisecond))
	assert.False(t, update.Hide)
	assert.Equal(t, HoverPending, h.State())

	// Past the window the same position is processed.
	update = h.Move(15, 5, now.Add(150*time.Millisecond))
	assert.True(t, update.Hide)
	assert.Equal(t, HoverIdle, h.State())
}

func TestHoverLeave(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	h.Move(5, 5, now)
	update := h.Leave(now.Add(200 * time.Millisecond))
	assert.True(t, update.Hide)
	assert.Equal(t, HoverIdle, h.State())

	// Leaving while idle reports nothing to hide.
	update = h.Leave(now.Add(400 * time.Millisecond))
	assert.False(t, update.Hide)
}

func TestHoverIdleOverBackground(t *testing.T) {
	h := hoverFixture(t)
	now := time.Unix(1000, 0)

	update := h.Move(15, 5, now)
	assert.False(t, update.Hide)
	assert.Equal(t, HoverIdle, h.State())
}

func TestHoverDefaults(t *testing.T) {
	h := NewHover(nil, 0, 0)
	assert.Equal(t, DefaultThrottle, h.throttle)
	assert.Equal(t, DefaultShowDelay, h.showDelay)
}
