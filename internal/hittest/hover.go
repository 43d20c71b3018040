package hittest

import (
	"time"

	"github.com/sells-group/chloropleth-cli/internal/source"
)

// Default hover timing.
const (
	DefaultThrottle  = 100 * time.Millisecond
	DefaultShowDelay = time.Second
)

// HoverState enumerates the tooltip state machine.
type HoverState int

const (
	// HoverIdle: cursor over no county.
	HoverIdle HoverState = iota
	// HoverPending: cursor rested on a county, show delay not yet elapsed.
	HoverPending
	// HoverShowing: tooltip visible for the current county.
	HoverShowing
)

// Update is the caller-visible outcome of one event: Show carries a county
// whose tooltip should appear now, Hide reports that a visible or pending
// tooltip was cancelled.
type Update struct {
	Show *source.CountyRecord
	Hide bool
}

// Hover drives delayed county tooltips from cursor events. It owns no
// timers: the caller supplies timestamps and polls Tick from its event loop,
// which keeps the delay and cancellation logic independently testable.
// Moves inside the throttle window are coalesced so resolution cost stays
// bounded regardless of event rate.
type Hover struct {
	index     *Index
	throttle  time.Duration
	showDelay time.Duration

	state    HoverState
	county   *source.CountyRecord
	since    time.Time
	lastMove time.Time
}

// NewHover creates a hover tracker over the given index. Zero durations get
// the defaults.
func NewHover(index *Index, throttle, showDelay time.Duration) *Hover {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	if showDelay <= 0 {
		showDelay = DefaultShowDelay
	}
	return &Hover{index: index, throttle: throttle, showDelay: showDelay}
}

// State reports the current machine state.
func (h *Hover) State() HoverState { return h.state }

// Current returns the county under the cursor, if any.
func (h *Hover) Current() *source.CountyRecord { return h.county }

// Move handles a cursor-move event at plot coordinates (x, y). Moving off
// the current county (including to "no match") cancels pending or visible
// feedback immediately; resting on the same county long enough shows it.
func (h *Hover) Move(x, y float64, now time.Time) Update {
	if !h.lastMove.IsZero() && now.Sub(h.lastMove) < h.throttle {
		return Update{}
	}
	h.lastMove = now

	hit := h.index.Resolve(x, y)
	switch {
	case hit == nil:
		return h.toIdle()

	case h.county != nil && hit.GEOID == h.county.GEOID:
		if h.state == HoverPending && now.Sub(h.since) >= h.showDelay {
			h.state = HoverShowing
			return Update{Show: h.county}
		}
		return Update{}

	default:
		update := h.toIdle()
		h.state = HoverPending
		h.county = hit
		h.since = now
		return update
	}
}

// Tick performs the time-elapsed check without cursor movement, promoting a
// rested county to Showing once the delay passes.
func (h *Hover) Tick(now time.Time) Update {
	if h.state == HoverPending && now.Sub(h.since) >= h.showDelay {
		h.state = HoverShowing
		return Update{Show: h.county}
	}
	return Update{}
}

// Leave handles the cursor exiting the plot area.
func (h *Hover) Leave(now time.Time) Update {
	h.lastMove = now
	return h.toIdle()
}

func (h *Hover) toIdle() Update {
	hadFeedback := h.state != HoverIdle
	h.state = HoverIdle
	h.county = nil
	return Update{Hide: hadFeedback}
}
