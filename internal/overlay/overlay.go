// Package overlay tracks the metadata tooltip: which element it belongs to
// and where it sits, clamped to the viewport.
package overlay

import (
	"sync"

	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
)

// Point is a position in viewport units (cells in the terminal explorer).
type Point struct {
	X, Y int
}

// Size is a width and height in viewport units.
type Size struct {
	W, H int
}

// Placement is where the overlay is drawn.
type Placement struct {
	Visible  bool
	Target   string
	X, Y     int
	Size     Size
	Metadata model.FileMetadata
}

// Options configures an Overlay.
type Options struct {
	Viewport Size
	Box      Size
	Offset   Point // from the cursor
	Margin   int   // kept free between the overlay and the viewport edge
}

// Overlay holds at most one visible tooltip. It is safe for concurrent use.
type Overlay struct {
	st *state.UIState

	mu      sync.Mutex
	opts    Options
	cursor  Point
	current Placement
}

// New returns a hidden overlay. st may be nil.
func New(st *state.UIState, opts Options) *Overlay {
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	return &Overlay{st: st, opts: opts}
}

// Show attaches the overlay to target near anchor, replacing any shown one.
func (o *Overlay) Show(target string, anchor Point, metadata model.FileMetadata) Placement {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cursor = anchor
	o.current = Placement{Visible: true, Target: target, Size: o.opts.Box, Metadata: metadata}
	o.place()
	if o.st != nil {
		o.st.SetTooltipTarget(target)
	}
	return o.current
}

// Reposition follows the cursor. A hidden overlay stays hidden.
func (o *Overlay) Reposition(cursor Point) Placement {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cursor = cursor
	if o.current.Visible {
		o.place()
	}
	return o.current
}

// Hide removes the overlay. Hiding twice is harmless.
func (o *Overlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.current = Placement{}
	if o.st != nil {
		o.st.SetTooltipTarget("")
	}
}

// Resize updates the viewport bounds and re-clamps a visible overlay.
func (o *Overlay) Resize(viewport Size) Placement {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opts.Viewport = viewport
	if o.current.Visible {
		o.place()
	}
	return o.current
}

// Current returns the present placement.
func (o *Overlay) Current() Placement {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// place offsets the overlay from the cursor, then shifts it left/up so it
// ends margin inside the viewport. Coordinates never go negative.
func (o *Overlay) place() {
	vp, box, m := o.opts.Viewport, o.opts.Box, o.opts.Margin

	x := o.cursor.X + o.opts.Offset.X
	y := o.cursor.Y + o.opts.Offset.Y
	if x+box.W > vp.W-m {
		x = vp.W - m - box.W
	}
	if y+box.H > vp.H-m {
		y = vp.H - m - box.H
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	o.current.X, o.current.Y = x, y
}
