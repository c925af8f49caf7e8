package overlay

import (
	"testing"

	"github.com/msalah0e/ontoscope/internal/model"
	"github.com/msalah0e/ontoscope/internal/state"
)

func newOverlay(st *state.UIState) *Overlay {
	return New(st, Options{
		Viewport: Size{W: 1000, H: 800},
		Box:      Size{W: 200, H: 100},
		Offset:   Point{X: 10, Y: 10},
		Margin:   8,
	})
}

func TestPlacement(t *testing.T) {
	tests := []struct {
		name   string
		cursor Point
		wantX  int
		wantY  int
	}{
		{"no overflow", Point{100, 100}, 110, 110},
		{"right edge", Point{950, 100}, 1000 - 8 - 200, 110},
		{"bottom edge", Point{100, 780}, 110, 800 - 8 - 100},
		{"corner", Point{995, 795}, 792, 692},
		{"exactly fits", Point{782, 682}, 792, 692},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOverlay(nil)
			p := o.Show("gene", tt.cursor, model.FileMetadata{SourceFile: "genes.txt"})
			if !p.Visible || p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("got (%d,%d) visible=%v, want (%d,%d)", p.X, p.Y, p.Visible, tt.wantX, tt.wantY)
			}
			if p.X+p.Size.W > 1000-8 || p.Y+p.Size.H > 800-8 {
				t.Errorf("overlay at (%d,%d) leaves the viewport", p.X, p.Y)
			}
		})
	}
}

func TestPlacement_NeverNegative(t *testing.T) {
	o := New(nil, Options{Viewport: Size{W: 150, H: 60}, Box: Size{W: 200, H: 100}, Margin: 8})
	p := o.Show("gene", Point{10, 10}, model.FileMetadata{})
	if p.X != 0 || p.Y != 0 {
		t.Errorf("oversized overlay should pin to the origin, got (%d,%d)", p.X, p.Y)
	}
}

func TestReposition(t *testing.T) {
	o := newOverlay(nil)
	if p := o.Reposition(Point{5, 5}); p.Visible {
		t.Error("repositioning a hidden overlay should not show it")
	}

	o.Show("gene", Point{100, 100}, model.FileMetadata{})
	p := o.Reposition(Point{990, 20})
	if p.X != 792 || p.Y != 30 {
		t.Errorf("expected (792,30), got (%d,%d)", p.X, p.Y)
	}
	if p.Target != "gene" {
		t.Errorf("target should be kept, got %q", p.Target)
	}
}

func TestShowReplacesAndHide(t *testing.T) {
	st := state.New()
	o := newOverlay(st)

	o.Show("gene", Point{1, 1}, model.FileMetadata{SourceFile: "a"})
	o.Show("genome", Point{2, 2}, model.FileMetadata{SourceFile: "b"})

	cur := o.Current()
	if cur.Target != "genome" || cur.Metadata.SourceFile != "b" {
		t.Errorf("Show should replace the overlay, got %+v", cur)
	}
	if st.Snapshot().TooltipTarget != "genome" {
		t.Errorf("state should track the target, got %q", st.Snapshot().TooltipTarget)
	}

	o.Hide()
	o.Hide()
	if o.Current().Visible {
		t.Error("overlay should be hidden")
	}
	if st.Snapshot().TooltipTarget != "" {
		t.Error("hiding should clear the target")
	}
}

func TestResize(t *testing.T) {
	o := newOverlay(nil)
	o.Show("gene", Point{700, 500}, model.FileMetadata{})

	p := o.Resize(Size{W: 800, H: 600})
	if p.X != 800-8-200 || p.Y != 600-8-100 {
		t.Errorf("resize should re-clamp, got (%d,%d)", p.X, p.Y)
	}
}
