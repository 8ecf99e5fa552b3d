package timeline

import (
	"errors"
	"testing"
)

// 1200 px track over 12 s of media: 0.01 s per pixel.
const testTrackWidth = 1200

func TestDrag_MoveEndHandle(t *testing.T) {
	s := newTestStore(t)

	d, err := NewDrag(s, "b", EdgeEnd, testTrackWidth)
	if err != nil {
		t.Fatalf("NewDrag() error = %v", err)
	}

	seg, err := d.Move(100)
	if err != nil {
		t.Fatalf("Move(100) error = %v", err)
	}
	if seg.End != 9 {
		t.Errorf("b.End = %v, want 9", seg.End)
	}
	if got := s.Segments()[2].Start; got != 9 {
		t.Errorf("c.Start = %v, want 9", got)
	}

	// Deltas are cumulative from gesture start, so -100 lands at 7, not 8.
	seg, err = d.Move(-100)
	if err != nil {
		t.Fatalf("Move(-100) error = %v", err)
	}
	if seg.End != 7 {
		t.Errorf("b.End = %v, want 7", seg.End)
	}
}

func TestDrag_EveryIntermediateStateValid(t *testing.T) {
	s := newTestStore(t)

	d, err := NewDrag(s, "b", EdgeStart, testTrackWidth)
	if err != nil {
		t.Fatalf("NewDrag() error = %v", err)
	}

	for _, deltaPx := range []float64{-100, -450, 120, 400, -50} {
		if _, err := d.Move(deltaPx); err != nil {
			t.Fatalf("Move(%v) error = %v", deltaPx, err)
		}
		if err := validate(s.Segments(), s.Duration()); err != nil {
			t.Fatalf("invariants violated mid-drag at delta %v: %v", deltaPx, err)
		}
	}

	d.End()
	if err := validate(s.Segments(), s.Duration()); err != nil {
		t.Fatalf("invariants violated after End: %v", err)
	}
}

func TestDrag_SwapPastOppositeHandle(t *testing.T) {
	s := newTestStore(t)

	d, err := NewDrag(s, "b", EdgeEnd, testTrackWidth)
	if err != nil {
		t.Fatalf("NewDrag() error = %v", err)
	}

	// End handle starts at 8; -400 px targets 4, past b's start at 5.
	seg, err := d.Move(-400)
	if err != nil {
		t.Fatalf("Move(-400) error = %v", err)
	}
	if seg.Start != 4 || seg.End != 5 {
		t.Errorf("b = [%v, %v], want [4, 5] after swap", seg.Start, seg.End)
	}
	if err := validate(s.Segments(), s.Duration()); err != nil {
		t.Errorf("invariants violated after swap: %v", err)
	}
}

func TestDrag_Rejections(t *testing.T) {
	s := newTestStore(t)

	if _, err := NewDrag(s, "b", EdgeStart, 0); !errors.Is(err, ErrBadTrackWidth) {
		t.Errorf("NewDrag(width 0) error = %v, want ErrBadTrackWidth", err)
	}
	if _, err := NewDrag(s, "missing", EdgeStart, testTrackWidth); !errors.Is(err, ErrSegmentNotFound) {
		t.Errorf("NewDrag(unknown id) error = %v, want ErrSegmentNotFound", err)
	}
	if _, err := NewDrag(s, "b", Edge("middle"), testTrackWidth); err == nil {
		t.Error("NewDrag(bad edge) should fail")
	}
}
