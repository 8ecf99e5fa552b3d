package timeline

import (
	"errors"
	"fmt"
)

var ErrBadTrackWidth = errors.New("track width must be positive")

type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Drag is one in-progress handle gesture on a segment boundary. Every motion
// event is applied to the store immediately; there is no preview state, so
// each intermediate position must itself leave the timeline valid (UpdateOne
// guarantees that via the neighbor resize).
type Drag struct {
	store    *Store
	id       string
	edge     Edge
	origin   float64
	secPerPx float64
}

// NewDrag captures the handle's position at gesture start and the current
// pixel-to-time scale of the ruler.
func NewDrag(store *Store, id string, edge Edge, trackWidthPx float64) (*Drag, error) {
	if trackWidthPx <= 0 {
		return nil, ErrBadTrackWidth
	}
	if edge != EdgeStart && edge != EdgeEnd {
		return nil, fmt.Errorf("unknown edge %q", edge)
	}

	var seg *Segment
	for _, candidate := range store.Segments() {
		if candidate.ID == id {
			seg = &candidate
			break
		}
	}
	if seg == nil {
		return nil, ErrSegmentNotFound
	}

	origin := seg.Start
	if edge == EdgeEnd {
		origin = seg.End
	}

	return &Drag{
		store:    store,
		id:       id,
		edge:     edge,
		origin:   origin,
		secPerPx: store.Duration() / trackWidthPx,
	}, nil
}

// SegmentID reports which segment the gesture is attached to.
func (d *Drag) SegmentID() string {
	return d.id
}

// DragEdge reports which handle the gesture holds.
func (d *Drag) DragEdge() Edge {
	return d.edge
}

// Move applies one motion event. The delta is cumulative from gesture start,
// matching how pointer capture reports movement.
func (d *Drag) Move(deltaPx float64) (Segment, error) {
	target := d.origin + deltaPx*d.secPerPx
	if d.edge == EdgeStart {
		return d.store.UpdateOne(d.id, &target, nil)
	}
	return d.store.UpdateOne(d.id, nil, &target)
}

// End finishes the gesture. The last applied position persists; segments the
// drag collapsed to zero length are dropped.
func (d *Drag) End() {
	d.store.Normalize()
}
