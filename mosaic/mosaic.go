package mosaic

type (
	// Rect is a window rectangle in root window coordinates.
	Rect struct {
		X int16  `json:"x"`
		Y int16  `json:"y"`
		W uint16 `json:"w"`
		H uint16 `json:"h"`
	}

	Align int
)

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}

// Scale returns a size that is a fraction of the container size.
func Scale(w, h uint16, fw, fh float32) (uint16, uint16) {
	return uint16(float32(w) * fw), uint16(float32(h) * fh)
}

// Anchor places a w by h rectangle inside container, aligned horizontally by
// ax and vertically by ay, keeping margin pixels away from aligned edges.
// The rectangle is clamped to the container.
func Anchor(container Rect, w, h uint16, ax, ay Align, margin uint16) Rect {
	if container.Empty() {
		return Rect{}
	}

	w = clamp(w, container.W, margin)
	h = clamp(h, container.H, margin)

	return Rect{
		X: container.X + offset(container.W, w, ax, margin),
		Y: container.Y + offset(container.H, h, ay, margin),
		W: w,
		H: h,
	}
}

func clamp(size, outer, margin uint16) uint16 {
	if 2*int(margin) >= int(outer) {
		margin = 0
	}
	if limit := outer - 2*margin; size > limit {
		return limit
	}
	return size
}

func offset(outer, size uint16, a Align, margin uint16) int16 {
	if 2*int(margin) >= int(outer) {
		margin = 0
	}
	switch a {
	case AlignCenter:
		return int16((outer - size) / 2)
	case AlignEnd:
		return int16(outer - size - margin)
	default:
		return int16(margin)
	}
}
