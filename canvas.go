package grove

// Canvas is the renderer contract consumed by the draw traversal. Hosts
// implement it on top of their drawing backend (see ebitenhost and
// termhost). Coordinates passed to the Draw methods are in the space of the
// current transform stack.
type Canvas interface {
	PushTransform(m Affine)
	PopTransform()
	DrawRect(r Rect, c Color, fill bool)
	DrawCircle(center Vec2, radius float64, c Color, fill bool)
	DrawPolygon(pts []Vec2, c Color, fill bool)
	DrawText(p Vec2, text string, c Color)
	// Masked draws content clipped by mask according to mode.
	Masked(mode MaskMode, mask func(), content func())
}

// TransformStack is a helper for Canvas implementations that tracks the
// current world matrix.
type TransformStack struct {
	stack []Affine
}

// Push multiplies m onto the current matrix.
func (s *TransformStack) Push(m Affine) {
	s.stack = append(s.stack, s.Current().Mul(m))
}

// Pop restores the previous matrix.
func (s *TransformStack) Pop() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Current returns the active matrix, or identity when empty.
func (s *TransformStack) Current() Affine {
	if len(s.stack) == 0 {
		return IdentityAffine
	}
	return s.stack[len(s.stack)-1]
}

// Reset empties the stack.
func (s *TransformStack) Reset() { s.stack = s.stack[:0] }

// DrawOp is one recorded Canvas call.
type DrawOp struct {
	Kind   string // "rect", "circle", "polygon", "text", "maskBegin", "maskContent", "maskEnd"
	Points []Vec2 // world-space points (rect corners, polygon points, circle center, text origin)
	Radius float64
	Text   string
	Color  Color
	Mask   MaskMode
}

// Recorder is a Canvas that records world-space draw operations instead of
// rendering them. It backs headless hosts and draw-order tests.
type Recorder struct {
	Ops []DrawOp
	TransformStack
}

// PushTransform implements Canvas.
func (r *Recorder) PushTransform(m Affine) { r.Push(m) }

// PopTransform implements Canvas.
func (r *Recorder) PopTransform() { r.Pop() }

// DrawRect implements Canvas.
func (r *Recorder) DrawRect(rc Rect, c Color, _ bool) {
	m := r.Current()
	pts := RectPoly(rc).Points
	for i := range pts {
		pts[i] = m.Apply(pts[i])
	}
	r.Ops = append(r.Ops, DrawOp{Kind: "rect", Points: pts, Color: c})
}

// DrawCircle implements Canvas.
func (r *Recorder) DrawCircle(center Vec2, radius float64, c Color, _ bool) {
	m := r.Current()
	s := m.ScaleFactors()
	r.Ops = append(r.Ops, DrawOp{Kind: "circle", Points: []Vec2{m.Apply(center)}, Radius: radius * s.X, Color: c})
}

// DrawPolygon implements Canvas.
func (r *Recorder) DrawPolygon(pts []Vec2, c Color, _ bool) {
	m := r.Current()
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	r.Ops = append(r.Ops, DrawOp{Kind: "polygon", Points: out, Color: c})
}

// DrawText implements Canvas.
func (r *Recorder) DrawText(p Vec2, text string, c Color) {
	r.Ops = append(r.Ops, DrawOp{Kind: "text", Points: []Vec2{r.Current().Apply(p)}, Text: text, Color: c})
}

// Masked implements Canvas by recording mask boundaries around the two
// callbacks.
func (r *Recorder) Masked(mode MaskMode, mask func(), content func()) {
	r.Ops = append(r.Ops, DrawOp{Kind: "maskBegin", Mask: mode})
	mask()
	r.Ops = append(r.Ops, DrawOp{Kind: "maskContent", Mask: mode})
	content()
	r.Ops = append(r.Ops, DrawOp{Kind: "maskEnd", Mask: mode})
}

// Reset clears recorded operations and the transform stack.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.TransformStack.Reset()
}
