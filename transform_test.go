package grove

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineMulAndInvert(t *testing.T) {
	m := composeLocal(Vec2{10, -5}, Vec2{2, 3}, math.Pi/6)
	inv := m.Invert()
	id := m.Mul(inv)
	for i, v := range IdentityAffine {
		assert.InDelta(t, v, id[i], 1e-9, "element %d", i)
	}

	p := Vec2{7, 11}
	assertVec(t, p, inv.Apply(m.Apply(p)))
}

func TestAffineComposeOrder(t *testing.T) {
	// scale, then rotate, then translate
	m := composeLocal(Vec2{100, 0}, Vec2{2, 2}, math.Pi/2)
	assertVec(t, Vec2{100, 2}, m.Apply(Vec2{1, 0}))

	parent := composeLocal(Vec2{5, 5}, Vec2{1, 1}, 0)
	child := composeLocal(Vec2{1, 0}, Vec2{1, 1}, 0)
	assertVec(t, Vec2{6, 5}, parent.Mul(child).Translation())
}

func TestAffineSingularInvert(t *testing.T) {
	assert.Equal(t, IdentityAffine, Affine{0, 0, 0, 0, 3, 4}.Invert())
}

func TestAffineScaleFactorsAndAlignment(t *testing.T) {
	m := composeLocal(Vec2{}, Vec2{3, 4}, 0)
	assert.Equal(t, Vec2{3, 4}, m.ScaleFactors())
	assert.True(t, m.IsAxisAligned())

	r := composeLocal(Vec2{}, Vec2{3, 4}, 0.3)
	s := r.ScaleFactors()
	assert.InDelta(t, 3, s.X, 1e-9)
	assert.InDelta(t, 4, s.Y, 1e-9)
	assert.False(t, r.IsAxisAligned())
}

func TestTransformStack(t *testing.T) {
	var s TransformStack
	assert.Equal(t, IdentityAffine, s.Current())

	s.Push(composeLocal(Vec2{10, 0}, Vec2{1, 1}, 0))
	s.Push(composeLocal(Vec2{0, 5}, Vec2{2, 2}, 0))
	assertVec(t, Vec2{12, 5}, s.Current().Apply(Vec2{1, 0}))

	s.Pop()
	assertVec(t, Vec2{11, 0}, s.Current().Apply(Vec2{1, 0}))
	s.Pop()
	s.Pop()
	assert.Equal(t, IdentityAffine, s.Current())

	s.Push(composeLocal(Vec2{1, 1}, Vec2{1, 1}, 0))
	s.Reset()
	assert.Equal(t, IdentityAffine, s.Current())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.PushTransform(composeLocal(Vec2{10, 20}, Vec2{2, 2}, 0))
	r.DrawRect(Rect{0, 0, 1, 1}, ColorWhite, true)
	r.DrawCircle(Vec2{1, 0}, 3, ColorWhite, false)
	r.DrawPolygon([]Vec2{{0, 0}, {1, 0}, {0, 1}}, ColorWhite, true)
	r.DrawText(Vec2{0, 1}, "hi", ColorWhite)
	r.PopTransform()

	require.Len(t, r.Ops, 4)
	assert.Equal(t, []Vec2{{10, 20}, {12, 20}, {12, 22}, {10, 22}}, r.Ops[0].Points)
	assert.Equal(t, Vec2{12, 20}, r.Ops[1].Points[0])
	assert.Equal(t, 6.0, r.Ops[1].Radius)
	assert.Equal(t, []Vec2{{10, 20}, {12, 20}, {10, 22}}, r.Ops[2].Points)
	assert.Equal(t, "hi", r.Ops[3].Text)
	assert.Equal(t, Vec2{10, 22}, r.Ops[3].Points[0])

	r.Reset()
	assert.Empty(t, r.Ops)
	assert.Equal(t, IdentityAffine, r.Current())
}

func TestShapes(t *testing.T) {
	sq := RectPoly(Rect{0, 0, 10, 10})
	assert.True(t, sq.Contains(Vec2{5, 5}))
	assert.True(t, sq.Contains(Vec2{10, 5}), "edges are inside")
	assert.False(t, sq.Contains(Vec2{11, 5}))
	assert.False(t, Poly{Points: []Vec2{{0, 0}, {1, 1}}}.Contains(Vec2{}))
	assert.Equal(t, Rect{0, 0, 10, 10}, sq.Bounds())
	assert.Equal(t, Rect{}, Poly{}.Bounds())

	moved := sq.Transform(composeLocal(Vec2{5, 0}, Vec2{1, 1}, 0))
	assert.Equal(t, Rect{5, 0, 10, 10}, moved.Bounds())

	c := Circle{Center: Vec2{0, 0}, Radius: 2}
	assert.True(t, c.Contains(Vec2{2, 0}))
	assert.False(t, c.Contains(Vec2{2, 1}))
	scaled := c.Transform(composeLocal(Vec2{1, 1}, Vec2{1, 3}, 0)).(Circle)
	assert.Equal(t, Vec2{1, 1}, scaled.Center)
	assert.Equal(t, 6.0, scaled.Radius)
	assert.Equal(t, Rect{-5, -5, 12, 12}, scaled.Bounds())
}

func TestRect(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	assert.True(t, r.Contains(10, 10))
	assert.False(t, r.Contains(-1, 0))
	assert.True(t, r.Intersects(Rect{10, 0, 5, 5}), "shared edges intersect")
	assert.False(t, r.Intersects(Rect{11, 0, 5, 5}))
	assert.Equal(t, Vec2{5, 5}, r.Center())
}

func TestVec2(t *testing.T) {
	v := Vec2{3, 4}
	assert.Equal(t, 5.0, v.Len())
	assert.Equal(t, 25.0, v.LenSq())
	assertVec(t, Vec2{0.6, 0.8}, v.Unit())
	assert.Equal(t, Vec2{}, Vec2{}.Unit())
	assert.Equal(t, Vec2{4, -3}, v.Normal())
	assert.Equal(t, Vec2{3, 0}, v.Project(Vec2{1, 0}))
	assert.Equal(t, Vec2{0, 4}, v.Reject(Vec2{1, 0}))
	assert.Equal(t, Vec2{}, v.Project(Vec2{}))
	assert.Equal(t, -4.0, Vec2{1, 0}.Cross(Vec2{0, -4}))
	assert.Equal(t, Vec2{1.5, 2}, Vec2{}.Lerp(v, 0.5))
	assert.Equal(t, "(3, 4)", v.String())
	assert.Equal(t, V(3, 4), v)
}

func TestColorToRGBA(t *testing.T) {
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, ColorWhite.ToRGBA())
	assert.Equal(t, color.RGBA{127, 0, 0, 127}, Color{1, 0, 0, 0.5}.ToRGBA(), "premultiplied")
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, Color{-1, 2, 0, 1}.ToRGBA(), "clamped")
}
