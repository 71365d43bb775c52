package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove"
)

func rect(x, y, w, h float64) grove.Poly { return grove.RectPoly(grove.Rect{X: x, Y: y, Width: w, Height: h}) }

func TestIntersect_RectRect(t *testing.T) {
	n, d, ok := Intersect(rect(0, 0, 10, 10), rect(8, 0, 10, 10))
	require.True(t, ok)
	assert.InDelta(t, -1, n.X, 1e-9)
	assert.InDelta(t, 0, n.Y, 1e-9)
	assert.InDelta(t, 2, d, 1e-9)

	// The reverse test points the other way.
	n, d, ok = Intersect(rect(8, 0, 10, 10), rect(0, 0, 10, 10))
	require.True(t, ok)
	assert.InDelta(t, 1, n.X, 1e-9)
	assert.InDelta(t, 2, d, 1e-9)
}

func TestIntersect_TouchingIsNotOverlap(t *testing.T) {
	_, _, ok := Intersect(rect(0, 0, 10, 10), rect(10, 0, 10, 10))
	assert.False(t, ok)
	_, _, ok = Intersect(rect(0, 0, 10, 10), rect(30, 30, 10, 10))
	assert.False(t, ok)
}

func TestIntersect_RotatedPoly(t *testing.T) {
	diamond := grove.Poly{Points: []grove.Vec2{{X: 5, Y: -5}, {X: 10, Y: 0}, {X: 5, Y: 5}, {X: 0, Y: 0}}}
	_, _, ok := Intersect(diamond, rect(9, -1, 10, 2))
	assert.True(t, ok)
	_, _, ok = Intersect(diamond, rect(9, 4, 10, 2))
	assert.False(t, ok, "corner region outside the diamond")
}

func TestIntersect_CircleCircle(t *testing.T) {
	a := grove.Circle{Center: grove.V(0, 0), Radius: 5}
	b := grove.Circle{Center: grove.V(8, 0), Radius: 5}
	n, d, ok := Intersect(a, b)
	require.True(t, ok)
	assert.InDelta(t, -1, n.X, 1e-9)
	assert.InDelta(t, 2, d, 1e-9)

	_, _, ok = Intersect(a, grove.Circle{Center: grove.V(10, 0), Radius: 5})
	assert.False(t, ok)

	n, _, ok = Intersect(a, a)
	require.True(t, ok)
	assert.Equal(t, grove.V(0, -1), n, "coincident circles separate upward")
}

func TestIntersect_CircleRect(t *testing.T) {
	c := grove.Circle{Center: grove.V(5, -3), Radius: 5}
	n, d, ok := Intersect(c, rect(0, 0, 10, 10))
	require.True(t, ok)
	assert.InDelta(t, 0, n.X, 1e-9)
	assert.InDelta(t, -1, n.Y, 1e-9)
	assert.InDelta(t, 2, d, 1e-9)

	n, d, ok = Intersect(rect(0, 0, 10, 10), c)
	require.True(t, ok)
	assert.InDelta(t, 1, n.Y, 1e-9)
	assert.InDelta(t, 2, d, 1e-9)

	// Near a corner but outside the rounded region.
	_, _, ok = Intersect(grove.Circle{Center: grove.V(-3, -3), Radius: 4}, rect(0, 0, 10, 10))
	assert.False(t, ok)
}

func TestCollision_ReverseSharesResolved(t *testing.T) {
	col := NewCollision(nil, nil, grove.V(0, -1), 3, grove.V(0, 1))
	rev := col.Reverse()
	assert.Equal(t, grove.V(0, 1), rev.Normal)
	assert.Equal(t, grove.V(0, -3), col.Displacement())
	assert.True(t, col.IsBottom())
	assert.True(t, rev.IsTop())
	assert.False(t, col.IsLeft() || col.IsRight())

	rev.PreventResolution()
	assert.True(t, col.Resolved())
}
