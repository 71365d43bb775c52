package physics

import (
	"math"

	"github.com/phanxgames/grove"
)

// Intersect tests two world-space shapes with the separating axis theorem.
// On overlap it returns the unit normal and distance that move a out of b.
// Touching shapes do not overlap.
func Intersect(a, b grove.Shape) (grove.Vec2, float64, bool) {
	switch sa := a.(type) {
	case grove.Poly:
		switch sb := b.(type) {
		case grove.Poly:
			return polyPoly(sa.Points, sb.Points)
		case grove.Circle:
			n, d, ok := circlePoly(sb, sa.Points)
			return n.Neg(), d, ok
		}
	case grove.Circle:
		switch sb := b.(type) {
		case grove.Poly:
			return circlePoly(sa, sb.Points)
		case grove.Circle:
			return circleCircle(sa, sb)
		}
	}
	return grove.Vec2{}, 0, false
}

func project(pts []grove.Vec2, axis grove.Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := p.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// axisTracker keeps the axis of minimum penetration.
type axisTracker struct {
	best    float64
	normal  grove.Vec2
	touched bool
}

// test projects both sides on axis and reports false on a separating axis.
// The stored normal points the way a must move.
func (t *axisTracker) test(axis grove.Vec2, minA, maxA, minB, maxB float64) bool {
	d1 := maxA - minB // a moves along -axis
	d2 := maxB - minA // a moves along +axis
	if d1 <= 0 || d2 <= 0 {
		return false
	}
	depth, dir := d2, axis
	if d1 < d2 {
		depth, dir = d1, axis.Neg()
	}
	if !t.touched || depth < t.best {
		t.best, t.normal, t.touched = depth, dir, true
	}
	return true
}

func polyPoly(a, b []grove.Vec2) (grove.Vec2, float64, bool) {
	if len(a) < 2 || len(b) < 2 {
		return grove.Vec2{}, 0, false
	}
	var t axisTracker
	for _, pts := range [2][]grove.Vec2{a, b} {
		n := len(pts)
		for i := range n {
			axis := pts[(i+1)%n].Sub(pts[i]).Normal().Unit()
			if axis.IsZero() {
				continue
			}
			minA, maxA := project(a, axis)
			minB, maxB := project(b, axis)
			if !t.test(axis, minA, maxA, minB, maxB) {
				return grove.Vec2{}, 0, false
			}
		}
	}
	return t.normal, t.best, t.touched
}

func circlePoly(c grove.Circle, pts []grove.Vec2) (grove.Vec2, float64, bool) {
	if len(pts) < 2 {
		return grove.Vec2{}, 0, false
	}
	var t axisTracker
	check := func(axis grove.Vec2) bool {
		cd := c.Center.Dot(axis)
		minB, maxB := project(pts, axis)
		return t.test(axis, cd-c.Radius, cd+c.Radius, minB, maxB)
	}
	n := len(pts)
	nearest, nearestD := pts[0], math.Inf(1)
	for i := range n {
		if d := pts[i].Sub(c.Center).LenSq(); d < nearestD {
			nearest, nearestD = pts[i], d
		}
		axis := pts[(i+1)%n].Sub(pts[i]).Normal().Unit()
		if axis.IsZero() {
			continue
		}
		if !check(axis) {
			return grove.Vec2{}, 0, false
		}
	}
	if axis := c.Center.Sub(nearest).Unit(); !axis.IsZero() {
		if !check(axis) {
			return grove.Vec2{}, 0, false
		}
	}
	return t.normal, t.best, t.touched
}

func circleCircle(a, b grove.Circle) (grove.Vec2, float64, bool) {
	d := a.Center.Sub(b.Center)
	dist := d.Len()
	overlap := a.Radius + b.Radius - dist
	if overlap <= 0 {
		return grove.Vec2{}, 0, false
	}
	if dist == 0 {
		return grove.Vec2{X: 0, Y: -1}, overlap, true
	}
	return d.Scale(1 / dist), overlap, true
}
