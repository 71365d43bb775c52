package grove

import "math"

// Affine is a 2D affine matrix laid out as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// IdentityAffine is the identity matrix.
var IdentityAffine = Affine{1, 0, 0, 1, 0, 0}

// composeLocal builds the local matrix for an object from its position,
// scale and rotation (radians).
//
// Composition order: Scale -> Rotate -> Translate(X, Y)
func composeLocal(pos, scale Vec2, angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		cos * scale.X,
		sin * scale.X,
		-sin * scale.Y,
		cos * scale.Y,
		pos.X,
		pos.Y,
	}
}

// Mul multiplies two affine matrices: result = m * c.
func (m Affine) Mul(c Affine) Affine {
	return Affine{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert computes the inverse of the matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityAffine
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms a point by the matrix.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}

// Translation returns the translation part of the matrix.
func (m Affine) Translation() Vec2 {
	return Vec2{m[4], m[5]}
}

// ScaleFactors returns the length of the matrix's basis vectors, i.e. the
// effective scale along the local X and Y axes.
func (m Affine) ScaleFactors() Vec2 {
	return Vec2{math.Hypot(m[0], m[1]), math.Hypot(m[2], m[3])}
}

// IsAxisAligned reports whether the matrix has no rotation or skew.
func (m Affine) IsAxisAligned() bool {
	return m[1] == 0 && m[2] == 0
}

// --- Object transforms ---

func (o *Object) scaleAngle() (Vec2, float64) {
	scale := Vec2{1, 1}
	if s, ok := CompOf[*Scale](o, CompScale); ok {
		scale = s.Value
	}
	angle := 0.0
	if r, ok := CompOf[*Rotate](o, CompRotate); ok {
		angle = r.Angle
	}
	return scale, angle
}

// LocalTransform returns the object's local matrix built from its pos,
// scale and rotate components. Missing components contribute identity.
func (o *Object) LocalTransform() Affine {
	scale, angle := o.scaleAngle()
	return composeLocal(o.posOrZero(false), scale, angle)
}

// Transform returns the object's world matrix: the product of all local
// matrices from the root down to this object.
func (o *Object) Transform() Affine {
	if o.parent == nil {
		return o.LocalTransform()
	}
	return o.parent.Transform().Mul(o.LocalTransform())
}

// renderLocal is like LocalTransform but uses the interpolated render
// position when the pos component carries one.
func (o *Object) renderLocal() Affine {
	scale, angle := o.scaleAngle()
	return composeLocal(o.posOrZero(true), scale, angle)
}

func (o *Object) posOrZero(render bool) Vec2 {
	p, ok := CompOf[*Pos](o, CompPos)
	if !ok {
		return Vec2{}
	}
	if render && p.hasRender {
		return p.render
	}
	return p.Vec2
}

// WorldPos returns the object's origin in world space.
func (o *Object) WorldPos() Vec2 {
	return o.Transform().Translation()
}

// ToWorld converts a local-space point to world space.
func (o *Object) ToWorld(p Vec2) Vec2 {
	return o.Transform().Apply(p)
}

// FromWorld converts a world-space point to this object's local space.
func (o *Object) FromWorld(p Vec2) Vec2 {
	return o.Transform().Invert().Apply(p)
}
