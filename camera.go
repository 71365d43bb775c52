package grove

import (
	"math"
	"math/rand/v2"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const cameraShakeDecay = 5

// Camera maps world space onto the viewport. Engine.Draw pushes ViewMatrix
// before drawing the tree; the camera is reset on every scene change.
type Camera struct {
	// Pos is the world point shown at the viewport center.
	Pos Vec2
	// Zoom scales the world; 2 shows everything twice as large.
	Zoom float64
	// Rotation turns the view clockwise, in radians.
	Rotation float64
	// Viewport is the screen rectangle drawn into.
	Viewport Rect

	follow struct {
		target *Object
		offset Vec2
		lerp   float64
	}
	bounds *Rect
	scroll [2]*gween.Tween
	shake  float64
	jitter Vec2
}

func newCamera(viewport Rect) *Camera {
	return &Camera{Pos: viewport.Center(), Zoom: 1, Viewport: viewport}
}

func (c *Camera) reset() { *c = *newCamera(c.Viewport) }

// Follow moves the camera toward target+offset every update, covering lerp
// of the remaining distance per frame (1 snaps). A destroyed target is
// dropped.
func (c *Camera) Follow(target *Object, offset Vec2, lerp float64) {
	c.follow.target, c.follow.offset, c.follow.lerp = target, offset, lerp
}

// Unfollow stops following.
func (c *Camera) Unfollow() { c.follow.target = nil }

// ScrollTo tweens Pos to p over duration seconds. A nil easing is linear.
func (c *Camera) ScrollTo(p Vec2, duration float64, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	d := float32(duration)
	c.scroll = [2]*gween.Tween{
		gween.New(float32(c.Pos.X), float32(p.X), d, fn),
		gween.New(float32(c.Pos.Y), float32(p.Y), d, fn),
	}
}

// Scrolling reports whether a ScrollTo is running.
func (c *Camera) Scrolling() bool { return c.scroll[0] != nil || c.scroll[1] != nil }

// Shake jitters the view by up to intensity world units. Repeated calls
// add up; the shake decays exponentially.
func (c *Camera) Shake(intensity float64) { c.shake += intensity }

// SetBounds keeps the visible area inside b. When b is smaller than the
// view on an axis the camera centers on b along that axis.
func (c *Camera) SetBounds(b Rect) { c.bounds = &b }

// ClearBounds removes the bounds.
func (c *Camera) ClearBounds() { c.bounds = nil }

func (c *Camera) update(dt float64) {
	if t := c.follow.target; t != nil {
		if t.IsDestroyed() {
			c.follow.target = nil
		} else {
			goal := t.WorldPos().Add(c.follow.offset)
			c.Pos = c.Pos.Lerp(goal, c.follow.lerp)
		}
	}

	axes := [2]*float64{&c.Pos.X, &c.Pos.Y}
	for i, tw := range c.scroll {
		if tw == nil {
			continue
		}
		v, done := tw.Update(float32(dt))
		*axes[i] = float64(v)
		if done {
			c.scroll[i] = nil
		}
	}

	c.jitter = Vec2{}
	if c.shake > 0 {
		c.jitter = Vec2{(rand.Float64()*2 - 1) * c.shake, (rand.Float64()*2 - 1) * c.shake}
		c.shake = math.Max(0, c.shake-c.shake*cameraShakeDecay*dt)
		if c.shake < 0.01 {
			c.shake = 0
		}
	}

	if b := c.bounds; b != nil {
		c.Pos.X = clampAxis(c.Pos.X, b.X, b.Width, c.Viewport.Width/(2*c.Zoom))
		c.Pos.Y = clampAxis(c.Pos.Y, b.Y, b.Height, c.Viewport.Height/(2*c.Zoom))
	}
}

// clampAxis keeps v within [lo+half, lo+size-half], or centers it when the
// range is empty.
func clampAxis(v, lo, size, half float64) float64 {
	minV, maxV := lo+half, lo+size-half
	if minV > maxV {
		return lo + size/2
	}
	return math.Max(minV, math.Min(v, maxV))
}

// ViewMatrix is the world-to-screen transform: translate by -Pos (plus
// shake), rotate by -Rotation, scale by Zoom, then translate to the
// viewport center.
func (c *Camera) ViewMatrix() Affine {
	center := c.Viewport.Center()
	p := c.Pos.Add(c.jitter)
	sin, cos := math.Sincos(-c.Rotation)
	z := c.Zoom
	return Affine{
		z * cos, z * sin,
		-z * sin, z * cos,
		center.X - z*(cos*p.X-sin*p.Y),
		center.Y - z*(sin*p.X+cos*p.Y),
	}
}

// ToScreen maps a world point to the screen.
func (c *Camera) ToScreen(p Vec2) Vec2 { return c.ViewMatrix().Apply(p) }

// ToWorld maps a screen point to the world.
func (c *Camera) ToWorld(p Vec2) Vec2 { return c.ViewMatrix().Invert().Apply(p) }

// VisibleBounds is the world-space bounding box of the viewport.
func (c *Camera) VisibleBounds() Rect {
	inv := c.ViewMatrix().Invert()
	vp := c.Viewport
	return Poly{Points: []Vec2{
		inv.Apply(Vec2{vp.X, vp.Y}),
		inv.Apply(Vec2{vp.X + vp.Width, vp.Y}),
		inv.Apply(Vec2{vp.X + vp.Width, vp.Y + vp.Height}),
		inv.Apply(Vec2{vp.X, vp.Y + vp.Height}),
	}}.Bounds()
}
