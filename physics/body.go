package physics

import (
	"math"

	"github.com/phanxgames/grove"
)

// CompBody is the body component id.
const CompBody = "body"

// Body gives an object velocity, gravity and collision response. It
// requires pos and area.
//
// A static body never moves; it is the ground, walls and platforms other
// bodies collide with. When two bodies overlap, a dynamic body is pushed
// out of a static one by the full penetration, and two dynamic bodies share
// the penetration inversely to their mass. Velocity then loses its inbound
// normal component, bounces by the larger restitution of the pair and
// loses tangential speed to Coulomb friction using the geometric mean of
// both friction coefficients.
type Body struct {
	Vel grove.Vec2
	// Mass defaults to 1 when zero.
	Mass float64
	// GravityScale multiplies the engine gravity; zero means 1. Set
	// IgnoreGravity to turn gravity off.
	GravityScale  float64
	IgnoreGravity bool
	IsStatic      bool
	Restitution   float64
	Friction      float64
	// Drag is linear damping per second.
	Drag float64
	// MaxVel caps the speed; zero means uncapped.
	MaxVel float64
	// JumpForce is used by Jump when called with zero.
	JumpForce float64
	// NoStick stops the body from riding the platform it stands on.
	NoStick bool
	// Interpolate blends the drawn position between the last two fixed
	// steps.
	Interpolate bool

	obj      *grove.Object
	pos      *grove.Pos
	force    grove.Vec2
	prevPos  grove.Vec2
	platform *grove.Object
	lastPlat grove.Vec2
	willFall bool
}

// NewBody returns a dynamic body with unit mass and gravity scale.
func NewBody() *Body {
	return &Body{Mass: 1, GravityScale: 1, JumpForce: 640}
}

// NewStaticBody returns a static body.
func NewStaticBody() *Body {
	return &Body{Mass: 1, GravityScale: 1, IsStatic: true}
}

// ID implements grove.Component.
func (b *Body) ID() string { return CompBody }

// Require implements grove.Requirer.
func (b *Body) Require() []string { return []string{grove.CompPos, CompArea} }

// BodyOf returns the object's body component, or nil.
func BodyOf(o *grove.Object) *Body {
	b, _ := grove.CompOf[*Body](o, CompBody)
	return b
}

// Add implements grove.Adder.
func (b *Body) Add(o *grove.Object) {
	b.obj = o
	b.pos = o.MustPos()
	b.prevPos = b.pos.Vec2
	o.On(EventCollideUpdate, func(args ...any) { b.resolve(collisionArg(args)) })
	o.On(EventPhysicsResolve, func(args ...any) { b.afterResolve(collisionArg(args)) })
}

// Destroy implements grove.Destroyer.
func (b *Body) Destroy(*grove.Object) {
	b.platform = nil
	if b.pos != nil {
		b.pos.ClearRender()
	}
}

func (b *Body) mass() float64 {
	if b.Mass <= 0 {
		return 1
	}
	return b.Mass
}

func (b *Body) gravity() grove.Vec2 {
	if b.IgnoreGravity || b.obj == nil {
		return grove.Vec2{}
	}
	gs := b.GravityScale
	if gs == 0 {
		gs = 1
	}
	return b.obj.Engine().Gravity().Scale(gs)
}

// FixedUpdate implements grove.FixedUpdater.
func (b *Body) FixedUpdate(o *grove.Object) {
	b.prevPos = b.pos.Vec2
	if b.IsStatic {
		return
	}
	e := o.Engine()
	dt := e.FixedDT()

	if b.willFall {
		b.platform = nil
		b.willFall = false
		o.Trigger(EventFallOff)
	}
	if b.platform != nil {
		area := AreaOf(o)
		if !b.platform.Exists() || BodyOf(b.platform) == nil || area == nil || !area.IsColliding(b.platform) {
			b.willFall = true
		} else {
			cur := b.platform.WorldPos()
			if cur != b.lastPlat && !b.NoStick {
				b.pos.MoveBy(cur.Sub(b.lastPlat))
			}
			b.lastPlat = cur
		}
	}

	g := b.gravity()
	gdir := e.GravityDir()
	prevAlong := b.Vel.Dot(gdir)
	b.Vel = b.Vel.Add(g.Scale(dt))
	if !b.force.IsZero() {
		b.Vel = b.Vel.Add(b.force.Scale(dt / b.mass()))
		b.force = grove.Vec2{}
	}
	if b.Drag > 0 {
		b.Vel = b.Vel.Scale(math.Max(0, 1-b.Drag*dt))
	}
	if b.MaxVel > 0 && b.Vel.Len() > b.MaxVel {
		b.Vel = b.Vel.Unit().Scale(b.MaxVel)
	}
	if !g.IsZero() && b.platform == nil && prevAlong <= 0 && b.Vel.Dot(gdir) > 0 {
		o.Trigger(EventFall)
	}
	b.pos.MoveBy(b.Vel.Scale(dt))
}

// Update implements grove.Updater; it sets the interpolated render position.
func (b *Body) Update(o *grove.Object) {
	if !b.Interpolate || b.IsStatic {
		return
	}
	b.pos.SetRender(b.prevPos.Lerp(b.pos.Vec2, o.Engine().Alpha()))
}

// resolve separates this body from col.Target. It runs on the source side
// of collideUpdate; the first side to see the pair resolves it for both.
func (b *Body) resolve(col *Collision) {
	if col.Resolved() {
		return
	}
	other := BodyOf(col.Target)
	if other == nil {
		return
	}
	col.Source.Trigger(EventBeforePhysicsResolve, col)
	col.Target.Trigger(EventBeforePhysicsResolve, col.Reverse())
	if col.Resolved() {
		return
	}
	col.PreventResolution()
	switch {
	case b.IsStatic && other.IsStatic:
		return
	case other.IsStatic:
		b.pos.MoveBy(col.Displacement())
	case b.IsStatic:
		other.pos.MoveBy(col.Displacement().Neg())
	default:
		m1, m2 := b.mass(), other.mass()
		d := col.Displacement()
		b.pos.MoveBy(d.Scale(m2 / (m1 + m2)))
		other.pos.MoveBy(d.Scale(-m1 / (m1 + m2)))
	}
	col.Source.Trigger(EventPhysicsResolve, col)
	col.Target.Trigger(EventPhysicsResolve, col.Reverse())
}

// afterResolve updates velocity and the grounded state for this body's side
// of a resolved pair.
func (b *Body) afterResolve(col *Collision) {
	if b.IsStatic {
		return
	}
	other := BodyOf(col.Target)
	gdir := b.obj.Engine().GravityDir()
	falling := b.Vel.Dot(gdir) > 0
	jumping := b.Vel.Dot(gdir) < 0

	n := col.Normal
	if vn := b.Vel.Dot(n); vn < 0 {
		rest, fric := b.Restitution, b.Friction
		if other != nil {
			rest = math.Max(rest, other.Restitution)
			fric = math.Sqrt(b.Friction * other.Friction)
		}
		tangent := b.Vel.Sub(n.Scale(vn))
		speed := math.Max(0, tangent.Len()-fric*math.Abs(vn))
		b.Vel = n.Scale(-vn * rest).Add(tangent.Unit().Scale(speed))
	}

	if b.gravity().IsZero() {
		return
	}
	switch {
	case col.IsBottom() && falling:
		prev := b.platform
		b.platform = col.Target
		b.lastPlat = col.Target.WorldPos()
		if b.willFall {
			b.willFall = false
		} else if prev == nil {
			b.obj.Trigger(EventGround, col.Target)
		}
	case col.IsTop() && jumping:
		b.Vel = b.Vel.Reject(gdir)
		b.obj.Trigger(EventHeadbutt, col.Target)
	}
}

// IsGrounded reports whether the body stands on another body.
func (b *Body) IsGrounded() bool { return b.platform != nil }

// IsFalling reports whether the body moves along gravity.
func (b *Body) IsFalling() bool {
	return b.obj != nil && b.Vel.Dot(b.obj.Engine().GravityDir()) > 0
}

// IsJumping reports whether the body moves against gravity.
func (b *Body) IsJumping() bool {
	return b.obj != nil && b.Vel.Dot(b.obj.Engine().GravityDir()) < 0
}

// Platform returns the body the object stands on, or nil.
func (b *Body) Platform() *grove.Object { return b.platform }

// Jump sets the velocity against gravity to force (JumpForce when zero)
// and leaves the platform.
func (b *Body) Jump(force float64) {
	if force == 0 {
		force = b.JumpForce
	}
	gdir := grove.Vec2{X: 0, Y: 1}
	if b.obj != nil {
		gdir = b.obj.Engine().GravityDir()
	}
	b.Vel = b.Vel.Reject(gdir).Add(gdir.Scale(-force))
	b.platform = nil
	b.willFall = false
	if b.obj != nil {
		b.obj.Trigger(EventJump)
	}
}

// ApplyImpulse changes velocity by impulse / mass.
func (b *Body) ApplyImpulse(impulse grove.Vec2) {
	b.Vel = b.Vel.Add(impulse.Scale(1 / b.mass()))
}

// AddForce accumulates a force applied during the next fixed step.
func (b *Body) AddForce(f grove.Vec2) { b.force = b.force.Add(f) }

// Inspect implements grove.Inspector.
func (b *Body) Inspect() string {
	if b.IsStatic {
		return "body: static"
	}
	return "body: vel " + b.Vel.String()
}
