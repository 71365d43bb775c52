package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove"
)

func TestBody_StaticPairNeverMoves(t *testing.T) {
	e := newEngine(t, grove.V(0, 1000))
	a := box(e, 0, 0, 10, 10, NewStaticBody())
	b := box(e, 5, 5, 10, 10, NewStaticBody())
	steps(e, 5)
	assert.Equal(t, grove.V(0, 0), a.Pos().Vec2)
	assert.Equal(t, grove.V(5, 5), b.Pos().Vec2)
}

func TestBody_DynamicPushedOutOfStatic(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := box(e, 0, 0, 10, 10, NewBody())
	wall := box(e, 8, 0, 10, 10, NewStaticBody())
	steps(e, 1)
	assert.InDelta(t, -2, a.Pos().X, 1e-9)
	assert.InDelta(t, 0, a.Pos().Y, 1e-9)
	assert.Equal(t, grove.V(8, 0), wall.Pos().Vec2)
}

func TestBody_MassSplit(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	light := NewBody()
	heavy := NewBody()
	heavy.Mass = 3
	a := box(e, 0, 0, 10, 10, light)
	b := box(e, 8, 0, 10, 10, heavy)
	steps(e, 1)
	assert.InDelta(t, -1.5, a.Pos().X, 1e-9)
	assert.InDelta(t, 8.5, b.Pos().X, 1e-9)
	assert.False(t, AreaOf(a).IsOverlapping(b))
}

func TestBody_ResolutionEvents(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := box(e, 0, 0, 10, 10, NewBody())
	b := box(e, 8, 0, 10, 10, NewStaticBody())

	var order []string
	OnBeforePhysicsResolve(a, func(*Collision) { order = append(order, "a:before") })
	OnBeforePhysicsResolve(b, func(*Collision) { order = append(order, "b:before") })
	OnPhysicsResolve(a, func(*Collision) { order = append(order, "a:after") })
	OnPhysicsResolve(b, func(*Collision) { order = append(order, "b:after") })
	steps(e, 1)
	assert.Equal(t, []string{"a:before", "b:before", "a:after", "b:after"}, order)
}

func TestBody_PreventResolution(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := box(e, 0, 0, 10, 10, NewBody())
	box(e, 8, 0, 10, 10, NewStaticBody())
	OnBeforePhysicsResolve(a, func(col *Collision) { col.PreventResolution() })
	resolved := false
	OnPhysicsResolve(a, func(*Collision) { resolved = true })
	steps(e, 1)
	assert.Equal(t, grove.V(0, 0), a.Pos().Vec2)
	assert.False(t, resolved)
}

func TestBody_Restitution(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	ball := NewBody()
	ball.Vel = grove.V(0, 100)
	ball.Restitution = 0.5
	box(e, 0, 0, 10, 10, ball)
	box(e, -20, 11, 50, 10, NewStaticBody())
	steps(e, 1)
	assert.InDelta(t, 0, ball.Vel.X, 1e-9)
	assert.InDelta(t, -50, ball.Vel.Y, 1e-9)
}

func TestBody_Friction(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	slider := NewBody()
	slider.Vel = grove.V(100, 50)
	slider.Friction = 0.5
	floor := NewStaticBody()
	floor.Friction = 0.5
	box(e, 0, 0, 10, 10, slider)
	box(e, -100, 10.5, 300, 10, floor)
	steps(e, 1)
	assert.InDelta(t, 75, slider.Vel.X, 1e-9)
	assert.InDelta(t, 0, slider.Vel.Y, 1e-9)
}

func TestBody_FrictionNeverReverses(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	slider := NewBody()
	slider.Vel = grove.V(100, 50)
	slider.Friction = 10
	floor := NewStaticBody()
	floor.Friction = 10
	box(e, 0, 0, 10, 10, slider)
	box(e, -100, 10.5, 300, 10, floor)
	steps(e, 1)
	assert.InDelta(t, 0, slider.Vel.X, 1e-9)
	assert.InDelta(t, 0, slider.Vel.Y, 1e-9)
}

// landing drops a player on a static platform and waits until it is grounded.
func landing(t *testing.T) (e *grove.Engine, player, platform *grove.Object, counts map[string]int) {
	t.Helper()
	e = newEngine(t, grove.V(0, 1000))
	platform = box(e, 0, 20, 50, 10, NewStaticBody())
	player = box(e, 10, 0, 10, 10, NewBody())
	counts = make(map[string]int)
	for _, ev := range []string{EventGround, EventFall, EventFallOff} {
		player.On(ev, func(...any) { counts[ev]++ })
	}
	for range 60 {
		steps(e, 1)
		if BodyOf(player).IsGrounded() {
			break
		}
	}
	require.True(t, BodyOf(player).IsGrounded())
	return e, player, platform, counts
}

func TestBody_GroundAndFall(t *testing.T) {
	e, player, platform, counts := landing(t)
	assert.Equal(t, 1, counts[EventFall])
	assert.Equal(t, 1, counts[EventGround])
	assert.Same(t, platform, BodyOf(player).Platform())
	assert.InDelta(t, 10, player.Pos().Y, 1)

	steps(e, 30)
	assert.Equal(t, 1, counts[EventGround], "standing still does not re-fire ground")
	assert.True(t, BodyOf(player).IsGrounded())
}

func TestBody_RidesMovingPlatform(t *testing.T) {
	e, player, platform, _ := landing(t)
	x := player.Pos().X
	platform.Pos().MoveBy(grove.V(5, 0))
	steps(e, 1)
	assert.InDelta(t, x+5, player.Pos().X, 1e-9)

	BodyOf(player).NoStick = true
	platform.Pos().MoveBy(grove.V(5, 0))
	steps(e, 1)
	assert.InDelta(t, x+5, player.Pos().X, 1e-9)
}

func TestBody_FallOff(t *testing.T) {
	e, player, _, counts := landing(t)
	player.Pos().MoveBy(grove.V(200, 0))
	steps(e, 3)
	assert.Equal(t, 1, counts[EventFallOff])
	assert.False(t, BodyOf(player).IsGrounded())
}

func TestBody_JumpAndHeadbutt(t *testing.T) {
	e, player, _, _ := landing(t)
	b := BodyOf(player)
	jumped := 0
	player.On(EventJump, func(...any) { jumped++ })
	b.Jump(0)
	assert.Equal(t, 1, jumped)
	assert.InDelta(t, -640, b.Vel.Y, 1e-9)
	assert.False(t, b.IsGrounded())
	assert.True(t, b.IsJumping())

	// A ceiling right above the player.
	box(e, 0, player.Pos().Y-20, 50, 10, NewStaticBody())
	heads := 0
	player.On(EventHeadbutt, func(...any) { heads++ })
	steps(e, 2)
	assert.Equal(t, 1, heads)
	assert.False(t, b.IsJumping())
}

func TestBody_Interpolation(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	b := NewBody()
	b.Vel = grove.V(100, 0)
	b.Interpolate = true
	o := box(e, 0, 0, 10, 10, b)

	e.Frame(0.03)
	assert.InDelta(t, 2, o.Pos().X, 1e-9)
	assert.InDelta(t, 0.5, e.Alpha(), 1e-6)
	assert.InDelta(t, 1, o.Pos().Render().X, 1e-4)
}

func TestBody_ImpulseForceAndCap(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	b := NewBody()
	b.Mass = 2
	b.MaxVel = 100
	box(e, 0, 0, 10, 10, b)

	b.ApplyImpulse(grove.V(100, 0))
	assert.Equal(t, grove.V(50, 0), b.Vel)

	b.AddForce(grove.V(0, 10000))
	steps(e, 1)
	assert.InDelta(t, 100, b.Vel.Len(), 1e-9)
}

func TestBody_RequiresArea(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	var err error
	func() {
		defer func() { err, _ = recover().(error) }()
		e.Add(grove.NewPos(0, 0), NewBody())
	}()
	var dep *grove.DependencyError
	assert.ErrorAs(t, err, &dep)
}

func TestPlatformEffector_OneWay(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	eff := &PlatformEffector{}
	box(e, -20, 0, 50, 10, NewStaticBody(), eff)

	below := box(e, 0, 8, 10, 10, NewBody())
	steps(e, 1)
	assert.InDelta(t, 8, below.Pos().Y, 1e-9, "entering from below passes through")
	assert.True(t, eff.Passing(below))

	below.Pos().MoveTo(grove.V(0, 40))
	steps(e, 1)
	assert.False(t, eff.Passing(below), "passing ends with the contact")

	above := box(e, 0, -8, 10, 10, NewBody())
	steps(e, 1)
	assert.InDelta(t, -10, above.Pos().Y, 1e-9, "landing on top is solid")
}

func TestPlatformEffector_ShouldCollide(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	eff := &PlatformEffector{ShouldCollide: func(o *grove.Object) bool { return !o.Is("ghost") }}
	box(e, -20, 0, 50, 10, NewStaticBody(), eff)
	ghost := box(e, 0, -8, 10, 10, NewBody(), "ghost")
	steps(e, 1)
	assert.InDelta(t, -8, ghost.Pos().Y, 1e-9)
}
