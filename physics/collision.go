package physics

import "github.com/phanxgames/grove"

// Event names fired on objects by the collision system and bodies.
const (
	EventCollide              = "collide"
	EventCollideUpdate        = "collideUpdate"
	EventCollideEnd           = "collideEnd"
	EventBeforePhysicsResolve = "beforePhysicsResolve"
	EventPhysicsResolve       = "physicsResolve"
	EventGround               = "ground"
	EventFall                 = "fall"
	EventFallOff              = "fallOff"
	EventHeadbutt             = "headbutt"
	EventJump                 = "jump"
)

// sideEpsilon is the minimum normal component for a side classification.
const sideEpsilon = 1e-6

// Collision describes one overlap between Source and Target. Normal is the
// unit direction Source has to move to stop overlapping, Distance how far.
// A Collision and its Reverse share the resolved flag, so either side can
// veto the automatic resolution of the pair.
type Collision struct {
	Source   *grove.Object
	Target   *grove.Object
	Normal   grove.Vec2
	Distance float64

	gravDir  grove.Vec2
	resolved *bool
}

// NewCollision returns a collision between source and target. gravDir is
// the unit gravity direction used by IsTop and IsBottom.
func NewCollision(source, target *grove.Object, normal grove.Vec2, dist float64, gravDir grove.Vec2) *Collision {
	return &Collision{
		Source:   source,
		Target:   target,
		Normal:   normal,
		Distance: dist,
		gravDir:  gravDir,
		resolved: new(bool),
	}
}

// Displacement returns Normal * Distance.
func (c *Collision) Displacement() grove.Vec2 { return c.Normal.Scale(c.Distance) }

// Reverse returns the symmetric view: source and target swapped and the
// normal negated. The resolved flag is shared.
func (c *Collision) Reverse() *Collision {
	return &Collision{
		Source:   c.Target,
		Target:   c.Source,
		Normal:   c.Normal.Neg(),
		Distance: c.Distance,
		gravDir:  c.gravDir,
		resolved: c.resolved,
	}
}

// Resolved reports whether the pair has been resolved or vetoed.
func (c *Collision) Resolved() bool { return *c.resolved }

// PreventResolution marks the pair resolved so bodies skip separating it.
func (c *Collision) PreventResolution() { *c.resolved = true }

// IsBottom reports whether Target is below Source relative to gravity, i.e.
// Source is standing on Target.
func (c *Collision) IsBottom() bool { return c.Normal.Dot(c.gravDir) < -sideEpsilon }

// IsTop reports whether Target is above Source relative to gravity.
func (c *Collision) IsTop() bool { return c.Normal.Dot(c.gravDir) > sideEpsilon }

// IsLeft reports whether Target is to the left of Source on screen.
func (c *Collision) IsLeft() bool { return c.Normal.X > sideEpsilon }

// IsRight reports whether Target is to the right of Source on screen.
func (c *Collision) IsRight() bool { return c.Normal.X < -sideEpsilon }
