package physics

import "github.com/phanxgames/grove"

// CompPlatformEffector is the platform effector component id.
const CompPlatformEffector = "platformEffector"

// PlatformEffector makes a body platform one-way: objects entering from one
// of IgnoreSides pass through it until they stop overlapping.
type PlatformEffector struct {
	// IgnoreSides lists the platform sides, as outward unit vectors, that
	// objects can pass through. Empty means the side gravity points to,
	// so objects jump up through the platform and land on top.
	IgnoreSides []grove.Vec2
	// ShouldCollide, when set, decides per object whether the platform is
	// solid for it.
	ShouldCollide func(other *grove.Object) bool

	passing map[*grove.Object]bool
}

// ID implements grove.Component.
func (p *PlatformEffector) ID() string { return CompPlatformEffector }

// Require implements grove.Requirer.
func (p *PlatformEffector) Require() []string { return []string{CompArea, CompBody} }

// Add implements grove.Adder.
func (p *PlatformEffector) Add(o *grove.Object) {
	p.passing = make(map[*grove.Object]bool)
	OnBeforePhysicsResolve(o, func(col *Collision) {
		other := col.Target
		if p.ShouldCollide != nil && !p.ShouldCollide(other) {
			col.PreventResolution()
			return
		}
		if p.passing[other] {
			col.PreventResolution()
			return
		}
		// col.Normal pushes the platform away from other, so other sits
		// on the platform's -Normal side.
		side := col.Normal.Neg()
		for _, s := range p.sides(o) {
			if side.Dot(s) > 0.5 {
				col.PreventResolution()
				p.passing[other] = true
				return
			}
		}
	})
	OnCollideEnd(o, "", func(other *grove.Object) { delete(p.passing, other) })
}

func (p *PlatformEffector) sides(o *grove.Object) []grove.Vec2 {
	if len(p.IgnoreSides) > 0 {
		return p.IgnoreSides
	}
	return []grove.Vec2{o.Engine().GravityDir()}
}

// Passing reports whether other is currently passing through.
func (p *PlatformEffector) Passing(other *grove.Object) bool { return p.passing[other] }
