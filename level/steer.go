package level

import (
	"math"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/physics"
)

// steer moves o toward the world point target at speed units per second
// and reports whether it arrived. Objects with a dynamic body are moved
// through their velocity; the component along gravity is left to physics.
func steer(o *grove.Object, target grove.Vec2, speed, tolerance float64) bool {
	e := o.Engine()
	if b := physics.BodyOf(o); b != nil && !b.IsStatic {
		diff := target.Sub(o.WorldPos())
		gdir := e.GravityDir()
		if !e.Gravity().IsZero() {
			diff = diff.Reject(gdir)
		}
		d := diff.Len()
		if d <= tolerance {
			b.Vel = b.Vel.Sub(b.Vel.Reject(gdir))
			if e.Gravity().IsZero() {
				b.Vel = grove.Vec2{}
			}
			return true
		}
		v := diff.Unit().Scale(math.Min(speed, d/e.FixedDT()))
		if !e.Gravity().IsZero() {
			v = v.Add(b.Vel.Project(gdir))
		}
		b.Vel = v
		return false
	}

	pos := o.MustPos()
	local := target
	if p := o.Parent(); p != nil {
		local = p.FromWorld(target)
	}
	return pos.Step(local, speed*e.DT())
}
