package physics

import (
	"errors"
	"fmt"

	"github.com/phanxgames/grove"
)

// CompArea is the area component id.
const CompArea = "area"

// ErrNoShape is raised when an area has no shape and the object has no
// render component that can supply one.
var ErrNoShape = errors.New("grove/physics: area has no shape")

// Area makes an object collidable. Shape is in the object's local space;
// when nil, the shape of the object's render component (rect or circle) is
// used. The local shape is offset and scaled before the object's world
// transform is applied.
type Area struct {
	Shape  grove.Shape
	Offset grove.Vec2
	// Scale multiplies the local shape; the zero value means (1, 1).
	Scale grove.Vec2
	// CollisionIgnore lists tags of objects this area never collides with.
	CollisionIgnore []string

	obj *grove.Object
	sys *System
}

// ID implements grove.Component.
func (a *Area) ID() string { return CompArea }

// Add implements grove.Adder. The area is registered with the engine's
// collision system, which is installed on first use.
func (a *Area) Add(o *grove.Object) {
	if a.LocalShape(o) == nil {
		panic(fmt.Errorf("%w (object %s)", ErrNoShape, o))
	}
	a.obj = o
	a.sys = Install(o.Engine())
	a.sys.register(o, a)
}

// Destroy implements grove.Destroyer.
func (a *Area) Destroy(o *grove.Object) {
	if a.sys != nil {
		a.sys.unregister(o)
		a.sys = nil
	}
}

// LocalShape returns the shape in the object's local space, offset and
// scaled, or nil.
func (a *Area) LocalShape(o *grove.Object) grove.Shape {
	s := a.Shape
	if s == nil {
		s = o.RenderArea()
	}
	if s == nil {
		return nil
	}
	return s.Transform(a.localMatrix())
}

func (a *Area) localMatrix() grove.Affine {
	sc := a.Scale
	if sc.IsZero() {
		sc = grove.Vec2{X: 1, Y: 1}
	}
	return grove.Affine{sc.X, 0, 0, sc.Y, a.Offset.X, a.Offset.Y}
}

// WorldShape returns the area in world space, or nil.
func (a *Area) WorldShape(o *grove.Object) grove.Shape {
	s := a.Shape
	if s == nil {
		s = o.RenderArea()
	}
	if s == nil {
		return nil
	}
	return s.Transform(o.Transform().Mul(a.localMatrix()))
}

// Ignores reports whether other carries any of the CollisionIgnore tags.
func (a *Area) Ignores(other *grove.Object) bool {
	for _, t := range a.CollisionIgnore {
		if other.Is(t) {
			return true
		}
	}
	return false
}

// IsColliding reports whether the system saw this area overlapping other
// during the last fixed step.
func (a *Area) IsColliding(other *grove.Object) bool {
	return a.sys != nil && a.sys.Colliding(a.obj, other)
}

// CheckCollision tests this area against other's area right now and
// returns the collision, or nil.
func (a *Area) CheckCollision(other *grove.Object) *Collision {
	oa := AreaOf(other)
	if a.obj == nil || oa == nil {
		return nil
	}
	sa, sb := a.WorldShape(a.obj), oa.WorldShape(other)
	if sa == nil || sb == nil {
		return nil
	}
	n, d, ok := Intersect(sa, sb)
	if !ok {
		return nil
	}
	return NewCollision(a.obj, other, n, d, a.obj.Engine().GravityDir())
}

// IsOverlapping reports whether this area overlaps other's area right now.
func (a *Area) IsOverlapping(other *grove.Object) bool { return a.CheckCollision(other) != nil }

// HasPoint reports whether the world point p lies inside the area.
func (a *Area) HasPoint(p grove.Vec2) bool {
	if a.obj == nil {
		return false
	}
	s := a.WorldShape(a.obj)
	return s != nil && s.Contains(p)
}

// AreaOf returns the object's area component, or nil.
func AreaOf(o *grove.Object) *Area {
	a, _ := grove.CompOf[*Area](o, CompArea)
	return a
}

func collisionArg(args []any) *Collision { return args[0].(*Collision) }

// OnCollide registers fn for o starting to overlap an object carrying tag
// ("" or "*" for any).
func OnCollide(o *grove.Object, tag string, fn func(col *Collision)) *grove.EventController {
	return o.On(EventCollide, func(args ...any) {
		if col := collisionArg(args); tag == "" || col.Target.Is(tag) {
			fn(col)
		}
	})
}

// OnCollideUpdate registers fn for every fixed step o overlaps an object
// carrying tag.
func OnCollideUpdate(o *grove.Object, tag string, fn func(col *Collision)) *grove.EventController {
	return o.On(EventCollideUpdate, func(args ...any) {
		if col := collisionArg(args); tag == "" || col.Target.Is(tag) {
			fn(col)
		}
	})
}

// OnCollideEnd registers fn for o no longer overlapping an object carrying
// tag. The other object may have been destroyed.
func OnCollideEnd(o *grove.Object, tag string, fn func(other *grove.Object)) *grove.EventController {
	return o.On(EventCollideEnd, func(args ...any) {
		if other := args[0].(*grove.Object); tag == "" || other.Is(tag) {
			fn(other)
		}
	})
}

// OnBeforePhysicsResolve registers fn to run before a body pair involving o
// is separated. Calling PreventResolution vetoes the separation.
func OnBeforePhysicsResolve(o *grove.Object, fn func(col *Collision)) *grove.EventController {
	return o.On(EventBeforePhysicsResolve, func(args ...any) { fn(collisionArg(args)) })
}

// OnPhysicsResolve registers fn to run after a body pair involving o has
// been separated.
func OnPhysicsResolve(o *grove.Object, fn func(col *Collision)) *grove.EventController {
	return o.On(EventPhysicsResolve, func(args ...any) { fn(collisionArg(args)) })
}
