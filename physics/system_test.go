package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove"
)

func newEngine(t *testing.T, gravity grove.Vec2) *grove.Engine {
	t.Helper()
	e, err := grove.NewEngine(grove.Config{Gravity: gravity})
	require.NoError(t, err)
	return e
}

// steps runs n frames of exactly one fixed step each.
func steps(e *grove.Engine, n int) {
	for range n {
		e.Frame(e.FixedDT())
	}
}

func box(e *grove.Engine, x, y, w, h float64, items ...any) *grove.Object {
	items = append([]any{grove.NewPos(x, y), &grove.Rectangle{Width: w, Height: h}, &Area{}}, items...)
	return e.Add(items...)
}

func TestSystem_CollideLifecycle(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := box(e, 0, 0, 10, 10, "a")
	b := box(e, 5, 0, 10, 10, "b")

	var collides, updates, ends, reverse int
	OnCollide(a, "b", func(col *Collision) {
		collides++
		assert.Same(t, a, col.Source)
		assert.Same(t, b, col.Target)
	})
	OnCollideUpdate(a, "b", func(*Collision) { updates++ })
	OnCollideEnd(a, "b", func(other *grove.Object) {
		ends++
		assert.Same(t, b, other)
	})
	OnCollide(b, "a", func(*Collision) { reverse++ })

	steps(e, 1)
	assert.Equal(t, 1, collides)
	assert.Equal(t, 1, updates)
	assert.Equal(t, 1, reverse)
	assert.True(t, AreaOf(a).IsColliding(b))

	steps(e, 2)
	assert.Equal(t, 1, collides, "collide fires once per contact")
	assert.Equal(t, 3, updates)
	assert.Equal(t, 0, ends)

	b.Pos().MoveTo(grove.V(100, 0))
	steps(e, 1)
	assert.Equal(t, 1, ends)
	assert.False(t, AreaOf(a).IsColliding(b))
	assert.Equal(t, 0, Install(e).Contacts())

	b.Pos().MoveTo(grove.V(5, 0))
	steps(e, 1)
	assert.Equal(t, 2, collides, "a new contact fires collide again")
}

func TestSystem_CollisionIgnoreBothWays(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := e.Add(grove.NewPos(0, 0), &grove.Rectangle{Width: 10, Height: 10}, &Area{CollisionIgnore: []string{"enemy"}})
	b := box(e, 5, 0, 10, 10, "enemy")

	count := 0
	for _, o := range []*grove.Object{a, b} {
		OnCollide(o, "", func(*Collision) { count++ })
		OnCollideUpdate(o, "", func(*Collision) { count++ })
		OnCollideEnd(o, "", func(*grove.Object) { count++ })
	}
	steps(e, 3)
	assert.Zero(t, count)
	assert.True(t, AreaOf(a).IsOverlapping(b), "direct checks still see the overlap")
}

func TestSystem_DestroyedObjectEndsContact(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := box(e, 0, 0, 10, 10)
	b := box(e, 5, 0, 10, 10)

	var ended []*grove.Object
	OnCollideEnd(a, "", func(other *grove.Object) { ended = append(ended, other) })
	steps(e, 1)
	b.Destroy()
	steps(e, 1)
	assert.Equal(t, []*grove.Object{b}, ended)
	assert.Equal(t, 1, Install(e).BroadPhase().Len())
}

func TestSystem_DestroyInsideCollide(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	bullet := box(e, 0, 0, 4, 4, "bullet")
	box(e, 2, 0, 10, 10, "enemy")
	box(e, 3, 0, 10, 10, "enemy")

	hits := 0
	OnCollide(bullet, "enemy", func(*Collision) {
		hits++
		bullet.Destroy()
	})
	assert.NotPanics(t, func() { steps(e, 2) })
	assert.Equal(t, 1, hits)
	assert.False(t, bullet.Exists())
}

func TestSystem_PausedObjectKeepsContact(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	a := box(e, 0, 0, 10, 10)
	b := box(e, 5, 0, 10, 10)
	count := 0
	OnCollideUpdate(a, "", func(*Collision) { count++ })
	ends := 0
	OnCollideEnd(a, "", func(*grove.Object) { ends++ })

	steps(e, 1)
	b.Paused = true
	steps(e, 2)
	assert.Equal(t, 1, count)
	assert.Zero(t, ends)
}

func TestSystem_AreaShapeAndTransform(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	parent := e.Add(grove.NewPos(100, 0), grove.NewScale(2, 2))
	child := parent.Add(grove.NewPos(5, 5), &Area{Shape: grove.Circle{Radius: 5}})

	a := AreaOf(child)
	assert.True(t, a.HasPoint(grove.V(110, 10)))
	assert.True(t, a.HasPoint(grove.V(118, 10)), "radius is scaled by the parent")
	assert.False(t, a.HasPoint(grove.V(10, 10)))

	steps(e, 1)
	hits := Install(e).QueryPoint(grove.V(110, 10))
	assert.Equal(t, []*grove.Object{child}, hits)
}

func TestArea_PanicsWithoutShape(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	var err error
	func() {
		defer func() { err, _ = recover().(error) }()
		e.Add(grove.NewPos(0, 0), &Area{})
	}()
	assert.ErrorIs(t, err, ErrNoShape)
}

func TestSystem_DrawAreas(t *testing.T) {
	e := newEngine(t, grove.Vec2{})
	box(e, 0, 0, 10, 10)
	steps(e, 1)

	rec := &grove.Recorder{}
	e.Draw(rec)
	for _, op := range rec.Ops {
		assert.NotEqual(t, "polygon", op.Kind)
	}

	e.Debug().ShowAreas = true
	rec.Reset()
	e.Draw(rec)
	var outlines int
	for _, op := range rec.Ops {
		if op.Kind == "polygon" {
			outlines++
			assert.Len(t, op.Points, 4)
		}
	}
	assert.Equal(t, 1, outlines)
}
