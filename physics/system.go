package physics

import (
	"slices"

	"github.com/phanxgames/grove"
	"go.uber.org/zap"
)

// SystemName is the name the collision system registers under.
const SystemName = "physics"

type pairKey struct{ a, b *grove.Object }

func keyOf(a, b *grove.Object) pairKey {
	if a.ID() > b.ID() {
		a, b = b, a
	}
	return pairKey{a, b}
}

type contact struct {
	key  pairKey
	step uint64
}

// System detects collisions between areas once per fixed step and fires the
// collide, collideUpdate and collideEnd events.
type System struct {
	e    *grove.Engine
	bp   *SweepAndPrune
	ctrl *grove.EventController

	cands    [][2]*Entry
	contacts map[pairKey]*contact
	list     []*contact
	step     uint64

	// DebugColor outlines areas when the engine's ShowAreas is on.
	DebugColor grove.Color
}

// Install returns the engine's collision system, registering one if needed.
func Install(e *grove.Engine) *System {
	if s, ok := e.System(SystemName).(*System); ok {
		return s
	}
	s := &System{
		e:          e,
		bp:         NewSweepAndPrune(),
		contacts:   make(map[pairKey]*contact),
		DebugColor: grove.Color{R: 0, G: 0, B: 1, A: 1},
	}
	s.ctrl = e.AddSystem(s)
	e.Logger().Debug("physics system installed", zap.String("scene", e.CurrentScene()))
	return s
}

// Name implements grove.System.
func (s *System) Name() string { return SystemName }

// BroadPhase returns the system's broad phase.
func (s *System) BroadPhase() *SweepAndPrune { return s.bp }

func (s *System) register(o *grove.Object, a *Area) {
	en := &Entry{Obj: o, Area: a}
	s.refresh(en)
	s.bp.Insert(en)
}

func (s *System) unregister(o *grove.Object) {
	s.bp.Remove(o)
}

func (s *System) refresh(en *Entry) {
	en.Shape = en.Area.WorldShape(en.Obj)
	if en.Shape == nil {
		en.Bounds = grove.Rect{}
		return
	}
	en.Bounds = en.Shape.Bounds()
}

// Colliding reports whether a and b overlapped during the last fixed step.
func (s *System) Colliding(a, b *grove.Object) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	c, ok := s.contacts[keyOf(a, b)]
	return ok && c.step == s.step
}

// FixedUpdate implements grove.FixedUpdateSystem.
func (s *System) FixedUpdate() {
	g := s.e.GravityDir()
	for _, en := range s.bp.Entries() {
		s.refresh(en)
	}
	s.cands = s.cands[:0]
	s.bp.Pairs(func(a, b *Entry) {
		s.cands = append(s.cands, [2]*Entry{a, b})
	})
	s.step++

	for _, p := range s.cands {
		a, b := p[0].Obj, p[1].Obj
		if !a.Exists() || !b.Exists() {
			continue
		}
		k := keyOf(a, b)
		c, existed := s.contacts[k]
		if a.IsPaused() || b.IsPaused() {
			if existed {
				c.step = s.step
			}
			continue
		}
		aa, ba := AreaOf(a), AreaOf(b)
		if aa == nil || ba == nil || aa.Ignores(b) || ba.Ignores(a) {
			continue
		}
		// Earlier resolutions this step may have moved either object.
		sa, sb := aa.WorldShape(a), ba.WorldShape(b)
		if sa == nil || sb == nil {
			continue
		}
		n, d, ok := Intersect(sa, sb)
		if !ok {
			continue
		}
		if !existed {
			c = &contact{key: k}
			s.contacts[k] = c
			s.list = append(s.list, c)
		}
		c.step = s.step

		col := NewCollision(a, b, n, d, g)
		rev := col.Reverse()
		if !existed {
			a.Trigger(EventCollide, col)
			if b.Exists() {
				b.Trigger(EventCollide, rev)
			}
		}
		if a.Exists() {
			a.Trigger(EventCollideUpdate, col)
		}
		if b.Exists() {
			b.Trigger(EventCollideUpdate, rev)
		}
	}

	kept := s.list[:0]
	var ended []*contact
	for _, c := range s.list {
		if c.step == s.step {
			kept = append(kept, c)
			continue
		}
		delete(s.contacts, c.key)
		ended = append(ended, c)
	}
	clear(s.list[len(kept):])
	s.list = kept
	for _, c := range ended {
		if c.key.a.Exists() {
			c.key.a.Trigger(EventCollideEnd, c.key.b)
		}
		if c.key.b.Exists() {
			c.key.b.Trigger(EventCollideEnd, c.key.a)
		}
	}
}

// Draw implements grove.DrawSystem; it outlines areas when ShowAreas is on.
func (s *System) Draw(c grove.Canvas) {
	if !s.e.Debug().ShowAreas {
		return
	}
	for _, en := range s.bp.Entries() {
		switch sh := en.Shape.(type) {
		case grove.Poly:
			c.DrawPolygon(sh.Points, s.DebugColor, false)
		case grove.Circle:
			c.DrawCircle(sh.Center, sh.Radius, s.DebugColor, false)
		}
	}
}

// QueryRect returns the objects whose area bounds intersect r, as of the
// last fixed step.
func (s *System) QueryRect(r grove.Rect) []*grove.Object {
	var out []*grove.Object
	s.bp.Query(r, func(en *Entry) {
		if en.Obj.Exists() {
			out = append(out, en.Obj)
		}
	})
	return out
}

// QueryPoint returns the objects whose area contains the world point p.
func (s *System) QueryPoint(p grove.Vec2) []*grove.Object {
	out := s.QueryRect(grove.Rect{X: p.X, Y: p.Y})
	return slices.DeleteFunc(out, func(o *grove.Object) bool { return !AreaOf(o).HasPoint(p) })
}

// Contacts returns the number of pairs overlapping during the last step.
func (s *System) Contacts() int { return len(s.list) }

// Remove uninstalls the system.
func (s *System) Remove() { s.ctrl.Cancel() }
