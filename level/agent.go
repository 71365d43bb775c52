package level

import (
	"github.com/phanxgames/grove"
)

// CompAgent is the agent component id.
const CompAgent = "agent"

// Agent event names, fired on the agent's object.
const (
	EventNavigationStarted = "navigationStarted"
	EventNavigationNext    = "navigationNext"
	EventNavigationEnded   = "navigationEnded"
	EventTargetReached     = "targetReached"
	EventTargetUnreachable = "targetUnreachable"
)

// Agent walks its object along level paths toward a target. It replans
// when the level's navigation map changes while a target is set. Objects
// with a dynamic physics body are driven through their velocity.
type Agent struct {
	Speed          float64
	AllowDiagonals bool
	// Tolerance is the arrival distance for body-driven agents; zero
	// means one unit.
	Tolerance float64

	obj      *grove.Object
	tile     *Tile
	target   *grove.Vec2
	path     []grove.Vec2
	checksum uint64
	dirty    bool
	sub      *grove.EventController
}

// NewAgent returns an agent moving at speed units per second.
func NewAgent(speed float64) *Agent { return &Agent{Speed: speed} }

// ID implements grove.Component.
func (a *Agent) ID() string { return CompAgent }

// Require implements grove.Requirer.
func (a *Agent) Require() []string { return []string{grove.CompPos, CompTile} }

// AgentOf returns the object's agent component, or nil.
func AgentOf(o *grove.Object) *Agent {
	a, _ := grove.CompOf[*Agent](o, CompAgent)
	return a
}

// Add implements grove.Adder.
func (a *Agent) Add(o *grove.Object) {
	a.obj = o
	a.tile = TileOf(o)
}

// Destroy implements grove.Destroyer.
func (a *Agent) Destroy(*grove.Object) { a.sub.Cancel() }

// SetTarget starts navigating to the world point p.
func (a *Agent) SetTarget(p grove.Vec2) {
	a.target = &p
	a.dirty = false
	if a.plan() {
		a.obj.Trigger(EventNavigationStarted, p)
	}
}

// ClearTarget stops navigating.
func (a *Agent) ClearTarget() {
	a.target = nil
	a.path = nil
	a.stopBody()
}

// Target returns the current target.
func (a *Agent) Target() (grove.Vec2, bool) {
	if a.target == nil {
		return grove.Vec2{}, false
	}
	return *a.target, true
}

// Path returns the remaining waypoints.
func (a *Agent) Path() []grove.Vec2 { return a.path }

// IsNavigating reports whether the agent is following a path.
func (a *Agent) IsNavigating() bool { return a.target != nil && a.path != nil }

// level returns the agent's level, subscribing to its navigation changes
// on first use. The tile may join the level after the agent is added.
func (a *Agent) level() *Level {
	if a.tile == nil {
		return nil
	}
	l := a.tile.Level()
	if l != nil && a.sub == nil {
		a.sub = l.OnNavigationMapChanged(func() { a.dirty = true })
	}
	return l
}

// plan computes the path to the target, dropping the starting point.
func (a *Agent) plan() bool {
	l := a.level()
	if l == nil || a.target == nil {
		return false
	}
	path := l.GetPath(a.obj.WorldPos(), *a.target, PathOpt{AllowDiagonals: a.AllowDiagonals})
	a.checksum = l.NavChecksum()
	switch {
	case path == nil:
		t := *a.target
		a.target = nil
		a.path = nil
		a.stopBody()
		a.obj.Trigger(EventTargetUnreachable, t)
		return false
	case len(path) == 0:
		a.path = []grove.Vec2{*a.target}
	default:
		a.path = path[1:]
	}
	return true
}

func (a *Agent) stopBody() {
	if a.obj != nil && a.obj.Exists() {
		steer(a.obj, a.obj.WorldPos(), 0, 1)
	}
}

// Update implements grove.Updater.
func (a *Agent) Update(o *grove.Object) {
	if a.target == nil {
		return
	}
	if a.dirty {
		a.dirty = false
		if l := a.level(); l != nil && l.NavChecksum() != a.checksum {
			if !a.plan() {
				return
			}
		}
	}
	if len(a.path) == 0 {
		return
	}
	tol := a.Tolerance
	if tol <= 0 {
		tol = 1
	}
	if !steer(o, a.path[0], a.Speed, tol) {
		return
	}
	reached := a.path[0]
	a.path = a.path[1:]
	if len(a.path) > 0 {
		o.Trigger(EventNavigationNext, reached)
		return
	}
	a.target = nil
	a.path = nil
	o.Trigger(EventTargetReached, reached)
	o.Trigger(EventNavigationEnded)
}

// Inspect implements grove.Inspector.
func (a *Agent) Inspect() string {
	if a.target == nil {
		return "agent: idle"
	}
	return "agent: to " + a.target.String()
}
