package level

import (
	"github.com/phanxgames/grove"
)

// CompPatrol is the patrol component id.
const CompPatrol = "patrol"

// EventPatrolFinished fires when a PatrolStop patrol reaches its last
// waypoint.
const EventPatrolFinished = "patrolFinished"

// PatrolEnd selects what a patrol does after its last waypoint.
type PatrolEnd uint8

const (
	PatrolStop PatrolEnd = iota
	PatrolLoop
	PatrolPingPong
)

// Patrol moves its object through world-space waypoints. On a level the
// legs between waypoints follow level paths and are replanned when the
// navigation map changes; otherwise the object moves in straight lines.
// Unreachable waypoints are skipped.
type Patrol struct {
	Waypoints      []grove.Vec2
	Speed          float64
	End            PatrolEnd
	AllowDiagonals bool

	obj      *grove.Object
	idx      int
	step     int
	leg      []grove.Vec2
	planned  bool
	finished bool
	sub      *grove.EventController
}

// NewPatrol returns a patrol over waypoints.
func NewPatrol(speed float64, end PatrolEnd, waypoints ...grove.Vec2) *Patrol {
	return &Patrol{Waypoints: waypoints, Speed: speed, End: end}
}

// ID implements grove.Component.
func (p *Patrol) ID() string { return CompPatrol }

// Require implements grove.Requirer.
func (p *Patrol) Require() []string { return []string{grove.CompPos} }

// Add implements grove.Adder.
func (p *Patrol) Add(o *grove.Object) {
	p.obj = o
	p.step = 1
}

// Destroy implements grove.Destroyer.
func (p *Patrol) Destroy(*grove.Object) { p.sub.Cancel() }

// Current returns the index of the waypoint being approached.
func (p *Patrol) Current() int { return p.idx }

// Finished reports whether a PatrolStop patrol is done.
func (p *Patrol) Finished() bool { return p.finished }

func (p *Patrol) level() *Level {
	t := TileOf(p.obj)
	if t == nil || t.Level() == nil {
		return nil
	}
	l := t.Level()
	if p.sub == nil {
		p.sub = l.OnNavigationMapChanged(func() { p.planned = false })
	}
	return l
}

func (p *Patrol) planLeg() bool {
	p.planned = true
	target := p.Waypoints[p.idx]
	l := p.level()
	if l == nil {
		p.leg = []grove.Vec2{target}
		return true
	}
	path := l.GetPath(p.obj.WorldPos(), target, PathOpt{AllowDiagonals: p.AllowDiagonals})
	switch {
	case path == nil:
		return false
	case len(path) == 0:
		p.leg = []grove.Vec2{target}
	default:
		p.leg = path[1:]
	}
	return true
}

// Update implements grove.Updater.
func (p *Patrol) Update(o *grove.Object) {
	if p.finished || len(p.Waypoints) == 0 {
		return
	}
	if !p.planned && !p.planLeg() {
		p.advance()
		return
	}
	if len(p.leg) == 0 {
		p.advance()
		return
	}
	if !steer(o, p.leg[0], p.Speed, 1) {
		return
	}
	p.leg = p.leg[1:]
	if len(p.leg) == 0 {
		p.advance()
	}
}

func (p *Patrol) advance() {
	p.planned = false
	p.leg = nil
	n := len(p.Waypoints)
	next := p.idx + p.step
	switch p.End {
	case PatrolLoop:
		next = (next%n + n) % n
	case PatrolPingPong:
		if next < 0 || next >= n {
			p.step = -p.step
			next = p.idx + p.step
		}
		next = max(0, min(next, n-1))
	default:
		if next >= n {
			p.finished = true
			steer(p.obj, p.obj.WorldPos(), 0, 1)
			p.obj.Trigger(EventPatrolFinished)
			return
		}
	}
	p.idx = next
}
