package grove

import "fmt"

// Health event names fired on the owning object.
const (
	EventHurt  = "hurt"
	EventHeal  = "heal"
	EventDeath = "death"
)

// Health tracks hit points. Hurt and Heal fire hurt/heal on the object; the
// transition to zero or below fires death once.
type Health struct {
	HP  int
	Max int

	obj  *Object
	dead bool
}

// NewHealth returns a health component at hp; max 0 means unbounded.
func NewHealth(hp, max int) *Health { return &Health{HP: hp, Max: max} }

// ID implements Component.
func (h *Health) ID() string { return CompHealth }

// Add implements Adder.
func (h *Health) Add(o *Object) { h.obj = o }

// Hurt subtracts n hit points.
func (h *Health) Hurt(n int) {
	h.SetHP(h.HP - n)
	h.trigger(EventHurt, n)
	h.checkDeath()
}

// Heal adds n hit points, capped at Max.
func (h *Health) Heal(n int) {
	h.SetHP(h.HP + n)
	h.trigger(EventHeal, n)
}

// SetHP sets the hit points, capped at Max.
func (h *Health) SetHP(hp int) {
	if h.Max > 0 && hp > h.Max {
		hp = h.Max
	}
	h.HP = hp
	if hp > 0 {
		h.dead = false
	}
}

// Dead reports whether hit points reached zero.
func (h *Health) Dead() bool { return h.HP <= 0 }

func (h *Health) checkDeath() {
	if h.HP <= 0 && !h.dead {
		h.dead = true
		h.trigger(EventDeath)
	}
}

func (h *Health) trigger(name string, args ...any) {
	if h.obj != nil && h.obj.Exists() {
		h.obj.Trigger(name, args...)
	}
}

// Inspect implements Inspector.
func (h *Health) Inspect() string {
	if h.Max > 0 {
		return fmt.Sprintf("health: %d/%d", h.HP, h.Max)
	}
	return fmt.Sprintf("health: %d", h.HP)
}

// Lifespan destroys the object after Time seconds on its own clock.
type Lifespan struct {
	Time    float64
	elapsed float64
}

// ID implements Component.
func (l *Lifespan) ID() string { return CompLifespan }

// Update implements Updater.
func (l *Lifespan) Update(o *Object) {
	l.elapsed += o.engine.DT()
	if l.elapsed >= l.Time {
		o.Destroy()
	}
}

// Remaining returns the seconds left.
func (l *Lifespan) Remaining() float64 { return max(l.Time-l.elapsed, 0) }
