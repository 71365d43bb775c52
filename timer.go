package grove

import (
	"slices"
	"strconv"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

type timerEntry struct {
	ctrl *EventController
	// step advances the entry by dt and reports whether it finished.
	step func(dt float64) bool
}

// timerList holds time-driven callbacks advanced by an owner's clock: the
// engine's update phase for engine timers, the owning object's update
// event for the Timer component.
type timerList struct {
	items []*timerEntry
	buf   []*timerEntry
}

func (l *timerList) add(step func(dt float64) bool) *EventController {
	ent := &timerEntry{ctrl: &EventController{}, step: step}
	l.items = append(l.items, ent)
	return ent.ctrl
}

func (l *timerList) advance(dt float64) {
	l.buf = append(l.buf[:0], l.items...)
	for _, ent := range l.buf {
		if !ent.ctrl.active() {
			continue
		}
		if ent.step(dt) {
			ent.ctrl.Cancel()
		}
	}
	l.items = slices.DeleteFunc(l.items, func(ent *timerEntry) bool { return ent.ctrl.cancelled })
	clear(l.buf)
}

func (l *timerList) clear() {
	for _, ent := range l.items {
		ent.ctrl.Cancel()
	}
	l.items = nil
}

func (l *timerList) wait(sec float64, fn func()) *EventController {
	elapsed := 0.0
	return l.add(func(dt float64) bool {
		elapsed += dt
		if elapsed < sec {
			return false
		}
		fn()
		return true
	})
}

func (l *timerList) loop(sec float64, count int, fn func()) *EventController {
	elapsed := 0.0
	n := 0
	return l.add(func(dt float64) bool {
		if sec <= 0 {
			fn()
			n++
			return count > 0 && n >= count
		}
		elapsed += dt
		for elapsed >= sec {
			elapsed -= sec
			fn()
			n++
			if count > 0 && n >= count {
				return true
			}
		}
		return false
	})
}

func (l *timerList) tween(from, to, dur float64, fn ease.TweenFunc, set func(float64)) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{
		tw:  gween.New(float32(from), float32(to), float32(dur), fn),
		to:  to,
		set: set,
	}
	t.EventController = l.add(func(dt float64) bool {
		v, done := t.tw.Update(float32(dt))
		if done {
			t.finish()
			return true
		}
		t.set(float64(v))
		return false
	})
	return t
}

// Tween animates a value with a gween easing curve. Cancel stops it where
// it is; Finish jumps to the end value.
type Tween struct {
	*EventController

	tw    *gween.Tween
	to    float64
	set   func(float64)
	onEnd []func()
	done  bool
}

// OnEnd registers fn to run when the tween reaches its end value.
func (t *Tween) OnEnd(fn func()) { t.onEnd = append(t.onEnd, fn) }

// Done reports whether the tween reached its end value.
func (t *Tween) Done() bool { return t.done }

// Finish sets the end value, runs end callbacks and cancels the tween.
func (t *Tween) Finish() {
	if t.done || t.Cancelled() {
		return
	}
	t.finish()
	t.Cancel()
}

func (t *Tween) finish() {
	t.done = true
	t.set(t.to)
	for _, fn := range t.onEnd {
		fn()
	}
}

// Tween animates from → to over dur seconds of stepped time, calling set
// with each value. A nil easing function means linear.
func (e *Engine) Tween(from, to, dur float64, fn ease.TweenFunc, set func(float64)) *Tween {
	t := e.timers.tween(from, to, dur, fn, set)
	e.track(t.EventController)
	return t
}

// TweenVec animates a vector; both components share the easing curve.
func (e *Engine) TweenVec(from, to Vec2, dur float64, fn ease.TweenFunc, set func(Vec2)) *Tween {
	return e.Tween(0, 1, dur, fn, func(t float64) { set(from.Lerp(to, t)) })
}

// Timer is a component running callbacks on the owning object's clock: its
// timers stop while the object is paused and are cancelled when it is
// destroyed.
type Timer struct {
	list timerList
}

// ID implements Component.
func (t *Timer) ID() string { return CompTimer }

// Update implements Updater.
func (t *Timer) Update(o *Object) { t.list.advance(o.engine.DT()) }

// Destroy implements Destroyer.
func (t *Timer) Destroy(*Object) { t.list.clear() }

// Wait runs fn once after sec seconds.
func (t *Timer) Wait(sec float64, fn func()) *EventController { return t.list.wait(sec, fn) }

// Loop runs fn every sec seconds, count times (0 = forever).
func (t *Timer) Loop(sec float64, count int, fn func()) *EventController {
	return t.list.loop(sec, count, fn)
}

// Tween animates a value on the object's clock.
func (t *Timer) Tween(from, to, dur float64, fn ease.TweenFunc, set func(float64)) *Tween {
	return t.list.tween(from, to, dur, fn, set)
}

// TweenPos moves the object's pos to dest over dur seconds.
func (t *Timer) TweenPos(o *Object, dest Vec2, dur float64, fn ease.TweenFunc) *Tween {
	p := o.MustPos()
	from := p.Vec2
	return t.list.tween(0, 1, dur, fn, func(v float64) { p.Vec2 = from.Lerp(dest, v) })
}

// Inspect implements Inspector.
func (t *Timer) Inspect() string {
	if len(t.list.items) == 0 {
		return ""
	}
	return "timers: " + strconv.Itoa(len(t.list.items))
}
