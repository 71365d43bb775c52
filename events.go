package grove

// Handler is an event listener. Arguments are passed through from Trigger
// unchanged.
type Handler func(args ...any)

// EventController is returned by every subscription (events, input, timers,
// tweens). Cancel removes the subscription; Paused skips invocation without
// removing it.
type EventController struct {
	// Paused skips invocations while true.
	Paused bool

	cancelled bool
	onCancel  func()
	group     *EventController
}

// Cancel removes the subscription. Calling Cancel more than once has no
// further effect. A listener cancelled while its event is being triggered
// is not invoked again, not even later in the same Trigger.
func (c *EventController) Cancel() {
	if c == nil || c.cancelled {
		return
	}
	c.cancelled = true
	if c.onCancel != nil {
		c.onCancel()
		c.onCancel = nil
	}
}

// Cancelled reports whether Cancel has been called.
func (c *EventController) Cancelled() bool {
	return c != nil && c.cancelled
}

// active reports whether a listener behind this controller should run.
func (c *EventController) active() bool {
	for p := c; p != nil; p = p.group {
		if p.cancelled || p.Paused {
			return false
		}
	}
	return true
}

// JoinControllers returns a controller governing all of ctrls: cancelling it
// cancels every member, and pausing it pauses every member.
func JoinControllers(ctrls ...*EventController) *EventController {
	g := &EventController{}
	for _, c := range ctrls {
		if c != nil {
			c.group = g
		}
	}
	g.onCancel = func() {
		for _, c := range ctrls {
			c.Cancel()
		}
	}
	return g
}

// NewController returns a controller whose Cancel runs fn once.
func NewController(fn func()) *EventController {
	return &EventController{onCancel: fn}
}

type listener struct {
	ctrl *EventController
	fn   Handler
}

// listenerList is a reentrancy-safe listener slice. While a Trigger is in
// progress (depth > 0) cancelled entries are only flagged; the slice is
// compacted once the outermost Trigger returns. Listeners appended during a
// Trigger are picked up by the next one.
type listenerList struct {
	items []listener
	depth int
	dirty bool
}

func (l *listenerList) compact() {
	kept := l.items[:0]
	for _, it := range l.items {
		if !it.ctrl.cancelled {
			kept = append(kept, it)
		}
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = listener{}
	}
	l.items = kept
	l.dirty = false
}

// Registry is a named-event multicast registry. The zero value is ready to
// use. Registry is not safe for concurrent use; grove runs every listener on
// the frame goroutine.
type Registry struct {
	lists map[string]*listenerList
}

// On registers fn under name and returns its controller.
func (r *Registry) On(name string, fn Handler) *EventController {
	if r.lists == nil {
		r.lists = make(map[string]*listenerList)
	}
	l := r.lists[name]
	if l == nil {
		l = &listenerList{}
		r.lists[name] = l
	}
	ctrl := &EventController{}
	ctrl.onCancel = func() {
		if l.depth > 0 {
			l.dirty = true
			return
		}
		l.compact()
	}
	l.items = append(l.items, listener{ctrl: ctrl, fn: fn})
	return ctrl
}

// OnOnce registers fn under name; the listener cancels itself before its
// first invocation.
func (r *Registry) OnOnce(name string, fn Handler) *EventController {
	var ctrl *EventController
	ctrl = r.On(name, func(args ...any) {
		ctrl.Cancel()
		fn(args...)
	})
	return ctrl
}

// Trigger invokes every active listener registered under name, in
// registration order.
func (r *Registry) Trigger(name string, args ...any) {
	l := r.lists[name]
	if l == nil {
		return
	}
	l.depth++
	defer func() {
		l.depth--
		if l.depth == 0 && l.dirty {
			l.compact()
		}
	}()
	n := len(l.items)
	for i := 0; i < n; i++ {
		it := l.items[i]
		if !it.ctrl.active() {
			continue
		}
		it.fn(args...)
	}
}

// Num returns the number of live listeners registered under name.
func (r *Registry) Num(name string) int {
	l := r.lists[name]
	if l == nil {
		return 0
	}
	count := 0
	for _, it := range l.items {
		if !it.ctrl.cancelled {
			count++
		}
	}
	return count
}

// Clear cancels every listener in the registry.
func (r *Registry) Clear() {
	lists := r.lists
	r.lists = nil
	for _, l := range lists {
		for _, it := range l.items {
			it.ctrl.cancelled = true
			it.ctrl.onCancel = nil
		}
	}
}
