package grove

// Component is a reusable unit of state and behavior attached to an Object.
// ID returns the component id used for lookups, dependencies and Is checks.
// An empty id makes the component anonymous: it is kept in a separate list,
// cannot be looked up or required, and is never replaced.
//
// A component opts into lifecycle hooks by implementing any of Adder,
// Updater, FixedUpdater, Drawer and Destroyer. Hooks are registered as
// listeners on the owning object's events, so any number of components can
// each supply, say, an Update hook.
type Component interface {
	ID() string
}

// Requirer declares component ids that must be present on the object.
type Requirer interface {
	Require() []string
}

// Adder is called when the object enters the live tree, or immediately when
// the component is attached to an object that is already live.
type Adder interface {
	Add(o *Object)
}

// Updater is called once per frame on the variable clock.
type Updater interface {
	Update(o *Object)
}

// FixedUpdater is called once per fixed step.
type FixedUpdater interface {
	FixedUpdate(o *Object)
}

// Drawer is called during the draw traversal with the object's transform
// already pushed onto the canvas.
type Drawer interface {
	Draw(o *Object, c Canvas)
}

// Destroyer is called when the object is destroyed or the component is
// removed with Unuse.
type Destroyer interface {
	Destroy(o *Object)
}

// Inspector returns a short debug description of the component state.
type Inspector interface {
	Inspect() string
}

// Object event names fired by the tree itself.
const (
	EventAdd         = "add"
	EventUpdate      = "update"
	EventFixedUpdate = "fixedUpdate"
	EventDraw        = "draw"
	EventDestroy     = "destroy"
	EventUse         = "use"
	EventUnuse       = "unuse"
)

// Comp is a component built from function literals, for one-off behavior
// that does not warrant its own type. Nil hooks are not registered.
type Comp struct {
	Name          string
	Requires      []string
	OnAdd         func(o *Object)
	OnUpdate      func(o *Object)
	OnFixedUpdate func(o *Object)
	OnDraw        func(o *Object, c Canvas)
	OnDestroy     func(o *Object)
	InspectFn     func() string
}

// ID implements Component.
func (c *Comp) ID() string { return c.Name }

// Require implements Requirer.
func (c *Comp) Require() []string { return c.Requires }

// Inspect implements Inspector.
func (c *Comp) Inspect() string {
	if c.InspectFn == nil {
		return ""
	}
	return c.InspectFn()
}

// hooks is the resolved set of lifecycle functions for a component.
type hooks struct {
	add         func(o *Object)
	update      func(o *Object)
	fixedUpdate func(o *Object)
	draw        func(o *Object, c Canvas)
	destroy     func(o *Object)
}

func hooksOf(c Component) hooks {
	if fc, ok := c.(*Comp); ok {
		return hooks{
			add:         fc.OnAdd,
			update:      fc.OnUpdate,
			fixedUpdate: fc.OnFixedUpdate,
			draw:        fc.OnDraw,
			destroy:     fc.OnDestroy,
		}
	}
	var h hooks
	if a, ok := c.(Adder); ok {
		h.add = a.Add
	}
	if u, ok := c.(Updater); ok {
		h.update = u.Update
	}
	if f, ok := c.(FixedUpdater); ok {
		h.fixedUpdate = f.FixedUpdate
	}
	if d, ok := c.(Drawer); ok {
		h.draw = d.Draw
	}
	if d, ok := c.(Destroyer); ok {
		h.destroy = d.Destroy
	}
	return h
}

func requiresOf(c Component) []string {
	if r, ok := c.(Requirer); ok {
		return r.Require()
	}
	return nil
}

// compState tracks one attached component and the listeners registered for
// its hooks, so the attachment can be fully reversed.
type compState struct {
	comp  Component
	hooks hooks
	ctrls []*EventController
}

func (s *compState) cancel() {
	for _, c := range s.ctrls {
		c.Cancel()
	}
	s.ctrls = nil
}

// CompOf returns the component with the given id as type T.
func CompOf[T Component](o *Object, id string) (T, bool) {
	var zero T
	if o == nil {
		return zero, false
	}
	st, ok := o.comps[id]
	if !ok {
		return zero, false
	}
	t, ok := st.comp.(T)
	return t, ok
}
