package grove

import (
	"fmt"
	"slices"
)

// Object is the fundamental scene graph element: a node in the engine's tree
// that carries components, tags and a private event registry.
//
// Objects are created with Engine.Make or Object.Add and destroyed with
// Destroy. A destroyed object never comes back; its id is zero afterwards.
type Object struct {
	id     uint64
	engine *Engine

	// Hierarchy. The parent pointer is a non-owning back reference; the
	// children slice owns its members.
	parent   *Object
	children []*Object

	comps map[string]*compState
	anon  []*compState
	tags  map[string]struct{}

	events Registry

	// Paused suspends Update and FixedUpdate for this object and its
	// descendants. Draw and event dispatch are unaffected.
	Paused bool
	// Hidden suspends Draw for this object and its descendants.
	Hidden bool
	// Mask makes this object's own drawing a mask for its children.
	Mask MaskMode

	live      bool
	destroyed bool

	// subscriptions into engine-level registries, cancelled on destroy
	owned []*EventController

	iterBuf []*Object
	drawBuf []*Object
}

func newObject(e *Engine) *Object {
	e.nextObjectID++
	return &Object{
		id:     e.nextObjectID,
		engine: e,
		comps:  make(map[string]*compState),
		tags:   make(map[string]struct{}),
	}
}

// Make creates a detached object from components and tags. The object is not
// live until it is added to the tree; dependency checks and add hooks run at
// that point.
func (e *Engine) Make(items ...any) *Object {
	o := newObject(e)
	for _, it := range items {
		o.Use(it)
	}
	return o
}

// ID returns the object's unique id, or 0 once destroyed.
func (o *Object) ID() uint64 { return o.id }

// Engine returns the engine context the object belongs to.
func (o *Object) Engine() *Engine { return o.engine }

// Parent returns the parent object, or nil for the root and detached objects.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (o *Object) Children() []*Object { return o.children }

// NumChildren returns the number of children.
func (o *Object) NumChildren() int { return len(o.children) }

// Exists reports whether the object is currently part of the live tree.
func (o *Object) Exists() bool { return o.live && !o.destroyed }

// IsDestroyed reports whether Destroy has run on this object.
func (o *Object) IsDestroyed() bool { return o.destroyed }

// --- Tree manipulation ---

// Add attaches a child. If items is a single *Object it is adopted as-is
// (it must not already have a parent); otherwise a new object is made from
// items. If this object is live the child becomes live immediately, which
// runs dependency checks, fires add on the child subtree, and notifies the
// engine-global add listeners.
func (o *Object) Add(items ...any) *Object {
	var child *Object
	if len(items) == 1 {
		if c, ok := items[0].(*Object); ok {
			child = c
		}
	}
	if child == nil {
		child = o.engine.Make(items...)
	}
	o.adopt(child)
	return child
}

func (o *Object) adopt(child *Object) {
	if child == nil {
		panic(ErrNilObject)
	}
	if o.engine.debug.Enabled {
		debugCheckDestroyed(o, "Add (parent)")
		debugCheckDestroyed(child, "Add (child)")
	}
	if child.parent != nil || child == o.engine.root {
		panic(ErrAlreadyParented)
	}
	for p := o; p != nil; p = p.parent {
		if p == child {
			panic(ErrCycle)
		}
	}
	child.parent = o
	o.children = append(o.children, child)
	if o.engine.debug.Enabled {
		debugCheckTreeDepth(o.engine, child)
		debugCheckChildCount(o.engine, o)
	}
	if o.live {
		child.enterTree()
	}
}

// enterTree makes o and its subtree live: dependency checks first, then the
// add event on o, the engine-global notification, then children in order.
func (o *Object) enterTree() {
	if o.destroyed || o.live {
		return
	}
	o.checkRequiresOrDetach()
	o.live = true
	o.Trigger(EventAdd)
	o.engine.notifyAdd(o)
	for _, c := range slices.Clone(o.children) {
		if c.parent == o {
			c.enterTree()
		}
	}
}

// Remove detaches and destroys child. Panics if child is not a child of o.
func (o *Object) Remove(child *Object) {
	if child.parent != o {
		panic(fmt.Errorf("grove: %w: child's parent is not this object", ErrNotLive))
	}
	o.removeChildByPtr(child)
	child.parent = nil
	child.destroyTree()
}

// RemoveAll destroys every child of o, optionally only those carrying all
// the given tags.
func (o *Object) RemoveAll(tags ...string) {
	for _, c := range slices.Clone(o.children) {
		if c.parent == o && c.Is(tags...) {
			o.Remove(c)
		}
	}
}

// Destroy removes the object from its parent and destroys it and every
// descendant. destroy fires exactly once per object. No-op when already
// destroyed.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	if o == o.engine.root {
		panic("grove: cannot destroy the root object")
	}
	if o.parent != nil {
		o.parent.Remove(o)
		return
	}
	o.destroyTree()
}

func (o *Object) destroyTree() {
	if o.destroyed {
		return
	}
	wasLive := o.live
	o.destroyed = true
	o.Trigger(EventDestroy)
	if wasLive {
		o.engine.notifyDestroy(o)
	}
	o.live = false
	for _, c := range o.children {
		c.parent = nil
		c.destroyTree()
	}
	o.children = nil
	for _, c := range o.owned {
		c.Cancel()
	}
	o.owned = nil
	for _, st := range o.comps {
		st.cancel()
	}
	for _, st := range o.anon {
		st.cancel()
	}
	o.events.Clear()
	o.iterBuf = nil
	o.drawBuf = nil
	o.id = 0
}

// removeChildByPtr removes child from o.children without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (o *Object) removeChildByPtr(child *Object) {
	for i, c := range o.children {
		if c == child {
			copy(o.children[i:], o.children[i+1:])
			o.children[len(o.children)-1] = nil
			o.children = o.children[:len(o.children)-1]
			return
		}
	}
}

// --- Composition ---

// Use attaches a component or a tag (string). Re-using an existing component
// id first reverses the previous attachment. If the object is live, the
// component's requirements are checked before anything is mutated and its
// add hook runs immediately; otherwise the check is deferred to the
// object's add event.
func (o *Object) Use(item any) {
	switch v := item.(type) {
	case string:
		if _, ok := o.tags[v]; ok {
			return
		}
		o.tags[v] = struct{}{}
		o.Trigger(EventUse, v)
	case []string:
		for _, t := range v {
			o.Use(t)
		}
	case Component:
		o.useComponent(v)
	case nil:
		panic(ErrBadComponent)
	default:
		panic(fmt.Errorf("%w: %T", ErrBadComponent, item))
	}
}

func (o *Object) useComponent(c Component) {
	id := c.ID()
	if o.live {
		if missing := o.missingFor(c, id); len(missing) > 0 {
			panic(&DependencyError{Component: displayID(c), Missing: missing})
		}
	}
	if id != "" {
		if prev, ok := o.comps[id]; ok {
			o.detach(id, prev)
		}
	}

	st := &compState{comp: c, hooks: hooksOf(c)}
	if id != "" {
		o.comps[id] = st
	} else {
		o.anon = append(o.anon, st)
	}

	h := st.hooks
	if h.update != nil {
		fn := h.update
		st.ctrls = append(st.ctrls, o.events.On(EventUpdate, func(...any) { fn(o) }))
	}
	if h.fixedUpdate != nil {
		fn := h.fixedUpdate
		st.ctrls = append(st.ctrls, o.events.On(EventFixedUpdate, func(...any) { fn(o) }))
	}
	if h.draw != nil {
		fn := h.draw
		st.ctrls = append(st.ctrls, o.events.On(EventDraw, func(args ...any) {
			fn(o, args[0].(Canvas))
		}))
	}
	if h.destroy != nil {
		fn := h.destroy
		st.ctrls = append(st.ctrls, o.events.On(EventDestroy, func(...any) { fn(o) }))
	}
	if h.add != nil {
		if o.live {
			h.add(o)
		} else {
			fn := h.add
			st.ctrls = append(st.ctrls, o.events.OnOnce(EventAdd, func(...any) { fn(o) }))
		}
	}
	if id != "" {
		o.Trigger(EventUse, id)
	}
}

// detach reverses an attachment without dependency checks.
func (o *Object) detach(id string, st *compState) {
	st.cancel()
	delete(o.comps, id)
	if st.hooks.destroy != nil && !o.destroyed {
		st.hooks.destroy(o)
	}
}

// Unuse removes a component or tag by id. Panics with a *DependencyError if
// another attached component requires it.
func (o *Object) Unuse(id string) {
	if _, ok := o.tags[id]; ok {
		delete(o.tags, id)
		o.Trigger(EventUnuse, id)
		return
	}
	st, ok := o.comps[id]
	if !ok {
		return
	}
	for otherID, other := range o.comps {
		if otherID == id {
			continue
		}
		if slices.Contains(requiresOf(other.comp), id) {
			panic(&DependencyError{Component: id, Dependent: otherID})
		}
	}
	for _, other := range o.anon {
		if slices.Contains(requiresOf(other.comp), id) {
			panic(&DependencyError{Component: id, Dependent: displayID(other.comp)})
		}
	}
	o.detach(id, st)
	o.Trigger(EventUnuse, id)
}

func (o *Object) missingFor(c Component, id string) []string {
	var missing []string
	for _, dep := range requiresOf(c) {
		if dep == id {
			continue
		}
		if _, ok := o.comps[dep]; !ok {
			missing = append(missing, dep)
		}
	}
	return missing
}

// checkRequiresOrDetach runs the deferred dependency check. A failing
// object is unlinked from its parent before the panic propagates, so it
// never runs hooks from inside the tree.
func (o *Object) checkRequiresOrDetach() {
	defer func() {
		if r := recover(); r != nil {
			if p := o.parent; p != nil {
				p.removeChildByPtr(o)
				o.parent = nil
			}
			panic(r)
		}
	}()
	o.checkAllRequires()
}

func (o *Object) checkAllRequires() {
	for id, st := range o.comps {
		if missing := o.missingFor(st.comp, id); len(missing) > 0 {
			panic(&DependencyError{Component: id, Missing: missing})
		}
	}
	for _, st := range o.anon {
		if missing := o.missingFor(st.comp, ""); len(missing) > 0 {
			panic(&DependencyError{Component: displayID(st.comp), Missing: missing})
		}
	}
}

func displayID(c Component) string {
	if id := c.ID(); id != "" {
		return id
	}
	return fmt.Sprintf("%T", c)
}

// Comp returns the component registered under id, or nil.
func (o *Object) Comp(id string) Component {
	if st, ok := o.comps[id]; ok {
		return st.comp
	}
	return nil
}

// Has reports whether a component with the given id is attached.
func (o *Object) Has(id string) bool {
	_, ok := o.comps[id]
	return ok
}

// CompIDs returns the ids of all identified components in sorted order.
func (o *Object) CompIDs() []string {
	ids := make([]string, 0, len(o.comps))
	for id := range o.comps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tags returns the object's tags in sorted order.
func (o *Object) Tags() []string {
	out := make([]string, 0, len(o.tags))
	for t := range o.tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Is reports whether the object carries every named tag or component id.
// The wildcard "*" matches any object. Is with no arguments is true.
func (o *Object) Is(tags ...string) bool {
	for _, t := range tags {
		if t == "*" {
			continue
		}
		if _, ok := o.tags[t]; ok {
			continue
		}
		if _, ok := o.comps[t]; ok {
			continue
		}
		return false
	}
	return true
}

// isAny reports whether the object carries at least one of tags.
func (o *Object) isAny(tags []string) bool {
	for _, t := range tags {
		if o.Is(t) {
			return true
		}
	}
	return false
}

// --- Events ---

// On registers a listener on the object's private registry.
func (o *Object) On(name string, fn Handler) *EventController {
	return o.events.On(name, fn)
}

// OnOnce registers a listener that runs at most once.
func (o *Object) OnOnce(name string, fn Handler) *EventController {
	return o.events.OnOnce(name, fn)
}

// Trigger fires name on the object's private listeners, then on the
// engine's tag-scoped registry (Engine.OnTag) with the object prepended to
// the arguments.
func (o *Object) Trigger(name string, args ...any) {
	o.events.Trigger(name, args...)
	if o.engine == nil || name == EventAdd || name == EventDestroy {
		return
	}
	if o.engine.objEvents.Num(name) == 0 {
		return
	}
	full := make([]any, 0, len(args)+1)
	full = append(full, o)
	full = append(full, args...)
	o.engine.objEvents.Trigger(name, full...)
}

// Own ties the lifetime of an engine-level subscription to the object: the
// controller is cancelled when the object is destroyed.
func (o *Object) Own(ctrl *EventController) *EventController {
	if o.destroyed {
		ctrl.Cancel()
		return ctrl
	}
	o.owned = append(o.owned, ctrl)
	return ctrl
}

// OnUpdate registers fn on the object's update event.
func (o *Object) OnUpdate(fn func()) *EventController {
	return o.events.On(EventUpdate, func(...any) { fn() })
}

// OnFixedUpdate registers fn on the object's fixedUpdate event.
func (o *Object) OnFixedUpdate(fn func()) *EventController {
	return o.events.On(EventFixedUpdate, func(...any) { fn() })
}

// OnDestroy registers fn on the object's destroy event.
func (o *Object) OnDestroy(fn func()) *EventController {
	return o.events.On(EventDestroy, func(...any) { fn() })
}

// --- Traversal ---

// pausedChain reports whether this object or an ancestor is paused.
func (o *Object) pausedChain() bool {
	for p := o; p != nil; p = p.parent {
		if p.Paused {
			return true
		}
	}
	return false
}

// IsPaused reports whether this object or an ancestor is paused.
func (o *Object) IsPaused() bool { return o.pausedChain() }

// Visible reports whether neither the object nor any ancestor is hidden.
func (o *Object) Visible() bool {
	for p := o; p != nil; p = p.parent {
		if p.Hidden {
			return false
		}
	}
	return true
}

// snapshotChildren copies the child list into the reusable iteration
// buffer so hooks can add or destroy siblings mid-traversal.
func (o *Object) snapshotChildren() []*Object {
	o.iterBuf = append(o.iterBuf[:0], o.children...)
	return o.iterBuf
}

// FixedUpdate runs the fixedUpdate event depth-first. No-op when paused.
func (o *Object) FixedUpdate() {
	if o.Paused || o.destroyed {
		return
	}
	o.Trigger(EventFixedUpdate)
	kids := o.snapshotChildren()
	for i := 0; i < len(kids); i++ {
		c := kids[i]
		if c.parent == o && !c.destroyed {
			c.FixedUpdate()
		}
	}
}

// Update runs the update event depth-first. No-op when paused.
func (o *Object) Update() {
	if o.Paused || o.destroyed {
		return
	}
	o.Trigger(EventUpdate)
	kids := o.snapshotChildren()
	for i := 0; i < len(kids); i++ {
		c := kids[i]
		if c.parent == o && !c.destroyed {
			c.Update()
		}
	}
}

// Draw pushes the object's transform, fires draw, then draws children in
// (layer, z) order. No-op when hidden. When Mask is set, the object's own
// drawing masks its children.
func (o *Object) Draw(c Canvas) {
	if o.Hidden || o.destroyed {
		return
	}
	c.PushTransform(o.renderLocal())
	defer c.PopTransform()

	if o.Mask != MaskNone {
		c.Masked(o.Mask, func() { o.Trigger(EventDraw, c) }, func() { o.drawChildren(c) })
		return
	}
	o.Trigger(EventDraw, c)
	o.drawChildren(c)
}

func (o *Object) drawChildren(c Canvas) {
	o.drawBuf = append(o.drawBuf[:0], o.children...)
	e := o.engine
	slices.SortStableFunc(o.drawBuf, func(a, b *Object) int {
		la, lb := e.layerIndex(a), e.layerIndex(b)
		if la != lb {
			return la - lb
		}
		za, zb := a.ZIndex(), b.ZIndex()
		if za != zb {
			return za - zb
		}
		return 0
	})
	// Draw hooks may destroy objects, which clears drawBuf; iterate a copy
	// of the header.
	kids := o.drawBuf
	for _, child := range kids {
		if child.parent == o {
			child.Draw(c)
		}
	}
}

// ZIndex returns the object's z component value, or 0.
func (o *Object) ZIndex() int {
	if z, ok := CompOf[*Z](o, CompZ); ok {
		return z.Value
	}
	return 0
}

// String implements fmt.Stringer for debugging.
func (o *Object) String() string {
	name := ""
	if n, ok := CompOf[*Named](o, CompNamed); ok {
		name = n.Name
	}
	return fmt.Sprintf("Object(%d %q %v)", o.id, name, o.Tags())
}
