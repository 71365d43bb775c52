package grove

import "slices"

// GetOpt configures Object.Get.
type GetOpt struct {
	// Recursive searches all descendants instead of direct children.
	Recursive bool
}

// Get returns the children (or descendants) of o carrying every tag, in
// tree order.
func (o *Object) Get(opt GetOpt, tags ...string) []*Object {
	var out []*Object
	o.walk(opt.Recursive, func(c *Object) {
		if c.Is(tags...) {
			out = append(out, c)
		}
	})
	return out
}

func (o *Object) walk(recursive bool, fn func(c *Object)) {
	for _, c := range o.children {
		fn(c)
		if recursive {
			c.walk(true, fn)
		}
	}
}

// isDescendantOf reports whether anc is a proper ancestor of o.
func (o *Object) isDescendantOf(anc *Object) bool {
	for p := o.parent; p != nil; p = p.parent {
		if p == anc {
			return true
		}
	}
	return false
}

// LiveList is a Get result kept synchronized with the tree: matching objects
// entering the tree are appended and destroyed ones are removed, until the
// list is closed or the object that created it is destroyed.
type LiveList struct {
	Items []*Object
	ctrl  *EventController
}

// Len returns the number of items.
func (l *LiveList) Len() int { return len(l.Items) }

// Close stops synchronization.
func (l *LiveList) Close() { l.ctrl.Cancel() }

// GetLive is Get with live updates.
func (o *Object) GetLive(opt GetOpt, tags ...string) *LiveList {
	l := &LiveList{Items: o.Get(opt, tags...)}
	e := o.engine
	match := func(c *Object) bool {
		if !c.Is(tags...) {
			return false
		}
		if opt.Recursive {
			return c.isDescendantOf(o)
		}
		return c.parent == o
	}
	onAdd := e.objEvents.On(EventAdd, func(args ...any) {
		c := args[0].(*Object)
		if match(c) && !slices.Contains(l.Items, c) {
			l.Items = append(l.Items, c)
		}
	})
	onDestroy := e.objEvents.On(EventDestroy, func(args ...any) {
		c := args[0].(*Object)
		if i := slices.Index(l.Items, c); i >= 0 {
			l.Items = slices.Delete(l.Items, i, i+1)
		}
	})
	l.ctrl = o.Own(e.track(JoinControllers(onAdd, onDestroy)))
	return l
}

// Hierarchy selects the objects a Query starts from.
type Hierarchy uint8

const (
	Children Hierarchy = iota
	Siblings
	Ancestors
	Descendants
)

// TagOp combines tags in a Query include or exclude list.
type TagOp uint8

const (
	And TagOp = iota
	Or
)

// QueryOpt configures Object.Query.
type QueryOpt struct {
	Hierarchy Hierarchy
	Include   []string
	IncludeOp TagOp
	Exclude   []string
	ExcludeOp TagOp
	// Visible keeps only objects that are not hidden (including ancestors).
	Visible bool
	// Distance keeps only objects whose world position is within this
	// radius of o's. Requires pos on o; 0 disables the filter.
	Distance float64
}

func matchTags(c *Object, tags []string, op TagOp) bool {
	if op == Or {
		return c.isAny(tags)
	}
	return c.Is(tags...)
}

// Query returns objects related to o by opt.Hierarchy that pass the
// filters. Panics with ErrNoPos when a distance filter is used on an
// object without pos.
func (o *Object) Query(opt QueryOpt) []*Object {
	var origin Vec2
	if opt.Distance > 0 {
		o.MustPos()
		origin = o.WorldPos()
	}
	var list []*Object
	switch opt.Hierarchy {
	case Children:
		list = slices.Clone(o.children)
	case Siblings:
		if o.parent != nil {
			for _, c := range o.parent.children {
				if c != o {
					list = append(list, c)
				}
			}
		}
	case Ancestors:
		for p := o.parent; p != nil; p = p.parent {
			list = append(list, p)
		}
	case Descendants:
		o.walk(true, func(c *Object) { list = append(list, c) })
	}
	return slices.DeleteFunc(list, func(c *Object) bool {
		if len(opt.Include) > 0 && !matchTags(c, opt.Include, opt.IncludeOp) {
			return true
		}
		if len(opt.Exclude) > 0 && matchTags(c, opt.Exclude, opt.ExcludeOp) {
			return true
		}
		if opt.Visible && !c.Visible() {
			return true
		}
		if opt.Distance > 0 {
			if c.Pos() == nil || c.WorldPos().Dist(origin) > opt.Distance {
				return true
			}
		}
		return false
	})
}
