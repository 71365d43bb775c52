package grove

import "math"

// Built-in component ids.
const (
	CompPos      = "pos"
	CompScale    = "scale"
	CompRotate   = "rotate"
	CompZ        = "z"
	CompLayer    = "layer"
	CompNamed    = "named"
	CompAnchor   = "anchor"
	CompRect     = "rect"
	CompCircle   = "circle"
	CompText     = "text"
	CompTimer    = "timer"
	CompState    = "state"
	CompHealth   = "health"
	CompLifespan = "lifespan"
)

// --- pos ---

// Pos is the object's local position relative to its parent.
type Pos struct {
	Vec2

	render    Vec2
	hasRender bool
}

// NewPos returns a pos component at (x, y).
func NewPos(x, y float64) *Pos { return &Pos{Vec2: Vec2{x, y}} }

// ID implements Component.
func (p *Pos) ID() string { return CompPos }

// MoveBy translates the position by d.
func (p *Pos) MoveBy(d Vec2) { p.Vec2 = p.Vec2.Add(d) }

// MoveTo sets the position.
func (p *Pos) MoveTo(v Vec2) { p.Vec2 = v }

// Step moves the position toward dest by at most maxDist and reports
// whether dest was reached.
func (p *Pos) Step(dest Vec2, maxDist float64) bool {
	diff := dest.Sub(p.Vec2)
	d := diff.Len()
	if d <= maxDist || d == 0 {
		p.Vec2 = dest
		return true
	}
	p.Vec2 = p.Vec2.Add(diff.Scale(maxDist / d))
	return false
}

// SetRender sets an interpolated position used only for drawing.
func (p *Pos) SetRender(v Vec2) {
	p.render = v
	p.hasRender = true
}

// ClearRender drops the interpolated render position.
func (p *Pos) ClearRender() { p.hasRender = false }

// Render returns the position used for drawing.
func (p *Pos) Render() Vec2 {
	if p.hasRender {
		return p.render
	}
	return p.Vec2
}

// Inspect implements Inspector.
func (p *Pos) Inspect() string { return formatVec("pos", p.Vec2) }

// Pos returns the object's pos component, or nil.
func (o *Object) Pos() *Pos {
	p, _ := CompOf[*Pos](o, CompPos)
	return p
}

// MustPos returns the object's pos component and panics with ErrNoPos when
// it has none.
func (o *Object) MustPos() *Pos {
	p := o.Pos()
	if p == nil {
		panic(ErrNoPos)
	}
	return p
}

// --- scale / rotate ---

// Scale scales the object and its children.
type Scale struct {
	Value Vec2
}

// NewScale returns a scale component.
func NewScale(sx, sy float64) *Scale { return &Scale{Value: Vec2{sx, sy}} }

// ID implements Component.
func (s *Scale) ID() string { return CompScale }

// Rotate rotates the object and its children, in radians.
type Rotate struct {
	Angle float64
}

// ID implements Component.
func (r *Rotate) ID() string { return CompRotate }

// RotateBy adds delta radians.
func (r *Rotate) RotateBy(delta float64) {
	r.Angle = math.Mod(r.Angle+delta, 2*math.Pi)
}

// --- z / layer / named ---

// Z orders siblings within a layer; higher values draw later.
type Z struct {
	Value int
}

// ID implements Component.
func (z *Z) ID() string { return CompZ }

// Layer places the object on one of the engine's named layers.
type Layer struct {
	Name string
}

// ID implements Component.
func (l *Layer) ID() string { return CompLayer }

// Add validates the layer name against the engine's layer list.
func (l *Layer) Add(o *Object) {
	if _, ok := o.engine.layerIndexByName(l.Name); !ok {
		panic(&layerError{name: l.Name})
	}
}

type layerError struct{ name string }

func (e *layerError) Error() string { return ErrUnknownLayer.Error() + " " + quoteAll([]string{e.name})[0] }
func (e *layerError) Unwrap() error { return ErrUnknownLayer }

// Named gives an object a human-readable name.
type Named struct {
	Name string
}

// ID implements Component.
func (n *Named) ID() string { return CompNamed }

// Anchor sets the origin of render and area shapes relative to their size:
// (-1,-1) is top-left (the default), (0,0) is center, (1,1) bottom-right.
type Anchor struct {
	Value Vec2
}

// ID implements Component.
func (a *Anchor) ID() string { return CompAnchor }

// Anchor helpers.
var (
	AnchorTopLeft = Vec2{-1, -1}
	AnchorCenter  = Vec2{0, 0}
	AnchorBotLeft = Vec2{-1, 1}
)

// AnchorOffset returns the local offset at which a shape of the given size
// should be placed so that the object's anchor lands on its origin.
func (o *Object) AnchorOffset(size Vec2) Vec2 {
	a := AnchorTopLeft
	if c, ok := CompOf[*Anchor](o, CompAnchor); ok {
		a = c.Value
	}
	return Vec2{-(a.X + 1) / 2 * size.X, -(a.Y + 1) / 2 * size.Y}
}

// --- render shapes ---

// Rectangle draws a filled or outlined rectangle and provides a default
// collision shape.
type Rectangle struct {
	Width, Height float64
	Color         Color
	Outline       bool
}

// ID implements Component.
func (r *Rectangle) ID() string { return CompRect }

// Draw implements Drawer.
func (r *Rectangle) Draw(o *Object, c Canvas) {
	off := o.AnchorOffset(Vec2{r.Width, r.Height})
	c.DrawRect(Rect{off.X, off.Y, r.Width, r.Height}, r.Color, !r.Outline)
}

// RenderArea implements AreaSource.
func (r *Rectangle) RenderArea(o *Object) Shape {
	off := o.AnchorOffset(Vec2{r.Width, r.Height})
	return RectPoly(Rect{off.X, off.Y, r.Width, r.Height})
}

// Disc draws a circle and provides a default collision shape.
type Disc struct {
	Radius  float64
	Color   Color
	Outline bool
}

// ID implements Component.
func (d *Disc) ID() string { return CompCircle }

// Draw implements Drawer.
func (d *Disc) Draw(o *Object, c Canvas) {
	c.DrawCircle(d.center(o), d.Radius, d.Color, !d.Outline)
}

// RenderArea implements AreaSource.
func (d *Disc) RenderArea(o *Object) Shape {
	return Circle{Center: d.center(o), Radius: d.Radius}
}

// Circles are centered on the origin unless an anchor says otherwise.
func (d *Disc) center(o *Object) Vec2 {
	if _, ok := CompOf[*Anchor](o, CompAnchor); !ok {
		return Vec2{}
	}
	size := Vec2{d.Radius * 2, d.Radius * 2}
	return o.AnchorOffset(size).Add(Vec2{d.Radius, d.Radius})
}

// Label draws a line of text.
type Label struct {
	Text  string
	Color Color
}

// ID implements Component.
func (l *Label) ID() string { return CompText }

// Draw implements Drawer.
func (l *Label) Draw(_ *Object, c Canvas) {
	c.DrawText(Vec2{}, l.Text, l.Color)
}

// AreaSource is implemented by render components that can supply a default
// collision shape in the object's local space.
type AreaSource interface {
	RenderArea(o *Object) Shape
}

// RenderArea returns the local shape of the first render component that
// provides one, or nil.
func (o *Object) RenderArea() Shape {
	for _, id := range []string{CompRect, CompCircle} {
		if st, ok := o.comps[id]; ok {
			if src, ok := st.comp.(AreaSource); ok {
				return src.RenderArea(o)
			}
		}
	}
	for _, st := range o.anon {
		if src, ok := st.comp.(AreaSource); ok {
			return src.RenderArea(o)
		}
	}
	return nil
}
