package level

import (
	"fmt"
	"strings"

	"github.com/phanxgames/grove"
)

// CompTile is the tile component id.
const CompTile = "tile"

// Edge is a set of cell sides a tile can be crossed through.
type Edge uint8

const (
	EdgeLeft Edge = 1 << iota
	EdgeTop
	EdgeRight
	EdgeBottom

	EdgeNone Edge = 0
	EdgeAll       = EdgeLeft | EdgeTop | EdgeRight | EdgeBottom
)

// Has reports whether every side in s is set.
func (e Edge) Has(s Edge) bool { return e&s == s }

func (e Edge) String() string {
	if e == EdgeNone {
		return "none"
	}
	var parts []string
	for _, s := range []struct {
		e    Edge
		name string
	}{{EdgeLeft, "left"}, {EdgeTop, "top"}, {EdgeRight, "right"}, {EdgeBottom, "bottom"}} {
		if e.Has(s.e) {
			parts = append(parts, s.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseEdge parses a side name.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(s) {
	case "left":
		return EdgeLeft, nil
	case "top":
		return EdgeTop, nil
	case "right":
		return EdgeRight, nil
	case "bottom":
		return EdgeBottom, nil
	case "all":
		return EdgeAll, nil
	case "none":
		return EdgeNone, nil
	}
	return EdgeNone, fmt.Errorf("grove/level: unknown edge %q", s)
}

// TileOpt configures NewTile.
type TileOpt struct {
	Obstacle bool
	// Cost is the extra cost of entering the cell.
	Cost float64
	// Edges lists the sides the cell can be entered or left through; zero
	// means all sides.
	Edges Edge
}

// Tile places an object on its level's grid. Changing the obstacle flag,
// cost or edges invalidates the level's navigation map.
type Tile struct {
	obstacle bool
	cost     float64
	edges    Edge

	obj   *grove.Object
	level *Level
	cell  Cell
}

// NewTile returns a tile component.
func NewTile(opt TileOpt) *Tile {
	t := &Tile{obstacle: opt.Obstacle, cost: opt.Cost, edges: opt.Edges}
	if t.edges == EdgeNone {
		t.edges = EdgeAll
	}
	return t
}

// ID implements grove.Component.
func (t *Tile) ID() string { return CompTile }

// Require implements grove.Requirer.
func (t *Tile) Require() []string { return []string{grove.CompPos} }

// Add implements grove.Adder. The tile joins the nearest ancestor level.
func (t *Tile) Add(o *grove.Object) {
	for p := o.Parent(); p != nil; p = p.Parent() {
		if l := LevelOf(p); l != nil {
			t.obj = o
			t.level = l
			l.register(t)
			if t.affectsNav() {
				t.invalidate()
			}
			return
		}
	}
	panic(fmt.Errorf("%w (object %s)", ErrNoLevel, o))
}

// Destroy implements grove.Destroyer.
func (t *Tile) Destroy(*grove.Object) {
	if t.level == nil {
		return
	}
	t.level.unregister(t)
	if t.affectsNav() {
		t.invalidate()
	}
	t.level = nil
}

// TileOf returns the object's tile component, or nil.
func TileOf(o *grove.Object) *Tile {
	t, _ := grove.CompOf[*Tile](o, CompTile)
	return t
}

// Level returns the level the tile belongs to, or nil before it is added.
func (t *Tile) Level() *Level { return t.level }

// TilePos returns the cell the tile was last hashed under.
func (t *Tile) TilePos() Cell { return t.cell }

// IsObstacle reports whether the cell is impassable.
func (t *Tile) IsObstacle() bool { return t.obstacle }

// SetObstacle changes the obstacle flag.
func (t *Tile) SetObstacle(v bool) {
	if t.obstacle != v {
		t.obstacle = v
		t.invalidate()
	}
}

// Cost returns the extra cost of entering the cell.
func (t *Tile) Cost() float64 { return t.cost }

// SetCost changes the cost.
func (t *Tile) SetCost(v float64) {
	if t.cost != v {
		t.cost = v
		t.invalidate()
	}
}

// Edges returns the traversable sides.
func (t *Tile) Edges() Edge { return t.edges }

// SetEdges changes the traversable sides.
func (t *Tile) SetEdges(e Edge) {
	if t.edges != e {
		t.edges = e
		t.invalidate()
	}
}

func (t *Tile) affectsNav() bool {
	return t.obstacle || t.cost != 0 || t.edges != EdgeAll
}

func (t *Tile) invalidate() {
	if t.level != nil && t.level.obj != nil {
		t.level.obj.Trigger(EventNavigationMapInvalid)
	}
}

// MoveTo places the object on cell c and re-hashes it immediately.
func (t *Tile) MoveTo(c Cell) {
	if t.level == nil {
		return
	}
	pos := t.level.Tile2Pos(c)
	if p := t.obj.Parent(); p != nil && p != t.level.obj {
		pos = p.FromWorld(t.level.obj.ToWorld(pos))
	}
	t.obj.MustPos().MoveTo(pos)
	if c == t.cell {
		return
	}
	t.level.move(t, c)
	t.level.obj.Trigger(EventSpatialMapChanged)
	if t.affectsNav() {
		t.invalidate()
	}
}

// MoveLeft moves one cell left.
func (t *Tile) MoveLeft() { t.MoveTo(t.cell.Add(-1, 0)) }

// MoveRight moves one cell right.
func (t *Tile) MoveRight() { t.MoveTo(t.cell.Add(1, 0)) }

// MoveUp moves one cell up.
func (t *Tile) MoveUp() { t.MoveTo(t.cell.Add(0, -1)) }

// MoveDown moves one cell down.
func (t *Tile) MoveDown() { t.MoveTo(t.cell.Add(0, 1)) }

// Inspect implements grove.Inspector.
func (t *Tile) Inspect() string {
	s := "tile: " + t.cell.String()
	if t.obstacle {
		s += " obstacle"
	}
	if t.cost != 0 {
		s += fmt.Sprintf(" cost %g", t.cost)
	}
	if t.edges != EdgeAll {
		s += " edges " + t.edges.String()
	}
	return s
}
