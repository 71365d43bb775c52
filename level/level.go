package level

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/phanxgames/grove"
)

// CompLevel is the level component id.
const CompLevel = "level"

// Level event names, fired on the level object.
const (
	// EventSpatialMapChanged fires at most once per update when tiles
	// moved between cells.
	EventSpatialMapChanged = "spatialMapChanged"
	// EventNavigationMapInvalid is fired by tile setters. The level
	// invalidates its derived maps in response.
	EventNavigationMapInvalid = "navigationMapInvalid"
	// EventNavigationMapChanged follows every invalidation. Path
	// followers replan on it.
	EventNavigationMapChanged = "navigationMapChanged"
)

// ErrNoLevel is raised when a tile is added outside a level.
var ErrNoLevel = errors.New("grove/level: tile is not inside a level")

// Cell is a grid coordinate.
type Cell struct {
	Col, Row int
}

// Add returns c offset by (dc, dr).
func (c Cell) Add(dc, dr int) Cell { return Cell{c.Col + dc, c.Row + dr} }

func (c Cell) String() string { return fmt.Sprintf("[%d,%d]", c.Col, c.Row) }

// Level is a grid of cols*rows cells of TileWidth x TileHeight in the
// owning object's local space.
type Level struct {
	TileWidth, TileHeight float64

	cols, rows int
	obj        *grove.Object

	spatial map[int][]*grove.Object
	tiles   []*Tile

	nav navMap
	// frontier pops of the last GetTilePath
	expanded int
}

// New returns a level component of cols x rows cells.
func New(cols, rows int, tileWidth, tileHeight float64) *Level {
	return &Level{
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		cols:       max(cols, 0),
		rows:       max(rows, 0),
		spatial:    make(map[int][]*grove.Object),
	}
}

// ID implements grove.Component.
func (l *Level) ID() string { return CompLevel }

// Require implements grove.Requirer.
func (l *Level) Require() []string { return []string{grove.CompPos} }

// Add implements grove.Adder.
func (l *Level) Add(o *grove.Object) {
	l.obj = o
	o.On(EventNavigationMapInvalid, func(...any) { l.Invalidate() })
}

// Update implements grove.Updater. Tiles whose position no longer matches
// their cell are re-hashed before the children update.
func (l *Level) Update(*grove.Object) {
	moved, navMoved := false, false
	for _, t := range l.tiles {
		c := l.cellOf(t.obj)
		if c == t.cell {
			continue
		}
		l.move(t, c)
		moved = true
		if t.affectsNav() {
			navMoved = true
		}
	}
	if moved {
		l.obj.Trigger(EventSpatialMapChanged)
	}
	if navMoved {
		l.obj.Trigger(EventNavigationMapInvalid)
	}
}

// LevelOf returns the object's level component, or nil.
func LevelOf(o *grove.Object) *Level {
	l, _ := grove.CompOf[*Level](o, CompLevel)
	return l
}

// Object returns the level object.
func (l *Level) Object() *grove.Object { return l.obj }

// NumCols returns the number of columns.
func (l *Level) NumCols() int { return l.cols }

// NumRows returns the number of rows.
func (l *Level) NumRows() int { return l.rows }

// Width returns the level width in local units.
func (l *Level) Width() float64 { return float64(l.cols) * l.TileWidth }

// Height returns the level height in local units.
func (l *Level) Height() float64 { return float64(l.rows) * l.TileHeight }

// InBounds reports whether c lies on the grid.
func (l *Level) InBounds(c Cell) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < l.cols && c.Row < l.rows
}

// Hash returns the cell number row*cols+col, or -1 off the grid.
func (l *Level) Hash(c Cell) int {
	if !l.InBounds(c) {
		return -1
	}
	return c.Row*l.cols + c.Col
}

// CellAt returns the cell for a hash.
func (l *Level) CellAt(hash int) Cell { return Cell{hash % l.cols, hash / l.cols} }

// Tile2Pos returns the local top-left corner of c.
func (l *Level) Tile2Pos(c Cell) grove.Vec2 {
	return grove.V(float64(c.Col)*l.TileWidth, float64(c.Row)*l.TileHeight)
}

// Pos2Tile returns the cell containing the local point p.
func (l *Level) Pos2Tile(p grove.Vec2) Cell {
	return Cell{int(math.Floor(p.X / l.TileWidth)), int(math.Floor(p.Y / l.TileHeight))}
}

// TileCenter returns the world position of the center of c.
func (l *Level) TileCenter(c Cell) grove.Vec2 {
	return l.obj.ToWorld(l.Tile2Pos(c).Add(grove.V(l.TileWidth/2, l.TileHeight/2)))
}

// WorldToTile returns the cell containing the world point p.
func (l *Level) WorldToTile(p grove.Vec2) Cell { return l.Pos2Tile(l.obj.FromWorld(p)) }

func (l *Level) cellOf(o *grove.Object) Cell { return l.WorldToTile(o.WorldPos()) }

// GetAt returns the tile objects occupying c.
func (l *Level) GetAt(c Cell) []*grove.Object {
	h := l.Hash(c)
	if h < 0 {
		return nil
	}
	return slices.Clone(l.spatial[h])
}

// Spawn adds a child at cell c made from items. A tile component is added
// when items carry none.
func (l *Level) Spawn(c Cell, items ...any) *grove.Object {
	p := l.Tile2Pos(c)
	o := l.obj.Engine().Make(grove.NewPos(p.X, p.Y))
	for _, it := range items {
		o.Use(it)
	}
	if !o.Has(CompTile) {
		o.Use(NewTile(TileOpt{}))
	}
	return l.obj.Add(o)
}

// Tiles returns the tiles registered with the level in insertion order.
func (l *Level) Tiles() []*Tile { return slices.Clone(l.tiles) }

// OnSpatialMapChanged registers fn for tiles moving between cells.
func (l *Level) OnSpatialMapChanged(fn func()) *grove.EventController {
	return l.obj.On(EventSpatialMapChanged, func(...any) { fn() })
}

// OnNavigationMapChanged registers fn for navigation map invalidations.
func (l *Level) OnNavigationMapChanged(fn func()) *grove.EventController {
	return l.obj.On(EventNavigationMapChanged, func(...any) { fn() })
}

// --- spatial map ---

func (l *Level) register(t *Tile) {
	l.tiles = append(l.tiles, t)
	t.cell = l.cellOf(t.obj)
	l.insert(t)
}

func (l *Level) unregister(t *Tile) {
	l.remove(t)
	if i := slices.Index(l.tiles, t); i >= 0 {
		l.tiles = slices.Delete(l.tiles, i, i+1)
	}
}

func (l *Level) insert(t *Tile) {
	if h := l.Hash(t.cell); h >= 0 {
		l.spatial[h] = append(l.spatial[h], t.obj)
	}
}

func (l *Level) remove(t *Tile) {
	h := l.Hash(t.cell)
	if h < 0 {
		return
	}
	occ := l.spatial[h]
	if i := slices.Index(occ, t.obj); i >= 0 {
		occ = slices.Delete(occ, i, i+1)
	}
	if len(occ) == 0 {
		delete(l.spatial, h)
	} else {
		l.spatial[h] = occ
	}
}

func (l *Level) move(t *Tile, c Cell) {
	l.remove(t)
	t.cell = c
	l.insert(t)
}

// Options configures AddLevel.
type Options struct {
	TileWidth, TileHeight float64
	// Pos places the level object.
	Pos grove.Vec2
	// Tiles maps map symbols to the items of the object spawned there.
	Tiles map[rune]TileFactory
	// Wildcard is called for symbols without a factory; nil items spawn
	// nothing.
	Wildcard func(sym rune, c Cell) []any
}

// TileFactory returns the components and tags of a tile spawned at c.
type TileFactory func(c Cell) []any

// AddLevel adds a level object under parent built from map rows: each rune
// is looked up in opt.Tiles and spawned at its cell. Spaces and unknown
// symbols without a wildcard stay empty.
func AddLevel(parent *grove.Object, rows []string, opt Options) *grove.Object {
	cols := 0
	for _, r := range rows {
		cols = max(cols, utf8.RuneCountInString(r))
	}
	tw, th := opt.TileWidth, opt.TileHeight
	if tw <= 0 {
		tw = 1
	}
	if th <= 0 {
		th = 1
	}
	l := New(cols, len(rows), tw, th)
	obj := parent.Engine().Make(grove.NewPos(opt.Pos.X, opt.Pos.Y), l, "level")
	l.obj = obj
	for row, line := range rows {
		col := 0
		for _, sym := range line {
			c := Cell{col, row}
			col++
			var items []any
			if f, ok := opt.Tiles[sym]; ok {
				items = f(c)
			} else if opt.Wildcard != nil {
				items = opt.Wildcard(sym, c)
			}
			if items != nil {
				l.Spawn(c, items...)
			}
		}
	}
	// Tiles register once the whole level goes live.
	return parent.Add(obj)
}
