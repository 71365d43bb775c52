package level

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove"
)

func obstacle(Cell) []any { return []any{NewTile(TileOpt{Obstacle: true}), "wall"} }

func newLevel(t *testing.T, rows ...string) (*grove.Engine, *Level) {
	t.Helper()
	e, err := grove.NewEngine(grove.Config{})
	require.NoError(t, err)
	obj := AddLevel(e.Root(), rows, Options{
		TileWidth:  10,
		TileHeight: 10,
		Tiles: map[rune]TileFactory{
			'#': obstacle,
			'~': func(Cell) []any { return []any{NewTile(TileOpt{Cost: 100}), "swamp"} },
			'-': func(Cell) []any { return []any{NewTile(TileOpt{Edges: EdgeLeft | EdgeRight})} },
		},
	})
	l := LevelOf(obj)
	require.NotNil(t, l)
	return e, l
}

func TestAddLevel_Grid(t *testing.T) {
	_, l := newLevel(t,
		"#####",
		"#..",
		"#####",
	)
	assert.Equal(t, 5, l.NumCols())
	assert.Equal(t, 3, l.NumRows())
	assert.Equal(t, 50.0, l.Width())
	assert.Equal(t, 30.0, l.Height())
	assert.Len(t, l.Tiles(), 11)

	walls := l.GetAt(Cell{0, 1})
	require.Len(t, walls, 1)
	assert.True(t, walls[0].Is("wall"))
	assert.Equal(t, grove.V(0, 10), walls[0].Pos().Vec2)
	assert.Empty(t, l.GetAt(Cell{1, 1}))
	assert.Nil(t, l.GetAt(Cell{9, 9}))
}

func TestLevel_Mapping(t *testing.T) {
	_, l := newLevel(t, "...", "...")
	assert.Equal(t, 4, l.Hash(Cell{1, 1}))
	assert.Equal(t, -1, l.Hash(Cell{3, 0}))
	assert.Equal(t, -1, l.Hash(Cell{-1, 0}))
	assert.Equal(t, Cell{1, 1}, l.CellAt(4))
	assert.Equal(t, grove.V(20, 10), l.Tile2Pos(Cell{2, 1}))
	assert.Equal(t, Cell{2, 1}, l.Pos2Tile(grove.V(29.9, 10)))
	assert.Equal(t, Cell{-1, 0}, l.Pos2Tile(grove.V(-0.1, 0)))

	l.Object().Pos().MoveTo(grove.V(100, 50))
	assert.Equal(t, grove.V(115, 55), l.TileCenter(Cell{1, 0}))
	assert.Equal(t, Cell{1, 0}, l.WorldToTile(grove.V(115, 55)))
}

func TestLevel_DerivedMaps(t *testing.T) {
	_, l := newLevel(t,
		"..#..",
		"~-#..",
	)
	assert.Equal(t, 1.0, l.Cost(Cell{0, 0}))
	assert.Equal(t, 101.0, l.Cost(Cell{0, 1}))
	assert.True(t, math.IsInf(l.Cost(Cell{2, 0}), 1))
	assert.Equal(t, EdgeAll, l.EdgesAt(Cell{0, 0}))
	assert.Equal(t, EdgeLeft|EdgeRight, l.EdgesAt(Cell{1, 1}))
	assert.Equal(t, EdgeAll, l.EdgesAt(Cell{2, 1}), "obstacles keep their edges")

	assert.Equal(t, 2, l.NumGroups())
	assert.Equal(t, l.Group(Cell{0, 0}), l.Group(Cell{1, 1}))
	assert.NotEqual(t, l.Group(Cell{0, 0}), l.Group(Cell{3, 0}))
	assert.Equal(t, -1, l.Group(Cell{2, 0}))
}

func TestLevel_InvalidateOnTileChange(t *testing.T) {
	_, l := newLevel(t, ".....")
	tile := TileOf(l.Spawn(Cell{2, 0}))
	sum := l.NavChecksum()
	changes := 0
	l.OnNavigationMapChanged(func() { changes++ })

	tile.SetObstacle(false)
	assert.Zero(t, changes, "setting the same value is not a change")

	tile.SetObstacle(true)
	assert.Equal(t, 1, changes)
	assert.NotEqual(t, sum, l.NavChecksum())
	assert.Nil(t, l.GetTilePath(Cell{0, 0}, Cell{4, 0}, PathOpt{}))

	tile.SetObstacle(false)
	tile.SetCost(3)
	tile.SetEdges(EdgeAll)
	assert.Equal(t, 3, changes)
	assert.Equal(t, 4.0, l.Cost(Cell{2, 0}))

	tile.SetCost(0)
	assert.Equal(t, sum, l.NavChecksum(), "same map, same checksum")
}

func TestLevel_SpatialMapRoundTrip(t *testing.T) {
	_, l := newLevel(t, "...", "...")
	a := l.Spawn(Cell{1, 1}, "a")
	b := l.Spawn(Cell{1, 1}, "b")
	before := l.GetAt(Cell{1, 1})
	assert.Equal(t, []*grove.Object{a, b}, before)

	a.Destroy()
	assert.Equal(t, []*grove.Object{b}, l.GetAt(Cell{1, 1}))
	a2 := l.Spawn(Cell{1, 1}, "a")
	assert.ElementsMatch(t, []*grove.Object{a2, b}, l.GetAt(Cell{1, 1}))
	assert.Equal(t, Cell{1, 1}, TileOf(a2).TilePos())
}

func TestLevel_UpdateRehashesMovedTiles(t *testing.T) {
	e, l := newLevel(t, "...", "...")
	a := l.Spawn(Cell{0, 0})
	b := l.Spawn(Cell{1, 0})
	changed := 0
	l.OnSpatialMapChanged(func() { changed++ })

	a.Pos().MoveTo(grove.V(25, 15))
	b.Pos().MoveTo(grove.V(5, 15))
	e.Frame(e.FixedDT())
	assert.Equal(t, 1, changed, "one notification per update")
	assert.Equal(t, Cell{2, 1}, TileOf(a).TilePos())
	assert.Equal(t, []*grove.Object{a}, l.GetAt(Cell{2, 1}))
	assert.Equal(t, []*grove.Object{b}, l.GetAt(Cell{0, 1}))
	assert.Empty(t, l.GetAt(Cell{0, 0}))

	e.Frame(e.FixedDT())
	assert.Equal(t, 1, changed)
}

func TestLevel_MovingObstacleInvalidates(t *testing.T) {
	e, l := newLevel(t, "...", "...")
	rock := l.Spawn(Cell{1, 0}, NewTile(TileOpt{Obstacle: true}))
	assert.Equal(t, -1, l.Group(Cell{1, 0}))

	changes := 0
	l.OnNavigationMapChanged(func() { changes++ })
	rock.Pos().MoveTo(grove.V(10, 10))
	e.Frame(e.FixedDT())
	assert.Equal(t, 1, changes)
	assert.Equal(t, -1, l.Group(Cell{1, 1}))
	assert.NotEqual(t, -1, l.Group(Cell{1, 0}))
}

func TestTile_GridMovement(t *testing.T) {
	_, l := newLevel(t, "...", "...")
	o := l.Spawn(Cell{0, 0})
	tile := TileOf(o)
	changed := 0
	l.OnSpatialMapChanged(func() { changed++ })

	tile.MoveRight()
	tile.MoveDown()
	assert.Equal(t, Cell{1, 1}, tile.TilePos())
	assert.Equal(t, grove.V(10, 10), o.Pos().Vec2)
	assert.Equal(t, []*grove.Object{o}, l.GetAt(Cell{1, 1}))
	assert.Equal(t, 2, changed)

	tile.MoveLeft()
	tile.MoveUp()
	assert.Equal(t, Cell{0, 0}, tile.TilePos())
	tile.MoveTo(Cell{0, 0})
	assert.Equal(t, 4, changed)
}

func TestTile_OutsideLevelPanics(t *testing.T) {
	e, _ := newLevel(t, ".")
	var err error
	func() {
		defer func() { err, _ = recover().(error) }()
		e.Add(grove.NewPos(0, 0), NewTile(TileOpt{}))
	}()
	assert.ErrorIs(t, err, ErrNoLevel)
}

func TestEdge_Parse(t *testing.T) {
	e, err := ParseEdge("Top")
	require.NoError(t, err)
	assert.Equal(t, EdgeTop, e)
	_, err = ParseEdge("diagonal")
	assert.Error(t, err)
	assert.Equal(t, "left|right", (EdgeLeft | EdgeRight).String())
	assert.Equal(t, "none", EdgeNone.String())
}
