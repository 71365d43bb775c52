// Package level provides tile grids and grid pathfinding for grove.
//
// A [Level] component turns an object into a grid of cells numbered
// row*cols+col. Children carrying a [Tile] are tracked in a spatial map
// from cell to occupants. Tiles that are obstacles, carry a cost or restrict
// their traversable edges feed three derived maps: cost, edge mask and
// connectivity group. The maps are rebuilt lazily the first time a path is
// requested after a tile changed.
//
//	lvl := level.AddLevel(e.Root(), []string{
//		"#####",
//		"#@..#",
//		"#####",
//	}, level.Options{
//		TileWidth: 16, TileHeight: 16,
//		Tiles: map[rune]level.TileFactory{
//			'#': func(level.Cell) []any { return []any{level.NewTile(level.TileOpt{Obstacle: true})} },
//			'@': func(level.Cell) []any { return []any{level.NewAgent(60), "player"} },
//		},
//	})
//
// [Agent] and [Patrol] follow paths and replan when the navigation map
// changes under them.
package level
