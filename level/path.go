package level

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/phanxgames/grove"
)

// ErrBrokenPath is raised when the predecessor chain of a reached goal does
// not lead back to the start.
var ErrBrokenPath = errors.New("grove/level: broken path")

// PathOpt configures path searches.
type PathOpt struct {
	// AllowDiagonals adds the four diagonal neighbors. A diagonal step is
	// only taken when both orthogonal steps around the corner are open.
	AllowDiagonals bool
}

type frontierItem struct {
	hash int
	cost float64
}

// frontier is a binary min-heap on cost. Equal costs pop in heap order.
type frontier []frontierItem

func (f frontier) Len() int           { return len(f) }
func (f frontier) Less(i, j int) bool { return f[i].cost < f[j].cost }
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(frontierItem)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}

// GetTilePath returns the cells from from to to, both included. It returns
// an empty path when from equals to, and nil when either cell is off the
// grid, the goal is impassable or no route exists.
//
// The search expands the cheapest frontier cell first. Entering a
// neighbor costs the neighbor's cell cost plus the Euclidean distance from
// the neighbor to the goal.
func (l *Level) GetTilePath(from, to Cell, opt PathOpt) []Cell {
	l.expanded = 0
	l.ensureNav()
	start, goal := l.Hash(from), l.Hash(to)
	if start < 0 || goal < 0 || !l.walkable(goal) {
		return nil
	}
	if start == goal {
		return []Cell{}
	}
	if sg := l.nav.group[start]; sg != -1 && sg != l.nav.group[goal] {
		return nil
	}

	size := l.cols * l.rows
	came := make([]int, size)
	costSoFar := make([]float64, size)
	for i := range came {
		came[i] = -1
		costSoFar[i] = math.Inf(1)
	}
	costSoFar[start] = 0

	dirs := orthogonal
	if opt.AllowDiagonals {
		dirs = slices.Concat(orthogonal, diagonals)
	}
	f := &frontier{{hash: start}}
	reached := false
	for f.Len() > 0 {
		cur := heap.Pop(f).(frontierItem)
		l.expanded++
		if cur.hash == goal {
			reached = true
			break
		}
		if cur.cost > costSoFar[cur.hash] {
			continue
		}
		c := l.CellAt(cur.hash)
		for _, d := range dirs {
			nc := c.Add(d.dc, d.dr)
			next := l.Hash(nc)
			if next < 0 {
				continue
			}
			if d.diagonal {
				if !l.canStepDiagonal(c, d) {
					continue
				}
			} else if !l.canStep(cur.hash, next, d) {
				continue
			}
			nc2 := costSoFar[cur.hash] + l.nav.cost[next] + heuristic(nc, to)
			if nc2 < costSoFar[next] {
				costSoFar[next] = nc2
				came[next] = cur.hash
				heap.Push(f, frontierItem{hash: next, cost: nc2})
			}
		}
	}
	if !reached {
		return nil
	}

	path := []Cell{to}
	for cur := goal; cur != start; {
		prev := came[cur]
		if prev < 0 {
			panic(fmt.Errorf("%w: no predecessor for %s", ErrBrokenPath, l.CellAt(cur)))
		}
		path = append(path, l.CellAt(prev))
		cur = prev
	}
	slices.Reverse(path)
	return path
}

func heuristic(a, b Cell) float64 {
	return math.Hypot(float64(a.Col-b.Col), float64(a.Row-b.Row))
}

// GetPath returns world-space waypoints from from to to: the centers of the
// cells of GetTilePath with the first and last replaced by the exact
// endpoints. It returns an empty path when both points share a cell and
// nil when no path exists.
func (l *Level) GetPath(from, to grove.Vec2, opt PathOpt) []grove.Vec2 {
	cells := l.GetTilePath(l.WorldToTile(from), l.WorldToTile(to), opt)
	if cells == nil {
		return nil
	}
	out := make([]grove.Vec2, len(cells))
	for i, c := range cells {
		out[i] = l.TileCenter(c)
	}
	if n := len(out); n > 0 {
		out[0] = from
		out[n-1] = to
	}
	return out
}
