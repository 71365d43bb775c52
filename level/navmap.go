package level

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// navMap holds the maps derived from the spatial map. A nil cost slice
// means the maps are invalid.
type navMap struct {
	cost     []float64
	edges    []Edge
	group    []int
	groups   int
	checksum uint64
}

func (n *navMap) valid() bool { return n.cost != nil }

// Invalidate drops the derived maps and fires navigationMapChanged. They
// are rebuilt on the next query.
func (l *Level) Invalidate() {
	l.nav = navMap{}
	if l.obj != nil {
		l.obj.Trigger(EventNavigationMapChanged)
	}
}

func (l *Level) ensureNav() {
	if !l.nav.valid() {
		l.buildNav()
	}
}

func (l *Level) buildNav() {
	size := l.cols * l.rows
	n := navMap{
		cost:  make([]float64, size),
		edges: make([]Edge, size),
		group: make([]int, size),
	}
	for h := range size {
		cost, edges := 1.0, EdgeAll
		for _, o := range l.spatial[h] {
			t := TileOf(o)
			if t == nil {
				continue
			}
			if t.obstacle {
				cost = math.Inf(1)
			} else {
				cost += t.cost
			}
			edges &= t.edges
		}
		n.cost[h] = cost
		n.edges[h] = edges
	}
	l.nav = n
	l.buildConnectivity()
	l.nav.checksum = l.nav.sum()
	if l.obj != nil {
		l.obj.Engine().Logger().Debug("navigation map rebuilt",
			zap.Int("cells", size), zap.Int("groups", l.nav.groups))
	}
}

// buildConnectivity flood fills walkable cells through traversable edges.
// Impassable cells keep group -1.
func (l *Level) buildConnectivity() {
	g := l.nav.group
	for i := range g {
		g[i] = -1
	}
	id := 0
	queue := make([]int, 0, 64)
	for start := range g {
		if g[start] >= 0 || math.IsInf(l.nav.cost[start], 1) {
			continue
		}
		queue = append(queue[:0], start)
		g[start] = id
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			c := l.CellAt(cur)
			for _, d := range orthogonal {
				next := c.Add(d.dc, d.dr)
				nh := l.Hash(next)
				if nh < 0 || g[nh] >= 0 || !l.canStep(cur, nh, d) {
					continue
				}
				g[nh] = id
				queue = append(queue, nh)
			}
		}
		id++
	}
	l.nav.groups = id
}

func (n *navMap) sum() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 9*len(n.cost))
	for i, c := range n.cost {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
		buf = append(buf, byte(n.edges[i]))
	}
	_, _ = d.Write(buf)
	return d.Sum64()
}

type dir struct {
	dc, dr   int
	out, in  Edge
	diagonal bool
}

var orthogonal = []dir{
	{dc: -1, out: EdgeLeft, in: EdgeRight},
	{dr: -1, out: EdgeTop, in: EdgeBottom},
	{dc: 1, out: EdgeRight, in: EdgeLeft},
	{dr: 1, out: EdgeBottom, in: EdgeTop},
}

var diagonals = []dir{
	{dc: -1, dr: -1, diagonal: true},
	{dc: 1, dr: -1, diagonal: true},
	{dc: 1, dr: 1, diagonal: true},
	{dc: -1, dr: 1, diagonal: true},
}

func (l *Level) walkable(h int) bool { return !math.IsInf(l.nav.cost[h], 1) }

// canStep reports whether an orthogonal move from cell a to its neighbor b
// crosses edges open on both sides. Only b has to be walkable: an obstacle
// keeps its edge mask, so a search starting on one can still leave it.
func (l *Level) canStep(a, b int, d dir) bool {
	return l.walkable(b) && l.nav.edges[a].Has(d.out) && l.nav.edges[b].Has(d.in)
}

// canStepDiagonal allows a diagonal move only when both orthogonal routes
// around the corner are open, so diagonals never connect cells that are
// not 4-connected.
func (l *Level) canStepDiagonal(a Cell, d dir) bool {
	h, v := orthogonalOf(d.dc, 0), orthogonalOf(0, d.dr)
	ha, hc := l.Hash(a), l.Hash(a.Add(d.dc, 0))
	va, vc := ha, l.Hash(a.Add(0, d.dr))
	dest := l.Hash(a.Add(d.dc, d.dr))
	if hc < 0 || vc < 0 || dest < 0 {
		return false
	}
	return l.canStep(ha, hc, h) && l.canStep(hc, dest, v) &&
		l.canStep(va, vc, v) && l.canStep(vc, dest, h)
}

func orthogonalOf(dc, dr int) dir {
	for _, d := range orthogonal {
		if d.dc == dc && d.dr == dr {
			return d
		}
	}
	panic("grove/level: not an orthogonal direction")
}

// Cost returns the traversal cost of c; +Inf for impassable or off-grid
// cells.
func (l *Level) Cost(c Cell) float64 {
	h := l.Hash(c)
	if h < 0 {
		return math.Inf(1)
	}
	l.ensureNav()
	return l.nav.cost[h]
}

// EdgesAt returns the traversable sides of c. Obstacles are excluded
// through Cost, not through their edges.
func (l *Level) EdgesAt(c Cell) Edge {
	h := l.Hash(c)
	if h < 0 {
		return EdgeNone
	}
	l.ensureNav()
	return l.nav.edges[h]
}

// Group returns the connectivity group of c, or -1.
func (l *Level) Group(c Cell) int {
	h := l.Hash(c)
	if h < 0 {
		return -1
	}
	l.ensureNav()
	return l.nav.group[h]
}

// NumGroups returns the number of connectivity groups.
func (l *Level) NumGroups() int {
	l.ensureNav()
	return l.nav.groups
}

// NavChecksum returns a hash of the cost and edge maps. Followers compare
// it to skip replans when a rebuild produced an identical map.
func (l *Level) NavChecksum() uint64 {
	l.ensureNav()
	return l.nav.checksum
}
