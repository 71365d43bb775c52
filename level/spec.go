package level

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/physics"
)

// Spec is a level definition loaded from YAML:
//
//	tile_width: 16
//	tile_height: 16
//	map:
//	  - "#####"
//	  - "#.~.#"
//	  - "#####"
//	tiles:
//	  "#": {tags: [wall], obstacle: true, solid: true, color: [0.3, 0.3, 0.3]}
//	  "~": {tags: [water], cost: 4}
//	  ".": {edges: [left, right]}
type Spec struct {
	TileWidth  float64             `yaml:"tile_width"`
	TileHeight float64             `yaml:"tile_height"`
	Map        []string            `yaml:"map"`
	Tiles      map[string]TileSpec `yaml:"tiles"`
}

// TileSpec describes one map symbol.
type TileSpec struct {
	Tags     []string `yaml:"tags"`
	Obstacle bool     `yaml:"obstacle"`
	Cost     float64  `yaml:"cost"`
	Edges    []string `yaml:"edges"`

	// Solid gives the tile an area and a static body.
	Solid bool         `yaml:"solid"`
	Color *grove.Color `yaml:"color"`
}

// ParseSpec decodes and validates a YAML level definition.
func ParseSpec(data []byte) (*Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSpec reads and parses a YAML level file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load level: %w", err)
	}
	return ParseSpec(data)
}

// Validate checks tile sizes, symbols and edge names.
func (s *Spec) Validate() error {
	var errs []error
	if s.TileWidth <= 0 || s.TileHeight <= 0 {
		errs = append(errs, fmt.Errorf("tile size must be positive, got %vx%v", s.TileWidth, s.TileHeight))
	}
	if len(s.Map) == 0 {
		errs = append(errs, errors.New("map is empty"))
	}
	syms := make([]string, 0, len(s.Tiles))
	for sym := range s.Tiles {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	for _, sym := range syms {
		if utf8.RuneCountInString(sym) != 1 {
			errs = append(errs, fmt.Errorf("tile symbol %q must be a single character", sym))
		}
		ts := s.Tiles[sym]
		if _, err := ts.edges(); err != nil {
			errs = append(errs, fmt.Errorf("tile %q: %w", sym, err))
		}
		if ts.Cost < 0 {
			errs = append(errs, fmt.Errorf("tile %q: cost must not be negative", sym))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("grove level: %w", err)
	}
	return nil
}

func (ts TileSpec) edges() (Edge, error) {
	if len(ts.Edges) == 0 {
		return EdgeAll, nil
	}
	var e Edge
	for _, name := range ts.Edges {
		v, err := ParseEdge(name)
		if err != nil {
			return EdgeNone, err
		}
		e |= v
	}
	return e, nil
}

// Options returns AddLevel options spawning the legend's tiles.
func (s *Spec) Options() Options {
	opt := Options{
		TileWidth:  s.TileWidth,
		TileHeight: s.TileHeight,
		Tiles:      make(map[rune]TileFactory, len(s.Tiles)),
	}
	for sym, ts := range s.Tiles {
		r, _ := utf8.DecodeRuneInString(sym)
		opt.Tiles[r] = s.factory(ts)
	}
	return opt
}

func (s *Spec) factory(ts TileSpec) TileFactory {
	edges, _ := ts.edges()
	return func(Cell) []any {
		items := []any{NewTile(TileOpt{Obstacle: ts.Obstacle, Cost: ts.Cost, Edges: edges})}
		for _, t := range ts.Tags {
			items = append(items, t)
		}
		if ts.Color != nil || ts.Solid {
			rect := &grove.Rectangle{Width: s.TileWidth, Height: s.TileHeight}
			if ts.Color != nil {
				rect.Color = *ts.Color
			} else {
				rect.Outline = true
			}
			items = append(items, rect)
		}
		if ts.Solid {
			items = append(items, &physics.Area{}, physics.NewStaticBody())
		}
		return items
	}
}

// Build adds the level under parent. Extra factories override or extend
// the legend.
func (s *Spec) Build(parent *grove.Object, extra map[rune]TileFactory) *grove.Object {
	opt := s.Options()
	for r, f := range extra {
		opt.Tiles[r] = f
	}
	return AddLevel(parent, s.Map, opt)
}
