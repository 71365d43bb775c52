package grove

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config holds engine configuration. Zero fields are filled from
// DefaultConfig by Validate.
type Config struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// FixedDT is the fixed step in seconds (default 1/50).
	FixedDT float64 `yaml:"fixed_dt"`
	// MaxDT clamps the variable delta to avoid catch-up spikes (default 0.25).
	MaxDT float64 `yaml:"max_dt"`
	// MaxFPS caps stepping; frames arriving faster are accumulated. 0 = uncapped.
	MaxFPS float64 `yaml:"max_fps"`

	// Layers lists draw layers from back to front.
	Layers       []string `yaml:"layers"`
	DefaultLayer string   `yaml:"default_layer"`

	Gravity    Vec2   `yaml:"gravity"`
	Background Color  `yaml:"background"`
	Debug      bool   `yaml:"debug"`
	LogLevel   string `yaml:"log_level"`

	// Buttons maps virtual button names to the keys or mouse buttons that
	// drive them, e.g. jump: [space, up, mouse:left].
	Buttons map[string][]string `yaml:"buttons"`
}

// DefaultConfig returns the configuration used for zero fields.
func DefaultConfig() Config {
	return Config{
		Title:    "grove",
		Width:    640,
		Height:   480,
		FixedDT:  1.0 / 50,
		MaxDT:    0.25,
		LogLevel: "info",
	}
}

// Validate fills defaults and checks field ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.FixedDT == 0 {
		c.FixedDT = d.FixedDT
	}
	if c.MaxDT == 0 {
		c.MaxDT = d.MaxDT
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	var errs []error
	if c.FixedDT < 0 {
		errs = append(errs, fmt.Errorf("fixed_dt must be positive, got %v", c.FixedDT))
	}
	if c.MaxDT < 0 {
		errs = append(errs, fmt.Errorf("max_dt must be positive, got %v", c.MaxDT))
	}
	if c.MaxFPS < 0 {
		errs = append(errs, fmt.Errorf("max_fps must not be negative, got %v", c.MaxFPS))
	}
	if c.Width < 0 || c.Height < 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", c.Width, c.Height))
	}
	if len(c.Layers) > 0 && c.DefaultLayer != "" && !slices.Contains(c.Layers, c.DefaultLayer) {
		errs = append(errs, fmt.Errorf("default_layer %q is not in layers", c.DefaultLayer))
	}
	if len(c.Layers) == 0 && c.DefaultLayer != "" {
		errs = append(errs, fmt.Errorf("default_layer %q set without layers", c.DefaultLayer))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("grove config: %w", err)
	}
	return nil
}

// ParseConfig decodes YAML configuration and validates it.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// UnmarshalYAML accepts vectors as [x, y] sequences or {x, y} mappings.
func (v *Vec2) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var xy []float64
		if err := node.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("vec2: want 2 elements, got %d", len(xy))
		}
		v.X, v.Y = xy[0], xy[1]
		return nil
	}
	var m struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	v.X, v.Y = m.X, m.Y
	return nil
}

// UnmarshalYAML accepts colors as [r, g, b] / [r, g, b, a] sequences or
// {r, g, b, a} mappings. Alpha defaults to 1.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var v []float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		if len(v) != 3 && len(v) != 4 {
			return fmt.Errorf("color: want 3 or 4 elements, got %d", len(v))
		}
		c.R, c.G, c.B, c.A = v[0], v[1], v[2], 1
		if len(v) == 4 {
			c.A = v[3]
		}
		return nil
	}
	m := struct {
		R float64  `yaml:"r"`
		G float64  `yaml:"g"`
		B float64  `yaml:"b"`
		A *float64 `yaml:"a"`
	}{}
	if err := node.Decode(&m); err != nil {
		return err
	}
	c.R, c.G, c.B, c.A = m.R, m.G, m.B, 1
	if m.A != nil {
		c.A = *m.A
	}
	return nil
}
