package grove

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
title: demo
width: 320
height: 200
fixed_dt: 0.01
max_fps: 60
layers: [bg, game]
default_layer: game
gravity: [0, 980]
background: {r: 0.5, g: 0.25, b: 1}
buttons:
  jump: [space, mouse:left]
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 0.01, cfg.FixedDT)
	assert.Equal(t, 0.25, cfg.MaxDT, "zero fields take defaults")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, Vec2{0, 980}, cfg.Gravity)
	assert.Equal(t, Color{0.5, 0.25, 1, 1}, cfg.Background)
	assert.Equal(t, []string{"space", "mouse:left"}, cfg.Buttons["jump"])
}

func TestParseConfigVariants(t *testing.T) {
	cfg, err := ParseConfig([]byte("gravity: {x: 1, y: 2}\nbackground: [1, 0, 0, 0.5]\n"))
	require.NoError(t, err)
	assert.Equal(t, Vec2{1, 2}, cfg.Gravity)
	assert.Equal(t, Color{1, 0, 0, 0.5}, cfg.Background)

	_, err = ParseConfig([]byte("gravity: [1, 2, 3]\n"))
	assert.ErrorContains(t, err, "want 2 elements")

	_, err = ParseConfig([]byte("background: [1]\n"))
	assert.ErrorContains(t, err, "want 3 or 4 elements")

	_, err = ParseConfig([]byte("width: [\n"))
	assert.ErrorContains(t, err, "parse config")
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
		want string
	}{
		{"negative fixed dt", Config{FixedDT: -1}, "fixed_dt"},
		{"negative max dt", Config{MaxDT: -1}, "max_dt"},
		{"negative fps", Config{MaxFPS: -1}, "max_fps"},
		{"negative size", Config{Width: -1}, "invalid size"},
		{"unknown default layer", Config{Layers: []string{"a"}, DefaultLayer: "b"}, `"b" is not in layers`},
		{"default layer without layers", Config{DefaultLayer: "b"}, "without layers"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)

			_, err = NewEngine(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestConfigValidateJoinsErrors(t *testing.T) {
	c := Config{FixedDT: -1, MaxFPS: -1}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixed_dt")
	assert.Contains(t, err.Error(), "max_fps")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: from file\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from file", cfg.Title)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger("loud", false)
	assert.ErrorContains(t, err, "log level")
}
