package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove"
)

var (
	_ grove.AssetLoader = (*Loader)(nil)
	_ grove.AssetPoller = (*Loader)(nil)
)

func value(v any) LoadFunc {
	return func(context.Context) (any, error) { return v, nil }
}

func TestLoader_Empty(t *testing.T) {
	l := NewLoader(context.Background(), nil)
	assert.True(t, l.Loaded())
	assert.Equal(t, 1.0, l.Progress())
}

func TestLoader_PublishesOnPoll(t *testing.T) {
	l := NewLoader(context.Background(), nil)
	var got any
	h := l.Load("answer", value(42)).OnLoad(func(v any) { got = v })

	require.NoError(t, l.Wait())
	assert.False(t, h.Done(), "results wait for Poll")
	assert.False(t, l.Loaded())
	assert.Nil(t, got)

	l.Poll()
	assert.True(t, h.Done())
	assert.True(t, l.Loaded())
	assert.Equal(t, 42, got)
	v, ok := l.Get("answer")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestLoader_PartialProgress(t *testing.T) {
	l := NewLoader(context.Background(), nil)
	release := make(chan struct{})
	l.Load("fast", value("a"))
	l.Load("slow", func(context.Context) (any, error) {
		<-release
		return "b", nil
	})

	require.Eventually(t, func() bool {
		l.Poll()
		return l.Progress() == 0.5
	}, time.Second, time.Millisecond)
	assert.False(t, l.Loaded())

	close(release)
	require.NoError(t, l.Wait())
	l.Poll()
	assert.True(t, l.Loaded())
	assert.Equal(t, 1.0, l.Progress())
}

func TestLoader_Error(t *testing.T) {
	l := NewLoader(context.Background(), nil)
	boom := errors.New("boom")
	var loaded bool
	var got error
	l.Load("bad", func(context.Context) (any, error) { return nil, boom }).
		OnLoad(func(any) { loaded = true }).
		OnError(func(err error) { got = err })

	assert.ErrorIs(t, l.Wait(), boom)
	l.Poll()
	assert.False(t, loaded)
	assert.ErrorIs(t, got, boom)
	assert.ErrorContains(t, got, "load bad")
	assert.ErrorIs(t, l.Err(), boom)
	assert.True(t, l.Loaded(), "failed loads count as finished")
	_, ok := l.Get("bad")
	assert.False(t, ok)
}

func TestLoader_LateContinuation(t *testing.T) {
	l := NewLoader(context.Background(), nil)
	h := l.Load("x", value(1))
	require.NoError(t, l.Wait())
	l.Poll()

	calls := 0
	h.OnLoad(func(any) { calls++ })
	assert.Equal(t, 0, calls)
	l.Poll()
	assert.Equal(t, 1, calls)
	l.Poll()
	assert.Equal(t, 1, calls)
}

func TestLoader_Files(t *testing.T) {
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.txt")
	cfg := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(raw, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(cfg, []byte("width: 320\nheight: 240\n"), 0o644))

	l := NewLoader(context.Background(), nil)
	l.LoadFile("raw", raw)
	LoadYAML[grove.Config](l, "cfg", cfg)
	missing := l.LoadFile("missing", filepath.Join(dir, "nope"))

	assert.Error(t, l.Wait())
	l.Poll()
	v, _ := l.Get("raw")
	assert.Equal(t, []byte("hello"), v)
	c, _ := l.Get("cfg")
	require.IsType(t, &grove.Config{}, c)
	assert.Equal(t, 320, c.(*grove.Config).Width)
	assert.ErrorIs(t, missing.Err(), os.ErrNotExist)
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLoader(ctx, nil)
	l.LoadFile("raw", "whatever")
	assert.ErrorIs(t, l.Wait(), context.Canceled)
}

func TestLoader_EngineLoadingBranch(t *testing.T) {
	e, err := grove.NewEngine(grove.Config{})
	require.NoError(t, err)
	l := NewLoader(context.Background(), nil)
	e.SetAssetLoader(l)

	release := make(chan struct{})
	l.Load("level", func(context.Context) (any, error) {
		<-release
		return "ready", nil
	})

	var progress []float64
	e.OnLoading(func(p float64) { progress = append(progress, p) })
	var drawn float64 = -1
	e.OnDrawLoading(func(_ grove.Canvas, p float64) { drawn = p })
	updates := 0
	e.Add(grove.NewPos(0, 0), "thing")
	e.OnUpdate("thing", func(*grove.Object) { updates++ })

	e.Frame(e.FixedDT())
	e.Draw(&grove.Recorder{})
	assert.Equal(t, []float64{0}, progress)
	assert.Equal(t, 0.0, drawn)
	assert.Equal(t, 0, updates)
	assert.Zero(t, e.FixedSteps())

	var ready any
	e.OnUpdate("thing", func(*grove.Object) {
		if ready == nil {
			ready, _ = l.Get("level")
		}
	})
	close(release)
	require.NoError(t, l.Wait())
	e.Frame(e.FixedDT())
	assert.Len(t, progress, 1)
	assert.Equal(t, 1, updates)
	assert.Equal(t, "ready", ready)
}
