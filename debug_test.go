package grove

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedEngine(t *testing.T, cfg Config) (*Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	e := newTestEngine(t, cfg)
	e.SetLogger(zap.New(core))
	return e, logs
}

func TestDebugDestroyedObjectPanics(t *testing.T) {
	e := newTestEngine(t, Config{Debug: true})
	parent := e.Add()
	child := e.Make()
	child.Destroy()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.Contains(t, fmt.Sprint(r), "destroyed object")
	}()
	parent.Add(child)
}

func TestDebugFrameStats(t *testing.T) {
	e, logs := newObservedEngine(t, Config{Debug: true})
	e.Frame(0.04)

	entries := logs.FilterMessage("frame").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 1, fields["frame"])
	assert.EqualValues(t, 2, fields["fixed_steps"])
}

func TestDebugDisabledIsQuiet(t *testing.T) {
	e, logs := newObservedEngine(t, Config{})
	e.Frame(0.04)
	assert.Zero(t, logs.FilterMessage("frame").Len())
}

func TestDebugChildCountWarning(t *testing.T) {
	e, logs := newObservedEngine(t, Config{Debug: true})
	for range debugMaxChildCount + 1 {
		e.Add()
	}
	assert.Equal(t, 1, logs.FilterMessage("child count exceeds threshold").Len())
}

func TestFrameErrorIsLogged(t *testing.T) {
	e, logs := newObservedEngine(t, Config{})
	e.Add(&Comp{OnFixedUpdate: func(*Object) { panic("kaboom") }})
	e.Frame(0.02)

	entries := logs.FilterMessage("frame error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, EventFixedUpdate, entries[0].ContextMap()["phase"])
}

func TestSceneEnterIsLogged(t *testing.T) {
	e, logs := newObservedEngine(t, Config{})
	e.Scene("intro", func(*Engine, ...any) {})
	e.Go("intro")
	e.Frame(0.02)

	entries := logs.FilterMessage("scene enter").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "intro", entries[0].ContextMap()["scene"])
	assert.Equal(t, e.RunID(), entries[0].ContextMap()["run"])
}
