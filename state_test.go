package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine(t *testing.T) {
	e := newTestEngine(t, Config{})
	s := NewState("idle", "idle", "run", "jump")
	var log []string
	s.OnEnter("idle", func(...any) { log = append(log, "enter idle") })
	s.OnEnd("idle", func(...any) { log = append(log, "end idle") })
	s.OnEnter("run", func(args ...any) { log = append(log, "enter run", args[0].(string)) })
	runs := 0
	s.OnUpdate("run", func() { runs++ })

	e.Add(s, "hero")
	assert.Equal(t, []string{"enter idle"}, log)

	e.Frame(0.02)
	assert.Zero(t, runs)

	log = nil
	s.Enter("run", "fast")
	assert.Equal(t, []string{"end idle", "enter run", "fast"}, log)
	assert.True(t, s.Is("run"))
	e.Frame(0.02)
	assert.Equal(t, 1, runs)
	assert.Equal(t, "state: run", s.Inspect())
}

func TestStateGuards(t *testing.T) {
	e := newTestEngine(t, Config{})
	s := NewState("idle", "idle", "run", "jump")
	s.Transitions("idle", "run")
	e.Add(s)

	assert.Panics(t, func() { s.Enter("fly") })
	assert.Panics(t, func() { s.Enter("jump") })
	assert.True(t, s.Is("idle"))

	s.Enter("run")
	assert.NotPanics(t, func() { s.Enter("jump") }, "states without a transition list are unrestricted")
}

func TestStateObjectEvents(t *testing.T) {
	e := newTestEngine(t, Config{})
	var seen []string
	e.OnTag("hero", EventEnterState, func(_ *Object, args ...any) {
		seen = append(seen, "enter "+args[0].(string))
	})
	e.OnTag("hero", EventLeaveState, func(_ *Object, args ...any) {
		seen = append(seen, "leave "+args[0].(string))
	})
	s := NewState("a")
	e.Add(s, "hero")
	s.Enter("b")
	assert.Equal(t, []string{"leave a", "enter b"}, seen)
}

func TestHealth(t *testing.T) {
	e := newTestEngine(t, Config{})
	h := NewHealth(3, 5)
	o := e.Add(h)
	var hurts, heals []int
	deaths := 0
	o.On(EventHurt, func(args ...any) { hurts = append(hurts, args[0].(int)) })
	o.On(EventHeal, func(args ...any) { heals = append(heals, args[0].(int)) })
	o.On(EventDeath, func(...any) { deaths++ })

	h.Hurt(1)
	h.Heal(10)
	assert.Equal(t, 5, h.HP, "heal is capped at max")
	assert.Equal(t, "health: 5/5", h.Inspect())

	h.Hurt(5)
	h.Hurt(1)
	assert.Equal(t, 1, deaths, "death fires once per transition")
	assert.True(t, h.Dead())
	assert.Equal(t, []int{1, 5, 1}, hurts)
	assert.Equal(t, []int{10}, heals)

	h.SetHP(2)
	assert.False(t, h.Dead())
	h.Hurt(2)
	assert.Equal(t, 2, deaths)
}

func TestHealthUnbounded(t *testing.T) {
	h := NewHealth(1, 0)
	h.Heal(100)
	assert.Equal(t, 101, h.HP)
	assert.Equal(t, "health: 101", h.Inspect())

	require.NotPanics(t, func() { h.Hurt(200) }, "detached health does not fire events")
	assert.True(t, h.Dead())
}
