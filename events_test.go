package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOrder(t *testing.T) {
	var r Registry
	var got []int
	r.On("ev", func(...any) { got = append(got, 1) })
	r.On("ev", func(...any) { got = append(got, 2) })
	r.On("other", func(...any) { got = append(got, 9) })
	r.On("ev", func(args ...any) { got = append(got, args[0].(int)) })

	r.Trigger("ev", 3)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 3, r.Num("ev"))
	assert.Equal(t, 0, r.Num("missing"))
}

func TestRegistryCancelDuringTrigger(t *testing.T) {
	var r Registry
	var got []string
	var second *EventController
	r.On("ev", func(...any) {
		got = append(got, "a")
		second.Cancel()
	})
	second = r.On("ev", func(...any) { got = append(got, "b") })
	r.On("ev", func(...any) { got = append(got, "c") })

	r.Trigger("ev")
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, 2, r.Num("ev"))

	got = nil
	r.Trigger("ev")
	assert.Equal(t, []string{"a", "c"}, got)
}

func TestRegistryAddDuringTrigger(t *testing.T) {
	var r Registry
	calls := 0
	r.On("ev", func(...any) {
		r.On("ev", func(...any) { calls++ })
	})

	r.Trigger("ev")
	assert.Zero(t, calls, "listener added mid-trigger runs from the next trigger")
	r.Trigger("ev")
	assert.Equal(t, 1, calls)
}

func TestRegistryNestedTrigger(t *testing.T) {
	var r Registry
	depth := 0
	var order []string
	r.On("ev", func(...any) {
		order = append(order, "outer")
		if depth == 0 {
			depth++
			r.Trigger("ev")
		}
	})
	r.Trigger("ev")
	assert.Equal(t, []string{"outer", "outer"}, order)
}

func TestRegistryOnOnce(t *testing.T) {
	var r Registry
	calls := 0
	ctrl := r.OnOnce("ev", func(...any) {
		calls++
		r.Trigger("ev")
	})

	r.Trigger("ev")
	r.Trigger("ev")
	assert.Equal(t, 1, calls)
	assert.True(t, ctrl.Cancelled())
	assert.Zero(t, r.Num("ev"))
}

func TestRegistryClear(t *testing.T) {
	var r Registry
	calls := 0
	ctrl := r.On("ev", func(...any) { calls++ })
	r.Clear()
	r.Trigger("ev")

	assert.Zero(t, calls)
	assert.True(t, ctrl.Cancelled())
	assert.NotPanics(t, ctrl.Cancel)
}

func TestControllerPaused(t *testing.T) {
	var r Registry
	calls := 0
	ctrl := r.On("ev", func(...any) { calls++ })

	ctrl.Paused = true
	r.Trigger("ev")
	assert.Zero(t, calls)
	assert.Equal(t, 1, r.Num("ev"), "paused listeners stay registered")

	ctrl.Paused = false
	r.Trigger("ev")
	assert.Equal(t, 1, calls)
}

func TestControllerNilSafe(t *testing.T) {
	var c *EventController
	assert.NotPanics(t, c.Cancel)
	assert.False(t, c.Cancelled())
}

func TestJoinControllers(t *testing.T) {
	var r Registry
	var a, b int
	ca := r.On("a", func(...any) { a++ })
	cb := r.On("b", func(...any) { b++ })
	g := JoinControllers(ca, nil, cb)

	g.Paused = true
	r.Trigger("a")
	r.Trigger("b")
	assert.Zero(t, a+b)

	g.Paused = false
	r.Trigger("a")
	assert.Equal(t, 1, a)

	g.Cancel()
	assert.True(t, ca.Cancelled())
	assert.True(t, cb.Cancelled())
	r.Trigger("a")
	r.Trigger("b")
	assert.Equal(t, 1, a)
	assert.Zero(t, b)
}

func TestNewController(t *testing.T) {
	calls := 0
	c := NewController(func() { calls++ })
	c.Cancel()
	c.Cancel()
	require.True(t, c.Cancelled())
	assert.Equal(t, 1, calls)
}
