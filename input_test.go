package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputDispatchedNextFrame(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := e.Input()
	var pressed []string
	e.OnKeyPress("", func(k string) { pressed = append(pressed, k) })
	var duringUpdate bool
	e.OnUpdate("*", func(*Object) { duringUpdate = in.IsKeyPressed("space") })

	in.Push(InputEvent{Kind: KeyPress, Key: "space"})
	assert.False(t, in.IsKeyDown("space"))
	assert.Equal(t, 1, in.Pending())

	e.Frame(0.02)
	assert.Equal(t, []string{"space"}, pressed)
	assert.True(t, duringUpdate)
	assert.True(t, in.IsKeyDown("space"))
	assert.False(t, in.IsKeyPressed("space"), "one-shot state resets at frame end")
	assert.Zero(t, in.Pending())

	in.Push(InputEvent{Kind: KeyRelease, Key: "space"})
	e.Frame(0.02)
	assert.False(t, in.IsKeyDown("space"))
}

func TestInputKeyRepeatAndHeld(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := e.Input()
	presses, repeats, held := 0, 0, 0
	e.OnKeyPress("a", func(string) { presses++ })
	e.OnKeyPressRepeat("a", func(string) { repeats++ })
	e.OnKeyDown("a", func(string) { held++ })
	releases := 0
	e.OnKeyRelease("a", func(string) { releases++ })

	in.Push(InputEvent{Kind: KeyPress, Key: "a"})
	in.Push(InputEvent{Kind: KeyPress, Key: "a"})
	in.Push(InputEvent{Kind: KeyPress, Key: "b"})
	e.Frame(0.02)
	e.Frame(0.02)
	in.Push(InputEvent{Kind: KeyRelease, Key: "a"})
	in.Push(InputEvent{Kind: KeyRelease, Key: "a"})
	e.Frame(0.02)

	assert.Equal(t, 1, presses)
	assert.Equal(t, 1, repeats)
	assert.Equal(t, 2, held)
	assert.Equal(t, 1, releases)
}

func TestInputMouse(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := e.Input()
	var moves []Vec2
	e.OnMouseMove(func(p, d Vec2) { moves = append(moves, d) })
	var at Vec2
	e.OnMousePress("left", func(p Vec2) { at = p })
	released := 0
	e.OnMouseRelease("", func(Vec2) { released++ })
	var scrolled Vec2
	e.OnScroll(func(d Vec2) { scrolled = scrolled.Add(d) })

	in.Push(InputEvent{Kind: MouseMove, Pos: Vec2{10, 10}})
	in.Push(InputEvent{Kind: MousePress, Key: "left", Pos: Vec2{12, 10}})
	in.Push(InputEvent{Kind: Scroll, Pos: Vec2{0, -1}})
	e.Frame(0.02)
	assert.Equal(t, Vec2{12, 10}, at)
	assert.Equal(t, []Vec2{{10, 10}, {2, 0}}, moves)
	assert.True(t, in.IsMouseDown("left"))
	assert.Equal(t, Vec2{12, 10}, in.MousePos())
	assert.Equal(t, Vec2{}, in.MouseDelta(), "delta resets at frame end")
	assert.Equal(t, Vec2{0, -1}, scrolled)

	in.Push(InputEvent{Kind: MouseRelease, Key: "left", Pos: Vec2{12, 10}})
	e.Frame(0.02)
	assert.Equal(t, 1, released)
	assert.False(t, in.IsMouseDown("left"))
	assert.Equal(t, Vec2{12, 10}, in.MouseWorldPos(), "default camera maps screen to world 1:1")
}

func TestInputCharsAndSticks(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := e.Input()
	var text []rune
	e.OnCharInput(func(r rune) { text = append(text, r) })

	in.Push(InputEvent{Kind: CharInput, Char: 'h'})
	in.Push(InputEvent{Kind: CharInput, Char: 'i'})
	in.Push(InputEvent{Kind: StickMove, Key: "left", Pos: Vec2{0.5, -1}})
	e.Frame(0.02)

	assert.Equal(t, "hi", string(text))
	assert.Equal(t, Vec2{0.5, -1}, in.Stick("left"))
	assert.Equal(t, Vec2{}, in.Stick("right"))
}

func TestVirtualButtons(t *testing.T) {
	e := newTestEngine(t, Config{Buttons: map[string][]string{"jump": {"space", "mouse:left"}}})
	in := e.Input()
	var log []string
	e.OnButtonPress("jump", func(n string) { log = append(log, "press") })
	e.OnButtonRelease("jump", func(n string) { log = append(log, "release") })
	held := 0
	e.OnButtonDown("jump", func(string) { held++ })

	in.Push(InputEvent{Kind: KeyPress, Key: "space"})
	in.Push(InputEvent{Kind: MousePress, Key: "left"})
	e.Frame(0.02)
	assert.True(t, in.IsButtonDown("jump"))

	in.Push(InputEvent{Kind: KeyRelease, Key: "space"})
	e.Frame(0.02)
	assert.True(t, in.IsButtonDown("jump"), "still held by the mouse")

	in.Push(InputEvent{Kind: MouseRelease, Key: "left"})
	e.Frame(0.02)
	assert.False(t, in.IsButtonDown("jump"))
	assert.Equal(t, []string{"press", "release"}, log)
	assert.Equal(t, 2, held)

	in.SetButtons("jump", "w")
	in.Push(InputEvent{Kind: KeyPress, Key: "space"})
	in.Push(InputEvent{Kind: KeyPress, Key: "w"})
	e.Frame(0.02)
	assert.Equal(t, []string{"press", "release", "press"}, log)
}

func TestInjectedInputOnePerFrame(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := e.Input()
	var log []string
	e.OnKeyPress("", func(k string) { log = append(log, "press "+k) })
	e.OnKeyRelease("", func(k string) { log = append(log, "release "+k) })
	clicks := 0
	e.OnMouseRelease("left", func(Vec2) { clicks++ })

	in.InjectKeyTap("z")
	in.InjectClick(Vec2{3, 4})
	assert.Equal(t, 4, in.Pending())

	e.Frame(0.02)
	assert.Equal(t, []string{"press z"}, log)
	e.Frame(0.02)
	e.Frame(0.02)
	e.Frame(0.02)
	assert.Equal(t, []string{"press z", "release z"}, log)
	assert.Equal(t, 1, clicks)
	assert.Equal(t, Vec2{3, 4}, in.MousePos())
	assert.Zero(t, in.Pending())
}

func TestInjectDrag(t *testing.T) {
	e := newTestEngine(t, Config{})
	in := e.Input()
	in.InjectDrag(Vec2{0, 0}, Vec2{30, 0}, 4)
	var xs []float64
	e.OnMouseMove(func(p, _ Vec2) { xs = append(xs, p.X) })
	for range 4 {
		e.Frame(0.02)
	}
	assert.InDeltaSlice(t, []float64{10, 20, 30}, xs, 1e-9)
	assert.False(t, in.IsMouseDown("left"))
}

func TestSceneChangeDropsQueuedInput(t *testing.T) {
	e := newTestEngine(t, Config{})
	e.Scene("s", func(*Engine, ...any) {})
	pressed := 0
	e.OnKeyPress("", func(string) { pressed++ })
	e.Input().Push(InputEvent{Kind: KeyPress, Key: "q"})
	e.Go("s")
	e.Frame(0.02)
	assert.Zero(t, pressed)
}
