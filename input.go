package grove

import (
	"slices"
	"strings"
)

// InputKind identifies a raw input event.
type InputKind uint8

const (
	KeyPress InputKind = iota
	KeyRelease
	MousePress
	MouseRelease
	MouseMove
	CharInput
	Scroll
	StickMove
)

// Input event names on the input registry.
const (
	eventKeyPress     = "keyPress"
	eventKeyRepeat    = "keyPressRepeat"
	eventKeyRelease   = "keyRelease"
	eventKeyDown      = "keyDown"
	eventMousePress   = "mousePress"
	eventMouseRelease = "mouseRelease"
	eventMouseDown    = "mouseDown"
	eventMouseMove    = "mouseMove"
	eventChar         = "charInput"
	eventScroll       = "scroll"
	eventButtonPress  = "buttonPress"
	eventButtonRel    = "buttonRelease"
	eventButtonDown   = "buttonDown"
)

// mouseKeyPrefix marks a mouse button inside a virtual button binding,
// e.g. "mouse:left".
const mouseKeyPrefix = "mouse:"

// InputEvent is one raw device event pushed by a host. Keys and mouse
// buttons are lower-case names ("space", "left", "a", "mouse" buttons
// "left", "right", "middle"); sticks are named by the host ("left",
// "right").
type InputEvent struct {
	Kind InputKind
	Key  string // key, mouse button or stick name
	Pos  Vec2   // mouse position (MouseMove, MousePress, MouseRelease), scroll delta, stick vector
	Char rune
}

// Input is the engine's input state: per-frame key and mouse snapshots,
// virtual buttons and raw event subscriptions. Hosts push events with Push;
// they are dispatched at the start of the next stepped frame, and one-shot
// pressed/released sets are reset at frame end.
type Input struct {
	e *Engine

	keysDown     map[string]bool
	keysPressed  map[string]bool
	keysReleased map[string]bool
	mouseDown    map[string]bool
	mousePressed map[string]bool
	mouseRel     map[string]bool

	mouse      Vec2
	mouseDelta Vec2
	scroll     Vec2
	sticks     map[string]Vec2

	buttons     map[string][]string
	btnDown     map[string]bool
	btnPressed  map[string]bool
	btnReleased map[string]bool

	queue       []InputEvent
	injectQueue []InputEvent

	events Registry
}

func newInput(e *Engine, buttons map[string][]string) *Input {
	in := &Input{
		e:            e,
		keysDown:     make(map[string]bool),
		keysPressed:  make(map[string]bool),
		keysReleased: make(map[string]bool),
		mouseDown:    make(map[string]bool),
		mousePressed: make(map[string]bool),
		mouseRel:     make(map[string]bool),
		sticks:       make(map[string]Vec2),
		buttons:      make(map[string][]string),
		btnDown:      make(map[string]bool),
		btnPressed:   make(map[string]bool),
		btnReleased:  make(map[string]bool),
	}
	for name, keys := range buttons {
		in.buttons[name] = slices.Clone(keys)
	}
	return in
}

// Push queues a raw event from the host. Every pushed event is dispatched
// on the next stepped frame.
func (in *Input) Push(ev InputEvent) { in.queue = append(in.queue, ev) }

// SetButtons replaces the keys bound to a virtual button. Keys prefixed
// with "mouse:" bind mouse buttons.
func (in *Input) SetButtons(name string, keys ...string) {
	in.buttons[name] = slices.Clone(keys)
}

// --- Synthetic input ---

// InjectKeyPress queues a synthetic key press. Injected events are
// consumed one per frame, after the host's events.
func (in *Input) InjectKeyPress(key string) {
	in.injectQueue = append(in.injectQueue, InputEvent{Kind: KeyPress, Key: key})
}

// InjectKeyRelease queues a synthetic key release.
func (in *Input) InjectKeyRelease(key string) {
	in.injectQueue = append(in.injectQueue, InputEvent{Kind: KeyRelease, Key: key})
}

// InjectKeyTap queues a press followed by a release. Consumes two frames.
func (in *Input) InjectKeyTap(key string) {
	in.InjectKeyPress(key)
	in.InjectKeyRelease(key)
}

// InjectChar queues a synthetic text input rune.
func (in *Input) InjectChar(r rune) {
	in.injectQueue = append(in.injectQueue, InputEvent{Kind: CharInput, Char: r})
}

// InjectClick queues a left mouse press and release at screen position p.
// Consumes two frames.
func (in *Input) InjectClick(p Vec2) {
	in.injectQueue = append(in.injectQueue,
		InputEvent{Kind: MousePress, Key: "left", Pos: p},
		InputEvent{Kind: MouseRelease, Key: "left", Pos: p},
	)
}

// InjectDrag queues a full drag sequence: press at from, linearly
// interpolated moves over frames-2 intermediate frames, and release at to.
// The total sequence consumes frames frames. Minimum frames is 2.
func (in *Input) InjectDrag(from, to Vec2, frames int) {
	if frames < 2 {
		frames = 2
	}
	in.injectQueue = append(in.injectQueue, InputEvent{Kind: MousePress, Key: "left", Pos: from})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		in.injectQueue = append(in.injectQueue, InputEvent{Kind: MouseMove, Pos: from.Lerp(to, t)})
	}
	in.injectQueue = append(in.injectQueue, InputEvent{Kind: MouseRelease, Key: "left", Pos: to})
}

// Pending returns the number of queued host and synthetic events.
func (in *Input) Pending() int { return len(in.queue) + len(in.injectQueue) }

func (in *Input) clearQueues() {
	in.queue = in.queue[:0]
	in.injectQueue = in.injectQueue[:0]
}

// dispatch applies queued host events, then at most one injected event.
func (in *Input) dispatch() {
	for len(in.queue) > 0 {
		ev := in.queue[0]
		in.queue = in.queue[1:]
		in.apply(ev)
	}
	in.queue = in.queue[:0]
	if len(in.injectQueue) > 0 {
		ev := in.injectQueue[0]
		copy(in.injectQueue, in.injectQueue[1:])
		in.injectQueue = in.injectQueue[:len(in.injectQueue)-1]
		in.apply(ev)
	}
}

func (in *Input) apply(ev InputEvent) {
	switch ev.Kind {
	case KeyPress:
		if in.keysDown[ev.Key] {
			in.events.Trigger(eventKeyRepeat, ev.Key)
			return
		}
		in.keysDown[ev.Key] = true
		in.keysPressed[ev.Key] = true
		in.events.Trigger(eventKeyPress, ev.Key)
		in.bindingChanged(ev.Key)
	case KeyRelease:
		if !in.keysDown[ev.Key] {
			return
		}
		delete(in.keysDown, ev.Key)
		in.keysReleased[ev.Key] = true
		in.events.Trigger(eventKeyRelease, ev.Key)
		in.bindingChanged(ev.Key)
	case MousePress:
		in.moveMouse(ev.Pos)
		if in.mouseDown[ev.Key] {
			return
		}
		in.mouseDown[ev.Key] = true
		in.mousePressed[ev.Key] = true
		in.events.Trigger(eventMousePress, ev.Key, in.mouse)
		in.bindingChanged(mouseKeyPrefix + ev.Key)
	case MouseRelease:
		in.moveMouse(ev.Pos)
		if !in.mouseDown[ev.Key] {
			return
		}
		delete(in.mouseDown, ev.Key)
		in.mouseRel[ev.Key] = true
		in.events.Trigger(eventMouseRelease, ev.Key, in.mouse)
		in.bindingChanged(mouseKeyPrefix + ev.Key)
	case MouseMove:
		in.moveMouse(ev.Pos)
	case CharInput:
		in.events.Trigger(eventChar, ev.Char)
	case Scroll:
		in.scroll = in.scroll.Add(ev.Pos)
		in.events.Trigger(eventScroll, ev.Pos)
	case StickMove:
		in.sticks[ev.Key] = ev.Pos
	}
}

func (in *Input) moveMouse(p Vec2) {
	if p == in.mouse {
		return
	}
	d := p.Sub(in.mouse)
	in.mouseDelta = in.mouseDelta.Add(d)
	in.mouse = p
	in.events.Trigger(eventMouseMove, p, d)
}

func (in *Input) bindingDown(binding string) bool {
	if m, ok := strings.CutPrefix(binding, mouseKeyPrefix); ok {
		return in.mouseDown[m]
	}
	return in.keysDown[binding]
}

// bindingChanged recomputes every virtual button bound to key.
func (in *Input) bindingChanged(key string) {
	for name, keys := range in.buttons {
		if !slices.Contains(keys, key) {
			continue
		}
		down := slices.ContainsFunc(keys, in.bindingDown)
		switch {
		case down && !in.btnDown[name]:
			in.btnDown[name] = true
			in.btnPressed[name] = true
			in.events.Trigger(eventButtonPress, name)
		case !down && in.btnDown[name]:
			delete(in.btnDown, name)
			in.btnReleased[name] = true
			in.events.Trigger(eventButtonRel, name)
		}
	}
}

// fireHeld fires the per-frame down events for held keys, mouse buttons
// and virtual buttons. Runs in the update phase.
func (in *Input) fireHeld() {
	for _, k := range sortedKeys(in.keysDown) {
		in.events.Trigger(eventKeyDown, k)
	}
	for _, m := range sortedKeys(in.mouseDown) {
		in.events.Trigger(eventMouseDown, m, in.mouse)
	}
	for _, b := range sortedKeys(in.btnDown) {
		in.events.Trigger(eventButtonDown, b)
	}
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// endFrame resets one-shot state.
func (in *Input) endFrame() {
	clear(in.keysPressed)
	clear(in.keysReleased)
	clear(in.mousePressed)
	clear(in.mouseRel)
	clear(in.btnPressed)
	clear(in.btnReleased)
	in.mouseDelta = Vec2{}
	in.scroll = Vec2{}
}

// --- Queries ---

// IsKeyDown reports whether key is held.
func (in *Input) IsKeyDown(key string) bool { return in.keysDown[key] }

// IsKeyPressed reports whether key went down this frame.
func (in *Input) IsKeyPressed(key string) bool { return in.keysPressed[key] }

// IsKeyReleased reports whether key went up this frame.
func (in *Input) IsKeyReleased(key string) bool { return in.keysReleased[key] }

// IsMouseDown reports whether mouse button btn is held.
func (in *Input) IsMouseDown(btn string) bool { return in.mouseDown[btn] }

// IsMousePressed reports whether mouse button btn went down this frame.
func (in *Input) IsMousePressed(btn string) bool { return in.mousePressed[btn] }

// IsMouseReleased reports whether mouse button btn went up this frame.
func (in *Input) IsMouseReleased(btn string) bool { return in.mouseRel[btn] }

// IsButtonDown reports whether any binding of virtual button name is held.
func (in *Input) IsButtonDown(name string) bool { return in.btnDown[name] }

// IsButtonPressed reports whether virtual button name went down this frame.
func (in *Input) IsButtonPressed(name string) bool { return in.btnPressed[name] }

// IsButtonReleased reports whether virtual button name went up this frame.
func (in *Input) IsButtonReleased(name string) bool { return in.btnReleased[name] }

// MousePos returns the mouse position in screen space.
func (in *Input) MousePos() Vec2 { return in.mouse }

// MouseWorldPos returns the mouse position through the camera.
func (in *Input) MouseWorldPos() Vec2 { return in.e.camera.ToWorld(in.mouse) }

// MouseDelta returns the mouse movement accumulated this frame.
func (in *Input) MouseDelta() Vec2 { return in.mouseDelta }

// ScrollDelta returns the scroll accumulated this frame.
func (in *Input) ScrollDelta() Vec2 { return in.scroll }

// Stick returns the last reported vector of a gamepad stick.
func (in *Input) Stick(name string) Vec2 { return in.sticks[name] }

// --- Engine subscriptions ---

func keyFilter(key string, fn func(string)) Handler {
	return func(args ...any) {
		k := args[0].(string)
		if key == "" || k == key {
			fn(k)
		}
	}
}

func mouseFilter(btn string, fn func(Vec2)) Handler {
	return func(args ...any) {
		if btn == "" || args[0].(string) == btn {
			fn(args[1].(Vec2))
		}
	}
}

// OnKeyPress registers fn for key going down. An empty key matches any key.
func (e *Engine) OnKeyPress(key string, fn func(key string)) *EventController {
	return e.track(e.input.events.On(eventKeyPress, keyFilter(key, fn)))
}

// OnKeyPressRepeat registers fn for key auto-repeat while held.
func (e *Engine) OnKeyPressRepeat(key string, fn func(key string)) *EventController {
	return e.track(e.input.events.On(eventKeyRepeat, keyFilter(key, fn)))
}

// OnKeyRelease registers fn for key going up.
func (e *Engine) OnKeyRelease(key string, fn func(key string)) *EventController {
	return e.track(e.input.events.On(eventKeyRelease, keyFilter(key, fn)))
}

// OnKeyDown registers fn to run every stepped frame while key is held.
func (e *Engine) OnKeyDown(key string, fn func(key string)) *EventController {
	return e.track(e.input.events.On(eventKeyDown, keyFilter(key, fn)))
}

// OnMousePress registers fn for mouse button btn going down.
func (e *Engine) OnMousePress(btn string, fn func(pos Vec2)) *EventController {
	return e.track(e.input.events.On(eventMousePress, mouseFilter(btn, fn)))
}

// OnMouseRelease registers fn for mouse button btn going up.
func (e *Engine) OnMouseRelease(btn string, fn func(pos Vec2)) *EventController {
	return e.track(e.input.events.On(eventMouseRelease, mouseFilter(btn, fn)))
}

// OnMouseDown registers fn to run every stepped frame while btn is held.
func (e *Engine) OnMouseDown(btn string, fn func(pos Vec2)) *EventController {
	return e.track(e.input.events.On(eventMouseDown, mouseFilter(btn, fn)))
}

// OnMouseMove registers fn for mouse movement.
func (e *Engine) OnMouseMove(fn func(pos, delta Vec2)) *EventController {
	return e.track(e.input.events.On(eventMouseMove, func(args ...any) {
		fn(args[0].(Vec2), args[1].(Vec2))
	}))
}

// OnCharInput registers fn for text input.
func (e *Engine) OnCharInput(fn func(r rune)) *EventController {
	return e.track(e.input.events.On(eventChar, func(args ...any) { fn(args[0].(rune)) }))
}

// OnScroll registers fn for scroll wheel movement.
func (e *Engine) OnScroll(fn func(delta Vec2)) *EventController {
	return e.track(e.input.events.On(eventScroll, func(args ...any) { fn(args[0].(Vec2)) }))
}

// OnButtonPress registers fn for virtual button name going down.
func (e *Engine) OnButtonPress(name string, fn func(name string)) *EventController {
	return e.track(e.input.events.On(eventButtonPress, keyFilter(name, fn)))
}

// OnButtonRelease registers fn for virtual button name going up.
func (e *Engine) OnButtonRelease(name string, fn func(name string)) *EventController {
	return e.track(e.input.events.On(eventButtonRel, keyFilter(name, fn)))
}

// OnButtonDown registers fn to run every stepped frame while name is held.
func (e *Engine) OnButtonDown(name string, fn func(name string)) *EventController {
	return e.track(e.input.events.On(eventButtonDown, keyFilter(name, fn)))
}

// --- Object forwarding ---

// forward wraps an engine input subscription so it is skipped while the
// object is paused and cancelled when the object is destroyed.
func (o *Object) forward(sub func(gate func() bool) *EventController) *EventController {
	return o.Own(sub(func() bool { return !o.pausedChain() }))
}

// OnKeyPress registers fn for key going down while the object exists.
func (o *Object) OnKeyPress(key string, fn func(key string)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnKeyPress(key, func(k string) {
			if gate() {
				fn(k)
			}
		})
	})
}

// OnKeyRelease registers fn for key going up while the object exists.
func (o *Object) OnKeyRelease(key string, fn func(key string)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnKeyRelease(key, func(k string) {
			if gate() {
				fn(k)
			}
		})
	})
}

// OnKeyDown registers fn for every frame key is held while the object exists.
func (o *Object) OnKeyDown(key string, fn func(key string)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnKeyDown(key, func(k string) {
			if gate() {
				fn(k)
			}
		})
	})
}

// OnMousePress registers fn for btn going down while the object exists.
func (o *Object) OnMousePress(btn string, fn func(pos Vec2)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnMousePress(btn, func(p Vec2) {
			if gate() {
				fn(p)
			}
		})
	})
}

// OnButtonPress registers fn for virtual button name going down while the
// object exists.
func (o *Object) OnButtonPress(name string, fn func(name string)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnButtonPress(name, func(n string) {
			if gate() {
				fn(n)
			}
		})
	})
}

// OnButtonRelease registers fn for virtual button name going up while the
// object exists.
func (o *Object) OnButtonRelease(name string, fn func(name string)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnButtonRelease(name, func(n string) {
			if gate() {
				fn(n)
			}
		})
	})
}

// OnButtonDown registers fn for every frame name is held while the object
// exists.
func (o *Object) OnButtonDown(name string, fn func(name string)) *EventController {
	return o.forward(func(gate func() bool) *EventController {
		return o.engine.OnButtonDown(name, func(n string) {
			if gate() {
				fn(n)
			}
		})
	})
}
