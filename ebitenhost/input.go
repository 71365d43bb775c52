package ebitenhost

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/grove"
)

// device is the slice of ebiten's input API the host polls.
type device interface {
	justPressedKeys(buf []ebiten.Key) []ebiten.Key
	justReleasedKeys(buf []ebiten.Key) []ebiten.Key
	cursor() grove.Vec2
	mouseJustPressed(b ebiten.MouseButton) bool
	mouseJustReleased(b ebiten.MouseButton) bool
	wheel() grove.Vec2
	chars(buf []rune) []rune
	sticks() map[string]grove.Vec2
	focused() bool
}

type ebitenDevice struct {
	pads []ebiten.GamepadID
}

func (ebitenDevice) justPressedKeys(buf []ebiten.Key) []ebiten.Key {
	return inpututil.AppendJustPressedKeys(buf)
}

func (ebitenDevice) justReleasedKeys(buf []ebiten.Key) []ebiten.Key {
	return inpututil.AppendJustReleasedKeys(buf)
}

func (ebitenDevice) cursor() grove.Vec2 {
	x, y := ebiten.CursorPosition()
	return grove.V(float64(x), float64(y))
}

func (ebitenDevice) mouseJustPressed(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(b)
}

func (ebitenDevice) mouseJustReleased(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustReleased(b)
}

func (ebitenDevice) wheel() grove.Vec2 {
	x, y := ebiten.Wheel()
	return grove.V(x, y)
}

func (ebitenDevice) chars(buf []rune) []rune { return ebiten.AppendInputChars(buf) }

// sticks reads the first standard-layout gamepad.
func (d *ebitenDevice) sticks() map[string]grove.Vec2 {
	d.pads = ebiten.AppendGamepadIDs(d.pads[:0])
	for _, id := range d.pads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		return map[string]grove.Vec2{
			"left": grove.V(
				ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
				ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical),
			),
			"right": grove.V(
				ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal),
				ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical),
			),
		}
	}
	return nil
}

func (ebitenDevice) focused() bool { return ebiten.IsFocused() }

var mouseButtons = []struct {
	button ebiten.MouseButton
	name   string
}{
	{ebiten.MouseButtonLeft, "left"},
	{ebiten.MouseButtonRight, "right"},
	{ebiten.MouseButtonMiddle, "middle"},
}

// The virtual either-side modifier keys map to "" and are skipped; the
// sided keys already report them.
var keyNames = map[ebiten.Key]string{
	ebiten.KeyShift:        "",
	ebiten.KeyControl:      "",
	ebiten.KeyAlt:          "",
	ebiten.KeyMeta:         "",
	ebiten.KeyArrowLeft:    "left",
	ebiten.KeyArrowRight:   "right",
	ebiten.KeyArrowUp:      "up",
	ebiten.KeyArrowDown:    "down",
	ebiten.KeyShiftLeft:    "shift",
	ebiten.KeyShiftRight:   "shift",
	ebiten.KeyControlLeft:  "control",
	ebiten.KeyControlRight: "control",
	ebiten.KeyAltLeft:      "alt",
	ebiten.KeyAltRight:     "alt",
	ebiten.KeyMetaLeft:     "meta",
	ebiten.KeyMetaRight:    "meta",
}

// keyName maps an ebiten key to the engine's lower-case key name.
func keyName(k ebiten.Key) string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	s := k.String()
	if rest, ok := strings.CutPrefix(s, "Digit"); ok {
		return rest
	}
	return strings.ToLower(s)
}

// poller turns device state into engine input events.
type poller struct {
	dev   device
	keys  []ebiten.Key
	runes []rune
	mouse grove.Vec2
	stick map[string]grove.Vec2
	init  bool
}

func (p *poller) poll(in *grove.Input) {
	p.keys = p.dev.justPressedKeys(p.keys[:0])
	for _, k := range p.keys {
		if n := keyName(k); n != "" {
			in.Push(grove.InputEvent{Kind: grove.KeyPress, Key: n})
		}
	}
	p.keys = p.dev.justReleasedKeys(p.keys[:0])
	for _, k := range p.keys {
		if n := keyName(k); n != "" {
			in.Push(grove.InputEvent{Kind: grove.KeyRelease, Key: n})
		}
	}

	m := p.dev.cursor()
	if !p.init || m != p.mouse {
		p.init = true
		p.mouse = m
		in.Push(grove.InputEvent{Kind: grove.MouseMove, Pos: m})
	}
	for _, b := range mouseButtons {
		if p.dev.mouseJustPressed(b.button) {
			in.Push(grove.InputEvent{Kind: grove.MousePress, Key: b.name, Pos: m})
		}
		if p.dev.mouseJustReleased(b.button) {
			in.Push(grove.InputEvent{Kind: grove.MouseRelease, Key: b.name, Pos: m})
		}
	}
	if w := p.dev.wheel(); !w.IsZero() {
		in.Push(grove.InputEvent{Kind: grove.Scroll, Pos: w})
	}

	p.runes = p.dev.chars(p.runes[:0])
	for _, r := range p.runes {
		in.Push(grove.InputEvent{Kind: grove.CharInput, Char: r})
	}

	sticks := p.dev.sticks()
	for name, v := range sticks {
		if p.stick[name] != v {
			in.Push(grove.InputEvent{Kind: grove.StickMove, Key: name, Pos: v})
		}
	}
	p.stick = sticks
}
