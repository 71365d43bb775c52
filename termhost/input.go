package termhost

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/grove"
)

var keyNames = map[tcell.Key]string{
	tcell.KeyLeft:       "left",
	tcell.KeyRight:      "right",
	tcell.KeyUp:         "up",
	tcell.KeyDown:       "down",
	tcell.KeyEnter:      "enter",
	tcell.KeyEscape:     "escape",
	tcell.KeyTab:        "tab",
	tcell.KeyBackspace:  "backspace",
	tcell.KeyBackspace2: "backspace",
	tcell.KeyDelete:     "delete",
	tcell.KeyHome:       "home",
	tcell.KeyEnd:        "end",
	tcell.KeyPgUp:       "pageup",
	tcell.KeyPgDn:       "pagedown",
}

// keyName maps a tcell key event to the engine's lower-case key name, or ""
// for keys the engine does not name.
func keyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return "space"
		}
		return strings.ToLower(string(ev.Rune()))
	}
	return keyNames[ev.Key()]
}

var mouseButtons = []struct {
	mask tcell.ButtonMask
	name string
}{
	{tcell.Button1, "left"},
	{tcell.Button2, "right"},
	{tcell.Button3, "middle"},
}

// keyboard turns terminal key events into press/release pairs. Terminals
// only report presses and auto-repeats, so a key counts as held until no
// event for it has arrived for HoldTime.
type keyboard struct {
	hold time.Duration
	seen map[string]time.Time
}

func (k *keyboard) press(in *grove.Input, key string, now time.Time) {
	if k.seen == nil {
		k.seen = make(map[string]time.Time)
	}
	k.seen[key] = now
	in.Push(grove.InputEvent{Kind: grove.KeyPress, Key: key})
}

// expire releases keys not seen for the hold time.
func (k *keyboard) expire(in *grove.Input, now time.Time) {
	for key, t := range k.seen {
		if now.Sub(t) >= k.hold {
			delete(k.seen, key)
			in.Push(grove.InputEvent{Kind: grove.KeyRelease, Key: key})
		}
	}
}
