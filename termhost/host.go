// Package termhost runs a grove engine in a terminal through tcell.
//
// World coordinates are mapped onto terminal cells of CellWidth×CellHeight
// world units, which suits grid games built on the level package. Keys
// have no release events in a terminal; the host synthesizes releases
// once a key stops repeating.
package termhost

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/grove"
)

// Options configures the host.
type Options struct {
	// CellWidth and CellHeight are the world size of one terminal cell
	// (default 8×16).
	CellWidth  float64
	CellHeight float64
	// TPS is the frame rate (default 30).
	TPS int
	// HoldTime is how long a key stays down after its last event
	// (default 150ms).
	HoldTime time.Duration
}

func (o *Options) defaults() {
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
	if o.TPS <= 0 {
		o.TPS = 30
	}
	if o.HoldTime <= 0 {
		o.HoldTime = 150 * time.Millisecond
	}
}

// Host drives an engine from a tcell screen.
type Host struct {
	e      *grove.Engine
	screen tcell.Screen
	opt    Options
	canvas *Canvas
	keys   keyboard
	log    *zap.Logger

	buttons tcell.ButtonMask
	now     func() time.Time
}

// New returns a host for an initialized screen.
func New(e *grove.Engine, screen tcell.Screen, opt Options) *Host {
	opt.defaults()
	screen.EnableMouse()
	screen.EnableFocus()
	return &Host{
		e:      e,
		screen: screen,
		opt:    opt,
		canvas: NewCanvas(screen, opt.CellWidth, opt.CellHeight),
		keys:   keyboard{hold: opt.HoldTime},
		log:    e.Logger().Named("termhost"),
		now:    time.Now,
	}
}

// Canvas returns the host's canvas.
func (h *Host) Canvas() *Canvas { return h.canvas }

// Handle translates one terminal event. It returns false when the event
// asks the host to stop (Ctrl+C).
func (h *Host) Handle(ev tcell.Event) bool {
	in := h.e.Input()
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			in.Push(grove.InputEvent{Kind: grove.CharInput, Char: ev.Rune()})
		}
		if name := keyName(ev); name != "" {
			h.keys.press(in, name, h.now())
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		p := grove.V((float64(x)+0.5)*h.opt.CellWidth, (float64(y)+0.5)*h.opt.CellHeight)
		in.Push(grove.InputEvent{Kind: grove.MouseMove, Pos: p})
		btns := ev.Buttons()
		for _, b := range mouseButtons {
			was, is := h.buttons&b.mask != 0, btns&b.mask != 0
			switch {
			case is && !was:
				in.Push(grove.InputEvent{Kind: grove.MousePress, Key: b.name, Pos: p})
			case was && !is:
				in.Push(grove.InputEvent{Kind: grove.MouseRelease, Key: b.name, Pos: p})
			}
		}
		if btns&tcell.WheelUp != 0 {
			in.Push(grove.InputEvent{Kind: grove.Scroll, Pos: grove.V(0, -1)})
		}
		if btns&tcell.WheelDown != 0 {
			in.Push(grove.InputEvent{Kind: grove.Scroll, Pos: grove.V(0, 1)})
		}
		h.buttons = btns &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
	case *tcell.EventFocus:
		h.e.SetVisible(ev.Focused)
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

// Tick releases expired keys, advances the engine by dt and redraws.
func (h *Host) Tick(dt float64) {
	h.keys.expire(h.e.Input(), h.now())
	h.e.Frame(dt)
	h.Draw()
}

// Draw redraws the screen.
func (h *Host) Draw() {
	bg := h.e.Config().Background
	h.screen.SetStyle(tcell.StyleDefault.Background(tcell.NewRGBColor(int32(bg.R*255), int32(bg.G*255), int32(bg.B*255))))
	h.screen.Clear()
	h.canvas.Reset()
	h.e.Draw(h.canvas)
	h.screen.Show()
}

// Loop pumps events and ticks at opt.TPS until ctx is done, the engine
// quits or the user presses Ctrl+C.
func (h *Host) Loop(ctx context.Context) {
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go h.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(time.Second / time.Duration(h.opt.TPS))
	defer ticker.Stop()
	last := h.now()
	for !h.e.Quitting() {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !h.Handle(ev) {
				return
			}
		case <-ticker.C:
			now := h.now()
			h.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

// Run creates a terminal screen, runs the engine until it quits, ctx is
// done or Ctrl+C is pressed, then restores the terminal and tears the
// engine down.
func Run(ctx context.Context, e *grove.Engine, opt Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	h := New(e, screen, opt)
	w, ht := screen.Size()
	h.log.Info("terminal open", zap.Int("cols", w), zap.Int("rows", ht))
	h.Loop(ctx)
	e.Quit()
	return nil
}
