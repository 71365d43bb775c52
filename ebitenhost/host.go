// Package ebitenhost runs a grove engine inside an Ebitengine window.
//
// The host implements ebiten.Game: Update polls devices into the engine's
// input queue, mirrors window focus into Engine.SetVisible and calls
// Engine.Frame with the wall-clock delta; Draw clears the screen to the
// configured background and calls Engine.Draw on a vector Canvas.
//
//	e, _ := grove.NewEngine(cfg)
//	e.Scene("main", mainScene)
//	e.Go("main")
//	if err := ebitenhost.Run(e, ebitenhost.Options{ShowFPS: true}); err != nil {
//		log.Fatal(err)
//	}
package ebitenhost

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/grove"
)

// Options configures the host.
type Options struct {
	// ShowFPS draws an FPS/TPS overlay.
	ShowFPS bool
	// Resizable lets the user resize the window; the logical screen size
	// stays at the configured width and height.
	Resizable bool
	// AntiAlias smooths vector shapes.
	AntiAlias bool
	// ScreenshotDir receives PNG captures requested through
	// grove.EventScreenshot or Host.Screenshot. Defaults to "screenshots".
	ScreenshotDir string
}

// Host adapts an engine to ebiten.Game.
type Host struct {
	e      *grove.Engine
	opt    Options
	input  poller
	canvas *Canvas
	fps    fpsOverlay
	log    *zap.Logger
	shots  []string

	now  func() time.Time
	last time.Time
	vis  bool
}

// New returns a host driving e.
func New(e *grove.Engine, opt Options) *Host {
	return newHost(e, opt, &ebitenDevice{})
}

// The host must be created before the engine's first frame so its
// screenshot listener outlives scene changes.
func newHost(e *grove.Engine, opt Options, dev device) *Host {
	h := &Host{
		e:     e,
		opt:   opt,
		input: poller{dev: dev},
		log:   e.Logger().Named("ebitenhost"),
		now:   time.Now,
		vis:   true,
	}
	e.On(grove.EventScreenshot, func(args ...any) {
		label := ""
		if len(args) > 0 {
			label, _ = args[0].(string)
		}
		h.Screenshot(label)
	})
	return h
}

// Engine returns the hosted engine.
func (h *Host) Engine() *grove.Engine { return h.e }

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.e.Quitting() {
		return ebiten.Termination
	}
	if vis := h.input.dev.focused(); vis != h.vis {
		h.vis = vis
		h.e.SetVisible(vis)
	}

	now := h.now()
	dt := 0.0
	if !h.last.IsZero() {
		dt = now.Sub(h.last).Seconds()
	}
	h.last = now

	h.input.poll(h.e.Input())
	h.e.Frame(dt)
	if h.opt.ShowFPS {
		h.fps.update(dt)
	}
	if h.e.Quitting() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.e.Config().Background.ToRGBA())
	if h.canvas == nil {
		h.canvas = NewCanvas(screen)
		h.canvas.AntiAlias = h.opt.AntiAlias
	} else {
		h.canvas.Reset(screen)
	}
	h.e.Draw(h.canvas)
	h.flushScreenshots(screen)
	if h.opt.ShowFPS {
		h.fps.draw(screen)
	}
}

// Layout implements ebiten.Game with the engine's configured size.
func (h *Host) Layout(int, int) (int, int) {
	cfg := h.e.Config()
	return cfg.Width, cfg.Height
}

// Run opens a window sized from the engine config and blocks until the
// window closes or the engine quits. The engine is torn down on return.
func Run(e *grove.Engine, opt Options) error {
	cfg := e.Config()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetRunnableOnUnfocused(true)
	if opt.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.MaxFPS > 0 {
		ebiten.SetTPS(int(cfg.MaxFPS))
	}

	log := e.Logger().Named("ebitenhost")
	log.Info("window open", zap.String("title", cfg.Title), zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	err := ebiten.RunGame(New(e, opt))
	e.Quit()
	if err != nil {
		log.Error("host stopped", zap.Error(err))
	}
	return err
}
