package grove

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine-level event names.
const (
	EventFrameEnd   = "frameEnd"
	EventLoading    = "loading"
	EventError      = "error"
	EventSceneEnter = "sceneEnter"
	EventHide       = "hide"
	EventShow       = "show"
	EventQuit       = "quit"
)

// SceneFunc builds a scene. It runs at the start of the frame following
// Engine.Go, after the previous scene's objects have been destroyed.
type SceneFunc func(e *Engine, args ...any)

// System is an engine-wide subsystem stepped alongside the object tree. A
// system opts into phases by implementing FixedUpdateSystem, UpdateSystem or
// DrawSystem.
type System interface {
	Name() string
}

// FixedUpdateSystem runs once per fixed step, after the tree's fixedUpdate.
type FixedUpdateSystem interface {
	FixedUpdate()
}

// UpdateSystem runs once per stepped frame, after the tree's update.
type UpdateSystem interface {
	Update()
}

// DrawSystem draws after the tree, inside the camera transform.
type DrawSystem interface {
	Draw(c Canvas)
}

type systemEntry struct {
	sys  System
	ctrl *EventController
}

type sceneRequest struct {
	name string
	args []any
}

// Engine is the context every object, component and subsystem hangs off. It
// owns the object tree, the engine-global event registries, both clocks, the
// input state and the collaborator handles. There are no package-level
// engines; construct one with NewEngine and pass it around.
type Engine struct {
	cfg Config
	log *zap.Logger

	root         *Object
	nextObjectID uint64

	// objEvents carries object notifications for tag-scoped subscriptions
	// (OnTag, OnAdd, OnDestroy). The first argument is always the *Object.
	objEvents Registry
	// events carries engine notifications (frameEnd, error, loading, ...).
	events Registry

	layers       []string
	defaultLayer int

	gravity Vec2
	input   *Input
	camera  *Camera
	timers  timerList

	audio  Audio
	loader AssetLoader
	sink   EventSink

	systems []systemEntry

	// clocks
	dt         float64
	time       float64
	fixedTime  float64
	restDT     float64
	acc        float64
	capAcc     float64
	frame      uint64
	fixedSteps uint64

	hidden bool
	resync bool

	debug Debug

	scenes     map[string]SceneFunc
	pending    *sceneRequest
	scene      string
	runID      string
	sceneCtrls []*EventController

	quit bool
}

// NewEngine creates an engine from cfg. Zero config fields take their
// defaults; an invalid config is returned as an error.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		log:     zap.NewNop(),
		layers:  slices.Clone(cfg.Layers),
		gravity: cfg.Gravity,
		scenes:  make(map[string]SceneFunc),
	}
	if cfg.DefaultLayer != "" {
		e.defaultLayer = slices.Index(e.layers, cfg.DefaultLayer)
	}
	e.debug = Debug{Enabled: cfg.Debug, TimeScale: 1, e: e}
	e.root = newObject(e)
	e.root.live = true
	e.root.Use(&Named{Name: "root"})
	e.input = newInput(e, cfg.Buttons)
	e.camera = newCamera(Rect{0, 0, float64(cfg.Width), float64(cfg.Height)})
	return e, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config { return e.cfg }

// Root returns the root object. The root is always live and cannot be
// destroyed.
func (e *Engine) Root() *Object { return e.root }

// Add adds a child to the root object.
func (e *Engine) Add(items ...any) *Object { return e.root.Add(items...) }

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger { return e.log }

// SetLogger replaces the engine logger. A nil logger installs a no-op one.
func (e *Engine) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	e.log = l
}

// SetAudio sets the audio collaborator.
func (e *Engine) SetAudio(a Audio) { e.audio = a }

// SetAssetLoader sets the asset loader polled at the start of every frame.
func (e *Engine) SetAssetLoader(l AssetLoader) { e.loader = l }

// SetEventSink sets the optional sink mirrored with global notifications.
func (e *Engine) SetEventSink(s EventSink) { e.sink = s }

// Input returns the engine's input state.
func (e *Engine) Input() *Input { return e.input }

// Camera returns the engine's camera.
func (e *Engine) Camera() *Camera { return e.camera }

// Debug returns the debug controls.
func (e *Engine) Debug() *Debug { return &e.debug }

// --- Clocks ---

// DT returns the variable delta of the current frame in seconds, or the
// fixed step while a fixed step is running.
func (e *Engine) DT() float64 { return e.dt }

// FixedDT returns the fixed step in seconds.
func (e *Engine) FixedDT() float64 { return e.cfg.FixedDT }

// RestDT returns the time left in the fixed accumulator after the last
// drain. It is always in [0, FixedDT).
func (e *Engine) RestDT() float64 { return e.restDT }

// Alpha returns RestDT / FixedDT, the interpolation factor between the last
// two fixed-step states.
func (e *Engine) Alpha() float64 { return e.restDT / e.cfg.FixedDT }

// Time returns the scaled time accumulated by stepped frames.
func (e *Engine) Time() float64 { return e.time }

// FrameNum returns the number of stepped frames.
func (e *Engine) FrameNum() uint64 { return e.frame }

// FixedSteps returns the number of fixed steps run so far.
func (e *Engine) FixedSteps() uint64 { return e.fixedSteps }

// --- Gravity and layers ---

// Gravity returns the gravity vector in units per second squared.
func (e *Engine) Gravity() Vec2 { return e.gravity }

// SetGravity sets the gravity vector.
func (e *Engine) SetGravity(g Vec2) { e.gravity = g }

// GravityDir returns the unit gravity direction, or straight down when
// gravity is zero.
func (e *Engine) GravityDir() Vec2 {
	if e.gravity.IsZero() {
		return Vec2{0, 1}
	}
	return e.gravity.Unit()
}

// Layers returns the configured layer names, back to front.
func (e *Engine) Layers() []string { return e.layers }

// SetLayers replaces the layer list. def names the layer used by objects
// without a layer component.
func (e *Engine) SetLayers(layers []string, def string) {
	i := slices.Index(layers, def)
	if i < 0 {
		panic(&layerError{name: def})
	}
	e.layers = slices.Clone(layers)
	e.defaultLayer = i
}

func (e *Engine) layerIndexByName(name string) (int, bool) {
	i := slices.Index(e.layers, name)
	return i, i >= 0
}

func (e *Engine) layerIndex(o *Object) int {
	if l, ok := CompOf[*Layer](o, CompLayer); ok {
		if i, ok := e.layerIndexByName(l.Name); ok {
			return i
		}
	}
	return e.defaultLayer
}

// --- Subscriptions ---

// track makes ctrl scene-scoped when a scene is running.
func (e *Engine) track(ctrl *EventController) *EventController {
	if e.scene != "" {
		e.sceneCtrls = append(e.sceneCtrls, ctrl)
	}
	return ctrl
}

// On registers a listener for an engine-level event. Listeners registered
// while a scene is running are cancelled when the scene changes.
func (e *Engine) On(name string, fn Handler) *EventController {
	return e.track(e.events.On(name, fn))
}

// Trigger fires an engine-level event.
func (e *Engine) Trigger(name string, args ...any) {
	e.events.Trigger(name, args...)
}

// Emit fires an engine-level event and mirrors it to the event sink.
func (e *Engine) Emit(name string, args ...any) {
	e.events.Trigger(name, args...)
	e.emit(Event{Name: name, Args: args})
}

// OnTag registers fn for event name fired on any object carrying tag. The
// wildcard "*" matches every object.
func (e *Engine) OnTag(tag, name string, fn func(o *Object, args ...any)) *EventController {
	return e.track(e.objEvents.On(name, func(args ...any) {
		o := args[0].(*Object)
		if o.Is(tag) {
			fn(o, args[1:]...)
		}
	}))
}

// OnAdd registers fn for objects carrying tag entering the live tree.
func (e *Engine) OnAdd(tag string, fn func(o *Object)) *EventController {
	return e.OnTag(tag, EventAdd, func(o *Object, _ ...any) { fn(o) })
}

// OnDestroy registers fn for live objects carrying tag being destroyed.
func (e *Engine) OnDestroy(tag string, fn func(o *Object)) *EventController {
	return e.OnTag(tag, EventDestroy, func(o *Object, _ ...any) { fn(o) })
}

// OnUpdate registers fn for the update event of every object carrying tag.
func (e *Engine) OnUpdate(tag string, fn func(o *Object)) *EventController {
	return e.OnTag(tag, EventUpdate, func(o *Object, _ ...any) { fn(o) })
}

// OnFixedUpdate registers fn for the fixedUpdate event of every object
// carrying tag.
func (e *Engine) OnFixedUpdate(tag string, fn func(o *Object)) *EventController {
	return e.OnTag(tag, EventFixedUpdate, func(o *Object, _ ...any) { fn(o) })
}

// OnError registers fn for errors recovered from frame phases.
func (e *Engine) OnError(fn func(err error)) *EventController {
	return e.track(e.events.On(EventError, func(args ...any) { fn(args[0].(error)) }))
}

// OnFrameEnd registers fn to run at the end of every stepped frame.
func (e *Engine) OnFrameEnd(fn func()) *EventController {
	return e.track(e.events.On(EventFrameEnd, func(...any) { fn() }))
}

// OnLoading registers fn to run instead of update while the asset loader
// reports not loaded.
func (e *Engine) OnLoading(fn func(progress float64)) *EventController {
	return e.track(e.events.On(EventLoading, func(args ...any) { fn(args[0].(float64)) }))
}

// OnSceneEnter registers fn to run after a scene has been built.
func (e *Engine) OnSceneEnter(fn func(name string)) *EventController {
	return e.track(e.events.On(EventSceneEnter, func(args ...any) { fn(args[0].(string)) }))
}

// AddSystem registers a subsystem. The returned controller removes it.
func (e *Engine) AddSystem(s System) *EventController {
	entry := systemEntry{sys: s}
	entry.ctrl = NewController(func() {
		e.systems = slices.DeleteFunc(e.systems, func(x systemEntry) bool { return x.sys == s })
	})
	e.systems = append(e.systems, entry)
	return e.track(entry.ctrl)
}

// System returns the registered system with the given name, or nil.
func (e *Engine) System(name string) System {
	for _, s := range e.systems {
		if s.sys.Name() == name {
			return s.sys
		}
	}
	return nil
}

// --- Notifications ---

func (e *Engine) notifyAdd(o *Object) {
	e.objEvents.Trigger(EventAdd, o)
	if e.sink != nil {
		e.emit(Event{Name: EventAdd, ObjectID: o.id})
	}
}

func (e *Engine) notifyDestroy(o *Object) {
	e.objEvents.Trigger(EventDestroy, o)
	if e.sink != nil {
		e.emit(Event{Name: EventDestroy, ObjectID: o.id})
	}
}

func (e *Engine) emit(ev Event) {
	if e.sink == nil {
		return
	}
	ev.Scene = e.scene
	ev.RunID = e.runID
	ev.Frame = e.frame
	e.sink.EmitEvent(ev)
}

// --- Scenes ---

// Scene registers a scene constructor under name.
func (e *Engine) Scene(name string, fn SceneFunc) {
	e.scenes[name] = fn
}

// Go switches to the named scene at the start of the next frame. Panics with
// ErrUnknownScene when no such scene is registered.
func (e *Engine) Go(name string, args ...any) {
	if _, ok := e.scenes[name]; !ok {
		panic(&sceneError{name: name})
	}
	e.pending = &sceneRequest{name: name, args: args}
}

// CurrentScene returns the running scene name, or "" before the first Go.
func (e *Engine) CurrentScene() string { return e.scene }

// RunID returns the unique id of the current scene run.
func (e *Engine) RunID() string { return e.runID }

type sceneError struct{ name string }

func (e *sceneError) Error() string { return ErrUnknownScene.Error() + " " + quoteAll([]string{e.name})[0] }
func (e *sceneError) Unwrap() error { return ErrUnknownScene }

func (e *Engine) applyScene() {
	req := e.pending
	if req == nil {
		return
	}
	e.pending = nil

	for _, c := range e.sceneCtrls {
		c.Cancel()
	}
	e.sceneCtrls = nil
	e.root.RemoveAll()
	e.timers.clear()
	e.input.clearQueues()
	e.gravity = e.cfg.Gravity
	e.camera.reset()
	e.acc = 0
	e.restDT = 0

	e.scene = req.name
	e.runID = uuid.NewString()
	e.log.Info("scene enter", zap.String("scene", req.name), zap.String("run", e.runID))
	e.scenes[req.name](e, req.args...)
	e.events.Trigger(EventSceneEnter, req.name)
	e.emit(Event{Name: EventSceneEnter, Args: []any{req.name}})
}

// --- Visibility ---

// SetVisible tells the engine whether the host surface is visible. While
// hidden, frames are not stepped and audio is suspended; on return the
// clock is resynced so the hidden period does not produce a catch-up burst.
func (e *Engine) SetVisible(visible bool) {
	if visible == !e.hidden {
		return
	}
	e.hidden = !visible
	if e.hidden {
		if e.audio != nil {
			e.audio.Suspend()
		}
		e.events.Trigger(EventHide)
		return
	}
	e.resync = true
	if e.audio != nil && !e.debug.paused {
		e.audio.Resume()
	}
	e.events.Trigger(EventShow)
}

// Visible reports whether the host surface is visible.
func (e *Engine) Visible() bool { return !e.hidden }

// --- Frame ---

// capSlack is the fraction of the MaxFPS interval a host tick may fall
// short by and still step. Hosts ticking at exactly MaxFPS measure
// intervals slightly under 1/MaxFPS.
const capSlack = 0.1

// Frame advances the engine by realDT seconds of wall-clock time. Hosts call
// it once per host frame and call Draw separately.
//
// The frame accumulates time until the MaxFPS interval has passed, clamps
// the delta to MaxDT, applies a pending scene change, dispatches queued
// input, then either runs the loading branch or drains the fixed
// accumulator and runs the variable update once. It ends with frameEnd and
// the reset of one-shot input state. A panic inside any phase is recovered,
// logged and delivered to OnError listeners; the next frame runs normally.
func (e *Engine) Frame(realDT float64) {
	if e.quit {
		return
	}
	if e.hidden {
		e.resync = true
		return
	}
	if e.resync {
		e.resync = false
		e.capAcc = 0
		return
	}
	if realDT < 0 {
		realDT = 0
	}
	e.capAcc += realDT
	if e.cfg.MaxFPS > 0 && e.capAcc < (1-capSlack)/e.cfg.MaxFPS {
		return
	}
	dt := min(e.capAcc, e.cfg.MaxDT)
	e.capAcc = 0
	dt *= max(e.debug.TimeScale, 0)

	e.frame++
	var stats frameStats
	e.step(dt, &stats)
	e.endFrame()
	if e.debug.Enabled {
		e.debugLog(stats)
	}
}

func (e *Engine) step(dt float64, stats *frameStats) {
	phase := "scene"
	defer func() {
		if r := recover(); r != nil {
			e.reportError(phase, r)
		}
	}()

	e.applyScene()

	phase = "input"
	e.input.dispatch()

	if e.loader != nil {
		if p, ok := e.loader.(AssetPoller); ok {
			phase = "assets"
			p.Poll()
		}
		if !e.loader.Loaded() {
			phase = EventLoading
			e.events.Trigger(EventLoading, e.loader.Progress())
			return
		}
	}

	if e.debug.paused && !e.debug.step {
		return
	}
	e.debug.step = false

	var t0 time.Time
	if e.debug.Enabled {
		t0 = time.Now()
	}
	phase = EventFixedUpdate
	fixed := e.cfg.FixedDT
	e.acc += dt
	for e.acc >= fixed {
		e.acc -= fixed
		e.dt = fixed
		e.fixedTime += fixed
		e.fixedSteps++
		stats.fixedSteps++
		e.root.FixedUpdate()
		for _, s := range slices.Clone(e.systems) {
			if f, ok := s.sys.(FixedUpdateSystem); ok && !s.ctrl.Cancelled() {
				f.FixedUpdate()
			}
		}
	}
	e.restDT = e.acc
	if e.debug.Enabled {
		stats.fixedTime = time.Since(t0)
		t0 = time.Now()
	}

	phase = EventUpdate
	e.dt = dt
	e.time += dt
	e.input.fireHeld()
	e.timers.advance(dt)
	e.root.Update()
	for _, s := range slices.Clone(e.systems) {
		if u, ok := s.sys.(UpdateSystem); ok && !s.ctrl.Cancelled() {
			u.Update()
		}
	}
	e.camera.update(dt)
	if e.debug.Enabled {
		stats.updateTime = time.Since(t0)
	}
}

func (e *Engine) endFrame() {
	defer func() {
		if r := recover(); r != nil {
			e.reportError(EventFrameEnd, r)
		}
		e.input.endFrame()
	}()
	e.events.Trigger(EventFrameEnd)
}

// Draw draws the object tree and draw systems onto c through the camera
// transform. While assets are loading, only loading-draw listeners run.
func (e *Engine) Draw(c Canvas) {
	if e.quit {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.reportError(EventDraw, r)
		}
	}()
	if e.loader != nil && !e.loader.Loaded() {
		e.events.Trigger(eventDrawLoading, c, e.loader.Progress())
		return
	}
	c.PushTransform(e.camera.ViewMatrix())
	e.root.Draw(c)
	for _, s := range slices.Clone(e.systems) {
		if d, ok := s.sys.(DrawSystem); ok && !s.ctrl.Cancelled() {
			d.Draw(c)
		}
	}
	c.PopTransform()
	e.events.Trigger(eventDrawScreen, c)
}

const (
	eventDrawLoading = "drawLoading"
	eventDrawScreen  = "drawScreen"
)

// OnDrawLoading registers fn to draw the loading screen in screen space.
func (e *Engine) OnDrawLoading(fn func(c Canvas, progress float64)) *EventController {
	return e.track(e.events.On(eventDrawLoading, func(args ...any) {
		fn(args[0].(Canvas), args[1].(float64))
	}))
}

// OnDrawScreen registers fn to draw in screen space after the world.
func (e *Engine) OnDrawScreen(fn func(c Canvas)) *EventController {
	return e.track(e.events.On(eventDrawScreen, func(args ...any) { fn(args[0].(Canvas)) }))
}

func (e *Engine) reportError(phase string, r any) {
	err := &FrameError{Phase: phase, Frame: e.frame, Err: asError(r)}
	e.log.Error("frame error",
		zap.String("phase", phase),
		zap.Uint64("frame", e.frame),
		zap.Error(err.Err),
	)
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("error listener panicked", zap.Error(asError(r)))
		}
	}()
	e.events.Trigger(EventError, err)
	e.emit(Event{Name: EventError, Args: []any{err}})
}

// --- Timers ---

// Wait runs fn once after sec seconds of stepped time. The returned
// controller cancels or pauses the timer.
func (e *Engine) Wait(sec float64, fn func()) *EventController {
	return e.track(e.timers.wait(sec, fn))
}

// Loop runs fn every sec seconds of stepped time, count times (0 = forever).
func (e *Engine) Loop(sec float64, count int, fn func()) *EventController {
	return e.track(e.timers.loop(sec, count, fn))
}

// --- Teardown ---

// Quit tears the engine down: quit listeners run, every object is
// destroyed, every engine subscription is cancelled and the logger is
// synced. Frame and Draw are no-ops afterwards.
func (e *Engine) Quit() {
	if e.quit {
		return
	}
	e.events.Trigger(EventQuit)
	e.quit = true
	for _, c := range e.sceneCtrls {
		c.Cancel()
	}
	e.sceneCtrls = nil
	e.root.RemoveAll()
	for _, s := range slices.Clone(e.systems) {
		s.ctrl.Cancel()
	}
	e.timers.clear()
	e.events.Clear()
	e.objEvents.Clear()
	e.input.events.Clear()
	e.log.Info("quit", zap.Uint64("frames", e.frame))
	_ = e.log.Sync()
}

// Quitting reports whether Quit has been called.
func (e *Engine) Quitting() bool { return e.quit }
