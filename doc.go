// Package grove is a component-based 2D game engine core.
//
// Grove owns the object tree, the frame clock, scenes, events, timers,
// input state and the camera. It does not open windows or touch a GPU:
// hosts such as grove/ebitenhost and grove/termhost feed it input, call
// [Engine.Frame] once per display frame and hand [Engine.Draw] a [Canvas].
//
// # Quick start
//
//	cfg, _ := grove.ParseConfig(configYAML)
//	e, _ := grove.NewEngine(cfg)
//	e.Scene("main", func(e *grove.Engine, args ...any) {
//		e.Add(grove.NewPos(100, 50), &grove.Rectangle{Width: 20, Height: 20}, "player")
//	})
//	e.Go("main")
//	ebitenhost.Run(e, ebitenhost.Options{})
//
// # Objects and components
//
// Every game entity is an [Object]. [Engine.Add] and [Object.Add] take a
// mix of components, tag strings and child objects; [Engine.Make] builds
// a detached object to be parented later. Components declare optional
// hooks ([Updater], [FixedUpdater], [Drawer], [Destroyer]) and their
// dependencies through [Requirer]. [Comp] covers the ad-hoc case without
// a named type.
//
// # Frame clock
//
// Frame runs zero or more fixed steps at [Config.FixedDT] followed by one
// variable update. [Engine.DT] reports the step being run; [Engine.Alpha]
// gives the leftover fraction for render interpolation. A panic inside a
// phase is recovered and reported as a [*FrameError] through
// [Engine.OnError].
//
// # Scenes, events and timers
//
// [Engine.Go] switches scenes on the next frame. Everything registered
// while a scene runs (listeners, timers, tweens, systems) is cancelled on
// the switch. Listeners return an [EventController] that can pause or
// cancel them. Timers and tweens (via [gween]) live on the engine or on
// objects through the [Timer] component.
//
// # Scripting
//
// [Script] replays synthetic input from a YAML file, one event per frame,
// and requests screenshots through [EventScreenshot].
//
// [gween]: https://github.com/tanema/gween
package grove
