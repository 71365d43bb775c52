package grove

// AssetLoader is the asset-loading collaborator. The engine polls it once per
// frame; while Loaded reports false the frame runs the loading branch
// (EventLoading with Progress) instead of update.
type AssetLoader interface {
	Loaded() bool
	// Progress returns the loaded fraction in [0, 1].
	Progress() float64
}

// AssetPoller is implemented by loaders that deliver completion callbacks
// on the frame goroutine. Poll is called once per frame before update.
type AssetPoller interface {
	Poll()
}

// Audio is the audio collaborator. Suspend and Resume are invoked when the
// host surface is hidden or shown and when the debug pause is toggled.
type Audio interface {
	Suspend()
	Resume()
}

// Event is an engine-global notification mirrored to an EventSink.
type Event struct {
	Name     string
	ObjectID uint64
	Scene    string
	RunID    string
	Frame    uint64
	Args     []any
}

// EventSink is the interface for optional ECS or telemetry integration.
// When set on an Engine, global notifications (add, destroy, scene changes,
// errors and anything published with Engine.Emit) are forwarded to it.
type EventSink interface {
	EmitEvent(event Event)
}
