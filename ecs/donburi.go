package ecs

import (
	"github.com/phanxgames/grove"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EngineEventType is the Donburi event type for grove engine events.
var EngineEventType = events.NewEventType[grove.Event]()

type donburiSink struct {
	world  donburi.World
	filter map[string]bool
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Engine
// events are published to EngineEventType and can be consumed with
// events.Subscribe and ProcessEvents. When names are given, only events
// with those names are forwarded.
func NewDonburiSink(world donburi.World, names ...string) grove.EventSink {
	s := &donburiSink{world: world}
	if len(names) > 0 {
		s.filter = make(map[string]bool, len(names))
		for _, n := range names {
			s.filter[n] = true
		}
	}
	return s
}

func (s *donburiSink) EmitEvent(event grove.Event) {
	if s.filter != nil && !s.filter[event.Name] {
		return
	}
	EngineEventType.Publish(s.world, event)
}

// ProcessFrameEnd subscribes the world's event queue to the engine's frame
// end, so published events are delivered once per stepped frame without a
// separate ECS system. The returned controller stops processing.
func ProcessFrameEnd(e *grove.Engine, world donburi.World) *grove.EventController {
	return e.OnFrameEnd(func() { EngineEventType.ProcessEvents(world) })
}
