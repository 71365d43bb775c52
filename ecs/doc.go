// Package ecs provides ECS adapters for grove's engine notifications.
//
// The primary adapter is [NewDonburiSink], which bridges engine events
// (object add/destroy, scene changes, frame errors and anything published
// with Engine.Emit) into a [Donburi] world as typed events. Subscribe to
// [EngineEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	engine.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
