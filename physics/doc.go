// Package physics provides collision areas, rigid bodies and the collision
// system for grove.
//
// An object becomes collidable by using an [Area]. Areas are tracked by a
// [System] installed on the engine (installed on first use), which runs once
// per fixed step after the tree's fixedUpdate: a sweep-and-prune broad phase
// over world bounding boxes yields candidate pairs, and a SAT narrow phase
// produces a [Collision] with a separation normal and distance.
//
// Overlapping pairs fire collideUpdate on both objects every fixed step,
// collide when the pair starts overlapping and collideEnd when it stops.
// Objects that also carry a [Body] are separated and have their velocity
// updated:
//
//	player := e.Add(
//		grove.NewPos(100, 0),
//		&grove.Rectangle{Width: 16, Height: 16},
//		&physics.Area{},
//		physics.NewBody(),
//	)
//	physics.OnCollide(player, "coin", func(col *physics.Collision) {
//		col.Target.Destroy()
//	})
package physics
