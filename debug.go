package grove

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Debug holds the engine's debug controls.
type Debug struct {
	// Enabled turns on destroyed-object checks on tree operations, tree
	// depth and child count warnings, and per-frame timing stats at debug
	// log level.
	Enabled bool
	// TimeScale multiplies every stepped delta. 1 is real time; 0 freezes
	// the fixed and variable clocks while update still runs with a zero
	// delta. Negative values act as 0.
	TimeScale float64
	// ShowAreas asks hosts and the physics system to outline collision
	// areas.
	ShowAreas bool

	paused bool
	step   bool
	e      *Engine
}

// Paused reports whether the global debug pause is on.
func (d *Debug) Paused() bool { return d.paused }

// SetPaused toggles the global pause. While paused, fixedUpdate and update
// are skipped; draw and input dispatch continue. Audio is suspended for the
// duration.
func (d *Debug) SetPaused(p bool) {
	if d.paused == p {
		return
	}
	d.paused = p
	if d.e.audio != nil {
		if p {
			d.e.audio.Suspend()
		} else if !d.e.hidden {
			d.e.audio.Resume()
		}
	}
	d.e.log.Debug("debug pause", zap.Bool("paused", p))
}

// Step runs exactly one stepped frame on the next Frame call while paused.
func (d *Debug) Step() { d.step = true }

// frameStats holds per-frame timing metrics.
// Only populated when debug is enabled.
type frameStats struct {
	fixedSteps int
	fixedTime  time.Duration
	updateTime time.Duration
}

// debugLog writes timing stats at debug level.
func (e *Engine) debugLog(stats frameStats) {
	e.log.Debug("frame",
		zap.Uint64("frame", e.frame),
		zap.Int("fixed_steps", stats.fixedSteps),
		zap.Duration("fixed", stats.fixedTime),
		zap.Duration("update", stats.updateTime),
		zap.Float64("rest_dt", e.restDT),
	)
}

// debugCheckDestroyed panics with a descriptive message when a destroyed
// object is used in a tree operation. Only called in debug mode.
func debugCheckDestroyed(o *Object, op string) {
	if o.destroyed {
		panic(fmt.Sprintf("grove debug: %s on destroyed object %s", op, o))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(e *Engine, o *Object) {
	depth := 0
	for p := o; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		e.log.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth), zap.Int("threshold", debugMaxTreeDepth), zap.Stringer("object", o))
	}
}

// debugCheckChildCount warns if an object has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(e *Engine, o *Object) {
	if len(o.children) > debugMaxChildCount {
		e.log.Warn("child count exceeds threshold",
			zap.Int("children", len(o.children)), zap.Int("threshold", debugMaxChildCount), zap.Stringer("object", o))
	}
}

// Inspect returns one line per inspectable component of o, sorted by id.
func (o *Object) Inspect() []string {
	var out []string
	for _, id := range o.CompIDs() {
		if in, ok := o.comps[id].comp.(Inspector); ok {
			if s := in.Inspect(); s != "" {
				out = append(out, s)
			}
		}
	}
	for _, st := range o.anon {
		if in, ok := st.comp.(Inspector); ok {
			if s := in.Inspect(); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
