package grove

import (
	"errors"
	"fmt"
	"strings"
)

// Contract violations. These are raised with panic at the offending call;
// the frame loop recovers them and reports them through Engine.OnError.
var (
	ErrAlreadyParented = errors.New("grove: object already has a parent")
	ErrNilObject       = errors.New("grove: nil object")
	ErrCycle           = errors.New("grove: adding child would create a cycle")
	ErrNoPos           = errors.New("grove: object has no pos component")
	ErrUnknownLayer    = errors.New("grove: unknown layer")
	ErrNotLive         = errors.New("grove: object is not in the tree")
	ErrUnknownScene    = errors.New("grove: unknown scene")
	ErrBadComponent    = errors.New("grove: unsupported component value")
)

// DependencyError reports a component whose required components are not
// present, or a component that cannot be removed because another one
// requires it.
type DependencyError struct {
	Component string   // the component being attached or removed
	Missing   []string // ids that are required but absent (attach)
	Dependent string   // id of the component that depends on Component (unuse)
}

func (e *DependencyError) Error() string {
	if e.Dependent != "" {
		return fmt.Sprintf("grove: cannot remove %q: required by %q", e.Component, e.Dependent)
	}
	return fmt.Sprintf("grove: component %q requires %s", e.Component, strings.Join(quoteAll(e.Missing), ", "))
}

func quoteAll(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}

// FrameError wraps a panic recovered from one of the frame phases.
type FrameError struct {
	Phase string // "fixedUpdate", "update", "draw", "scene", ...
	Frame uint64
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("grove: %s (frame %d): %v", e.Phase, e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// asError converts a recovered panic value to an error.
func asError(v any) error {
	switch x := v.(type) {
	case error:
		return x
	case string:
		return errors.New(x)
	default:
		return fmt.Errorf("%v", x)
	}
}
