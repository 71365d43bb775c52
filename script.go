package grove

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Script event names, fired on the engine registry and mirrored to the
// event sink.
const (
	// EventScreenshot carries the label of a requested screenshot. Hosts
	// that can capture the screen listen for it.
	EventScreenshot = "screenshot"
	// EventScriptDone fires once when every step has run.
	EventScriptDone = "scriptDone"
)

// ScriptStep is one action of an input script.
type ScriptStep struct {
	Action string  `yaml:"action"`
	Label  string  `yaml:"label,omitempty"`
	Key    string  `yaml:"key,omitempty"`
	Text   string  `yaml:"text,omitempty"`
	Pos    Vec2    `yaml:"pos,omitempty"`
	From   Vec2    `yaml:"from,omitempty"`
	To     Vec2    `yaml:"to,omitempty"`
	Frames int     `yaml:"frames,omitempty"`
	Wait   float64 `yaml:"wait,omitempty"`
}

var scriptActions = map[string]bool{
	"screenshot": true,
	"click":      true,
	"drag":       true,
	"press":      true,
	"release":    true,
	"tap":        true,
	"type":       true,
	"wait":       true,
}

// Script sequences synthetic input and screenshot requests across frames
// for demos and automated play-throughs. It runs as an engine system; add
// it with Engine.AddSystem.
type Script struct {
	steps []ScriptStep

	e         *Engine
	cursor    int
	waitCount int
	waitTime  float64
	done      bool
}

// ParseScript decodes a YAML (or JSON) script of the form
//
//	steps:
//	  - {action: click, pos: [100, 200]}
//	  - {action: wait, frames: 3}
//	  - {action: screenshot, label: after-click}
func ParseScript(e *Engine, data []byte) (*Script, error) {
	var doc struct {
		Steps []ScriptStep `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, errors.New("parse script: no steps")
	}
	for i, st := range doc.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: doc.Steps, e: e}, nil
}

// LoadScript reads and parses a script file.
func LoadScript(e *Engine, path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	return ParseScript(e, data)
}

// Name implements System.
func (s *Script) Name() string { return "script" }

// Done reports whether every step has been executed.
func (s *Script) Done() bool { return s.done }

// Update implements UpdateSystem. Each call executes at most one step, and
// none while injected input is still draining or a wait is pending.
func (s *Script) Update() {
	if s.done {
		return
	}
	in := s.e.input
	if len(in.injectQueue) > 0 {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.waitTime > 0 {
		s.waitTime -= s.e.dt
		if s.waitTime > 0 {
			return
		}
	}
	if s.cursor >= len(s.steps) {
		s.finish()
		return
	}

	st := s.steps[s.cursor]
	s.cursor++
	s.e.log.Debug("script step", zap.Int("step", s.cursor), zap.String("action", st.Action))

	switch st.Action {
	case "screenshot":
		s.e.Emit(EventScreenshot, st.Label)
	case "click":
		in.InjectClick(st.Pos)
	case "drag":
		in.InjectDrag(st.From, st.To, max(st.Frames, 2))
	case "press":
		in.InjectKeyPress(st.Key)
	case "release":
		in.InjectKeyRelease(st.Key)
	case "tap":
		in.InjectKeyTap(st.Key)
	case "type":
		for _, r := range st.Text {
			in.InjectChar(r)
		}
	case "wait":
		if st.Frames > 0 {
			// this frame counts as one
			s.waitCount = st.Frames - 1
		}
		s.waitTime = st.Wait
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 && s.waitTime <= 0 && len(in.injectQueue) == 0 {
		s.finish()
	}
}

func (s *Script) finish() {
	s.done = true
	s.e.log.Info("script done", zap.Int("steps", len(s.steps)))
	s.e.Emit(EventScriptDone)
}
