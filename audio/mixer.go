// Package audio provides a beep-backed mixer that the engine suspends and
// resumes with window visibility and debug pause.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// DefaultSampleRate is used when NewMixer is given zero.
const DefaultSampleRate = beep.SampleRate(44100)

// Mixer mixes sounds into one stream. It implements grove.Audio. The
// mixer can drive the speaker after Open, or be pulled directly through
// Stream.
type Mixer struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	master *beep.Ctrl
	volume *effects.Volume
	log    *zap.Logger

	open      bool
	suspended bool
}

// NewMixer returns a mixer at the given sample rate.
func NewMixer(rate beep.SampleRate, log *zap.Logger) *Mixer {
	if rate == 0 {
		rate = DefaultSampleRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Mixer{rate: rate, mixer: &beep.Mixer{}, log: log}
	m.volume = &effects.Volume{Streamer: m.mixer, Base: 2}
	m.master = &beep.Ctrl{Streamer: m.volume}
	return m
}

// SampleRate returns the mixer's sample rate.
func (m *Mixer) SampleRate() beep.SampleRate { return m.rate }

// Open initializes the speaker with the given buffer length and starts
// playing the mix.
func (m *Mixer) Open(buffer time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return nil
	}
	if err := speaker.Init(m.rate, m.rate.N(buffer)); err != nil {
		return fmt.Errorf("audio: init speaker: %w", err)
	}
	speaker.Play(m.master)
	m.open = true
	m.log.Info("audio opened", zap.Int("sample_rate", int(m.rate)), zap.Duration("buffer", buffer))
	return nil
}

// Close stops all sounds and closes the speaker.
func (m *Mixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	speaker.Clear()
	speaker.Close()
	m.open = false
}

// locked runs fn with the speaker locked when it is pulling samples.
func (m *Mixer) locked(fn func()) {
	if m.open {
		speaker.Lock()
		defer speaker.Unlock()
	}
	fn()
}

// Sound is a playing sound.
type Sound struct {
	ctrl *beep.Ctrl
	m    *Mixer
}

// Stop silences the sound for good.
func (s *Sound) Stop() {
	s.m.locked(func() {
		s.ctrl.Paused = true
		s.ctrl.Streamer = nil
	})
}

// SetPaused pauses or resumes the sound.
func (s *Sound) SetPaused(p bool) { s.m.locked(func() { s.ctrl.Paused = p }) }

// Play adds a streamer to the mix.
func (m *Mixer) Play(st beep.Streamer) *Sound {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctrl := &beep.Ctrl{Streamer: st}
	m.locked(func() { m.mixer.Add(ctrl) })
	return &Sound{ctrl: ctrl, m: m}
}

// PlayTone plays a sine tone of freq Hz for d.
func (m *Mixer) PlayTone(freq float64, d time.Duration) (*Sound, error) {
	tone, err := generators.SineTone(m.rate, freq)
	if err != nil {
		return nil, fmt.Errorf("audio: tone %vHz: %w", freq, err)
	}
	return m.Play(beep.Take(m.rate.N(d), tone)), nil
}

// SetVolume sets the master volume as a linear gain; 0 is silent.
func (m *Mixer) SetVolume(gain float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked(func() {
		if gain <= 0 {
			m.volume.Silent = true
			return
		}
		m.volume.Silent = false
		m.volume.Volume = math.Log2(gain)
	})
}

// Playing returns the number of streamers in the mix.
func (m *Mixer) Playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	m.locked(func() { n = m.mixer.Len() })
	return n
}

// Suspend implements grove.Audio; the mix outputs silence until Resume.
func (m *Mixer) Suspend() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.suspended {
		return
	}
	m.suspended = true
	m.locked(func() { m.master.Paused = true })
	m.log.Debug("audio suspended")
}

// Resume implements grove.Audio.
func (m *Mixer) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.suspended {
		return
	}
	m.suspended = false
	m.locked(func() { m.master.Paused = false })
	m.log.Debug("audio resumed")
}

// Suspended reports whether the mixer is suspended.
func (m *Mixer) Suspended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suspended
}

// Stream implements beep.Streamer by pulling from the mix. It is used
// when no speaker is open.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.master.Stream(samples)
}

// Err implements beep.Streamer.
func (m *Mixer) Err() error { return nil }
