package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove"
)

var _ grove.Audio = (*Mixer)(nil)

func peak(samples [][2]float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = max(p, s[0], -s[0], s[1], -s[1])
	}
	return p
}

func pull(m *Mixer, n int) [][2]float64 {
	buf := make([][2]float64, n)
	m.Stream(buf)
	return buf
}

func TestMixer_PlayTone(t *testing.T) {
	m := NewMixer(0, nil)
	assert.Equal(t, DefaultSampleRate, m.SampleRate())

	_, err := m.PlayTone(440, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Playing())
	assert.Greater(t, peak(pull(m, 512)), 0.1)
}

func TestMixer_SuspendResume(t *testing.T) {
	m := NewMixer(beep.SampleRate(8000), nil)
	_, err := m.PlayTone(440, time.Second)
	require.NoError(t, err)

	m.Suspend()
	m.Suspend()
	assert.True(t, m.Suspended())
	assert.Zero(t, peak(pull(m, 256)))

	m.Resume()
	assert.False(t, m.Suspended())
	assert.Greater(t, peak(pull(m, 256)), 0.1)
}

func TestMixer_StopAndVolume(t *testing.T) {
	m := NewMixer(beep.SampleRate(8000), nil)
	s, err := m.PlayTone(440, time.Second)
	require.NoError(t, err)

	m.SetVolume(0)
	assert.Zero(t, peak(pull(m, 256)))
	m.SetVolume(1)
	assert.Greater(t, peak(pull(m, 256)), 0.1)

	s.SetPaused(true)
	assert.Zero(t, peak(pull(m, 256)))
	s.SetPaused(false)
	s.Stop()
	assert.Zero(t, peak(pull(m, 256)))
}

func TestMixer_EngineSuspendsOnHide(t *testing.T) {
	e, err := grove.NewEngine(grove.Config{})
	require.NoError(t, err)
	m := NewMixer(beep.SampleRate(8000), nil)
	e.SetAudio(m)

	e.SetVisible(false)
	assert.True(t, m.Suspended())
	e.SetVisible(true)
	assert.False(t, m.Suspended())

	e.Debug().SetPaused(true)
	assert.True(t, m.Suspended())
	e.Debug().SetPaused(false)
	assert.False(t, m.Suspended())
}

func TestMixer_InvalidTone(t *testing.T) {
	m := NewMixer(beep.SampleRate(8000), nil)
	_, err := m.PlayTone(10000, time.Second)
	assert.ErrorContains(t, err, "audio: tone")
}
