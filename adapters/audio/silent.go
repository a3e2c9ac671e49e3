package audio

import (
	"sync"
	"time"

	"github.com/satriahrh/npctalk/domain/repositories"
)

// SilentMicrophone produces silence for as long as it was held open. It stands
// in for a real device when no input hardware is available.
type SilentMicrophone struct {
	mu         sync.Mutex
	sampleRate int
	language   string
	startedAt  time.Time
	running    bool
	now        func() time.Time
}

// Ensure SilentMicrophone implements the Microphone interface
var _ repositories.Microphone = (*SilentMicrophone)(nil)

// NewSilentMicrophone creates a silent microphone
func NewSilentMicrophone(sampleRate int, language string) *SilentMicrophone {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &SilentMicrophone{
		sampleRate: sampleRate,
		language:   language,
		now:        time.Now,
	}
}

// Config describes the audio produced by Stop
func (m *SilentMicrophone) Config() repositories.AudioConfig {
	return repositories.AudioConfig{
		SampleRate: m.sampleRate,
		Encoding:   "LINEAR16",
		Language:   m.language,
	}
}

// Start begins a recording
func (m *SilentMicrophone) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrCaptureRunning
	}
	m.running = true
	m.startedAt = m.now()
	return nil
}

// Stop returns zeroed samples covering the time since Start
func (m *SilentMicrophone) Stop() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil, nil
	}
	m.running = false

	elapsed := m.now().Sub(m.startedAt)
	samples := int(elapsed.Seconds() * float64(m.sampleRate))
	return make([]byte, samples*2), nil
}
