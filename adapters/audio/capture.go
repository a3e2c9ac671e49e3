package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/repositories"
)

// ErrCaptureRunning is returned by Start while a capture is in progress
var ErrCaptureRunning = errors.New("capture already running")

// CaptureConfig holds configuration for microphone capture
type CaptureConfig struct {
	SampleRate      int
	FramesPerBuffer int
	Language        string
	DeviceName      string // empty selects the default input device
}

// Microphone records mono 16-bit PCM from an input device until stopped
type Microphone struct {
	mu      sync.Mutex
	cfg     CaptureConfig
	stream  *portaudio.Stream
	running bool
	done    chan struct{}
	pcm     []int16
	readErr error
	logger  *zap.Logger
}

// Ensure Microphone implements the Microphone interface
var _ repositories.Microphone = (*Microphone)(nil)

// NewMicrophone initializes PortAudio. Close must be called to release it.
func NewMicrophone(cfg CaptureConfig, logger *zap.Logger) (*Microphone, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = DefaultFramesPerBuffer
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &Microphone{cfg: cfg, logger: logger}, nil
}

// Config describes the audio produced by Stop
func (m *Microphone) Config() repositories.AudioConfig {
	return repositories.AudioConfig{
		SampleRate: m.cfg.SampleRate,
		Encoding:   "LINEAR16",
		Language:   m.cfg.Language,
	}
}

// Start opens the input stream and begins buffering samples
func (m *Microphone) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrCaptureRunning
	}

	buffer := make([]int16, m.cfg.FramesPerBuffer)
	stream, err := m.openStream(buffer)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start audio stream: %w", err)
	}

	m.stream = stream
	m.pcm = m.pcm[:0]
	m.readErr = nil
	m.running = true
	m.done = make(chan struct{})

	go m.captureLoop(stream, buffer, m.done)

	m.logger.Debug("Microphone capture started", zap.Int("sampleRate", m.cfg.SampleRate))
	return nil
}

func (m *Microphone) openStream(buffer []int16) (*portaudio.Stream, error) {
	sampleRate := float64(m.cfg.SampleRate)

	if m.cfg.DeviceName != "" && m.cfg.DeviceName != "default" {
		device, err := findInputDevice(m.cfg.DeviceName)
		if err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: 1,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      sampleRate,
				FramesPerBuffer: m.cfg.FramesPerBuffer,
			}
			return portaudio.OpenStream(params, buffer)
		}
		m.logger.Warn("Input device not found, using default",
			zap.String("device", m.cfg.DeviceName),
			zap.Error(err))
	}

	return portaudio.OpenDefaultStream(1, 0, sampleRate, m.cfg.FramesPerBuffer, buffer)
}

func (m *Microphone) captureLoop(stream *portaudio.Stream, buffer []int16, done chan struct{}) {
	defer close(done)

	for {
		m.mu.Lock()
		running := m.running
		m.mu.Unlock()
		if !running {
			return
		}

		if err := stream.Read(); err != nil {
			// Input overflow only drops frames
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			m.mu.Lock()
			m.readErr = err
			m.mu.Unlock()
			return
		}

		m.mu.Lock()
		m.pcm = append(m.pcm, buffer...)
		m.mu.Unlock()
	}
}

// Stop ends the capture and returns the recorded PCM
func (m *Microphone) Stop() ([]byte, error) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil, nil
	}
	m.running = false
	done := m.done
	m.mu.Unlock()

	<-done

	m.mu.Lock()
	defer m.mu.Unlock()

	stream := m.stream
	m.stream = nil
	if err := stream.Stop(); err != nil {
		m.logger.Warn("Failed to stop audio stream", zap.Error(err))
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("failed to close audio stream: %w", err)
	}

	pcm := Int16ToBytes(m.pcm)
	m.logger.Debug("Microphone capture stopped",
		zap.Int("bytes", len(pcm)),
		zap.Duration("duration", Duration(pcm, m.cfg.SampleRate, 1)))

	if m.readErr != nil {
		return pcm, fmt.Errorf("failed to read audio: %w", m.readErr)
	}
	return pcm, nil
}

// Close stops any capture and releases PortAudio
func (m *Microphone) Close() error {
	if _, err := m.Stop(); err != nil {
		m.logger.Warn("Failed to stop capture on close", zap.Error(err))
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("device not found: %s", name)
}
