package repositories

import "context"

// SpeechCapture is the push-to-talk collaborator: recording is started and
// stopped by a key edge pair and the recording is transcribed afterwards.
type SpeechCapture interface {
	StartRecording() error
	// StopRecording reports whether a usable recording exists
	StopRecording() bool
	Transcribe(ctx context.Context) (string, error)
}

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts 16-bit little endian PCM audio to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// Microphone abstracts an audio input device producing 16-bit PCM
type Microphone interface {
	Start() error
	// Stop ends capture and returns everything recorded since Start
	Stop() ([]byte, error)
	Config() AudioConfig
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate" toml:"sample_rate"`
	Encoding   string `json:"encoding" toml:"encoding"`
	Language   string `json:"language" toml:"language"`
}
