package repositories

import "context"

// TextToSpeech turns text into playable audio. Implementations never return
// an error: failures are reported through the result state.
type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) SynthesisResult
}

// AudioPlayer plays synthesized audio on an output device
type AudioPlayer interface {
	Play(ctx context.Context, audio *Audio) error
}

// Audio holds encoded audio content
type Audio struct {
	Data   []byte
	Format string
}

// SynthesisState is the state of a single synthesis call
type SynthesisState string

const (
	SynthesisIdle      SynthesisState = "idle"
	SynthesisSending   SynthesisState = "sending"
	SynthesisSucceeded SynthesisState = "succeeded"
	SynthesisFailed    SynthesisState = "failed"
)

// SynthesisResult is the terminal outcome of a synthesis call
type SynthesisResult struct {
	State  SynthesisState
	Audio  *Audio
	Reason error
}

// HasAudio reports whether the result carries playable audio
func (r SynthesisResult) HasAudio() bool {
	return r.State == SynthesisSucceeded && r.Audio != nil && len(r.Audio.Data) > 0
}
