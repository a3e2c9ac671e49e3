package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/hajimehoshi/go-mp3"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const (
	playbackFramesPerBuffer = 1024

	// go-mp3 always decodes to interleaved 16-bit stereo
	mp3Channels = 2
)

// ErrUnsupportedFormat is returned for audio the player cannot decode
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// PCM is decoded, interleaved 16-bit audio
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// DecodeMP3 decodes MPEG audio into interleaved stereo PCM
func DecodeMP3(data []byte) (*PCM, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	return &PCM{
		Samples:    BytesToInt16(raw),
		SampleRate: decoder.SampleRate(),
		Channels:   mp3Channels,
	}, nil
}

// Speaker plays synthesized audio on the default output device
type Speaker struct {
	mu     sync.Mutex // one clip at a time
	logger *zap.Logger
}

// Ensure Speaker implements the AudioPlayer interface
var _ repositories.AudioPlayer = (*Speaker)(nil)

// NewSpeaker creates a new speaker
func NewSpeaker(logger *zap.Logger) *Speaker {
	return &Speaker{logger: logger}
}

// Play decodes the audio and blocks until it has been played or ctx is done
func (s *Speaker) Play(ctx context.Context, audio *repositories.Audio) error {
	if audio == nil || len(audio.Data) == 0 {
		return nil
	}

	pcm, err := decode(audio)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Playing audio",
		zap.String("format", audio.Format),
		zap.Int("sampleRate", pcm.SampleRate),
		zap.Int("samples", len(pcm.Samples)))

	return playPCM(ctx, pcm)
}

func decode(audio *repositories.Audio) (*PCM, error) {
	format := strings.ToLower(audio.Format)
	switch {
	case format == "", strings.Contains(format, "mpeg"), strings.Contains(format, "mp3"):
		return DecodeMP3(audio.Data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, audio.Format)
	}
}

func playPCM(ctx context.Context, pcm *PCM) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, playbackFramesPerBuffer*pcm.Channels)

	stream, err := portaudio.OpenDefaultStream(0, pcm.Channels, float64(pcm.SampleRate), playbackFramesPerBuffer, buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for position := 0; position < len(pcm.Samples); position += len(buffer) {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := copy(buffer, pcm.Samples[position:])
		clear(buffer[n:])

		if err := stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				continue
			}
			return fmt.Errorf("failed to write to stream: %w", err)
		}
	}

	return nil
}
