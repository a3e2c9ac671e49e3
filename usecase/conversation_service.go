package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

const selfTestQuestion = "hello"

// ConversationService orchestrates the conversation flow: capture, answer
// fetch, transcript append, speech synthesis and playback. At most one turn
// is in flight; triggers arriving while busy are dropped, not queued.
type ConversationService struct {
	answers      repositories.AnswerClient
	textToSpeech repositories.TextToSpeech
	player       repositories.AudioPlayer
	capture      repositories.SpeechCapture
	view         repositories.ConversationView
	transcript   *entities.Transcript
	busy         atomic.Bool
	speech       sync.WaitGroup
	captures     sync.WaitGroup
	logger       *zap.Logger
}

// NewConversationService creates a new conversation service. textToSpeech,
// player and capture may be nil to run without voice output or input.
func NewConversationService(
	answers repositories.AnswerClient,
	tts repositories.TextToSpeech,
	player repositories.AudioPlayer,
	capture repositories.SpeechCapture,
	view repositories.ConversationView,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		answers:      answers,
		textToSpeech: tts,
		player:       player,
		capture:      capture,
		view:         view,
		transcript:   entities.NewTranscript(),
		logger:       logger,
	}
}

// SubmitText runs one conversation turn for query. It returns false without
// side effects when query is blank or another turn is in flight.
func (s *ConversationService) SubmitText(ctx context.Context, query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}

	release, ok := s.acquire()
	if !ok {
		s.logger.Debug("Dropping submission while a turn is in flight", zap.String("query", query))
		return false
	}
	defer release()

	s.view.SetInputEnabled(false)
	s.appendTurn(entities.SpeakerUser, query)

	answer, err := s.answers.Ask(ctx, query)
	if err != nil {
		s.logger.Error("Failed to fetch answer", zap.String("query", query), zap.Error(err))
		s.appendTurn(entities.SpeakerNPC, entities.FallbackReply)
		return true
	}

	s.logger.Info("Answer received", zap.Int("answerLength", len(answer)))
	s.appendTurn(entities.SpeakerNPC, answer)
	s.speak(ctx, answer)

	return true
}

// acquire sets the busy flag. The returned release resets it, clears the
// input field and re-enables it, and must run on every exit path.
func (s *ConversationService) acquire() (release func(), ok bool) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, false
	}

	return func() {
		s.busy.Store(false)
		s.view.SetInputText("")
		s.view.SetInputEnabled(true)
	}, true
}

func (s *ConversationService) appendTurn(speaker entities.Speaker, text string) {
	turn := s.transcript.Append(speaker, text)
	s.view.AppendTurn(turn)
}

// speak synthesizes and plays text on a detached goroutine. Nothing it does
// is reported back to the turn.
func (s *ConversationService) speak(ctx context.Context, text string) {
	if s.textToSpeech == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	s.speech.Add(1)
	go func() {
		defer s.speech.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Speech task panicked", zap.Any("panic", r))
			}
		}()

		result := s.textToSpeech.Synthesize(ctx, text)
		if !result.HasAudio() {
			s.logger.Warn("No audio synthesized, skipping playback",
				zap.String("state", string(result.State)),
				zap.Error(result.Reason))
			return
		}

		if s.player == nil {
			return
		}
		if err := s.player.Play(ctx, result.Audio); err != nil {
			s.logger.Error("Failed to play synthesized audio", zap.Error(err))
		}
	}()
}

// OnSpeechCaptureStart handles the key-down edge of push-to-talk
func (s *ConversationService) OnSpeechCaptureStart() {
	if s.capture == nil {
		s.logger.Warn("Speech capture is not configured")
		return
	}

	if err := s.capture.StartRecording(); err != nil {
		s.logger.Error("Failed to start speech capture", zap.Error(err))
	}
}

// OnSpeechCaptureStop handles the key-up edge of push-to-talk. Recording
// stops before it returns, so a following key-down can start a new one. A
// usable recording is then transcribed, shown in the input field and
// submitted on a separate goroutine.
func (s *ConversationService) OnSpeechCaptureStop(ctx context.Context) {
	if s.capture == nil {
		return
	}

	if !s.capture.StopRecording() {
		s.logger.Info("No usable recording captured")
		return
	}

	s.captures.Add(1)
	go func() {
		defer s.captures.Done()
		s.transcribeAndSubmit(ctx)
	}()
}

func (s *ConversationService) transcribeAndSubmit(ctx context.Context) {
	text, err := s.capture.Transcribe(ctx)
	if err != nil {
		s.logger.Error("Failed to transcribe recording", zap.Error(err))
		return
	}

	s.view.SetInputText(text)
	s.SubmitText(ctx, text)
}

// SelfTest sends a greeting to the answer endpoint and logs the outcome.
// It does not touch the transcript or the view.
func (s *ConversationService) SelfTest(ctx context.Context) {
	answer, err := s.answers.Ask(ctx, selfTestQuestion)
	if err != nil {
		s.logger.Warn("Answer endpoint self test failed", zap.Error(err))
		return
	}

	s.logger.Info("Answer endpoint self test succeeded", zap.String("answer", answer))
}

// Busy reports whether a turn is in flight
func (s *ConversationService) Busy() bool {
	return s.busy.Load()
}

// Transcript returns a snapshot of the conversation so far
func (s *ConversationService) Transcript() []entities.ConversationTurn {
	return s.transcript.Turns()
}

// Wait blocks until every pending transcription and detached speech task
// has finished
func (s *ConversationService) Wait() {
	s.captures.Wait()
	s.speech.Wait()
}

