package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/adapters/audio"
	"github.com/satriahrh/npctalk/adapters/qa"
	"github.com/satriahrh/npctalk/adapters/stt"
	"github.com/satriahrh/npctalk/adapters/tts"
	"github.com/satriahrh/npctalk/domain/repositories"
	"github.com/satriahrh/npctalk/internal/config"
	"github.com/satriahrh/npctalk/internal/hotkey"
	"github.com/satriahrh/npctalk/internal/logging"
	"github.com/satriahrh/npctalk/internal/telemetry"
	"github.com/satriahrh/npctalk/internal/transport"
	"github.com/satriahrh/npctalk/internal/ui"
	"github.com/satriahrh/npctalk/usecase"
)

const chatTraceFile = "npctalk-traces.jsonl"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the terminal chat",
	Long: `Start the terminal chat with the NPC.

Keys:
  Enter     - send the typed question
  Ctrl+R    - start / stop recording a spoken question
  Esc       - quit

When a global push-to-talk hotkey can be registered, hold it to record.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs and spans go to files
	logger, err := logging.New(cfg.Log, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	telemetryCfg := cfg.Telemetry
	if telemetryCfg.File == "" {
		telemetryCfg.File = chatTraceFile
	}
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetryCfg, "npctalk", logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	httpClient := transport.NewHTTPClient(0)

	answers, err := qa.NewClient(cfg.Answer.Endpoint, httpClient, logger)
	if err != nil {
		return fmt.Errorf("failed to create answer client: %w", err)
	}

	var (
		textToSpeech repositories.TextToSpeech
		player       repositories.AudioPlayer
	)
	if synthesizer := newSynthesizer(cfg, logger); synthesizer != nil {
		textToSpeech = synthesizer
		player = audio.NewSpeaker(logger)
	}

	var speechCapture repositories.SpeechCapture
	recorder, closeCapture, err := newRecorder(ctx, cfg.Capture, logger)
	if err != nil {
		logger.Warn("Speech capture disabled", zap.Error(err))
	} else {
		speechCapture = recorder
		defer closeCapture()
	}

	var (
		service *usecase.ConversationService
		ptt     *usecase.PushToTalk
	)

	binding, bindingErr := hotkey.ParseBinding(cfg.Hotkey.Binding)
	useHotkey := cfg.Hotkey.Enabled && speechCapture != nil
	if useHotkey && bindingErr != nil {
		logger.Warn("Invalid hotkey binding, use ctrl+r instead", zap.Error(bindingErr))
		useHotkey = false
	}

	hotkeyHint := ""
	if useHotkey {
		hotkeyHint = binding.Text
	}

	model := ui.NewModel(ui.Handlers{
		Submit:       func(text string) { service.SubmitText(ctx, text) },
		StartCapture: func() { ptt.Press() },
		StopCapture:  func() { ptt.Release() },
	}, hotkeyHint)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	view := ui.NewProgramView(program)

	service = usecase.NewConversationService(answers, textToSpeech, player, speechCapture, view, logger)

	// Every capture edge, from ctrl+r or the hotkey, goes through one queue
	ptt = usecase.NewPushToTalk(service, logger)
	pttDone := make(chan struct{})
	go func() {
		defer close(pttDone)
		ptt.Run(ctx)
	}()

	if useHotkey {
		err := hotkey.Listen(ctx, binding,
			func() {
				view.SetRecording(true)
				ptt.Press()
			},
			func() {
				view.SetRecording(false)
				ptt.Release()
			},
			logger)
		if err != nil {
			logger.Warn("Push-to-talk hotkey unavailable, use ctrl+r instead", zap.Error(err))
			hotkeyHint = ""
			// Send blocks until the program runs
			go view.SetHotkeyHint("")
		}
	}

	if cfg.Answer.SelfTest {
		go service.SelfTest(ctx)
	}

	logger.Info("Chat started",
		zap.String("endpoint", cfg.Answer.Endpoint),
		zap.Bool("speech", textToSpeech != nil),
		zap.Bool("capture", speechCapture != nil),
		zap.String("hotkey", hotkeyHint))

	_, runErr := program.Run()
	cancel()
	<-pttDone

	// Let an answer that is still being spoken finish
	service.Wait()
	logger.Info("Chat exited")

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", runErr)
		return runErr
	}
	return nil
}

// newSynthesizer returns nil when speech output is disabled or not configured
func newSynthesizer(cfg config.Config, logger *zap.Logger) *tts.ElevenLabsTTS {
	if !cfg.Speech.Enabled {
		return nil
	}
	if err := cfg.ValidateSpeech(); err != nil {
		logger.Warn("Speech synthesis disabled", zap.Error(err))
		return nil
	}

	synthesizer, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
		APIKey:     cfg.Speech.APIKey,
		VoiceID:    cfg.Speech.VoiceID,
		APIBaseURL: cfg.Speech.APIBaseURL,
	}, transport.NewHTTPClient(0), logger)
	if err != nil {
		logger.Warn("Speech synthesis disabled", zap.Error(err))
		return nil
	}
	return synthesizer
}

// newRecorder builds the microphone and transcriber selected by the capture engine
func newRecorder(ctx context.Context, cfg config.CaptureConfig, logger *zap.Logger) (*stt.Recorder, func(), error) {
	minDuration := time.Duration(cfg.MinRecordingMs) * time.Millisecond

	if strings.ToLower(cfg.Engine) == "mock" {
		mic := audio.NewSilentMicrophone(cfg.SampleRate, cfg.Language)
		return stt.NewRecorder(mic, stt.NewMockSpeechToText(cfg.MockText, logger), minDuration, logger), func() {}, nil
	}

	mic, err := audio.NewMicrophone(audio.CaptureConfig{
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Language:        cfg.Language,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	closeMic := func() {
		if err := mic.Close(); err != nil {
			logger.Warn("Failed to close microphone", zap.Error(err))
		}
	}

	switch strings.ToLower(cfg.Engine) {
	case "google":
		google, err := stt.NewGoogleSpeechToText(ctx, logger)
		if err != nil {
			closeMic()
			return nil, nil, err
		}
		return stt.NewRecorder(mic, google, minDuration, logger), func() {
			google.Close()
			closeMic()
		}, nil

	default:
		whisper, err := stt.NewWhisperSpeechToText(cfg.WhisperURL, transport.NewHTTPClient(0), logger)
		if err != nil {
			closeMic()
			return nil, nil, err
		}
		return stt.NewRecorder(mic, whisper, minDuration, logger), closeMic, nil
	}
}
