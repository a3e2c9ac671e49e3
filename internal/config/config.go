package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration passed to every constructor at startup
type Config struct {
	Answer    AnswerConfig    `toml:"answer"`
	Speech    SpeechConfig    `toml:"speech"`
	Capture   CaptureConfig   `toml:"capture"`
	Hotkey    HotkeyConfig    `toml:"hotkey"`
	Server    ServerConfig    `toml:"server"`
	Knowledge KnowledgeConfig `toml:"knowledge"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Log       LogConfig       `toml:"log"`
}

// AnswerConfig configures the question-answering endpoint used by the chat client
type AnswerConfig struct {
	Endpoint string `toml:"endpoint"`
	// SelfTest sends a greeting to the endpoint on startup and logs the reply
	SelfTest bool `toml:"self_test"`
}

// SpeechConfig configures the ElevenLabs speech synthesizer. The model and
// voice settings are fixed by the synthesizer.
type SpeechConfig struct {
	Enabled    bool   `toml:"enabled"`
	APIKey     string `toml:"api_key"`
	APIBaseURL string `toml:"api_base_url"`
	VoiceID    string `toml:"voice_id"`
}

// CaptureConfig configures the microphone and the transcription engine
type CaptureConfig struct {
	Engine          string `toml:"engine"` // "whisper", "google" or "mock"
	WhisperURL      string `toml:"whisper_url"`
	Language        string `toml:"language"`
	SampleRate      int    `toml:"sample_rate"`
	FramesPerBuffer int    `toml:"frames_per_buffer"`
	MinRecordingMs  int    `toml:"min_recording_ms"`
	MockText        string `toml:"mock_text"`
}

// HotkeyConfig configures the push-to-talk binding
type HotkeyConfig struct {
	Enabled bool   `toml:"enabled"`
	Binding string `toml:"binding"`
}

// ServerConfig configures the /ask backend started by npctalk-server
type ServerConfig struct {
	Addr                  string  `toml:"addr"`
	GeminiAPIKey          string  `toml:"gemini_api_key"`
	GeminiModel           string  `toml:"gemini_model"`
	GeminiTemperature     float64 `toml:"gemini_temperature"`
	GeminiMaxOutputTokens int     `toml:"gemini_max_output_tokens"`
	// Persona is the system instruction. A "{context}" placeholder is
	// replaced with the retrieved knowledge passages.
	Persona         string `toml:"persona"`
	MongoDBURI      string `toml:"mongodb_uri"`
	MongoDBDatabase string `toml:"mongodb_database"`
	// HistoryCapacity bounds the in-memory exchange archive
	HistoryCapacity int `toml:"history_capacity"`
}

// KnowledgeConfig configures the document store the backend retrieves from
type KnowledgeConfig struct {
	// Dir is ingested when the backend starts with an empty store
	Dir            string `toml:"dir"`
	EmbeddingModel string `toml:"embedding_model"`
	TopK           int    `toml:"top_k"`
	ChunkSize      int    `toml:"chunk_size"`
	ChunkOverlap   int    `toml:"chunk_overlap"`
}

// TelemetryConfig configures the OpenTelemetry trace exporter
type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	Exporter    string `toml:"exporter"` // "stdout" or "otlp"
	Endpoint    string `toml:"endpoint"` // OTLP/HTTP host:port
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
	// File receives stdout-exporter spans; empty writes to stdout
	File string `toml:"file"`
}

// LogConfig configures zap
type LogConfig struct {
	Level       string `toml:"level"`
	File        string `toml:"file"`
	Development bool   `toml:"development"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Answer: AnswerConfig{
			Endpoint: "http://127.0.0.1:5000/ask",
			SelfTest: true,
		},
		Speech: SpeechConfig{
			Enabled:    true,
			APIBaseURL: "https://api.elevenlabs.io/v1",
		},
		Capture: CaptureConfig{
			Engine:          "whisper",
			WhisperURL:      "http://127.0.0.1:8080",
			Language:        "en",
			SampleRate:      16000,
			FramesPerBuffer: 512,
			MinRecordingMs:  300,
		},
		Hotkey: HotkeyConfig{
			Enabled: true,
			Binding: "ctrl+shift+space",
		},
		Server: ServerConfig{
			Addr:                  "127.0.0.1:5000",
			GeminiModel:           "gemini-2.0-flash",
			GeminiTemperature:     0.7,
			GeminiMaxOutputTokens: 256,
			MongoDBDatabase:       "npctalk",
			HistoryCapacity:       100,
		},
		Knowledge: KnowledgeConfig{
			EmbeddingModel: "text-embedding-004",
			TopK:           3,
			ChunkSize:      1000,
			ChunkOverlap:   200,
		},
		Telemetry: TelemetryConfig{
			Exporter: "stdout",
			Endpoint: "localhost:4318",
		},
		Log: LogConfig{
			Level: "info",
			File:  "npctalk.log",
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and an
// optional dotenv file. Environment variables take precedence over the file.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("unknown keys in config file %s: %v", path, undecoded)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Answer.Endpoint, "NPCTALK_ANSWER_ENDPOINT")
	setString(&c.Speech.APIKey, "ELEVEN_LABS_API_KEY")
	setString(&c.Speech.APIBaseURL, "ELEVEN_LABS_API_BASE_URL")
	setString(&c.Speech.VoiceID, "ELEVEN_LABS_VOICE_ID")
	setString(&c.Capture.Engine, "NPCTALK_CAPTURE_ENGINE")
	setString(&c.Capture.WhisperURL, "WHISPER_SERVER_URL")
	setString(&c.Hotkey.Binding, "NPCTALK_HOTKEY")
	setString(&c.Server.Addr, "NPCTALK_SERVER_ADDR")
	setString(&c.Server.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.Server.GeminiModel, "GEMINI_MODEL")
	setString(&c.Server.MongoDBURI, "MONGODB_URI")
	setString(&c.Server.MongoDBDatabase, "MONGODB_DATABASE")
	setString(&c.Knowledge.Dir, "NPCTALK_KNOWLEDGE_DIR")
	setString(&c.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Log.Level, "NPCTALK_LOG_LEVEL")

	if err := setFloat(&c.Server.GeminiTemperature, "GEMINI_TEMPERATURE"); err != nil {
		return err
	}
	if err := setInt(&c.Server.GeminiMaxOutputTokens, "GEMINI_MAX_OUTPUT_TOKENS"); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = f
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks values that do not depend on which subcommand runs
func (c Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Answer.Endpoint); err != nil {
		return fmt.Errorf("answer endpoint must be a valid URL: %w", err)
	}

	if c.Server.GeminiTemperature < 0 || c.Server.GeminiTemperature > 2 {
		return fmt.Errorf("gemini temperature must be between 0 and 2, got %f", c.Server.GeminiTemperature)
	}
	if c.Server.GeminiMaxOutputTokens < 0 {
		return fmt.Errorf("gemini max output tokens must not be negative, got %d", c.Server.GeminiMaxOutputTokens)
	}
	if c.Server.HistoryCapacity < 0 {
		return fmt.Errorf("history capacity must not be negative, got %d", c.Server.HistoryCapacity)
	}

	if c.Knowledge.TopK <= 0 {
		return fmt.Errorf("knowledge top_k must be positive, got %d", c.Knowledge.TopK)
	}
	if c.Knowledge.ChunkSize <= 0 {
		return fmt.Errorf("knowledge chunk size must be positive, got %d", c.Knowledge.ChunkSize)
	}
	if c.Knowledge.ChunkOverlap < 0 || c.Knowledge.ChunkOverlap >= c.Knowledge.ChunkSize {
		return fmt.Errorf("knowledge chunk overlap must be in [0, %d), got %d", c.Knowledge.ChunkSize, c.Knowledge.ChunkOverlap)
	}

	switch strings.ToLower(c.Telemetry.Exporter) {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("unknown telemetry exporter %q", c.Telemetry.Exporter)
	}

	switch strings.ToLower(c.Capture.Engine) {
	case "whisper", "google", "mock":
	default:
		return fmt.Errorf("unknown capture engine %q", c.Capture.Engine)
	}

	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.Capture.SampleRate)
	}
	if c.Capture.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames per buffer must be positive, got %d", c.Capture.FramesPerBuffer)
	}

	return nil
}

// ValidateSpeech checks the values the speech synthesizer needs
func (c Config) ValidateSpeech() error {
	if c.Speech.APIKey == "" {
		return errors.New("eleven labs API key is required")
	}
	if c.Speech.VoiceID == "" {
		return errors.New("eleven labs voice ID is required")
	}
	return nil
}
