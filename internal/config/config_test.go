package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid, got: %v", err)
	}

	if cfg.Answer.Endpoint != "http://127.0.0.1:5000/ask" {
		t.Errorf("Expected default endpoint, got %s", cfg.Answer.Endpoint)
	}

	if cfg.Server.GeminiTemperature != 0.7 || cfg.Server.GeminiMaxOutputTokens != 256 {
		t.Errorf("Expected 0.7/256 generation settings, got %f/%d", cfg.Server.GeminiTemperature, cfg.Server.GeminiMaxOutputTokens)
	}

	if cfg.Knowledge.TopK != 3 {
		t.Errorf("Expected 3 retrieved passages, got %d", cfg.Knowledge.TopK)
	}

	if cfg.Server.HistoryCapacity != 100 {
		t.Errorf("Expected history capacity 100, got %d", cfg.Server.HistoryCapacity)
	}

	if cfg.Telemetry.Enabled {
		t.Error("Expected telemetry to be off by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, "npctalk.toml", `
[answer]
endpoint = "http://localhost:6000/ask"
self_test = false

[speech]
api_key = "file-key"
voice_id = "file-voice"

[capture]
engine = "mock"
mock_text = "hello from file"
`)

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Answer.Endpoint != "http://localhost:6000/ask" {
		t.Errorf("Expected endpoint from file, got %s", cfg.Answer.Endpoint)
	}
	if cfg.Answer.SelfTest {
		t.Error("Expected self test disabled from file")
	}
	if cfg.Speech.APIKey != "file-key" || cfg.Speech.VoiceID != "file-voice" {
		t.Errorf("Expected speech credentials from file, got %+v", cfg.Speech)
	}
	if cfg.Capture.Engine != "mock" {
		t.Errorf("Expected mock engine, got %s", cfg.Capture.Engine)
	}
	// untouched sections keep defaults
	if cfg.Speech.APIBaseURL != "https://api.elevenlabs.io/v1" {
		t.Errorf("Expected default base URL to survive, got %s", cfg.Speech.APIBaseURL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "npctalk.toml", `
[speech]
api_key = "file-key"
voice_id = "file-voice"
`)
	t.Setenv("ELEVEN_LABS_API_KEY", "env-key")
	t.Setenv("GEMINI_TEMPERATURE", "0.2")
	t.Setenv("GEMINI_MAX_OUTPUT_TOKENS", "512")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Speech.APIKey != "env-key" {
		t.Errorf("Expected env API key, got %s", cfg.Speech.APIKey)
	}
	if cfg.Speech.VoiceID != "file-voice" {
		t.Errorf("Expected file voice ID, got %s", cfg.Speech.VoiceID)
	}
	if cfg.Server.GeminiTemperature != 0.2 || cfg.Server.GeminiMaxOutputTokens != 512 {
		t.Errorf("Expected 0.2/512 from env, got %f/%d", cfg.Server.GeminiTemperature, cfg.Server.GeminiMaxOutputTokens)
	}
}

// Voice settings are fixed by the synthesizer and have no config keys
func TestLoadIgnoresVoiceSettingEnv(t *testing.T) {
	t.Setenv("ELEVEN_LABS_STABILITY", "not a number")
	t.Setenv("ELEVEN_LABS_CLARITY", "7")

	if _, err := Load("", ""); err != nil {
		t.Errorf("Expected voice setting env to be ignored, got: %v", err)
	}
}

func TestLoadRejectsVoiceSettingKeys(t *testing.T) {
	for _, key := range []string{"model_id", "stability", "similarity_boost"} {
		path := writeFile(t, "npctalk.toml", "[speech]\n"+key+" = \"x\"\n")

		_, err := Load(path, "")
		if err == nil || !strings.Contains(err.Error(), "speech."+key) {
			t.Errorf("Expected unknown key error for speech.%s, got %v", key, err)
		}
	}
}

// The shipped example must load under strict decoding
func TestLoadExampleFile(t *testing.T) {
	if _, err := Load(filepath.Join("..", "..", "npctalk.example.toml"), ""); err != nil {
		t.Errorf("Expected example config to load, got %v", err)
	}
}

func TestLoadInvalidNumberEnv(t *testing.T) {
	t.Setenv("GEMINI_MAX_OUTPUT_TOKENS", "many")

	if _, err := Load("", ""); err == nil || !strings.Contains(err.Error(), "GEMINI_MAX_OUTPUT_TOKENS") {
		t.Errorf("Expected error naming GEMINI_MAX_OUTPUT_TOKENS, got %v", err)
	}
}

func TestLoadDotenv(t *testing.T) {
	os.Unsetenv("ELEVEN_LABS_VOICE_ID")
	envFile := writeFile(t, ".env", "ELEVEN_LABS_VOICE_ID=dotenv-voice\n")
	t.Cleanup(func() { os.Unsetenv("ELEVEN_LABS_VOICE_ID") })

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Speech.VoiceID != "dotenv-voice" {
		t.Errorf("Expected voice ID from dotenv, got %s", cfg.Speech.VoiceID)
	}
}

func TestLoadMissingDotenvIsIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Missing env file should be ignored, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad endpoint",
			mutate:  func(c *Config) { c.Answer.Endpoint = "not a url" },
			wantErr: "answer endpoint",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Server.GeminiTemperature = 2.5 },
			wantErr: "temperature",
		},
		{
			name:    "negative max tokens",
			mutate:  func(c *Config) { c.Server.GeminiMaxOutputTokens = -1 },
			wantErr: "max output tokens",
		},
		{
			name:    "overlap not below chunk size",
			mutate:  func(c *Config) { c.Knowledge.ChunkOverlap = c.Knowledge.ChunkSize },
			wantErr: "chunk overlap",
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.Knowledge.TopK = 0 },
			wantErr: "top_k",
		},
		{
			name:    "unknown exporter",
			mutate:  func(c *Config) { c.Telemetry.Exporter = "jaeger" },
			wantErr: "telemetry exporter",
		},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.Capture.Engine = "vosk" },
			wantErr: "capture engine",
		},
		{
			name:    "zero sample rate",
			mutate:  func(c *Config) { c.Capture.SampleRate = 0 },
			wantErr: "sample rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSpeech(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateSpeech(); err == nil {
		t.Error("Expected error when API key is not set")
	}

	cfg.Speech.APIKey = "key"
	if err := cfg.ValidateSpeech(); err == nil {
		t.Error("Expected error when voice ID is not set")
	}

	cfg.Speech.VoiceID = "voice"
	if err := cfg.ValidateSpeech(); err != nil {
		t.Errorf("Expected valid speech config, got: %v", err)
	}
}
