package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/satriahrh/npctalk/internal/config"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "npctalk",
	Short: "Talk to a game NPC by text or voice",
	Long: `npctalk is a conversational NPC client. Questions typed or spoken are sent
to a question-answering endpoint, the answer is shown in the transcript and
spoken aloud through ElevenLabs.

Commands:
  chat    - terminal chat with push-to-talk

The /ask backend is the separate npctalk-server binary.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by the persistent flags
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile, envFile)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}
