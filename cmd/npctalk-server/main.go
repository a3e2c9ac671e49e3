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
	Use:   "npctalk-server",
	Short: "The /ask backend the npctalk chat client talks to",
	Long: `npctalk-server answers player questions over POST /ask as
newline-delimited JSON.

Answers are generated by Gemini when GEMINI_API_KEY is set and by a canned
mock otherwise. Exchanges are archived in MongoDB when MONGODB_URI is set and
in memory otherwise. Lore documents ingested with "npctalk-server ingest" are
retrieved as background knowledge for every answer.

Commands:
  (none)  - start the backend
  ingest  - load lore documents into the knowledge store
  voices  - list ElevenLabs voices available to the API key`,
	SilenceUsage: true,
	RunE:         runServe,
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
