package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/satriahrh/npctalk/adapters/tts"
	"github.com/satriahrh/npctalk/internal/logging"
	"github.com/satriahrh/npctalk/internal/transport"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the ElevenLabs voices available to the API key",
	Long: `List the ElevenLabs voices available to ELEVEN_LABS_API_KEY. Put the
chosen id into ELEVEN_LABS_VOICE_ID or speech.voice_id.`,
	RunE: runVoices,
}

func init() {
	rootCmd.AddCommand(voicesCmd)
}

func runVoices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, err := tts.NewVoiceCatalog(cfg.Speech.APIKey, cfg.Speech.APIBaseURL, transport.NewHTTPClient(0), logger)
	if err != nil {
		return err
	}

	voices, err := catalog.ListVoices(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VOICE ID\tNAME\tCATEGORY")
	for _, voice := range voices {
		marker := ""
		if voice.VoiceID == cfg.Speech.VoiceID {
			marker = " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s%s\n", voice.VoiceID, voice.Name, voice.Category, marker)
	}
	return w.Flush()
}
