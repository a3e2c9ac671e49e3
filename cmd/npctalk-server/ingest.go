package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satriahrh/npctalk/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Load lore documents into the knowledge store",
	Long: `Split the .txt, .md and .pdf files under dir into passages, embed them
and store them where the backend retrieves from. Re-ingesting a file replaces
its passages. dir defaults to knowledge.dir / NPCTALK_KNOWLEDGE_DIR.

Without MONGODB_URI the store is in memory, so ingest only checks that the
documents can be read; the backend ingests knowledge.dir itself on start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, "")
	if err != nil {
		return err
	}
	defer logger.Sync()

	dir := cfg.Knowledge.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return fmt.Errorf("no knowledge directory given")
	}

	ctx := cmd.Context()

	stores, err := newStores(ctx, cfg.Server, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	knowledge, err := newKnowledgeService(ctx, cfg, stores.chunks, logger)
	if err != nil {
		return err
	}

	result, err := knowledge.IngestDir(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d documents into %d passages\n", result.Documents, result.Chunks)
	for _, skipped := range result.Skipped {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s\n", skipped)
	}
	return nil
}
