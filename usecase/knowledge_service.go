package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

// ErrNoDocuments is returned when a knowledge directory holds nothing to ingest
var ErrNoDocuments = errors.New("no knowledge documents found")

// separators are tried in order when looking for a place to cut a chunk
var separators = []string{"\n\n", "\n", ". ", " "}

// KnowledgeOptions tunes chunking and retrieval
type KnowledgeOptions struct {
	TopK         int // passages handed to the answerer
	ChunkSize    int // upper bound of a chunk, in characters
	ChunkOverlap int // characters shared by neighbouring chunks
}

// IngestResult summarizes one ingest run
type IngestResult struct {
	Documents int
	Chunks    int
	Skipped   []string // files that failed, with the reason logged
}

// KnowledgeService ingests lore documents into the chunk store and retrieves
// the passages closest to a question
type KnowledgeService struct {
	chunks   repositories.ChunkRepository
	embedder repositories.Embedder
	reader   repositories.DocumentReader
	options  KnowledgeOptions
	logger   *zap.Logger
}

// NewKnowledgeService creates a new knowledge service. reader may be nil, in
// which case PDFs are skipped.
func NewKnowledgeService(
	chunks repositories.ChunkRepository,
	embedder repositories.Embedder,
	reader repositories.DocumentReader,
	options KnowledgeOptions,
	logger *zap.Logger,
) *KnowledgeService {
	if options.TopK <= 0 {
		options.TopK = 3
	}
	if options.ChunkSize <= 0 {
		options.ChunkSize = 1000
	}
	if options.ChunkOverlap < 0 || options.ChunkOverlap >= options.ChunkSize {
		options.ChunkOverlap = 0
	}

	return &KnowledgeService{
		chunks:   chunks,
		embedder: embedder,
		reader:   reader,
		options:  options,
		logger:   logger,
	}
}

// IngestDir ingests every .txt, .md and .pdf file under dir. A file that
// fails is logged and skipped; the run fails only when nothing was ingested.
func (s *KnowledgeService) IngestDir(ctx context.Context, dir string) (IngestResult, error) {
	var result IngestResult
	var failures []error

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedDocument(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		source, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		source = filepath.ToSlash(source)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", source, err)
		}

		chunks, err := s.IngestDocument(ctx, source, data)
		if err != nil {
			s.logger.Warn("Skipping knowledge document", zap.String("source", source), zap.Error(err))
			result.Skipped = append(result.Skipped, source)
			failures = append(failures, err)
			return nil
		}

		result.Documents++
		result.Chunks += chunks
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk knowledge directory: %w", err)
	}

	if result.Documents == 0 {
		if len(failures) > 0 {
			return result, fmt.Errorf("no knowledge document could be ingested: %w", errors.Join(failures...))
		}
		return result, fmt.Errorf("%w in %s", ErrNoDocuments, dir)
	}

	s.logger.Info("Knowledge ingested",
		zap.String("dir", dir),
		zap.Int("documents", result.Documents),
		zap.Int("chunks", result.Chunks),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// IngestDocument splits one document into chunks, embeds them and replaces
// whatever the store held for source. It returns the number of chunks stored.
func (s *KnowledgeService) IngestDocument(ctx context.Context, source string, data []byte) (int, error) {
	text, err := s.documentText(ctx, source, data)
	if err != nil {
		return 0, err
	}

	passages := SplitText(text, s.options.ChunkSize, s.options.ChunkOverlap)
	if len(passages) == 0 {
		return 0, fmt.Errorf("document %s has no text", source)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, passages)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %s: %w", source, err)
	}
	if len(vectors) != len(passages) {
		return 0, fmt.Errorf("expected %d embeddings for %s, got %d", len(passages), source, len(vectors))
	}

	chunks := make([]*entities.DocumentChunk, len(passages))
	for i, passage := range passages {
		chunks[i] = entities.NewDocumentChunk(source, i, passage, vectors[i])
	}

	if err := s.chunks.ReplaceSource(ctx, source, chunks); err != nil {
		return 0, fmt.Errorf("failed to store %s: %w", source, err)
	}

	s.logger.Debug("Document ingested", zap.String("source", source), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

func (s *KnowledgeService) documentText(ctx context.Context, source string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(source), ".pdf") {
		if s.reader == nil {
			return "", fmt.Errorf("no document reader configured for %s", source)
		}
		return s.reader.ExtractText(ctx, source, data)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document %s is not valid UTF-8", source)
	}
	return string(data), nil
}

// Retrieve returns the passages most similar to question, best first
func (s *KnowledgeService) Retrieve(ctx context.Context, question string) ([]entities.ScoredChunk, error) {
	query, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := s.chunks.Search(ctx, query, s.options.TopK)
	if err != nil {
		return nil, fmt.Errorf("failed to search knowledge: %w", err)
	}
	return hits, nil
}

// Empty reports whether nothing has been ingested yet
func (s *KnowledgeService) Empty(ctx context.Context) (bool, error) {
	count, err := s.chunks.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func supportedDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf":
		return true
	}
	return false
}

// SplitText cuts text into chunks of at most size characters, each sharing
// up to overlap characters with the previous one. Cuts prefer paragraph, line,
// sentence and word boundaries in that order, as long as the chunk keeps at
// least half its size.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if size <= 0 || len(runes) == 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	for start := 0; start < len(runes); {
		end := min(start+size, len(runes))
		if end < len(runes) {
			end = cutPoint(runes, start, end, size)
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// cutPoint moves end back to just after the strongest separator found in the
// second half of the window
func cutPoint(runes []rune, start, end, size int) int {
	lo := start + size/2
	window := string(runes[lo:end])
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i >= 0 {
			return lo + utf8.RuneCountInString(window[:i+len(sep)])
		}
	}
	return end
}
