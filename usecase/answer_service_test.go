package usecase

import (
	"context"
	"errors"
	"iter"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/satriahrh/npctalk/adapters"
	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

type fakeAnswerer struct {
	fragments []string
	err       error // yielded after the fragments
	knowledge []string
}

func (f *fakeAnswerer) AnswerStream(ctx context.Context, question string, knowledge []string) iter.Seq2[string, error] {
	f.knowledge = knowledge
	return func(yield func(string, error) bool) {
		for _, fragment := range f.fragments {
			if !yield(fragment, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", f.err)
		}
	}
}

func TestAnswerService_Answer(t *testing.T) {
	exchanges := adapters.NewMemoryExchangeRepository(0)
	service := NewAnswerService(&fakeAnswerer{fragments: []string{"The ", "", "smithy ", "is east."}}, nil, exchanges, zaptest.NewLogger(t))

	var emitted []string
	err := service.Answer(context.Background(), "Where is the smithy?", func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if len(emitted) != 3 {
		t.Fatalf("Expected empty fragments to be skipped, got %q", emitted)
	}

	recent, _ := service.Recent(context.Background(), 10)
	if len(recent) != 1 {
		t.Fatalf("Expected one archived exchange, got %d", len(recent))
	}
	if recent[0].Answer != "The smithy is east." || recent[0].Fragments != 3 || recent[0].Failed {
		t.Errorf("Unexpected archived exchange: %+v", recent[0])
	}
}

func TestAnswerService_EmptyQuestion(t *testing.T) {
	exchanges := adapters.NewMemoryExchangeRepository(0)
	service := NewAnswerService(&fakeAnswerer{}, nil, exchanges, zaptest.NewLogger(t))

	err := service.Answer(context.Background(), "  ", func(string) error { return nil })
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Errorf("Expected ErrEmptyQuestion, got %v", err)
	}
	if exchanges.Count() != 0 {
		t.Error("Expected nothing to be archived")
	}
}

func TestAnswerService_StreamError(t *testing.T) {
	streamErr := errors.New("quota exceeded")
	exchanges := adapters.NewMemoryExchangeRepository(0)
	service := NewAnswerService(&fakeAnswerer{fragments: []string{"Hmm"}, err: streamErr}, nil, exchanges, zaptest.NewLogger(t))

	var emitted []string
	err := service.Answer(context.Background(), "q", func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})

	if !errors.Is(err, streamErr) {
		t.Errorf("Expected wrapped stream error, got %v", err)
	}
	if len(emitted) != 1 {
		t.Errorf("Expected fragments before the error to be emitted, got %v", emitted)
	}

	recent, _ := exchanges.ListRecent(context.Background(), 1)
	if len(recent) != 1 || !recent[0].Failed || recent[0].Answer != "Hmm" {
		t.Errorf("Expected failed exchange to be archived, got %+v", recent)
	}
}

func TestAnswerService_EmitError(t *testing.T) {
	writeErr := errors.New("client went away")
	answerer := &fakeAnswerer{fragments: []string{"a", "b", "c"}}
	service := NewAnswerService(answerer, nil, nil, zaptest.NewLogger(t))

	calls := 0
	err := service.Answer(context.Background(), "q", func(string) error {
		calls++
		return writeErr
	})

	if !errors.Is(err, writeErr) {
		t.Errorf("Expected wrapped emit error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected the stream to stop after the first failed write, got %d calls", calls)
	}

	if recent, _ := service.Recent(context.Background(), 5); len(recent) != 0 {
		t.Error("Expected no archive without a repository")
	}
}

type fakeRetriever struct {
	hits []entities.ScoredChunk
	err  error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string) ([]entities.ScoredChunk, error) {
	return f.hits, f.err
}

func hit(source string, index int, text string) entities.ScoredChunk {
	return entities.ScoredChunk{Chunk: entities.NewDocumentChunk(source, index, text, []float32{1}), Score: 1}
}

func TestAnswerService_PassesKnowledge(t *testing.T) {
	answerer := &fakeAnswerer{fragments: []string{"Aldric."}}
	retriever := &fakeRetriever{hits: []entities.ScoredChunk{
		hit("village.md", 0, "The mayor is Aldric."),
		hit("village.md", 3, "Aldric keeps bees."),
		hit("history.pdf", 1, "The village was founded by millers."),
	}}
	exchanges := adapters.NewMemoryExchangeRepository(0)
	service := NewAnswerService(answerer, retriever, exchanges, zaptest.NewLogger(t))

	if err := service.Answer(context.Background(), "Who is the mayor?", func(string) error { return nil }); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if len(answerer.knowledge) != 3 || answerer.knowledge[0] != "The mayor is Aldric." {
		t.Errorf("Expected passages in rank order, got %q", answerer.knowledge)
	}

	recent, _ := service.Recent(context.Background(), 1)
	if len(recent) != 1 {
		t.Fatalf("Expected one archived exchange, got %d", len(recent))
	}
	sources := recent[0].Sources
	if len(sources) != 2 || sources[0] != "village.md" || sources[1] != "history.pdf" {
		t.Errorf("Expected deduplicated sources, got %v", sources)
	}
}

func TestAnswerService_RetrievalFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	answerer := &fakeAnswerer{fragments: []string{"I do not know."}}
	service := NewAnswerService(answerer, &fakeRetriever{err: errors.New("index offline")}, nil, zap.New(core))

	var emitted []string
	err := service.Answer(context.Background(), "Who is the mayor?", func(fragment string) error {
		emitted = append(emitted, fragment)
		return nil
	})
	if err != nil {
		t.Fatalf("Expected answer without knowledge, got %v", err)
	}
	if len(emitted) != 1 {
		t.Errorf("Expected the answer to be streamed, got %v", emitted)
	}
	if answerer.knowledge != nil {
		t.Errorf("Expected no knowledge, got %q", answerer.knowledge)
	}
	if logs.FilterMessage("Knowledge retrieval failed, answering without it").Len() != 1 {
		t.Error("Expected retrieval failure to be logged")
	}
}

func TestAnswerService_Get(t *testing.T) {
	exchanges := adapters.NewMemoryExchangeRepository(0)
	service := NewAnswerService(&fakeAnswerer{fragments: []string{"Yes."}}, nil, exchanges, zaptest.NewLogger(t))

	if err := service.Answer(context.Background(), "Is it raining?", func(string) error { return nil }); err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	recent, _ := service.Recent(context.Background(), 1)

	got, err := service.Get(context.Background(), recent[0].ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Question != "Is it raining?" {
		t.Errorf("Expected question 'Is it raining?', got %q", got.Question)
	}

	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, repositories.ErrExchangeNotFound) {
		t.Errorf("Expected ErrExchangeNotFound, got %v", err)
	}

	archiveless := NewAnswerService(&fakeAnswerer{}, nil, nil, zaptest.NewLogger(t))
	if _, err := archiveless.Get(context.Background(), "any"); !errors.Is(err, repositories.ErrExchangeNotFound) {
		t.Errorf("Expected ErrExchangeNotFound without archive, got %v", err)
	}
}
