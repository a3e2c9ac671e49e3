package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/satriahrh/npctalk/domain/entities"
	"github.com/satriahrh/npctalk/domain/repositories"
)

func TestMemoryExchangeRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExchangeRepository(0)

	exchange := entities.NewExchange("Where is the inn?")
	exchange.AddFragment("Down the road.")

	if err := repo.Create(ctx, exchange); err != nil {
		t.Fatalf("Failed to create exchange: %v", err)
	}

	if err := repo.Create(ctx, exchange); err == nil {
		t.Error("Expected error when creating duplicate exchange")
	}

	retrieved, err := repo.GetByID(ctx, exchange.ID)
	if err != nil {
		t.Fatalf("Failed to get exchange: %v", err)
	}
	if retrieved.Answer != "Down the road." {
		t.Errorf("Expected stored answer, got %q", retrieved.Answer)
	}

	// Stored exchanges are copies
	retrieved.Answer = "changed"
	again, _ := repo.GetByID(ctx, exchange.ID)
	if again.Answer != "Down the road." {
		t.Error("Expected repository to be isolated from caller mutations")
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repositories.ErrExchangeNotFound) {
		t.Errorf("Expected ErrExchangeNotFound, got %v", err)
	}
}

func TestMemoryExchangeRepository_Validation(t *testing.T) {
	repo := NewMemoryExchangeRepository(0)

	if err := repo.Create(context.Background(), nil); err == nil {
		t.Error("Expected error for nil exchange")
	}
	if err := repo.Create(context.Background(), entities.NewExchange("  ")); err == nil {
		t.Error("Expected error for blank question")
	}
	if repo.Count() != 0 {
		t.Errorf("Expected no stored exchanges, got %d", repo.Count())
	}
}

func TestMemoryExchangeRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExchangeRepository(0)

	base := time.Now()
	for i, question := range []string{"first", "second", "third"} {
		exchange := entities.NewExchange(question)
		exchange.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, exchange); err != nil {
			t.Fatalf("Failed to create exchange: %v", err)
		}
	}

	tests := []struct {
		limit int
		want  []string
	}{
		{2, []string{"third", "second"}},
		{10, []string{"third", "second", "first"}},
		{0, []string{}},
	}

	for _, tt := range tests {
		recent, err := repo.ListRecent(ctx, tt.limit)
		if err != nil {
			t.Fatalf("ListRecent(%d) failed: %v", tt.limit, err)
		}
		if len(recent) != len(tt.want) {
			t.Fatalf("ListRecent(%d): expected %d exchanges, got %d", tt.limit, len(tt.want), len(recent))
		}
		for i, question := range tt.want {
			if recent[i].Question != question {
				t.Errorf("ListRecent(%d)[%d]: expected %q, got %q", tt.limit, i, question, recent[i].Question)
			}
		}
	}
}

func TestMemoryExchangeRepository_DropsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExchangeRepository(3)

	base := time.Now()
	ids := make([]string, 0, 5)
	for i, question := range []string{"one", "two", "three", "four", "five"} {
		exchange := entities.NewExchange(question)
		exchange.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, exchange); err != nil {
			t.Fatalf("Failed to create exchange: %v", err)
		}
		ids = append(ids, exchange.ID)
	}

	if repo.Count() != 3 {
		t.Fatalf("Expected 3 stored exchanges, got %d", repo.Count())
	}

	for _, id := range ids[:2] {
		if _, err := repo.GetByID(ctx, id); !errors.Is(err, repositories.ErrExchangeNotFound) {
			t.Errorf("Expected oldest exchange %s to be dropped, got %v", id, err)
		}
	}

	recent, _ := repo.ListRecent(ctx, 10)
	if len(recent) != 3 || recent[0].Question != "five" || recent[2].Question != "three" {
		t.Errorf("Expected five, four, three, got %+v", recent)
	}
}

func TestMemoryExchangeRepository_DefaultCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryExchangeRepository(0)

	for i := 0; i < DefaultExchangeCapacity+20; i++ {
		if err := repo.Create(ctx, entities.NewExchange("again?")); err != nil {
			t.Fatalf("Failed to create exchange: %v", err)
		}
	}

	if repo.Count() != DefaultExchangeCapacity {
		t.Errorf("Expected %d stored exchanges, got %d", DefaultExchangeCapacity, repo.Count())
	}
}
