package storage

import (
	"fmt"
	"sync"
	"testing"

	"github.com/macrocam/macrocam/internal/models"
)

func ids(analyses []*models.Analysis) []string {
	out := make([]string, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, a.ID)
	}
	return out
}

func TestAnalysisStoreOrderAndEviction(t *testing.T) {
	store := New(2)
	store.Set(&models.Analysis{ID: "a"})
	store.Set(&models.Analysis{ID: "b"})
	store.Set(&models.Analysis{ID: "c"})

	if _, ok := store.Get("a"); ok {
		t.Error("Expected oldest analysis evicted")
	}

	got := ids(store.GetAll())
	if fmt.Sprint(got) != "[c b]" {
		t.Errorf("Expected [c b], got %v", got)
	}
}

func TestAnalysisStoreUpdateKeepsPosition(t *testing.T) {
	store := New(0)
	store.Set(&models.Analysis{ID: "a"})
	store.Set(&models.Analysis{ID: "b"})
	store.Set(&models.Analysis{ID: "a", Status: models.StatusSucceeded})

	got := ids(store.GetAll())
	if fmt.Sprint(got) != "[b a]" {
		t.Errorf("Expected [b a], got %v", got)
	}
	a, _ := store.Get("a")
	if a.Status != models.StatusSucceeded {
		t.Errorf("Expected updated analysis, got %+v", a)
	}
}

func TestAnalysisStoreConcurrentSet(t *testing.T) {
	store := New(50)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Set(&models.Analysis{ID: fmt.Sprintf("id-%d", i)})
		}(i)
	}
	wg.Wait()

	if n := len(store.GetAll()); n != 50 {
		t.Errorf("Expected 50 analyses, got %d", n)
	}
}
