package storage

import (
	"sync"

	"github.com/macrocam/macrocam/internal/models"
)

// AnalysisStore keeps the most recent analyses in memory.
type AnalysisStore struct {
	analyses map[string]*models.Analysis
	order    []string
	limit    int
	mu       sync.RWMutex
}

// New returns a store holding at most limit analyses; limit <= 0 keeps all.
func New(limit int) *AnalysisStore {
	return &AnalysisStore{
		analyses: make(map[string]*models.Analysis),
		limit:    limit,
	}
}

func (s *AnalysisStore) Get(id string) (*models.Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	analysis, exists := s.analyses[id]
	return analysis, exists
}

// Set stores analysis, evicting the oldest entries past the limit.
func (s *AnalysisStore) Set(analysis *models.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.analyses[analysis.ID]; !exists {
		s.order = append(s.order, analysis.ID)
	}
	s.analyses[analysis.ID] = analysis

	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.analyses, s.order[0])
		s.order = s.order[1:]
	}
}

// GetAll returns the stored analyses, newest first.
func (s *AnalysisStore) GetAll() []*models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Analysis, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		result = append(result, s.analyses[s.order[i]])
	}
	return result
}
