package repositories

import (
	"fmt"
	"sort"
	"sync"

	"droptrack/internal/models"

	"github.com/google/uuid"
)

// MockCaseRepository is an in-memory implementation of CaseRepository.
type MockCaseRepository struct {
	cases map[string]models.CaseItem
	mu    sync.RWMutex
}

// NewMockCaseRepository creates a new instance of MockCaseRepository.
func NewMockCaseRepository() *MockCaseRepository {
	return &MockCaseRepository{
		cases: make(map[string]models.CaseItem),
	}
}

// ListByName returns all cases ordered by name.
func (r *MockCaseRepository) ListByName() ([]models.CaseItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caseList := make([]models.CaseItem, 0, len(r.cases))
	for _, item := range r.cases {
		caseList = append(caseList, item)
	}
	sort.Slice(caseList, func(i, j int) bool {
		return caseList[i].CaseName < caseList[j].CaseName
	})
	return caseList, nil
}

// ListByReleaseDateDesc returns all cases newest-first.
func (r *MockCaseRepository) ListByReleaseDateDesc() ([]models.CaseItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caseList := make([]models.CaseItem, 0, len(r.cases))
	for _, item := range r.cases {
		caseList = append(caseList, item)
	}
	sort.Slice(caseList, func(i, j int) bool {
		return caseList[i].ReleaseDate.After(caseList[j].ReleaseDate)
	})
	return caseList, nil
}

// GetByID returns a case by its ID.
func (r *MockCaseRepository) GetByID(id string) (*models.CaseItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, models.ErrNotFound)
	}
	return &item, nil
}

// Create adds a new case.
func (r *MockCaseRepository) Create(item *models.CaseItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.cases[item.ID] = *item
	return nil
}

// SetPrice updates one case's price.
func (r *MockCaseRepository) SetPrice(id string, price float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.cases[id]
	if !ok {
		return fmt.Errorf("case %s: %w", id, models.ErrNotFound)
	}
	item.CasePrice = price
	r.cases[id] = item
	return nil
}
