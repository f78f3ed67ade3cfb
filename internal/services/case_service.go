package services

import (
	"strconv"

	"droptrack/internal/models"
	"droptrack/internal/repositories"
)

// CaseService handles business logic for the global case catalog.
type CaseService struct {
	repo repositories.CaseRepository
}

// NewCaseService creates a new CaseService.
func NewCaseService(repo repositories.CaseRepository) *CaseService {
	return &CaseService{
		repo: repo,
	}
}

// ListCases retrieves all cases sorted by name, for the admin price form.
func (s *CaseService) ListCases() ([]models.CaseItem, error) {
	return s.repo.ListByName()
}

// ListCasesByReleaseDate retrieves all cases newest-first, for dropdowns.
func (s *CaseService) ListCasesByReleaseDate() ([]models.CaseItem, error) {
	return s.repo.ListByReleaseDateDesc()
}

// PriceMap returns case prices keyed by case name. Progress entries
// reference cases by name; a name missing from this map resolves to 0.
func (s *CaseService) PriceMap() (map[string]float64, error) {
	cases, err := s.repo.ListByName()
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(cases))
	for _, item := range cases {
		prices[item.CaseName] = item.CasePrice
	}
	return prices, nil
}

// ParsePrice converts raw admin form input to a price. Input handling is
// deliberately permissive: empty or unparseable strings become 0, negative
// values are clamped to 0.
func ParsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// SetPrice updates one case's price, clamping negative input to 0.
func (s *CaseService) SetPrice(caseID string, price float64) error {
	if price < 0 {
		price = 0
	}
	return s.repo.SetPrice(caseID, price)
}
