package repositories

import (
	"errors"
	"fmt"

	"droptrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCaseRepository is a GORM implementation of CaseRepository.
type GORMCaseRepository struct {
	db *gorm.DB
}

// NewGORMCaseRepository creates a new instance of GORMCaseRepository.
func NewGORMCaseRepository(db *gorm.DB) *GORMCaseRepository {
	return &GORMCaseRepository{
		db: db,
	}
}

// ListByName retrieves all cases ordered by name.
func (r *GORMCaseRepository) ListByName() ([]models.CaseItem, error) {
	var cases []models.CaseItem
	if err := r.db.Order("case_name asc").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// ListByReleaseDateDesc retrieves all cases newest-first.
func (r *GORMCaseRepository) ListByReleaseDateDesc() ([]models.CaseItem, error) {
	var cases []models.CaseItem
	if err := r.db.Order("release_date desc").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to list cases by release date: %w", err)
	}
	return cases, nil
}

// GetByID retrieves a single case by its ID.
func (r *GORMCaseRepository) GetByID(id string) (*models.CaseItem, error) {
	var item models.CaseItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("case %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get case by ID %s: %w", id, err)
	}
	return &item, nil
}

// Create creates a new case in the database.
func (r *GORMCaseRepository) Create(item *models.CaseItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

// SetPrice updates one case's price.
func (r *GORMCaseRepository) SetPrice(id string, price float64) error {
	res := r.db.Model(&models.CaseItem{}).Where("id = ?", id).Update("case_price", price)
	if res.Error != nil {
		return fmt.Errorf("failed to set price for case %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("case %s: %w", id, models.ErrNotFound)
	}
	return nil
}
