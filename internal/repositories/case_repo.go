package repositories

import "droptrack/internal/models"

// CaseRepository defines the interface for catalog data access. The catalog
// is global: every user reads it, only admins write prices.
type CaseRepository interface {
	// ListByName returns all cases ordered ascending by name, for the admin
	// price form.
	ListByName() ([]models.CaseItem, error)
	// ListByReleaseDateDesc returns all cases newest-first, for dropdowns.
	ListByReleaseDateDesc() ([]models.CaseItem, error)
	GetByID(id string) (*models.CaseItem, error)
	Create(item *models.CaseItem) error
	// SetPrice updates one case's price, or returns ErrNotFound.
	SetPrice(id string, price float64) error
}
