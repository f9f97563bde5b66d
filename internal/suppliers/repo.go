package suppliers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
)

// Repository handles supplier directory persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to supplier operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a supplier by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// FindByIDs loads all suppliers matching the given IDs.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Supplier
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
