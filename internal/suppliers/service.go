package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

type supplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Supplier, error)
}

// Service exposes supplier directory lookups.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*SupplierDTO, error)
}

type service struct {
	repo supplierRepository
}

// NewService builds a supplier service with the provided repository.
func NewService(repo supplierRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return FromModel(row), nil
}

func (s *service) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*SupplierDTO, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load suppliers")
	}
	out := make(map[uuid.UUID]*SupplierDTO, len(rows))
	for i := range rows {
		out[rows[i].ID] = FromModel(&rows[i])
	}
	return out, nil
}
