package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

type stubSupplierRepo struct {
	byID map[uuid.UUID]*models.Supplier
	err  error
}

func (s *stubSupplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubSupplierRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Supplier, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Supplier
	for _, id := range ids {
		if row, ok := s.byID[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func TestGetByIDMapsNotFound(t *testing.T) {
	svc, err := NewService(&stubSupplierRepo{byID: map[uuid.UUID]*models.Supplier{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetByID(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", appErr.Code())
	}
}

func TestGetByIDsReturnsKeyedMap(t *testing.T) {
	email := "orders@mill.example"
	a := &models.Supplier{ID: uuid.New(), Name: "Mill", OrderEmail: &email}
	b := &models.Supplier{ID: uuid.New(), Name: "Dairy"}
	repo := &stubSupplierRepo{byID: map[uuid.UUID]*models.Supplier{a.ID: a, b.ID: b}}

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	got, err := svc.GetByIDs(context.Background(), []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 suppliers, got %d", len(got))
	}
	if !got[a.ID].HasOrderEmail() {
		t.Fatalf("expected supplier %s to have an order email", a.ID)
	}
	if got[b.ID].HasOrderEmail() {
		t.Fatalf("expected supplier %s to lack an order email", b.ID)
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatalf("expected error for nil repository")
	}
}
