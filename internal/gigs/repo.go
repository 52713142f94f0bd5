package gigs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigboard/gigboard-backend/pkg/db/models"
)

// Repository is the read-only view of the gig catalog. The catalog is owned by
// another service; order creation only needs to resolve price and seller.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, gigID uuid.UUID) (*models.Gig, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gig repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, gigID uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	err := r.db.WithContext(ctx).
		Where("id = ?", gigID).
		First(&gig).Error
	if err != nil {
		return nil, err
	}
	return &gig, nil
}
