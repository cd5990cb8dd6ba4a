package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"licence-plate-checker/internal/model"
)

type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.ValidationAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ValidationAttempt, error) {
	var attempt model.ValidationAttempt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

type AttemptListFilter struct {
	CompactPlate *string
	Outcome      *model.AttemptOutcome
	Limit        int
}

// List returns attempts newest first.
func (r *AttemptRepository) List(ctx context.Context, filter AttemptListFilter) ([]model.ValidationAttempt, error) {
	query := r.listQuery(ctx, filter)
	var attempts []model.ValidationAttempt
	err := query.Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) listQuery(ctx context.Context, filter AttemptListFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.ValidationAttempt{})
	if filter.CompactPlate != nil {
		query = query.Where("compact_plate = ?", *filter.CompactPlate)
	}
	if filter.Outcome != nil {
		query = query.Where("outcome = ?", *filter.Outcome)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return query.Order("requested_at DESC")
}
