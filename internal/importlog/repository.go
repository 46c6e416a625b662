package importlog

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, run *ImportRun) error
	GetByFilter(ctx context.Context, filter RunFilter) ([]ImportRun, int64, error)
	GetByID(ctx context.Context, id string) (*ImportRun, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create inserts a new import run
func (r *repository) Create(ctx context.Context, run *ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByFilter retrieves import runs with filtering and pagination, newest first
func (r *repository) GetByFilter(ctx context.Context, filter RunFilter) ([]ImportRun, int64, error) {
	var runs []ImportRun
	var total int64

	query := r.db.WithContext(ctx).Model(&ImportRun{})
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// GetByID retrieves a specific import run
func (r *repository) GetByID(ctx context.Context, id string) (*ImportRun, error) {
	var run ImportRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
