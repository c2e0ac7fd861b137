package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reclaimhq/reclaim-backend/internal/matching"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	"github.com/reclaimhq/reclaim-backend/pkg/pagination"
)

// Repository exposes persistence helpers for item reports.
type Repository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, params ListItemsParams) ([]models.Item, *pagination.Cursor, error)
	FindCandidates(ctx context.Context, query matching.CandidateQuery) ([]models.Item, error)
	Approve(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ItemStatus) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListItemsParams narrows an item listing. Nil filters are skipped.
type ListItemsParams struct {
	Status       *enums.ItemStatus
	ReporterID   *uuid.UUID
	ApprovedOnly bool
	Limit        int
	Cursor       *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an items repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListItemsParams) ([]models.Item, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Item{}).Where("is_deleted = ?", false)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.ReporterID != nil {
		query = query.Where("reporter_id = ?", *params.ReporterID)
	}
	if params.ApprovedOnly {
		query = query.Where("is_approved = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.Item
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > normalized {
		items = items[:normalized]
		last := items[normalized-1]
		return items, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return items, nil, nil
}

func (r *repositoryImpl) FindCandidates(ctx context.Context, query matching.CandidateQuery) ([]models.Item, error) {
	var candidates []models.Item
	err := r.db.WithContext(ctx).
		Where("status = ?", query.Status).
		Where("is_approved = ? AND is_deleted = ?", true, false).
		Where("created_at >= ?", query.Since).
		Where("id <> ?", query.ExcludeID).
		Order("created_at ASC, id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repositoryImpl) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND is_deleted = ? AND is_approved = ?", id, false, false).
		UpdateColumn("is_approved", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ItemStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND is_deleted = ?", id, false).
		UpdateColumn("is_deleted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
