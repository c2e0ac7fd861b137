package matching

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

// Repository persists match rows with insert-once semantics on the
// (lost_item_id, found_item_id) pair.
type Repository interface {
	FindByPair(ctx context.Context, lostID, foundID uuid.UUID) (*models.Match, error)
	Record(ctx context.Context, match *models.Match) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MatchStatus) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a match repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindByPair(ctx context.Context, lostID, foundID uuid.UUID) (*models.Match, error) {
	var match models.Match
	err := r.db.WithContext(ctx).
		Where("lost_item_id = ? AND found_item_id = ?", lostID, foundID).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Record inserts the match unless the pair already exists. The unique index
// on the pair plus ON CONFLICT DO NOTHING absorbs the write race between two
// orchestrators scoring the same pair. When the row already exists it wins:
// match is overwritten with the stored record, frozen score included, and
// false is returned.
func (r *repositoryImpl) Record(ctx context.Context, match *models.Match) (bool, error) {
	if match.ID == uuid.Nil {
		match.ID = uuid.New()
	}
	if match.Status == "" {
		match.Status = enums.MatchStatusPending
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lost_item_id"}, {Name: "found_item_id"}},
			DoNothing: true,
		}).
		Create(match)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.FindByPair(ctx, match.LostItemID, match.FoundItemID)
	if err != nil {
		return false, err
	}
	*match = *existing
	return false, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MatchStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}
