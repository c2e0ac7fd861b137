package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

// Match records a scored pairing of one lost item with one found item.
// The (lost_item_id, found_item_id) pair is the natural key; a unique index
// backs the recorder's insert-once semantics.
type Match struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LostItemID  uuid.UUID         `gorm:"column:lost_item_id;type:uuid;not null;uniqueIndex:idx_matches_pair,priority:1"`
	FoundItemID uuid.UUID         `gorm:"column:found_item_id;type:uuid;not null;uniqueIndex:idx_matches_pair,priority:2"`
	Score       float64           `gorm:"column:score;type:numeric(3,2);not null"`
	Status      enums.MatchStatus `gorm:"column:status;type:match_status;not null;default:pending"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}
