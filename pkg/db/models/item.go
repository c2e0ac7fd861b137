package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

// Item represents a lost or found report filed by a user.
//
// Category, subcategory, location and description are free text and all
// optional; the matching engine scores whatever subset is present.
type Item struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReporterID  uuid.UUID        `gorm:"column:reporter_id;type:uuid;not null;index"`
	Status      enums.ItemStatus `gorm:"column:status;type:item_status;not null;index"`
	Title       string           `gorm:"column:title;not null"`
	Category    *string          `gorm:"column:category"`
	Subcategory *string          `gorm:"column:subcategory"`
	Location    *string          `gorm:"column:location"`
	Description *string          `gorm:"column:description"`
	// IsApproved gates found items out of the candidate corpus until an
	// admin has reviewed them. Lost items are approved on creation.
	IsApproved bool      `gorm:"column:is_approved;not null;default:false"`
	IsDeleted  bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
