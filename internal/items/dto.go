package items

import (
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

// ItemDTO is the transport shape for one report.
type ItemDTO struct {
	ID          uuid.UUID        `json:"id"`
	ReporterID  uuid.UUID        `json:"reporter_id"`
	Status      enums.ItemStatus `json:"status"`
	Title       string           `json:"title"`
	Category    *string          `json:"category,omitempty"`
	Subcategory *string          `json:"subcategory,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Description *string          `json:"description,omitempty"`
	IsApproved  bool             `json:"is_approved"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func FromModel(item *models.Item) *ItemDTO {
	if item == nil {
		return nil
	}
	return &ItemDTO{
		ID:          item.ID,
		ReporterID:  item.ReporterID,
		Status:      item.Status,
		Title:       item.Title,
		Category:    item.Category,
		Subcategory: item.Subcategory,
		Location:    item.Location,
		Description: item.Description,
		IsApproved:  item.IsApproved,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ReportItemRequest is the payload for filing a lost or found report.
type ReportItemRequest struct {
	Status      string  `json:"status" validate:"required,oneof=lost found"`
	Title       string  `json:"title" validate:"required,max=200"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Subcategory *string `json:"subcategory,omitempty" validate:"omitempty,max=100"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// MatchSummary pairs one matched counterpart with its similarity score.
type MatchSummary struct {
	Item  *ItemDTO `json:"item"`
	Score float64  `json:"score"`
}

// ReportItemResponse returns the stored report plus any matches the
// submission triggered.
type ReportItemResponse struct {
	Item    *ItemDTO       `json:"item"`
	Matches []MatchSummary `json:"matches"`
}

// ListItemsQuery narrows an item listing.
type ListItemsQuery struct {
	Status     *enums.ItemStatus
	ReporterID *uuid.UUID
	Limit      int
	Cursor     string
}

// ListItemsResponse is one page of reports.
type ListItemsResponse struct {
	Items      []ItemDTO `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}
