package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

// Notification stores in-app notification payloads addressed to one user.
type Notification struct {
	ID      uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID  uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Type    enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Message string                 `gorm:"column:message;type:text;not null"`
	// RelatedItemID points at the counterpart item of the match the
	// recipient is being told about.
	RelatedItemID *uuid.UUID `gorm:"column:related_item_id;type:uuid"`
	// ItemStatus names which side of the pair the recipient owns.
	ItemStatus *enums.ItemStatus `gorm:"column:item_status;type:item_status"`
	ReadAt     *time.Time        `gorm:"column:read_at;type:timestamptz"`
	CreatedAt  time.Time         `gorm:"column:created_at;type:timestamptz;default:now()"`
}
