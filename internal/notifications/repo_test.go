package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	notifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  message TEXT NOT NULL,
  related_item_id TEXT,
  item_status TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(notifications).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time) *models.Notification {
	t.Helper()

	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeMatch,
		Message:   "A found item may match your lost report",
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationsRepoListPaginates(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(t, db, uuid.New(), base)

	page, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	for _, notification := range page {
		assert.Equal(t, userID, notification.UserID)
	}

	rest, final, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	assert.Nil(t, final)
	require.Len(t, rest, 1)
}

func TestNotificationsRepoUnreadFilter(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	read := seedNotification(t, db, userID, time.Now().UTC().Add(-time.Minute))
	now := time.Now().UTC()
	require.NoError(t, db.Model(read).UpdateColumn("read_at", now).Error)
	unread := seedNotification(t, db, userID, time.Now().UTC())

	page, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, unread.ID, page[0].ID)
}

func TestNotificationsRepoMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	notification := seedNotification(t, db, userID, time.Now().UTC())

	mark, err := repo.MarkRead(ctx, userID, notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	// Second call finds the row but updates nothing.
	mark, err = repo.MarkRead(ctx, userID, notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)

	// Another user cannot touch it.
	mark, err = repo.MarkRead(ctx, uuid.New(), notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, mark.Found)
}

func TestNotificationsRepoMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	seedNotification(t, db, userID, time.Now().UTC().Add(-time.Minute))
	seedNotification(t, db, userID, time.Now().UTC())
	seedNotification(t, db, uuid.New(), time.Now().UTC())

	count, err := repo.MarkAllRead(ctx, userID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, page)
}