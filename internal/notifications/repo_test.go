package notifications

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/agriportal/agriportal-backend/pkg/db/models"
	"github.com/agriportal/agriportal-backend/pkg/enums"
	"github.com/agriportal/agriportal-backend/pkg/pagination"
)

func setupRepo(t *testing.T) Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Notification{}))
	return NewRepository(conn)
}

func seed(t *testing.T, repo Repository, email string) *models.Notification {
	t.Helper()
	n := &models.Notification{UserEmail: email, Type: enums.NotificationTypeSystem, Title: "hello", Message: "world"}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestMarkReadTwiceIsIdempotent(t *testing.T) {
	repo := setupRepo(t)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()
	n := seed(t, repo, "seller@example.com")

	require.NoError(t, svc.MarkRead(ctx, "seller@example.com", n.ID))
	require.NoError(t, svc.MarkRead(ctx, "seller@example.com", n.ID))

	page, err := svc.List(ctx, ListParams{Email: "seller@example.com"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsRead)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	n := seed(t, repo, "seller@example.com")

	res, err := repo.MarkRead(ctx, "intruder@example.com", n.ID)
	require.NoError(t, err)
	assert.False(t, res.Found)

	res, err = repo.MarkRead(ctx, "seller@example.com", uuid.New())
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	seed(t, repo, "seller@example.com")
	seed(t, repo, "seller@example.com")
	seed(t, repo, "other@example.com")

	count, err := repo.CountUnread(ctx, "seller@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	updated, err := repo.MarkAllRead(ctx, "seller@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	count, err = repo.CountUnread(ctx, "seller@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)

	unread, err := repo.List(ctx, listNotificationsParams{Email: "other@example.com", UnreadOnly: true, Page: pagination.Params{}})
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}
