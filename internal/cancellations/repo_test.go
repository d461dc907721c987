package cancellations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/uteshop/uteshop-backend/pkg/db/models"
	"github.com/uteshop/uteshop-backend/pkg/enums"
	"github.com/uteshop/uteshop-backend/pkg/pagination"
)

func setupCancelTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}, &models.CancelRequest{}))
	return conn
}

func seedRequest(t *testing.T, conn *gorm.DB, orderID int64, status enums.CancelRequestStatus) *models.CancelRequest {
	t.Helper()
	request := &models.CancelRequest{
		OrderID: orderID,
		UserID:  3,
		Reason:  "no longer needed",
		Status:  status,
	}
	require.NoError(t, conn.Create(request).Error)
	return request
}

func TestHasPendingForOrder(t *testing.T) {
	conn := setupCancelTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedRequest(t, conn, 1, enums.CancelRequestStatusRejected)

	pending, err := repo.HasPendingForOrder(ctx, 1)
	require.NoError(t, err)
	assert.False(t, pending, "resolved requests do not block new ones")

	seedRequest(t, conn, 1, enums.CancelRequestStatusPending)

	pending, err = repo.HasPendingForOrder(ctx, 1)
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestUpdateIfPendingGuard(t *testing.T) {
	conn := setupCancelTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	request := seedRequest(t, conn, 1, enums.CancelRequestStatusPending)

	ok, err := repo.UpdateIfPending(ctx, request.ID, map[string]any{"status": enums.CancelRequestStatusApproved})
	require.NoError(t, err)
	assert.True(t, ok)

	// concurrent resolution loses the guard
	ok, err = repo.UpdateIfPending(ctx, request.ID, map[string]any{"status": enums.CancelRequestStatusRejected})
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CancelRequestStatusApproved, reloaded.Status)
}

func TestDeleteIfPendingGuard(t *testing.T) {
	conn := setupCancelTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	resolved := seedRequest(t, conn, 1, enums.CancelRequestStatusApproved)
	ok, err := repo.DeleteIfPending(ctx, resolved.ID)
	require.NoError(t, err)
	assert.False(t, ok, "resolved requests cannot be withdrawn")

	pending := seedRequest(t, conn, 2, enums.CancelRequestStatusPending)
	ok, err = repo.DeleteIfPending(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByID(ctx, pending.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	conn := setupCancelTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedRequest(t, conn, 1, enums.CancelRequestStatusPending)
	seedRequest(t, conn, 2, enums.CancelRequestStatusPending)
	seedRequest(t, conn, 3, enums.CancelRequestStatusRejected)

	status := enums.CancelRequestStatusPending
	requests, total, err := repo.List(ctx, ListFilters{Status: &status}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, requests, 2)
}
