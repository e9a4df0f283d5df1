package database

import (
	"context"
	"testing"

	"trailmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotification(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n := &models.Notification{UserID: 7, Title: "Payment Received", Description: "Payment received for booking"}
	require.NoError(t, db.CreateNotification(ctx, n))
	require.NotZero(t, n.ID)

	got, err := db.GetUserNotifications(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Payment Received", got[0].Title)
}

func TestTransactionQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	booking := newTestBooking(1, 2, 10)
	entries := []models.Transaction{
		{UserID: 1, BookingID: 0, Description: "Rental charge", Amount: 240, Status: models.TransactionPending},
		{UserID: 2, BookingID: 0, Description: "Rental payout", Amount: 240, Status: models.TransactionPending},
	}
	require.NoError(t, db.CreateBookingBundle(ctx, booking, "", nil))
	for i := range entries {
		entries[i].BookingID = booking.ID
	}
	require.NoError(t, db.UpdateBookingStatusBundle(ctx, booking.ID, models.StatusPaid, nil, entries))

	byUser, err := db.GetUserTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	byBooking, err := db.GetBookingTransactions(ctx, booking.ID)
	require.NoError(t, err)
	assert.Len(t, byBooking, 2)

	all, err := db.GetAllTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpsertAccount(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := &models.Account{ID: 42, Name: "Dana", Email: "dana@example.com"}
	require.NoError(t, db.UpsertAccount(ctx, account))

	account.Email = "dana+new@example.com"
	require.NoError(t, db.UpsertAccount(ctx, account))

	got, err := db.GetAccount(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "dana+new@example.com", got.Email)

	_, err = db.GetAccount(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
