package database

import (
	"context"
	"fmt"
	"time"

	"trailmarket/internal/models"
)

func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, title, description, created_at) VALUES (?, ?, ?, ?)`,
		n.UserID, n.Title, n.Description, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.CreatedAt = now
	return nil
}

func (db *DB) GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, title, description, created_at
         FROM notifications WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (db *DB) GetUserTransactions(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	return db.queryTransactions(ctx,
		`SELECT id, user_id, booking_id, description, amount, status, created_at
         FROM transactions WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (db *DB) GetBookingTransactions(ctx context.Context, bookingID int64) ([]*models.Transaction, error) {
	return db.queryTransactions(ctx,
		`SELECT id, user_id, booking_id, description, amount, status, created_at
         FROM transactions WHERE booking_id = ? ORDER BY created_at ASC`, bookingID)
}

func (db *DB) GetAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return db.queryTransactions(ctx,
		`SELECT id, user_id, booking_id, description, amount, status, created_at
         FROM transactions ORDER BY created_at ASC`)
}

func (db *DB) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []*models.Transaction
	for rows.Next() {
		t := &models.Transaction{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookingID, &t.Description, &t.Amount, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}
