package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trailmarket/internal/models"
)

const bookingColumns = `id, user_id, owner_id, trailer_id, start_date, end_date, price,
                 total_paid, status, message, notes, contract_signed, return_status,
                 final_total, stripe_session_id, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	var finalTotal sql.NullFloat64
	err := row.Scan(
		&b.ID, &b.UserID, &b.OwnerID, &b.TrailerID, &b.StartDate, &b.EndDate, &b.Price,
		&b.TotalPaid, &b.Status, &b.Message, &b.Notes, &b.ContractSigned, &b.ReturnStatus,
		&finalTotal, &b.StripeSession, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if finalTotal.Valid {
		b.FinalTotal = &finalTotal.Float64
	}
	return b, nil
}

// CreateBookingBundle persists a booking together with its creation side
// effects in a single transaction: the chat for the renter/owner pair is
// found or created, the optional system message is stored and cached as the
// chat's last message, and both notifications are recorded.
func (db *DB) CreateBookingBundle(ctx context.Context, booking *models.Booking, systemMessage string, notifications []models.Notification) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		query := `INSERT INTO bookings (
					user_id, owner_id, trailer_id, start_date, end_date, price,
					total_paid, status, message, notes, return_status, created_at, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, query,
			booking.UserID,
			booking.OwnerID,
			booking.TrailerID,
			booking.StartDate,
			booking.EndDate,
			booking.Price,
			booking.TotalPaid,
			booking.Status,
			booking.Message,
			booking.Notes,
			booking.ReturnStatus,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		booking.ID = id
		booking.CreatedAt = now
		booking.UpdatedAt = now

		chatID, err := findOrCreateChatTx(ctx, tx, booking.UserID, booking.OwnerID)
		if err != nil {
			return err
		}

		if systemMessage != "" {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO messages (chat_id, sender_id, content, created_at) VALUES (?, ?, ?, ?)`,
				chatID, booking.UserID, systemMessage, now,
			); err != nil {
				return fmt.Errorf("failed to create system message: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE chats SET last_message = ?, updated_at = ? WHERE id = ?`,
				systemMessage, now, chatID,
			); err != nil {
				return fmt.Errorf("failed to update chat last message: %w", err)
			}
		}

		return insertNotificationsTx(ctx, tx, notifications)
	})
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// UpdateBookingStatusBundle sets the status and records the dispatched
// notifications and ledger entries in one transaction.
func (db *DB) UpdateBookingStatusBundle(ctx context.Context, id int64, status string, notifications []models.Notification, entries []models.Transaction) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
			status, time.Now(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}

		if err := insertNotificationsTx(ctx, tx, notifications); err != nil {
			return err
		}
		return insertTransactionsTx(ctx, tx, entries)
	})
}

// RequestChangeBundle overwrites the booking dates and notes, resets the
// status to pending and records the change notifications.
func (db *DB) RequestChangeBundle(ctx context.Context, id int64, startDate, endDate, notes string, notifications []models.Notification) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET start_date = ?, end_date = ?, notes = ?, status = ?, updated_at = ? WHERE id = ?`,
			startDate, endDate, notes, models.StatusPending, time.Now(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update booking dates: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return insertNotificationsTx(ctx, tx, notifications)
	})
}

// SignContractBundle flips contract_signed and records the notifications.
func (db *DB) SignContractBundle(ctx context.Context, id int64, notifications []models.Notification) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET contract_signed = 1, updated_at = ? WHERE id = ?`,
			time.Now(), id,
		)
		if err != nil {
			return fmt.Errorf("failed to sign contract: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return insertNotificationsTx(ctx, tx, notifications)
	})
}

func (db *DB) SetPaymentSession(ctx context.Context, id int64, sessionID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET stripe_session_id = ?, updated_at = ? WHERE id = ?`,
		sessionID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set payment session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	return db.queryBookings(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (db *DB) GetBookingsByRenter(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func insertNotificationsTx(ctx context.Context, tx *sql.Tx, notifications []models.Notification) error {
	for _, n := range notifications {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notifications (user_id, title, description, created_at) VALUES (?, ?, ?, ?)`,
			n.UserID, n.Title, n.Description, time.Now(),
		); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}
	return nil
}

func insertTransactionsTx(ctx context.Context, tx *sql.Tx, entries []models.Transaction) error {
	for _, t := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_id, booking_id, description, amount, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			t.UserID, t.BookingID, t.Description, t.Amount, t.Status, time.Now(),
		); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
	}
	return nil
}
