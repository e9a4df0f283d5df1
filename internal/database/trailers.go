package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trailmarket/internal/models"
)

func (db *DB) CreateTrailer(ctx context.Context, trailer *models.Trailer) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO trailers (owner_id, title, city, price_per_day, created_at) VALUES (?, ?, ?, ?, ?)`,
		trailer.OwnerID, trailer.Title, trailer.City, trailer.PricePerDay, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create trailer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	trailer.ID = id
	trailer.CreatedAt = now
	return nil
}

func (db *DB) GetTrailer(ctx context.Context, id int64) (*models.Trailer, error) {
	trailer := &models.Trailer{}
	err := db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, city, price_per_day, created_at FROM trailers WHERE id = ?`, id,
	).Scan(&trailer.ID, &trailer.OwnerID, &trailer.Title, &trailer.City, &trailer.PricePerDay, &trailer.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trailer: %w", err)
	}
	return trailer, nil
}
