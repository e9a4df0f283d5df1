package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trailmarket/internal/models"
)

// UpsertAccount creates or refreshes the directory entry used for
// addressing notification emails.
func (db *DB) UpsertAccount(ctx context.Context, account *models.Account) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, email, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             name = excluded.name,
             email = excluded.email`,
		account.ID, account.Name, account.Email, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

func (db *DB) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	account := &models.Account{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM accounts WHERE id = ?`, id,
	).Scan(&account.ID, &account.Name, &account.Email, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
