package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trailmarket/internal/models"
)

func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO sync_queue (task_type, booking_id, payload, status, retry_count, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, ?, ?)`,
		task.TaskType, task.BookingID, task.Payload, task.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetPendingSyncTasks returns tasks ready to run: pending ones plus retries
// whose backoff delay has elapsed.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, task_type, booking_id, payload, status, retry_count, last_error, next_retry_at, created_at, updated_at
         FROM sync_queue
         WHERE status = 'pending' OR (status = 'retry' AND next_retry_at <= ?)
         ORDER BY created_at ASC LIMIT ?`,
		time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.SyncTask
	for rows.Next() {
		var task models.SyncTask
		var nextRetry sql.NullTime
		if err := rows.Scan(
			&task.ID, &task.TaskType, &task.BookingID, &task.Payload, &task.Status,
			&task.RetryCount, &task.LastError, &nextRetry, &task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		if nextRetry.Valid {
			task.NextRetryAt = &nextRetry.Time
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error {
	var next any
	if nextRetryAt != nil {
		next = *nextRetryAt
	}
	_, err := db.ExecContext(ctx,
		`UPDATE sync_queue
         SET status = ?, last_error = ?, next_retry_at = ?,
             retry_count = CASE WHEN ? = 'retry' THEN retry_count + 1 ELSE retry_count END,
             updated_at = ?
         WHERE id = ?`,
		status, lastError, next, status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync task: %w", err)
	}
	return nil
}
