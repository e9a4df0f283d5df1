package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"trailmarket/internal/models"
)

func participantKey(a, b int64) (lo, hi int64, key string) {
	lo, hi = a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, fmt.Sprintf("%d:%d", lo, hi)
}

// findOrCreateChatTx resolves the single chat for an unordered participant
// pair. The INSERT OR IGNORE against the unique participant_key makes two
// concurrent callers converge on the same row.
func findOrCreateChatTx(ctx context.Context, tx *sql.Tx, a, b int64) (int64, error) {
	lo, hi, key := participantKey(a, b)

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO chats (participant_lo, participant_hi, participant_key, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		lo, hi, key, time.Now(), time.Now(),
	); err != nil {
		return 0, fmt.Errorf("failed to create chat: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM chats WHERE participant_key = ?`, key,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to load chat: %w", err)
	}
	return id, nil
}

func (db *DB) FindOrCreateChat(ctx context.Context, a, b int64) (*models.Chat, error) {
	var chatID int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		id, err := findOrCreateChatTx(ctx, tx, a, b)
		chatID = id
		return err
	})
	if err != nil {
		return nil, err
	}
	return db.GetChat(ctx, chatID)
}

func (db *DB) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	chat := &models.Chat{}
	var lo, hi int64
	err := db.QueryRowContext(ctx,
		`SELECT id, participant_lo, participant_hi, last_message, created_at, updated_at
         FROM chats WHERE id = ?`, id,
	).Scan(&chat.ID, &lo, &hi, &chat.LastMessage, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	chat.Participants = []int64{lo, hi}
	return chat, nil
}

func (db *DB) GetUserChats(ctx context.Context, userID int64) ([]*models.Chat, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, participant_lo, participant_hi, last_message, created_at, updated_at
         FROM chats WHERE participant_lo = ? OR participant_hi = ?
         ORDER BY updated_at DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat := &models.Chat{}
		var lo, hi int64
		if err := rows.Scan(&chat.ID, &lo, &hi, &chat.LastMessage, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chat.Participants = []int64{lo, hi}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// CreateMessage stores the message and refreshes the chat's last_message
// cache in one transaction.
func (db *DB) CreateMessage(ctx context.Context, message *models.Message) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO messages (chat_id, sender_id, content, created_at) VALUES (?, ?, ?, ?)`,
			message.ChatID, message.SenderID, message.Content, now,
		)
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		message.ID = id
		message.CreatedAt = now

		if _, err := tx.ExecContext(ctx,
			`UPDATE chats SET last_message = ?, updated_at = ? WHERE id = ?`,
			message.Content, now, message.ChatID,
		); err != nil {
			return fmt.Errorf("failed to update chat last message: %w", err)
		}
		return nil
	})
}

func (db *DB) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	query := `SELECT m.id, m.chat_id, m.sender_id, m.content, m.created_at,
                     COALESCE(GROUP_CONCAT(r.user_id), '')
              FROM messages m
              LEFT JOIN message_reads r ON r.message_id = m.id
              WHERE m.id = ?
              GROUP BY m.id`

	message := &models.Message{}
	var readBy string
	err := db.QueryRowContext(ctx, query, id).Scan(
		&message.ID, &message.ChatID, &message.SenderID, &message.Content, &message.CreatedAt, &readBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	message.ReadBy = parseReadBy(readBy)
	return message, nil
}

func (db *DB) GetChatMessages(ctx context.Context, chatID int64) ([]*models.Message, error) {
	query := `SELECT m.id, m.chat_id, m.sender_id, m.content, m.created_at,
                     COALESCE(GROUP_CONCAT(r.user_id), '')
              FROM messages m
              LEFT JOIN message_reads r ON r.message_id = m.id
              WHERE m.chat_id = ?
              GROUP BY m.id
              ORDER BY m.created_at ASC, m.id ASC`

	rows, err := db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message := &models.Message{}
		var readBy string
		if err := rows.Scan(&message.ID, &message.ChatID, &message.SenderID, &message.Content, &message.CreatedAt, &readBy); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		message.ReadBy = parseReadBy(readBy)
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// MarkMessageRead appends userID to the message's readBy set. Idempotent:
// re-reading an already read message is a no-op.
func (db *DB) MarkMessageRead(ctx context.Context, messageID, userID int64) error {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE id = ?`, messageID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check message: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO message_reads (message_id, user_id) VALUES (?, ?)`,
		messageID, userID,
	); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

// MarkChatRead marks every message in the chat not sent by userID as read by
// userID. The caller's own messages are never touched.
func (db *DB) MarkChatRead(ctx context.Context, chatID, userID int64) error {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO message_reads (message_id, user_id)
         SELECT id, ? FROM messages WHERE chat_id = ? AND sender_id != ?`,
		userID, chatID, userID,
	); err != nil {
		return fmt.Errorf("failed to mark chat read: %w", err)
	}
	return nil
}

func parseReadBy(raw string) []int64 {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		var id int64
		if _, err := fmt.Sscanf(p, "%d", &id); err == nil {
			out = append(out, id)
		}
	}
	return out
}
