package domain

import (
	"context"
	"time"

	"trailmarket/internal/models"
)

type Repository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBookingBundle(ctx context.Context, booking *models.Booking, systemMessage string, notifications []models.Notification) error
	UpdateBookingStatusBundle(ctx context.Context, id int64, status string, notifications []models.Notification, entries []models.Transaction) error
	RequestChangeBundle(ctx context.Context, id int64, startDate, endDate, notes string, notifications []models.Notification) error
	SignContractBundle(ctx context.Context, id int64, notifications []models.Notification) error
	SetPaymentSession(ctx context.Context, id int64, sessionID string) error
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
	GetBookingsByRenter(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error

	GetTrailer(ctx context.Context, id int64) (*models.Trailer, error)
	CreateTrailer(ctx context.Context, trailer *models.Trailer) error

	FindOrCreateChat(ctx context.Context, a, b int64) (*models.Chat, error)
	GetChat(ctx context.Context, id int64) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID int64) ([]*models.Chat, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	GetChatMessages(ctx context.Context, chatID int64) ([]*models.Message, error)
	MarkMessageRead(ctx context.Context, messageID, userID int64) error
	MarkChatRead(ctx context.Context, chatID, userID int64) error

	CreateNotification(ctx context.Context, n *models.Notification) error
	GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error)
	GetUserTransactions(ctx context.Context, userID int64) ([]*models.Transaction, error)
	GetBookingTransactions(ctx context.Context, bookingID int64) ([]*models.Transaction, error)
	GetAllTransactions(ctx context.Context) ([]*models.Transaction, error)

	UpsertAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id int64) (*models.Account, error)

	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error
}

// StateRepository holds short-lived gateway state: typing indicators and
// per-user socket event rate limits.
type StateRepository interface {
	SetTyping(ctx context.Context, chatID, userID int64, ttl time.Duration) error
	ClearTyping(ctx context.Context, chatID, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}

// SheetsWriter mirrors booking rows into the back-office spreadsheet.
type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
	DeleteBookingRow(ctx context.Context, bookingID int64) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type BookingService interface {
	Create(ctx context.Context, booking *models.Booking) error
	ChangeStatus(ctx context.Context, id int64, status string) (*models.Booking, error)
	RequestChange(ctx context.Context, id int64, startDate, endDate, notes string) (*models.Booking, error)
	SignContract(ctx context.Context, id int64) (*models.Booking, error)
	SetPaymentSession(ctx context.Context, id int64, sessionID string) error
	Get(ctx context.Context, id int64) (*models.Booking, error)
	GetAll(ctx context.Context) ([]*models.Booking, error)
	GetForRenter(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetForOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	Remove(ctx context.Context, id int64) error
}

type ChatService interface {
	FindOrCreate(ctx context.Context, a, b int64) (*models.Chat, error)
	UserChats(ctx context.Context, userID int64) ([]*models.Chat, error)
	SendMessage(ctx context.Context, chatID, senderID int64, content string) (*models.Message, error)
	Messages(ctx context.Context, chatID int64) ([]*models.Message, error)
	MarkMessageRead(ctx context.Context, messageID, userID int64) (*models.Message, error)
	MarkChatRead(ctx context.Context, chatID, userID int64) error
}
