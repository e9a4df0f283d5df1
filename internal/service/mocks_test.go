package service

import (
	"context"
	"time"

	"trailmarket/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockRepo) CreateBookingBundle(ctx context.Context, b *models.Booking, msg string, ns []models.Notification) error {
	return m.Called(ctx, b, msg, ns).Error(0)
}
func (m *mockRepo) UpdateBookingStatusBundle(ctx context.Context, id int64, status string, ns []models.Notification, es []models.Transaction) error {
	return m.Called(ctx, id, status, ns, es).Error(0)
}
func (m *mockRepo) RequestChangeBundle(ctx context.Context, id int64, start, end, notes string, ns []models.Notification) error {
	return m.Called(ctx, id, start, end, notes, ns).Error(0)
}
func (m *mockRepo) SignContractBundle(ctx context.Context, id int64, ns []models.Notification) error {
	return m.Called(ctx, id, ns).Error(0)
}
func (m *mockRepo) SetPaymentSession(ctx context.Context, id int64, sessionID string) error {
	return m.Called(ctx, id, sessionID).Error(0)
}
func (m *mockRepo) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByRenter(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockRepo) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) GetTrailer(ctx context.Context, id int64) (*models.Trailer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trailer), args.Error(1)
}
func (m *mockRepo) CreateTrailer(ctx context.Context, t *models.Trailer) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockRepo) FindOrCreateChat(ctx context.Context, a, b int64) (*models.Chat, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}
func (m *mockRepo) GetChat(ctx context.Context, id int64) (*models.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}
func (m *mockRepo) GetUserChats(ctx context.Context, userID int64) ([]*models.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Chat), args.Error(1)
}
func (m *mockRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	return m.Called(ctx, message).Error(0)
}
func (m *mockRepo) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}
func (m *mockRepo) GetChatMessages(ctx context.Context, chatID int64) ([]*models.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}
func (m *mockRepo) MarkMessageRead(ctx context.Context, messageID, userID int64) error {
	return m.Called(ctx, messageID, userID).Error(0)
}
func (m *mockRepo) MarkChatRead(ctx context.Context, chatID, userID int64) error {
	return m.Called(ctx, chatID, userID).Error(0)
}

func (m *mockRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockRepo) GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}
func (m *mockRepo) GetUserTransactions(ctx context.Context, userID int64) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
func (m *mockRepo) GetBookingTransactions(ctx context.Context, bookingID int64) ([]*models.Transaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}
func (m *mockRepo) GetAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *mockRepo) UpsertAccount(ctx context.Context, account *models.Account) error {
	return m.Called(ctx, account).Error(0)
}
func (m *mockRepo) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockRepo) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	return m.Called(ctx, task).Error(0)
}
func (m *mockRepo) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncTask), args.Error(1)
}
func (m *mockRepo) UpdateSyncTaskStatus(ctx context.Context, id int64, status, lastError string, nextRetryAt *time.Time) error {
	return m.Called(ctx, id, status, lastError, nextRetryAt).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error {
	return m.Called(ctx, taskType, bookingID, booking, status).Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}
