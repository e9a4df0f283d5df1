package service

import (
	"context"
	"fmt"

	"trailmarket/internal/domain"
	"trailmarket/internal/events"
	"trailmarket/internal/metrics"
	"trailmarket/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo       domain.Repository
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	mailer     domain.Mailer
	logger     *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, mailer domain.Mailer, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:       repo,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		mailer:     mailer,
		logger:     logger,
	}
}

// Create stores a pending booking with its side effects: the renter/owner
// chat gets the request as a system message, and both parties are notified.
func (s *BookingService) Create(ctx context.Context, booking *models.Booking) error {
	if booking.UserID == 0 || booking.TrailerID == 0 || booking.StartDate == "" || booking.EndDate == "" {
		return ErrValidation
	}

	trailer, err := s.repo.GetTrailer(ctx, booking.TrailerID)
	if err != nil {
		return err
	}

	// Owner is resolved server-side, never trusted from the request.
	booking.OwnerID = trailer.OwnerID
	booking.Status = models.StatusPending
	booking.TotalPaid = 0
	booking.ContractSigned = false
	booking.ReturnStatus = models.ReturnStatusPending

	var systemMessage string
	if booking.Message != "" {
		systemMessage = fmt.Sprintf("📅 Booking Request for %q\nDates: %s to %s\nPrice: $%v\n\n%s",
			trailer.Title, booking.StartDate, booking.EndDate, booking.Price, booking.Message)
	}

	notifications := []models.Notification{
		{
			UserID:      booking.UserID,
			Title:       "Booking Request Sent",
			Description: fmt.Sprintf("Your booking request for %q has been sent. Waiting for owner approval.", trailer.Title),
		},
		{
			UserID:      booking.OwnerID,
			Title:       "New Booking Request",
			Description: fmt.Sprintf("You have a new booking request for your trailer %q. Please review and approve or reject.", trailer.Title),
		},
	}

	if err := s.repo.CreateBookingBundle(ctx, booking, systemMessage, notifications); err != nil {
		return err
	}
	metrics.IncNotifications(len(notifications))

	s.publishEvent(events.EventBookingCreated, booking, trailer.Title)
	s.enqueueSync(ctx, "upsert", booking, "")
	s.emailNotifications(ctx, notifications)

	return nil
}

// ChangeStatus sets the booking status and dispatches the side effects keyed
// on the new value. Unknown statuses are stored verbatim and notified with a
// generic text.
func (s *BookingService) ChangeStatus(ctx context.Context, id int64, status string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	title := s.trailerTitle(ctx, booking.TrailerID)

	notifications, entries := statusSideEffects(booking, title, status)

	if err := s.repo.UpdateBookingStatusBundle(ctx, id, status, notifications, entries); err != nil {
		return nil, err
	}
	metrics.IncNotifications(len(notifications))
	for _, entry := range entries {
		metrics.IncLedgerEntry(entry.Status)
	}

	booking.Status = status
	s.publishEvent(events.EventBookingStatusChanged, booking, title)
	s.enqueueSync(ctx, "update_status", booking, status)
	s.emailNotifications(ctx, notifications)

	return booking, nil
}

// statusSideEffects builds the notifications and ledger entries for a status
// value. Dispatch is flat on the value itself; there is no transition guard.
func statusSideEffects(booking *models.Booking, trailerTitle, status string) ([]models.Notification, []models.Transaction) {
	var notifications []models.Notification
	var entries []models.Transaction

	switch status {
	case models.StatusAccepted:
		notifications = []models.Notification{
			{
				UserID:      booking.UserID,
				Title:       "Booking Approved!",
				Description: fmt.Sprintf("Your booking for %q has been approved! Please sign the contract to proceed.", trailerTitle),
			},
			{
				UserID:      booking.OwnerID,
				Title:       "Booking Approved",
				Description: fmt.Sprintf("You approved the booking for %q. Waiting for renter to sign the contract.", trailerTitle),
			},
		}
		entries = []models.Transaction{
			{
				UserID:      booking.UserID,
				BookingID:   booking.ID,
				Description: fmt.Sprintf("Booking accepted for %q", trailerTitle),
				Amount:      booking.Price,
				Status:      models.TransactionPending,
			},
			{
				UserID:      booking.OwnerID,
				BookingID:   booking.ID,
				Description: fmt.Sprintf("Booking accepted for %q", trailerTitle),
				Amount:      booking.Price,
				Status:      models.TransactionPending,
			},
		}

	case models.StatusRejected:
		notifications = []models.Notification{
			{
				UserID:      booking.UserID,
				Title:       "Booking Rejected",
				Description: fmt.Sprintf("Your booking request for %q has been rejected by the owner.", trailerTitle),
			},
			{
				UserID:      booking.OwnerID,
				Title:       "Booking Rejected",
				Description: fmt.Sprintf("You rejected the booking for %q.", trailerTitle),
			},
		}

	case models.StatusCancelled:
		notifications = []models.Notification{
			{
				UserID:      booking.UserID,
				Title:       "Booking Cancelled",
				Description: fmt.Sprintf("Your booking for %q has been cancelled.", trailerTitle),
			},
			{
				UserID:      booking.OwnerID,
				Title:       "Booking Cancelled",
				Description: fmt.Sprintf("The booking for %q has been cancelled.", trailerTitle),
			},
		}

	case models.StatusPaid:
		notifications = []models.Notification{
			{
				UserID:      booking.UserID,
				Title:       "Payment Successful",
				Description: fmt.Sprintf("Your payment for %q has been received. Your booking is confirmed!", trailerTitle),
			},
			{
				UserID:      booking.OwnerID,
				Title:       "Payment Received",
				Description: fmt.Sprintf("Payment received for your trailer %q. The renter can now pick up the trailer.", trailerTitle),
			},
		}
		entries = []models.Transaction{
			{
				UserID:      booking.UserID,
				BookingID:   booking.ID,
				Description: fmt.Sprintf("Payment for %q", trailerTitle),
				Amount:      booking.Price,
				Status:      models.TransactionPaid,
			},
			{
				UserID:      booking.OwnerID,
				BookingID:   booking.ID,
				Description: fmt.Sprintf("Payment received for %q", trailerTitle),
				Amount:      booking.Price,
				Status:      models.TransactionPaid,
			},
		}

	case models.StatusCompleted:
		notifications = []models.Notification{
			{
				UserID:      booking.UserID,
				Title:       "Booking Completed",
				Description: fmt.Sprintf("Your booking for %q has been completed.", trailerTitle),
			},
			{
				UserID:      booking.OwnerID,
				Title:       "Booking Completed",
				Description: fmt.Sprintf("Booking for your trailer %q has been completed.", trailerTitle),
			},
		}

	default:
		notifications = []models.Notification{
			{
				UserID:      booking.UserID,
				Title:       fmt.Sprintf("Booking %s", status),
				Description: fmt.Sprintf("Your booking for %q has been %s.", trailerTitle, status),
			},
			{
				UserID:      booking.OwnerID,
				Title:       fmt.Sprintf("Booking %s", status),
				Description: fmt.Sprintf("Booking for your trailer %q has been %s.", trailerTitle, status),
			},
		}
	}

	return notifications, entries
}

// RequestChange overwrites the booking dates and notes and resets the status
// to pending so the owner re-reviews the request.
func (s *BookingService) RequestChange(ctx context.Context, id int64, startDate, endDate, notes string) (*models.Booking, error) {
	if startDate == "" || endDate == "" {
		return nil, ErrValidation
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	title := s.trailerTitle(ctx, booking.TrailerID)

	notifications := []models.Notification{
		{
			UserID:      booking.UserID,
			Title:       "Booking Change Requested",
			Description: fmt.Sprintf("Your request to modify booking dates for %q has been submitted.", title),
		},
		{
			UserID:      booking.OwnerID,
			Title:       "Booking Change Request",
			Description: fmt.Sprintf("The renter has requested new booking dates for your trailer %q.", title),
		},
	}

	if err := s.repo.RequestChangeBundle(ctx, id, startDate, endDate, notes, notifications); err != nil {
		return nil, err
	}
	metrics.IncNotifications(len(notifications))

	booking.StartDate = startDate
	booking.EndDate = endDate
	booking.Notes = notes
	booking.Status = models.StatusPending

	s.publishEvent(events.EventBookingChangeRequested, booking, title)
	s.enqueueSync(ctx, "upsert", booking, "")
	s.emailNotifications(ctx, notifications)

	return booking, nil
}

// SignContract flips the contract flag. Only accepted bookings can be signed.
func (s *BookingService) SignContract(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusAccepted {
		return nil, ErrNotAccepted
	}
	title := s.trailerTitle(ctx, booking.TrailerID)

	notifications := []models.Notification{
		{
			UserID:      booking.UserID,
			Title:       "Contract Signed",
			Description: fmt.Sprintf("You have signed the contract for %q. You can now proceed to payment.", title),
		},
		{
			UserID:      booking.OwnerID,
			Title:       "Contract Signed",
			Description: fmt.Sprintf("The renter has signed the contract for %q.", title),
		},
	}

	if err := s.repo.SignContractBundle(ctx, id, notifications); err != nil {
		return nil, err
	}
	metrics.IncNotifications(len(notifications))

	booking.ContractSigned = true
	s.publishEvent(events.EventBookingContractSigned, booking, title)
	s.emailNotifications(ctx, notifications)

	return booking, nil
}

func (s *BookingService) SetPaymentSession(ctx context.Context, id int64, sessionID string) error {
	return s.repo.SetPaymentSession(ctx, id, sessionID)
}

func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetAll(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.GetAllBookings(ctx)
}

func (s *BookingService) GetForRenter(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.repo.GetBookingsByRenter(ctx, userID)
}

func (s *BookingService) GetForOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	return s.repo.GetBookingsByOwner(ctx, ownerID)
}

func (s *BookingService) Remove(ctx context.Context, id int64) error {
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.enqueueSync(ctx, "delete", &models.Booking{ID: id}, "")
	return nil
}

func (s *BookingService) trailerTitle(ctx context.Context, trailerID int64) string {
	trailer, err := s.repo.GetTrailer(ctx, trailerID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("trailer_id", trailerID).Msg("failed to load trailer for notifications")
		return ""
	}
	return trailer.Title
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, trailerTitle string) {
	if s.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:    booking.ID,
		RenterID:     booking.UserID,
		OwnerID:      booking.OwnerID,
		TrailerID:    booking.TrailerID,
		TrailerTitle: trailerTitle,
		Status:       booking.Status,
		StartDate:    booking.StartDate,
		EndDate:      booking.EndDate,
		Price:        booking.Price,
		Notes:        booking.Notes,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking, status string) {
	if s.syncWorker == nil {
		return
	}
	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Warn().Err(err).Str("task_type", taskType).Int64("booking_id", booking.ID).Msg("failed to enqueue sync task")
	}
}

// emailNotifications mirrors in-app notifications to email, best effort. A
// missing account or a delivery failure never fails the booking operation.
func (s *BookingService) emailNotifications(ctx context.Context, notifications []models.Notification) {
	if s.mailer == nil {
		return
	}
	for _, n := range notifications {
		account, err := s.repo.GetAccount(ctx, n.UserID)
		if err != nil || account.Email == "" {
			continue
		}
		if err := s.mailer.Send(ctx, account.Email, n.Title, n.Description); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", n.UserID).Msg("failed to send notification email")
		}
	}
}
