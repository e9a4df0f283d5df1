package notify

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"trailmarket/internal/config"
	"trailmarket/internal/events"
)

// botSender is the slice of the Telegram API the notifier uses.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// OpsNotifier forwards booking events to an operations Telegram chat.
type OpsNotifier struct {
	bot    botSender
	chatID int64
	logger *zerolog.Logger
}

func NewOpsNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*OpsNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	return &OpsNotifier{bot: bot, chatID: cfg.OpsChatID, logger: logger}, nil
}

// Register subscribes the notifier to all booking events on the bus.
func (n *OpsNotifier) Register(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingStatusChanged,
		events.EventBookingChangeRequested,
		events.EventBookingContractSigned,
	} {
		bus.Subscribe(eventType, n.handleEvent)
	}
}

func (n *OpsNotifier) handleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode booking event")
		return err
	}

	text := formatOpsMessage(event.Type, payload)
	if text == "" {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("send ops notification")
		return err
	}
	return nil
}

func formatOpsMessage(eventType string, p events.BookingEventPayload) string {
	title := p.TrailerTitle
	if title == "" {
		title = fmt.Sprintf("trailer #%d", p.TrailerID)
	}

	switch eventType {
	case events.EventBookingCreated:
		return fmt.Sprintf("📋 New booking #%d\n%s\n%s to %s\nRenter %d, owner %d, $%v",
			p.BookingID, title, p.StartDate, p.EndDate, p.RenterID, p.OwnerID, p.Price)
	case events.EventBookingStatusChanged:
		return fmt.Sprintf("🔄 Booking #%d (%s) is now %s", p.BookingID, title, p.Status)
	case events.EventBookingChangeRequested:
		return fmt.Sprintf("✏️ Booking #%d (%s): renter requested new dates %s to %s",
			p.BookingID, title, p.StartDate, p.EndDate)
	case events.EventBookingContractSigned:
		return fmt.Sprintf("✍️ Booking #%d (%s): contract signed", p.BookingID, title)
	default:
		return ""
	}
}
