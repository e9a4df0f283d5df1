package notify

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmarket/internal/events"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func newTestNotifier() (*OpsNotifier, *fakeBot) {
	logger := zerolog.Nop()
	bot := &fakeBot{}
	return &OpsNotifier{bot: bot, chatID: 42, logger: &logger}, bot
}

func TestOpsNotifierForwardsBookingEvents(t *testing.T) {
	notifier, bot := newTestNotifier()
	bus := events.NewEventBus()
	notifier.Register(bus)

	payload := events.BookingEventPayload{
		BookingID:    7,
		RenterID:     4,
		OwnerID:      9,
		TrailerID:    2,
		TrailerTitle: "Flatbed 6x12",
		Status:       "pending",
		StartDate:    "2026-09-10",
		EndDate:      "2026-09-14",
		Price:        240,
	}
	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Contains(t, bot.sent[0].Text, "New booking #7")
	assert.Contains(t, bot.sent[0].Text, "Flatbed 6x12")
}

func TestOpsNotifierStatusChange(t *testing.T) {
	notifier, bot := newTestNotifier()
	bus := events.NewEventBus()
	notifier.Register(bus)

	require.NoError(t, bus.PublishJSON(events.EventBookingStatusChanged, events.BookingEventPayload{
		BookingID: 7, TrailerTitle: "Flatbed", Status: "accepted",
	}))

	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, "is now accepted")
}

func TestOpsNotifierIgnoresMalformedPayload(t *testing.T) {
	notifier, bot := newTestNotifier()

	err := notifier.handleEvent(&events.Event{Type: events.EventBookingCreated, Payload: []byte("{bad")})
	assert.Error(t, err)
	assert.Empty(t, bot.sent)
}

func TestFormatOpsMessageFallbackTitle(t *testing.T) {
	text := formatOpsMessage(events.EventBookingContractSigned, events.BookingEventPayload{BookingID: 3, TrailerID: 8})
	assert.Contains(t, text, "trailer #8")

	assert.Empty(t, formatOpsMessage("unrelated", events.BookingEventPayload{}))
}
