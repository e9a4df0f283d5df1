package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailmarket/internal/config"
	"trailmarket/internal/database"
	"trailmarket/internal/models"
	"trailmarket/internal/service"
)

type apiFixture struct {
	server *HTTPServer
	db     *database.DB
}

func setupAPI(t *testing.T, cfg config.APIConfig) *apiFixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	bookings := service.NewBookingService(db, nil, nil, nil, &logger)
	chats := service.NewChatService(db, &logger)

	srv := NewHTTPServer(cfg, bookings, chats, db, nil, nil, &logger)
	return &apiFixture{server: srv, db: db}
}

func (f *apiFixture) seedTrailer(t *testing.T, ownerID int64, title string) *models.Trailer {
	t.Helper()
	trailer := &models.Trailer{OwnerID: ownerID, Title: title, City: "Calgary", PricePerDay: 60}
	require.NoError(t, f.db.CreateTrailer(context.Background(), trailer))
	return trailer
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func openAPIConfig() config.APIConfig {
	return config.APIConfig{Enabled: true}
}

func TestCreateBookingEndpoint(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed 6x12")

	rec := f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID:    4,
		TrailerID: trailer.ID,
		StartDate: "2026-09-10",
		EndDate:   "2026-09-14",
		Price:     240,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var booking models.Booking
	env := decodeEnvelope(t, rec, &booking)
	assert.Equal(t, "Booking request sent successfully", env.Msg)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, trailer.OwnerID, booking.OwnerID)
	assert.Equal(t, models.StatusPending, booking.Status)
}

func TestCreateBookingEndpoint_UnknownTrailer(t *testing.T) {
	f := setupAPI(t, openAPIConfig())

	rec := f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID:    4,
		TrailerID: 404,
		StartDate: "2026-09-10",
		EndDate:   "2026-09-14",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookingEndpoint_InvalidBody(t *testing.T) {
	f := setupAPI(t, openAPIConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingStatusEndpoint(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed")

	rec := f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID: 4, TrailerID: trailer.ID, StartDate: "2026-09-10", EndDate: "2026-09-14", Price: 240,
	})
	var created models.Booking
	decodeEnvelope(t, rec, &created)

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/status", created.ID), map[string]string{"status": models.StatusAccepted})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Booking
	decodeEnvelope(t, rec, &updated)
	assert.Equal(t, models.StatusAccepted, updated.Status)
}

func TestBookingStatusEndpoint_MissingStatus(t *testing.T) {
	f := setupAPI(t, openAPIConfig())

	rec := f.do(t, http.MethodPut, "/api/v1/bookings/1/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignContractEndpoint_RequiresAccepted(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed")

	rec := f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID: 4, TrailerID: trailer.ID, StartDate: "2026-09-10", EndDate: "2026-09-14",
	})
	var created models.Booking
	decodeEnvelope(t, rec, &created)

	// Still pending, so signing is rejected.
	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/sign-contract", created.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/status", created.ID), map[string]string{"status": models.StatusAccepted})

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/sign-contract", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var signed models.Booking
	decodeEnvelope(t, rec, &signed)
	assert.True(t, signed.ContractSigned)
}

func TestBookingsByRoleEndpoints(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed")

	f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID: 4, TrailerID: trailer.ID, StartDate: "2026-09-10", EndDate: "2026-09-14",
	})

	var asRenter []*models.Booking
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/bookings/renter/4", nil), &asRenter)
	assert.Len(t, asRenter, 1)

	var asOwner []*models.Booking
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/bookings/owner/9", nil), &asOwner)
	assert.Len(t, asOwner, 1)

	var none []*models.Booking
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/bookings/renter/77", nil), &none)
	assert.Empty(t, none)
}

func TestDeleteBookingEndpoint(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed")

	rec := f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID: 4, TrailerID: trailer.ID, StartDate: "2026-09-10", EndDate: "2026-09-14",
	})
	var created models.Booking
	decodeEnvelope(t, rec, &created)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatEndpoints(t *testing.T) {
	f := setupAPI(t, openAPIConfig())

	rec := f.do(t, http.MethodPost, "/api/v1/chats", map[string][]int64{"participants": {4, 9}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var chat models.Chat
	decodeEnvelope(t, rec, &chat)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/chats/%d/messages", chat.ID), map[string]interface{}{
		"sender": 4, "content": "is the trailer free this weekend?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var message models.Message
	decodeEnvelope(t, rec, &message)

	var messages []*models.Message
	decodeEnvelope(t, f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/chats/%d/messages", chat.ID), nil), &messages)
	require.Len(t, messages, 1)

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/messages/%d/read", message.ID), map[string]int64{"userId": 9})
	require.Equal(t, http.StatusOK, rec.Code)
	var read models.Message
	decodeEnvelope(t, rec, &read)
	assert.Equal(t, []int64{9}, read.ReadBy)

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/chats/%d/read", chat.ID), map[string]int64{"userId": 9})
	assert.Equal(t, http.StatusOK, rec.Code)

	var chats []*models.Chat
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/chats?userId=4", nil), &chats)
	assert.Len(t, chats, 1)

	var byPath []*models.Chat
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/chats/user/4", nil), &byPath)
	assert.Len(t, byPath, 1)
}

func TestChatEndpoints_Validation(t *testing.T) {
	f := setupAPI(t, openAPIConfig())

	rec := f.do(t, http.MethodPost, "/api/v1/chats", map[string][]int64{"participants": {4}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/chats/999/messages", map[string]interface{}{"sender": 4, "content": "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/chats", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsEndpoint(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed")

	f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID: 4, TrailerID: trailer.ID, StartDate: "2026-09-10", EndDate: "2026-09-14",
	})

	var notifications []*models.Notification
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/notifications?userId=9", nil), &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New Booking Request", notifications[0].Title)
}

func TestTransactionsEndpoint(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	trailer := f.seedTrailer(t, 9, "Flatbed")

	rec := f.do(t, http.MethodPost, "/api/v1/bookings", models.Booking{
		UserID: 4, TrailerID: trailer.ID, StartDate: "2026-09-10", EndDate: "2026-09-14", Price: 240,
	})
	var created models.Booking
	decodeEnvelope(t, rec, &created)

	f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookings/%d/status", created.ID), map[string]string{"status": models.StatusAccepted})

	var transactions []*models.Transaction
	decodeEnvelope(t, f.do(t, http.MethodGet, "/api/v1/transactions?userId=4", nil), &transactions)
	require.Len(t, transactions, 1)
	assert.Equal(t, models.TransactionPending, transactions[0].Status)
}

func TestHealthEndpoint(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	f := setupAPI(t, openAPIConfig())
	rec := f.do(t, http.MethodPatch, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
