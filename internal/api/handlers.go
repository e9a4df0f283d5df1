package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trailmarket/internal/database"
	"trailmarket/internal/models"
	"trailmarket/internal/service"
)

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotAccepted), errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathSegments splits the path after the prefix: "/api/v1/bookings/12/status"
// with prefix "/api/v1/bookings/" yields ["12", "status"].
func pathSegments(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var booking models.Booking
		if err := decodeBody(r, &booking); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.bookings.Create(r.Context(), &booking); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "Booking request sent successfully", booking)

	case http.MethodGet:
		bookings, err := s.bookings.GetAll(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "ok", bookings)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/api/v1/bookings/")
	if len(segments) == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	// /bookings/renter/{id} and /bookings/owner/{id}
	if len(segments) == 2 && (segments[0] == "renter" || segments[0] == "owner") {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID, err := strconv.ParseInt(segments[1], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		var bookings []*models.Booking
		if segments[0] == "renter" {
			bookings, err = s.bookings.GetForRenter(r.Context(), userID)
		} else {
			bookings, err = s.bookings.GetForOwner(r.Context(), userID)
		}
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "ok", bookings)
		return
	}

	id, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			booking, err := s.bookings.Get(r.Context(), id)
			if err != nil {
				s.writeServiceError(w, err)
				return
			}
			writeData(w, "ok", booking)
		case http.MethodDelete:
			if err := s.bookings.Remove(r.Context(), id); err != nil {
				s.writeServiceError(w, err)
				return
			}
			writeData(w, "Booking deleted successfully", nil)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if len(segments) != 2 || r.Method != http.MethodPut {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch segments[1] {
	case "status":
		var body struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil || body.Status == "" {
			writeError(w, http.StatusBadRequest, "status is required")
			return
		}
		booking, err := s.bookings.ChangeStatus(r.Context(), id, body.Status)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "Status updated", booking)

	case "request-change":
		var body struct {
			StartDate string `json:"startDate"`
			EndDate   string `json:"endDate"`
			Notes     string `json:"notes"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		booking, err := s.bookings.RequestChange(r.Context(), id, body.StartDate, body.EndDate, body.Notes)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "Change request submitted", booking)

	case "sign-contract":
		booking, err := s.bookings.SignContract(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "Contract signed successfully", booking)

	case "payment-session":
		var body struct {
			SessionID string `json:"sessionId"`
		}
		if err := decodeBody(r, &body); err != nil || body.SessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}
		if err := s.bookings.SetPaymentSession(r.Context(), id, body.SessionID); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "Payment session saved", nil)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleChats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var body struct {
			Participants []int64 `json:"participants"`
		}
		if err := decodeBody(r, &body); err != nil || len(body.Participants) != 2 {
			writeError(w, http.StatusBadRequest, "exactly two participants are required")
			return
		}
		chat, err := s.chats.FindOrCreate(r.Context(), body.Participants[0], body.Participants[1])
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "ok", chat)

	case http.MethodGet:
		userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "userId query parameter is required")
			return
		}
		chats, err := s.chats.UserChats(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "ok", chats)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/api/v1/chats/")
	if len(segments) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	// /chats/user/{id} lists a user's chats.
	if segments[0] == "user" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		userID, err := strconv.ParseInt(segments[1], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		chats, err := s.chats.UserChats(r.Context(), userID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "ok", chats)
		return
	}

	chatID, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	switch segments[1] {
	case "messages":
		switch r.Method {
		case http.MethodGet:
			messages, err := s.chats.Messages(r.Context(), chatID)
			if err != nil {
				s.writeServiceError(w, err)
				return
			}
			writeData(w, "ok", messages)
		case http.MethodPost:
			var body struct {
				Sender  int64  `json:"sender"`
				Content string `json:"content"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			message, err := s.chats.SendMessage(r.Context(), chatID, body.Sender, body.Content)
			if err != nil {
				s.writeServiceError(w, err)
				return
			}
			writeData(w, "Message sent", message)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case "read":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			UserID int64 `json:"userId"`
		}
		if err := decodeBody(r, &body); err != nil || body.UserID == 0 {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		if err := s.chats.MarkChatRead(r.Context(), chatID, body.UserID); err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeData(w, "Chat marked as read", nil)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/api/v1/messages/")
	if len(segments) != 2 || segments[1] != "read" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	messageID, err := strconv.ParseInt(segments[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	var body struct {
		UserID int64 `json:"userId"`
	}
	if err := decodeBody(r, &body); err != nil || body.UserID == 0 {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	message, err := s.chats.MarkMessageRead(r.Context(), messageID, body.UserID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, "Message marked as read", message)
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	notifications, err := s.repo.GetUserNotifications(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, "ok", notifications)
}

func (s *HTTPServer) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}
	transactions, err := s.repo.GetUserTransactions(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeData(w, "ok", transactions)
}

func (s *HTTPServer) handleLedgerExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	filename := fmt.Sprintf("ledger_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.exporter.WriteReport(r.Context(), w); err != nil {
		s.logger.Error().Err(err).Msg("ledger export failed")
	}
}
