package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"trailmarket/internal/config"
	"trailmarket/internal/domain"
	"trailmarket/internal/metrics"
)

// LedgerExporter writes the full transaction ledger as an xlsx report.
type LedgerExporter interface {
	WriteReport(ctx context.Context, w io.Writer) error
}

// HTTPServer exposes the booking, chat and ledger REST surface plus the
// websocket endpoint.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	chats    domain.ChatService
	repo     domain.Repository
	exporter LedgerExporter
	gateway  http.Handler
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	chats domain.ChatService,
	repo domain.Repository,
	exporter LedgerExporter,
	gateway http.Handler,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		chats:    chats,
		repo:     repo,
		exporter: exporter,
		gateway:  gateway,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBooking)
	mux.HandleFunc("/api/v1/chats", srv.handleChats)
	mux.HandleFunc("/api/v1/chats/", srv.handleChat)
	mux.HandleFunc("/api/v1/messages/", srv.handleMessage)
	mux.HandleFunc("/api/v1/notifications", srv.handleNotifications)
	mux.HandleFunc("/api/v1/transactions", srv.handleTransactions)
	mux.HandleFunc("/api/v1/ledger/export", srv.handleLedgerExport)
	mux.HandleFunc("/healthz", srv.handleHealth)
	if gateway != nil {
		mux.Handle("/ws", gateway)
	}

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv
}

// Handler exposes the composed handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeData wraps a successful response in the {msg, data} envelope.
func writeData(w http.ResponseWriter, msg string, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"msg": msg, "data": data})
}

func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, map[string]any{"msg": msg})
}
