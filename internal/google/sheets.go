package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"trailmarket/internal/models"
)

var errRowNotFound = errors.New("booking row not found")

// Booking rows live on the Bookings sheet, columns A:K:
// ID, Renter, Owner, Trailer, Start, End, Price, Status, Contract, Created, Updated.
const (
	bookingsSheet = "Bookings"
	idColumnRange = bookingsSheet + "!A:A"
)

// SheetsService mirrors bookings into a back-office spreadsheet. A row index
// cache avoids re-reading the ID column on every write.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
}

func NewSheetsService(credentialsFile, spreadsheetID string) (*SheetsService, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	service := &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := service.warmUpCache(ctx); err != nil {
			// First write falls back to a full column scan.
			return
		}
	}()

	return service, nil
}

// TestConnection reads a single cell to verify credentials and sharing.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	if _, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, bookingsSheet+"!A1").Context(ctx).Do(); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// UpsertBooking updates the booking's row or appends a new one.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return errors.New("booking is nil")
	}

	rowIdx, err := s.findBookingRow(ctx, booking.ID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return s.appendBooking(ctx, booking)
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:K%d", bookingsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// UpdateBookingStatus rewrites the status and updated-at cells.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	rowIdx, err := s.findBookingRow(ctx, bookingID)
	if err != nil {
		return err
	}

	statusRange := fmt.Sprintf("%s!H%d:H%d", bookingsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, statusRange, &sheets.ValueRange{
		Values: [][]interface{}{{status}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return err
	}

	updatedRange := fmt.Sprintf("%s!K%d:K%d", bookingsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, updatedRange, &sheets.ValueRange{
		Values: [][]interface{}{{time.Now().Format("2006-01-02 15:04:05")}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// DeleteBookingRow clears the booking's row.
func (s *SheetsService) DeleteBookingRow(ctx context.Context, bookingID int64) error {
	rowIdx, err := s.findBookingRow(ctx, bookingID)
	if err != nil {
		if errors.Is(err, errRowNotFound) {
			return nil
		}
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:K%d", bookingsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Clear(s.spreadsheetID, rangeData, &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err == nil {
		s.cacheMu.Lock()
		delete(s.rowCache, bookingID)
		s.cacheMu.Unlock()
	}
	return err
}

func (s *SheetsService) appendBooking(ctx context.Context, booking *models.Booking) error {
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, idColumnRange, &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(booking)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// findBookingRow returns the 1-based sheet row for a booking ID, scanning the
// ID column on a cache miss.
func (s *SheetsService) findBookingRow(ctx context.Context, bookingID int64) (int, error) {
	if bookingID == 0 {
		return 0, errors.New("booking id is required")
	}

	s.cacheMu.RLock()
	rowIdx, ok := s.rowCache[bookingID]
	s.cacheMu.RUnlock()
	if ok {
		return rowIdx, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, idColumnRange).Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if cellID(row[0]) == bookingID {
			rowIdx := i + 1
			s.cacheMu.Lock()
			s.rowCache[bookingID] = rowIdx
			s.cacheMu.Unlock()
			return rowIdx, nil
		}
	}

	return 0, errRowNotFound
}

func (s *SheetsService) warmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, idColumnRange).Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id := cellID(row[0]); id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

func cellID(v interface{}) int64 {
	switch cell := v.(type) {
	case float64:
		return int64(cell)
	case string:
		id, _ := strconv.ParseInt(cell, 10, 64)
		return id
	default:
		return 0
	}
}

func bookingRowValues(booking *models.Booking) []interface{} {
	return []interface{}{
		booking.ID,
		booking.UserID,
		booking.OwnerID,
		booking.TrailerID,
		booking.StartDate,
		booking.EndDate,
		booking.Price,
		booking.Status,
		booking.ContractSigned,
		booking.CreatedAt.Format("2006-01-02 15:04:05"),
		booking.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
