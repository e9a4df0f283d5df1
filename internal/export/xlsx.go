package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"trailmarket/internal/domain"
	"trailmarket/internal/models"
)

const ledgerSheet = "Ledger"

// LedgerExporter renders the full transaction ledger as an xlsx workbook.
type LedgerExporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewLedgerExporter(repo domain.Repository, exportPath string, logger *zerolog.Logger) *LedgerExporter {
	return &LedgerExporter{repo: repo, path: exportPath, logger: logger}
}

// WriteReport streams the workbook to w.
func (e *LedgerExporter) WriteReport(ctx context.Context, w io.Writer) error {
	f, err := e.buildWorkbook(ctx)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveReport writes the workbook to the configured export directory and
// returns the file path.
func (e *LedgerExporter) SaveReport(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f, err := e.buildWorkbook(ctx)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("ledger_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("ledger export created")
	return filePath, nil
}

func (e *LedgerExporter) buildWorkbook(ctx context.Context) (*excelize.File, error) {
	transactions, err := e.repo.GetAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"ID", "User", "Booking", "Description", "Amount", "Status", "Created At"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ledgerSheet, cell, header)
		_ = f.SetCellStyle(ledgerSheet, cell, cell, headerStyle)
	}

	pendingStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
	})
	paidStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})

	var total float64
	for i, tx := range transactions {
		row := i + 2
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", row), tx.ID)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("B%d", row), tx.UserID)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("C%d", row), tx.BookingID)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("D%d", row), tx.Description)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", row), tx.Amount)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", row), tx.Status)
		_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("G%d", row), tx.CreatedAt.Format("2006-01-02 15:04:05"))

		statusCell := fmt.Sprintf("F%d", row)
		if tx.Status == models.TransactionPaid {
			_ = f.SetCellStyle(ledgerSheet, statusCell, statusCell, paidStyle)
			total += tx.Amount
		} else {
			_ = f.SetCellStyle(ledgerSheet, statusCell, statusCell, pendingStyle)
		}
	}

	totalRow := len(transactions) + 3
	_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("D%d", totalRow), "Total paid")
	_ = f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", totalRow), total)
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(ledgerSheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("E%d", totalRow), boldStyle)

	_ = f.SetColWidth(ledgerSheet, "A", "C", 10)
	_ = f.SetColWidth(ledgerSheet, "D", "D", 45)
	_ = f.SetColWidth(ledgerSheet, "E", "G", 18)

	return f, nil
}
