// Package report renders travel request listings as spreadsheets for
// offline review.
package report

import (
	"fmt"
	"time"

	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Travel Requests"

var headers = []string{
	"ID", "User ID", "Destination", "Departure", "Return",
	"Status", "Cancellation Reason", "Rejection Reason", "Created At",
}

// Exporter renders travel requests into an xlsx workbook
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new report exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// Export builds a workbook with one row per request. The caller owns
// closing the returned file.
func (e *Exporter) Export(requests []*entity.TravelRequest) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
	}

	for i, request := range requests {
		row := i + 2
		values := []interface{}{
			request.ID,
			request.UserID,
			request.Destination,
			request.DepartureDate.Format("2006-01-02"),
			request.ReturnDate.Format("2006-01-02"),
			request.Status,
			request.CancellationReason,
			request.RejectionReason,
			request.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell: %w", err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", "I", 18); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	e.logger.Debug("Report exported", zap.Int("rows", len(requests)))
	return f, nil
}
