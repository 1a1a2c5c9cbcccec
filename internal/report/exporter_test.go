package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traveldesk/travel-approval/internal/domain/entity"
	"go.uber.org/zap"
)

func TestExport(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	requests := []*entity.TravelRequest{
		{
			ID: 1, UserID: 2, Destination: "Lisbon",
			DepartureDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			ReturnDate:    time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
			Status:        entity.StatusApproved,
			CreatedAt:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, UserID: 3, Destination: "Porto",
			DepartureDate:      time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			ReturnDate:         time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC),
			Status:             entity.StatusCanceled,
			CancellationReason: "plans changed",
			CreatedAt:          time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	f, err := exporter.Export(requests)
	require.NoError(t, err)
	defer f.Close()

	destination, err := f.GetCellValue(sheetName, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", destination)

	status, err := f.GetCellValue(sheetName, "F3")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCanceled, status)

	reason, err := f.GetCellValue(sheetName, "G3")
	require.NoError(t, err)
	assert.Equal(t, "plans changed", reason)

	header, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)
}

func TestExport_Empty(t *testing.T) {
	exporter := NewExporter(zap.NewNop())

	f, err := exporter.Export(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
