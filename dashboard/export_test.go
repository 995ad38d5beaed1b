package dashboard

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"freight-app/shipment"
)

func TestExportXLSXWithAmounts(t *testing.T) {
	eta := time.Date(2026, 2, 14, 16, 0, 0, 0, time.UTC)
	rows := []shipment.Shipment{{
		ID:               "s1",
		BookingReference: "SHP-2026-0001",
		CustomerName:     "Acme",
		Status:           shipment.StatusAssigned,
		DeliveryDate:     &eta,
		RevenueAmount:    2500.5,
	}}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, rows, true))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetRows("Shipments")
	require.NoError(t, err)
	require.Len(t, header, 2)
	assert.Contains(t, header[0], "Revenue")

	assert.Equal(t, "SHP-2026-0001", header[1][0])
	assert.Contains(t, header[1], "2500.50")
	assert.Contains(t, header[1], "14 Feb 2026")
}

func TestExportXLSXWithoutAmounts(t *testing.T) {
	rows := []shipment.Shipment{{ID: "s1", CustomerName: "Acme"}}

	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, rows, false))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheetRows, err := f.GetRows("Shipments")
	require.NoError(t, err)
	assert.NotContains(t, sheetRows[0], "Revenue")
	assert.NotContains(t, sheetRows[0], "Cost")

	// booking reference falls back to the id
	assert.Equal(t, "s1", sheetRows[1][0])
}
