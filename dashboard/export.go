package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"freight-app/shipment"
)

// ExportXLSX writes the given shipments (normally the filtered view) as a
// spreadsheet. Money columns are only included for privileged viewers.
func ExportXLSX(w io.Writer, shipments []shipment.Shipment, includeAmounts bool) error {
	f := excelize.NewFile()
	sheet := "Shipments"
	f.SetSheetName("Sheet1", sheet)

	header := []string{
		"Booking Reference", "Customer", "Collection From", "Deliver To",
		"Pickup Date", "Delivery Date", "Status", "Shipment Type",
	}
	if includeAmounts {
		header = append(header, "Revenue", "Cost", "Driver Commission")
	}
	header = append(header,
		"Lorry No", "Lorry Company", "Driver Name",
		"Delivery Order #", "Company Invoice #", "Creditor Invoice #",
		"POD URL", "Creditor Invoice URL", "Remarks",
	)
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, title)
	}

	for i, s := range shipments {
		ref := s.BookingReference
		if ref == "" {
			ref = s.ID
		}
		row := []interface{}{
			ref, s.CustomerName, s.CollectionFrom, s.DeliverTo,
			exportDate(s.PickupDate), exportDate(s.DeliveryDate),
			string(s.Status), s.ShipmentType,
		}
		if includeAmounts {
			row = append(row,
				fmt.Sprintf("%.2f", s.RevenueAmount),
				fmt.Sprintf("%.2f", s.CostAmount),
				fmt.Sprintf("%.2f", s.DriverCommission),
			)
		}
		row = append(row,
			s.LorryNo, s.LorryCompany, s.DriverName,
			s.DeliveryOrderNo, s.CompanyInvoiceNo, s.CreditorInvoiceNo,
			s.PodImageURL, s.CreditorInvoiceFileURL, s.Remarks,
		)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	if err := f.Write(w); err != nil {
		return err
	}
	return f.Close()
}

func exportDate(t *time.Time) string {
	if t == nil {
		return "--"
	}
	return t.Format("02 Jan 2006")
}
