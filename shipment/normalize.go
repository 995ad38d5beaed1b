package shipment

import "time"

// timeLayouts the API uses. created_at/updated_at are RFC3339 timestamps,
// pickup_date/delivery_date are plain dates.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a timestamp the way the API writes them. Returns nil when
// the value is empty or not parseable, never an error.
func ParseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func coalesce(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

// Normalize maps one raw API record into the canonical shape. Pure, never
// fails: absent optional fields become zero values, legacy aliases
// (pickup_address, dropoff_address, job_number) are resolved so no other
// component has to know about them.
func Normalize(raw Raw) Shipment {
	s := Shipment{
		ID:               raw.ID,
		BookingReference: coalesce(raw.BookingReference, raw.JobNumber),
		CollectionFrom:   coalesce(raw.CollectionFrom, raw.PickupAddress),
		DeliverTo:        coalesce(raw.DeliverTo, raw.DropoffAddress),
	}
	if raw.CustomerName != nil {
		s.CustomerName = *raw.CustomerName
	}
	s.PickupDate = parseOptional(raw.PickupDate)
	s.DeliveryDate = parseOptional(raw.DeliveryDate)
	if raw.Status != nil {
		s.Status = Status(*raw.Status)
	}
	if raw.ShipmentType != nil {
		s.ShipmentType = *raw.ShipmentType
	}
	if raw.RevenueAmount != nil {
		s.RevenueAmount = *raw.RevenueAmount
	}
	if raw.CostAmount != nil {
		s.CostAmount = *raw.CostAmount
	}
	if raw.DriverCommission != nil {
		s.DriverCommission = *raw.DriverCommission
	}
	if raw.LorryNo != nil {
		s.LorryNo = *raw.LorryNo
	}
	if raw.LorryCompany != nil {
		s.LorryCompany = *raw.LorryCompany
	}
	if raw.DriverName != nil {
		s.DriverName = *raw.DriverName
	}
	if raw.DeliveryOrderNo != nil {
		s.DeliveryOrderNo = *raw.DeliveryOrderNo
	}
	if raw.CompanyInvoiceNo != nil {
		s.CompanyInvoiceNo = *raw.CompanyInvoiceNo
	}
	if raw.CreditorInvoiceNo != nil {
		s.CreditorInvoiceNo = *raw.CreditorInvoiceNo
	}
	if raw.PodImageURL != nil {
		s.PodImageURL = *raw.PodImageURL
	}
	if raw.CreditorInvoiceFileURL != nil {
		s.CreditorInvoiceFileURL = *raw.CreditorInvoiceFileURL
	}
	if raw.Remarks != nil {
		s.Remarks = *raw.Remarks
	}
	if t := parseOptional(raw.CreatedAt); t != nil {
		s.CreatedAt = *t
	}
	if t := parseOptional(raw.UpdatedAt); t != nil {
		s.UpdatedAt = *t
	}
	if raw.UpdatedByUserID != nil {
		s.UpdatedByUserID = *raw.UpdatedByUserID
	}
	return s
}

func parseOptional(value *string) *time.Time {
	if value == nil {
		return nil
	}
	return ParseTime(*value)
}

// ApplyTo patches dst with every field present on the raw record. Absent
// fields keep their current value, which is what makes a cache upsert a
// patch rather than a replace.
func (raw Raw) ApplyTo(dst *Shipment) {
	if v := coalesce(raw.BookingReference, raw.JobNumber); v != "" || raw.BookingReference != nil {
		dst.BookingReference = v
	}
	if raw.CustomerName != nil {
		dst.CustomerName = *raw.CustomerName
	}
	if raw.CollectionFrom != nil || raw.PickupAddress != nil {
		dst.CollectionFrom = coalesce(raw.CollectionFrom, raw.PickupAddress)
	}
	if raw.DeliverTo != nil || raw.DropoffAddress != nil {
		dst.DeliverTo = coalesce(raw.DeliverTo, raw.DropoffAddress)
	}
	if raw.PickupDate != nil {
		dst.PickupDate = ParseTime(*raw.PickupDate)
	}
	if raw.DeliveryDate != nil {
		dst.DeliveryDate = ParseTime(*raw.DeliveryDate)
	}
	if raw.Status != nil {
		dst.Status = Status(*raw.Status)
	}
	if raw.ShipmentType != nil {
		dst.ShipmentType = *raw.ShipmentType
	}
	if raw.RevenueAmount != nil {
		dst.RevenueAmount = *raw.RevenueAmount
	}
	if raw.CostAmount != nil {
		dst.CostAmount = *raw.CostAmount
	}
	if raw.DriverCommission != nil {
		dst.DriverCommission = *raw.DriverCommission
	}
	if raw.LorryNo != nil {
		dst.LorryNo = *raw.LorryNo
	}
	if raw.LorryCompany != nil {
		dst.LorryCompany = *raw.LorryCompany
	}
	if raw.DriverName != nil {
		dst.DriverName = *raw.DriverName
	}
	if raw.DeliveryOrderNo != nil {
		dst.DeliveryOrderNo = *raw.DeliveryOrderNo
	}
	if raw.CompanyInvoiceNo != nil {
		dst.CompanyInvoiceNo = *raw.CompanyInvoiceNo
	}
	if raw.CreditorInvoiceNo != nil {
		dst.CreditorInvoiceNo = *raw.CreditorInvoiceNo
	}
	if raw.PodImageURL != nil {
		dst.PodImageURL = *raw.PodImageURL
	}
	if raw.CreditorInvoiceFileURL != nil {
		dst.CreditorInvoiceFileURL = *raw.CreditorInvoiceFileURL
	}
	if raw.Remarks != nil {
		dst.Remarks = *raw.Remarks
	}
	if t := parseOptional(raw.CreatedAt); t != nil {
		dst.CreatedAt = *t
	}
	if t := parseOptional(raw.UpdatedAt); t != nil {
		dst.UpdatedAt = *t
	}
	if raw.UpdatedByUserID != nil {
		dst.UpdatedByUserID = *raw.UpdatedByUserID
	}
}
