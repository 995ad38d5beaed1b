package dashboard

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"freight-app/shipment"
)

// StatusAll is the sentinel meaning "no status filter".
const StatusAll = "all"

// Quick range presets for the delivery-ETA filter.
const (
	RangeAll    = "all"
	RangeToday  = "today"
	RangeWeek   = "week"
	RangeMonth  = "month"
	RangeCustom = "custom"
)

// Criteria is the current filter state. Status is an exact status value or
// StatusAll; Search is a case-insensitive substring; the ETA bounds are
// inclusive day bounds on the delivery date.
type Criteria struct {
	Status     string     `json:"statusFilter"`
	Search     string     `json:"search"`
	QuickRange string     `json:"quickRange"`
	ETAFrom    *time.Time `json:"etaFrom"`
	ETATo      *time.Time `json:"etaTo"`
}

func DefaultCriteria() Criteria {
	return Criteria{Status: StatusAll, QuickRange: RangeAll}
}

// RangeDates resolves a quick-range preset into explicit ETA bounds.
// Unknown presets (and "all") clear both bounds.
func RangeDates(preset string, now time.Time) (from, to *time.Time) {
	start := StartOfDay(now)
	end := EndOfDay(now)

	switch preset {
	case RangeToday:
		return &start, &end
	case RangeWeek:
		day := int(now.Weekday()) // 0 Sunday .. 6 Saturday
		diffToMonday := 1 - day
		if day == 0 {
			diffToMonday = -6
		}
		weekStart := StartOfDay(now.AddDate(0, 0, diffToMonday))
		weekEnd := EndOfDay(weekStart.AddDate(0, 0, 6))
		return &weekStart, &weekEnd
	case RangeMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		monthEnd := EndOfDay(monthStart.AddDate(0, 1, -1))
		return &monthStart, &monthEnd
	}
	return nil, nil
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
}

// Filter returns the shipments matching the criteria. Status, search and both
// ETA bounds must all pass. A shipment with no delivery ETA fails any active
// bound rather than slipping through.
func Filter(shipments []shipment.Shipment, c Criteria) []shipment.Shipment {
	term := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]shipment.Shipment, 0, len(shipments))
	for _, s := range shipments {
		if c.Status != "" && c.Status != StatusAll && string(s.Status) != c.Status {
			continue
		}
		if term != "" && !strings.Contains(searchText(s), term) {
			continue
		}
		if c.ETAFrom != nil {
			if s.DeliveryDate == nil || s.DeliveryDate.Before(StartOfDay(*c.ETAFrom)) {
				continue
			}
		}
		if c.ETATo != nil {
			if s.DeliveryDate == nil || s.DeliveryDate.After(EndOfDay(*c.ETATo)) {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// searchText renders the searchable fields of a shipment into one lower-cased
// blob, mirroring what the table shows.
func searchText(s shipment.Shipment) string {
	parts := []string{
		s.BookingReference,
		s.CustomerName,
		s.CollectionFrom,
		s.DeliverTo,
		s.Remarks,
		s.ShipmentType,
		string(s.Status),
		s.LorryNo,
		s.LorryCompany,
		s.DriverName,
		s.DeliveryOrderNo,
		s.CompanyInvoiceNo,
		s.CreditorInvoiceNo,
		formatSearchDate(s.PickupDate),
		formatSearchDate(s.DeliveryDate),
		strconv.FormatFloat(s.RevenueAmount, 'f', -1, 64),
		strconv.FormatFloat(s.CostAmount, 'f', -1, 64),
		strconv.FormatFloat(s.DriverCommission, 'f', -1, 64),
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func formatSearchDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// ETASoonWindow is how far ahead a delivery ETA still counts as "soon".
const ETASoonWindow = 6 * time.Hour

// Metrics are the headline numbers derived from the full cache, not the
// filtered view.
type Metrics struct {
	Total          int
	DeliveredCount int
	InTransitCount int
	ActiveCount    int
	ETASoonCount   int
	CompletionRate int
}

func ComputeMetrics(shipments []shipment.Shipment, now time.Time) Metrics {
	m := Metrics{Total: len(shipments)}
	deadline := now.Add(ETASoonWindow)
	for _, s := range shipments {
		switch s.Status {
		case "Delivered", "Completed":
			m.DeliveredCount++
		case "PickedUp", "Assigned":
			m.InTransitCount++
		}
		if s.Status != "Delivered" && s.Status != "Completed" && s.Status != "Cancelled" {
			m.ActiveCount++
		}
		if s.DeliveryDate != nil && !s.DeliveryDate.Before(now) && !s.DeliveryDate.After(deadline) {
			m.ETASoonCount++
		}
	}
	if m.Total > 0 {
		m.CompletionRate = int(float64(m.DeliveredCount)/float64(m.Total)*100 + 0.5)
	}
	return m
}

// maxCritical caps the critical-shipment board.
const maxCritical = 6

// Critical ranks the not-yet-delivered shipments by urgency: soonest ETA
// first, falling back to creation time when the ETA is missing.
func Critical(shipments []shipment.Shipment) []shipment.Shipment {
	out := make([]shipment.Shipment, 0, len(shipments))
	for _, s := range shipments {
		switch s.Status {
		case "New", "Assigned", "PickedUp":
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return urgencyTime(out[i]).Before(urgencyTime(out[j]))
	})
	if len(out) > maxCritical {
		out = out[:maxCritical]
	}
	return out
}

func urgencyTime(s shipment.Shipment) time.Time {
	if s.DeliveryDate != nil {
		return *s.DeliveryDate
	}
	return s.CreatedAt
}

// Timeline event types, derived from the shipment status.
const (
	EventCustomer   = "customer"
	EventDispatch   = "dispatch"
	EventCheckpoint = "checkpoint"
	EventAlert      = "alert"
)

// maxTimeline caps the activity feed.
const maxTimeline = 8

type TimelineEntry struct {
	ShipmentID string
	Type       string
	Title      string
	Timestamp  time.Time
}

// Timeline lists the most recently touched shipments, newest first.
func Timeline(shipments []shipment.Shipment) []TimelineEntry {
	sorted := make([]shipment.Shipment, len(shipments))
	copy(sorted, shipments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return touchedAt(sorted[i]).After(touchedAt(sorted[j]))
	})
	if len(sorted) > maxTimeline {
		sorted = sorted[:maxTimeline]
	}

	out := make([]TimelineEntry, 0, len(sorted))
	for _, s := range sorted {
		eventType := EventAlert
		switch s.Status {
		case "Delivered", "Completed":
			eventType = EventCustomer
		case "PickedUp", "Assigned":
			eventType = EventDispatch
		case "New":
			eventType = EventCheckpoint
		}
		ref := s.BookingReference
		if ref == "" {
			ref = s.ID
		}
		out = append(out, TimelineEntry{
			ShipmentID: s.ID,
			Type:       eventType,
			Title:      string(s.Status) + " · " + ref,
			Timestamp:  touchedAt(s),
		})
	}
	return out
}

func touchedAt(s shipment.Shipment) time.Time {
	if !s.UpdatedAt.IsZero() {
		return s.UpdatedAt
	}
	return s.CreatedAt
}
