package shipment

import "time"

// Status of a shipment as exchanged with the API. Unknown values coming from
// the server are carried through as-is and rendered raw.
type Status string

const (
	StatusNew       Status = "New"
	StatusAssigned  Status = "Assigned"
	StatusPickedUp  Status = "PickedUp"
	StatusDelivered Status = "Delivered"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

const (
	TypeInHouse   = "In-House"
	TypeOutsource = "Outsource"
)

// Known reports whether s is one of the statuses the API defines.
func (s Status) Known() bool {
	switch s {
	case StatusNew, StatusAssigned, StatusPickedUp, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Shipment is the canonical in-memory shape every consumer works with.
// Legacy field aliases from the API are already resolved here.
type Shipment struct {
	ID                     string
	BookingReference       string
	CustomerName           string
	CollectionFrom         string
	DeliverTo              string
	PickupDate             *time.Time
	DeliveryDate           *time.Time // delivery ETA
	Status                 Status
	ShipmentType           string
	RevenueAmount          float64
	CostAmount             float64
	DriverCommission       float64
	LorryNo                string
	LorryCompany           string
	DriverName             string
	DeliveryOrderNo        string
	CompanyInvoiceNo       string
	CreditorInvoiceNo      string
	PodImageURL            string
	CreditorInvoiceFileURL string
	Remarks                string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	UpdatedByUserID        int
}

// Raw is one shipment record as the API returns it. Every field is a pointer
// so a partial record (a PATCH echo or a push payload) can be told apart from
// a record that sets a field to its zero value. Both the current field names
// and the legacy aliases are accepted.
type Raw struct {
	ID                     string   `json:"id"`
	BookingReference       *string  `json:"booking_reference,omitempty"`
	JobNumber              *string  `json:"job_number,omitempty"` // legacy alias for booking_reference
	CustomerName           *string  `json:"customer_name,omitempty"`
	CollectionFrom         *string  `json:"collection_from,omitempty"`
	PickupAddress          *string  `json:"pickup_address,omitempty"` // legacy alias for collection_from
	DeliverTo              *string  `json:"deliver_to,omitempty"`
	DropoffAddress         *string  `json:"dropoff_address,omitempty"` // legacy alias for deliver_to
	PickupDate             *string  `json:"pickup_date,omitempty"`
	DeliveryDate           *string  `json:"delivery_date,omitempty"`
	Status                 *string  `json:"status,omitempty"`
	ShipmentType           *string  `json:"shipment_type,omitempty"`
	RevenueAmount          *float64 `json:"revenue_amount,omitempty"`
	CostAmount             *float64 `json:"cost_amount,omitempty"`
	DriverCommission       *float64 `json:"driver_commission,omitempty"`
	LorryNo                *string  `json:"lorry_no,omitempty"`
	LorryCompany           *string  `json:"lorry_company,omitempty"`
	DriverName             *string  `json:"driver_name,omitempty"`
	DeliveryOrderNo        *string  `json:"delivery_order_no,omitempty"`
	CompanyInvoiceNo       *string  `json:"company_invoice_no,omitempty"`
	CreditorInvoiceNo      *string  `json:"creditor_invoice_no,omitempty"`
	PodImageURL            *string  `json:"pod_image_url,omitempty"`
	CreditorInvoiceFileURL *string  `json:"creditor_invoice_file_url,omitempty"`
	Remarks                *string  `json:"remarks,omitempty"`
	CreatedAt              *string  `json:"created_at,omitempty"`
	UpdatedAt              *string  `json:"updated_at,omitempty"`
	UpdatedByUserID        *int     `json:"updated_by_user_id,omitempty"`
}
