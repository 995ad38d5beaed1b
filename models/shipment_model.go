package models

import (
	"time"

	"gorm.io/gorm"
)

type Shipment struct {
	ID                     string `gorm:"primaryKey;size:36"`
	BookingReference       string `gorm:"uniqueIndex;size:32"`
	CustomerName           string
	CollectionFrom         string
	DeliverTo              string
	PickupDate             *time.Time
	DeliveryDate           *time.Time
	Status                 string `gorm:"index"`
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
	UpdatedBy              int
	DeletedAt              gorm.DeletedAt `gorm:"index"`
}
