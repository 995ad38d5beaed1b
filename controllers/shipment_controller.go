package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"freight-app/models"
	"freight-app/realtime"
)

var shipmentStatuses = map[string]bool{
	"New":       true,
	"Assigned":  true,
	"PickedUp":  true,
	"Delivered": true,
	"Completed": true,
	"Cancelled": true,
}

var shipmentTypes = map[string]bool{
	"In-House":  true,
	"Outsource": true,
}

type ShipmentController struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewShipmentController(db *gorm.DB, hub *realtime.Hub) *ShipmentController {
	return &ShipmentController{DB: db, Hub: hub}
}

func (c *ShipmentController) List(ctx *fiber.Ctx) error {
	skip := ctx.QueryInt("skip", 0)
	limit := ctx.QueryInt("limit", 100)
	if limit < 1 || limit > 500 {
		limit = 500
	}
	if skip < 0 {
		skip = 0
	}

	query := c.DB.Model(&models.Shipment{}).Order("created_at desc")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var shipments []models.Shipment
	if err := query.Offset(skip).Limit(limit).Find(&shipments).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to load shipments")
	}

	out := make([]fiber.Map, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, serializeShipment(s))
	}
	return ctx.Status(fiber.StatusOK).JSON(out)
}

func (c *ShipmentController) Get(ctx *fiber.Ctx) error {
	var s models.Shipment
	if err := c.DB.Where("id = ?", ctx.Params("id")).First(&s).Error; err != nil {
		return detail(ctx, fiber.StatusNotFound, "Shipment not found")
	}
	return ctx.Status(fiber.StatusOK).JSON(serializeShipment(s))
}

type CreateShipmentRequest struct {
	CustomerName           string  `json:"customer_name" validate:"required"`
	CollectionFrom         string  `json:"collection_from" validate:"required"`
	DeliverTo              string  `json:"deliver_to" validate:"required"`
	PickupDate             string  `json:"pickup_date" validate:"required"`
	DeliveryDate           string  `json:"delivery_date" validate:"required"`
	ShipmentType           string  `json:"shipment_type" validate:"required"`
	Status                 string  `json:"status"`
	RevenueAmount          float64 `json:"revenue_amount"`
	CostAmount             float64 `json:"cost_amount"`
	DriverCommission       float64 `json:"driver_commission"`
	LorryNo                string  `json:"lorry_no"`
	LorryCompany           string  `json:"lorry_company"`
	DriverName             string  `json:"driver_name"`
	DeliveryOrderNo        string  `json:"delivery_order_no"`
	CompanyInvoiceNo       string  `json:"company_invoice_no"`
	CreditorInvoiceNo      string  `json:"creditor_invoice_no"`
	PodImageURL            string  `json:"pod_image_url"`
	CreditorInvoiceFileURL string  `json:"creditor_invoice_file_url"`
	Remarks                string  `json:"remarks"`
}

func (c *ShipmentController) Create(ctx *fiber.Ctx) error {
	var input CreateShipmentRequest
	if err := ctx.BodyParser(&input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, err.Error())
	}

	if input.Status == "" {
		input.Status = "New"
	}
	if !shipmentStatuses[input.Status] {
		return detail(ctx, fiber.StatusBadRequest, "Invalid status: "+input.Status)
	}
	if !shipmentTypes[input.ShipmentType] {
		return detail(ctx, fiber.StatusBadRequest, "Invalid shipment type: "+input.ShipmentType)
	}

	pickup := parseDate(input.PickupDate)
	delivery := parseDate(input.DeliveryDate)
	if pickup == nil || delivery == nil {
		return detail(ctx, fiber.StatusBadRequest, "Invalid date format")
	}

	userID, _ := ctx.Locals("userID").(int)

	s := models.Shipment{
		ID:                     uuid.NewString(),
		CustomerName:           input.CustomerName,
		CollectionFrom:         input.CollectionFrom,
		DeliverTo:              input.DeliverTo,
		PickupDate:             pickup,
		DeliveryDate:           delivery,
		Status:                 input.Status,
		ShipmentType:           input.ShipmentType,
		RevenueAmount:          input.RevenueAmount,
		CostAmount:             input.CostAmount,
		DriverCommission:       input.DriverCommission,
		LorryNo:                input.LorryNo,
		LorryCompany:           input.LorryCompany,
		DriverName:             input.DriverName,
		DeliveryOrderNo:        input.DeliveryOrderNo,
		CompanyInvoiceNo:       input.CompanyInvoiceNo,
		CreditorInvoiceNo:      input.CreditorInvoiceNo,
		PodImageURL:            input.PodImageURL,
		CreditorInvoiceFileURL: input.CreditorInvoiceFileURL,
		Remarks:                input.Remarks,
		UpdatedBy:              userID,
	}

	if err := c.createWithBookingReference(&s); err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to create shipment")
	}

	payload := serializeShipment(s)
	c.Hub.Broadcast("created", payload)
	return ctx.Status(fiber.StatusCreated).JSON(payload)
}

// createWithBookingReference assigns a reference like SHP-2026-0042 and
// retries on a collision with a concurrent create.
func (c *ShipmentController) createWithBookingReference(s *models.Shipment) error {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SHP-%d-", year)

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		var count int64
		if err = c.DB.Unscoped().Model(&models.Shipment{}).
			Where("booking_reference LIKE ?", prefix+"%").
			Count(&count).Error; err != nil {
			return err
		}

		s.BookingReference = fmt.Sprintf("%s%04d", prefix, count+1+int64(attempt))
		if err = c.DB.Create(s).Error; err == nil {
			return nil
		}
	}
	return err
}

// UpdateShipmentRequest is a sparse patch. Pointer fields distinguish an
// absent field from one set to its zero value.
type UpdateShipmentRequest struct {
	CustomerName           *string  `json:"customer_name"`
	CollectionFrom         *string  `json:"collection_from"`
	DeliverTo              *string  `json:"deliver_to"`
	PickupDate             *string  `json:"pickup_date"`
	DeliveryDate           *string  `json:"delivery_date"`
	Status                 *string  `json:"status"`
	ShipmentType           *string  `json:"shipment_type"`
	RevenueAmount          *float64 `json:"revenue_amount"`
	CostAmount             *float64 `json:"cost_amount"`
	DriverCommission       *float64 `json:"driver_commission"`
	LorryNo                *string  `json:"lorry_no"`
	LorryCompany           *string  `json:"lorry_company"`
	DriverName             *string  `json:"driver_name"`
	DeliveryOrderNo        *string  `json:"delivery_order_no"`
	CompanyInvoiceNo       *string  `json:"company_invoice_no"`
	CreditorInvoiceNo      *string  `json:"creditor_invoice_no"`
	PodImageURL            *string  `json:"pod_image_url"`
	CreditorInvoiceFileURL *string  `json:"creditor_invoice_file_url"`
	Remarks                *string  `json:"remarks"`
}

func (c *ShipmentController) Update(ctx *fiber.Ctx) error {
	var s models.Shipment
	if err := c.DB.Where("id = ?", ctx.Params("id")).First(&s).Error; err != nil {
		return detail(ctx, fiber.StatusNotFound, "Shipment not found")
	}

	var input UpdateShipmentRequest
	if err := ctx.BodyParser(&input); err != nil {
		return detail(ctx, fiber.StatusBadRequest, "Invalid request body")
	}

	if input.Status != nil && !shipmentStatuses[*input.Status] {
		return detail(ctx, fiber.StatusBadRequest, "Invalid status: "+*input.Status)
	}
	if input.ShipmentType != nil && !shipmentTypes[*input.ShipmentType] {
		return detail(ctx, fiber.StatusBadRequest, "Invalid shipment type: "+*input.ShipmentType)
	}

	if input.CustomerName != nil {
		s.CustomerName = *input.CustomerName
	}
	if input.CollectionFrom != nil {
		s.CollectionFrom = *input.CollectionFrom
	}
	if input.DeliverTo != nil {
		s.DeliverTo = *input.DeliverTo
	}
	if input.PickupDate != nil {
		if parsed := parseDate(*input.PickupDate); parsed != nil {
			s.PickupDate = parsed
		} else {
			return detail(ctx, fiber.StatusBadRequest, "Invalid pickup date")
		}
	}
	if input.DeliveryDate != nil {
		if parsed := parseDate(*input.DeliveryDate); parsed != nil {
			s.DeliveryDate = parsed
		} else {
			return detail(ctx, fiber.StatusBadRequest, "Invalid delivery date")
		}
	}
	if input.Status != nil {
		s.Status = *input.Status
	}
	if input.ShipmentType != nil {
		s.ShipmentType = *input.ShipmentType
	}
	if input.RevenueAmount != nil {
		s.RevenueAmount = *input.RevenueAmount
	}
	if input.CostAmount != nil {
		s.CostAmount = *input.CostAmount
	}
	if input.DriverCommission != nil {
		s.DriverCommission = *input.DriverCommission
	}
	if input.LorryNo != nil {
		s.LorryNo = *input.LorryNo
	}
	if input.LorryCompany != nil {
		s.LorryCompany = *input.LorryCompany
	}
	if input.DriverName != nil {
		s.DriverName = *input.DriverName
	}
	if input.DeliveryOrderNo != nil {
		s.DeliveryOrderNo = *input.DeliveryOrderNo
	}
	if input.CompanyInvoiceNo != nil {
		s.CompanyInvoiceNo = *input.CompanyInvoiceNo
	}
	if input.CreditorInvoiceNo != nil {
		s.CreditorInvoiceNo = *input.CreditorInvoiceNo
	}
	if input.PodImageURL != nil {
		s.PodImageURL = *input.PodImageURL
	}
	if input.CreditorInvoiceFileURL != nil {
		s.CreditorInvoiceFileURL = *input.CreditorInvoiceFileURL
	}
	if input.Remarks != nil {
		s.Remarks = *input.Remarks
	}

	userID, _ := ctx.Locals("userID").(int)
	s.UpdatedBy = userID

	if err := c.DB.Save(&s).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to update shipment")
	}

	payload := serializeShipment(s)
	c.Hub.Broadcast("updated", payload)
	return ctx.Status(fiber.StatusOK).JSON(payload)
}

func (c *ShipmentController) Delete(ctx *fiber.Ctx) error {
	var s models.Shipment
	if err := c.DB.Where("id = ?", ctx.Params("id")).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail(ctx, fiber.StatusNotFound, "Shipment not found")
		}
		return detail(ctx, fiber.StatusInternalServerError, "Failed to load shipment")
	}

	if err := c.DB.Delete(&s).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to delete shipment")
	}

	c.Hub.Broadcast("deleted", fiber.Map{"id": s.ID})
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Export writes the shipment list as an xlsx workbook. Money columns are
// only included for admins.
func (c *ShipmentController) Export(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.Shipment{}).Order("created_at desc")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var shipments []models.Shipment
	if err := query.Find(&shipments).Error; err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to load shipments")
	}

	role, _ := ctx.Locals("role").(string)
	includeAmounts := role == "admin"

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
	header = append(header, "Lorry No", "Lorry Company", "Driver Name", "Remarks")

	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for i, s := range shipments {
		row := []interface{}{
			s.BookingReference, s.CustomerName, s.CollectionFrom, s.DeliverTo,
			formatDateCell(s.PickupDate), formatDateCell(s.DeliveryDate),
			s.Status, s.ShipmentType,
		}
		if includeAmounts {
			row = append(row, s.RevenueAmount, s.CostAmount, s.DriverCommission)
		}
		row = append(row, s.LorryNo, s.LorryCompany, s.DriverName, s.Remarks)

		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := "shipments_" + time.Now().Format("20060102_150405") + ".xlsx"
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return detail(ctx, fiber.StatusInternalServerError, "Failed to write workbook")
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func formatDateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func serializeShipment(s models.Shipment) fiber.Map {
	return fiber.Map{
		"id":                        s.ID,
		"booking_reference":         s.BookingReference,
		"customer_name":             s.CustomerName,
		"collection_from":           s.CollectionFrom,
		"deliver_to":                s.DeliverTo,
		"pickup_date":               formatDatePtr(s.PickupDate),
		"delivery_date":             formatDatePtr(s.DeliveryDate),
		"status":                    s.Status,
		"shipment_type":             s.ShipmentType,
		"revenue_amount":            s.RevenueAmount,
		"cost_amount":               s.CostAmount,
		"driver_commission":         s.DriverCommission,
		"lorry_no":                  s.LorryNo,
		"lorry_company":             s.LorryCompany,
		"driver_name":               s.DriverName,
		"delivery_order_no":         s.DeliveryOrderNo,
		"company_invoice_no":        s.CompanyInvoiceNo,
		"creditor_invoice_no":       s.CreditorInvoiceNo,
		"pod_image_url":             s.PodImageURL,
		"creditor_invoice_file_url": s.CreditorInvoiceFileURL,
		"remarks":                   s.Remarks,
		"created_at":                s.CreatedAt.Format(time.RFC3339),
		"updated_at":                s.UpdatedAt.Format(time.RFC3339),
		"updated_by_user_id":        s.UpdatedBy,
	}
}

func formatDatePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
