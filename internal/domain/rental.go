package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusDraft     RentalStatus = "DRAFT"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusReturned  RentalStatus = "RETURNED"
	RentalStatusOverdue   RentalStatus = "OVERDUE"
	RentalStatusCancelled RentalStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
)

type RateType string

const (
	RateTypeHourly  RateType = "hourly"
	RateTypeDaily   RateType = "daily"
	RateTypeWeekly  RateType = "weekly"
	RateTypeMonthly RateType = "monthly"
)

// RentalItem is one equipment line on a rental. Rate is the unit price
// snapshotted at creation time; duration is in units implied by RateType.
// Subtotal is always rate × quantity × duration.
type RentalItem struct {
	ID            int32           `json:"id"`
	RentalID      int32           `json:"rental_id"`
	EquipmentID   int32           `json:"equipment_id"`
	EquipmentName string          `json:"equipment_name"`
	Quantity      int32           `json:"quantity"`
	RateType      RateType        `json:"rate_type"`
	Rate          decimal.Decimal `json:"rate"`
	Duration      int32           `json:"duration"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ConditionOut  string          `json:"condition_out,omitempty"`
	ConditionIn   string          `json:"condition_in,omitempty"`
	DamageNotes   string          `json:"damage_notes,omitempty"`
}

// Rental is an agreement for one customer over one or more equipment lines.
// Invariant at every recomputation point:
// TotalAmount == Subtotal + TaxAmount + DeliveryFee + PickupFee +
// AdditionalCharges − DiscountAmount + SecurityDeposit.
type Rental struct {
	ID           int32  `json:"id"`
	RentalNumber string `json:"rental_number"`
	CustomerID   int32  `json:"customer_id"`
	CustomerName string `json:"customer_name"`

	StartDate          time.Time  `json:"start_date"`
	ExpectedReturnDate time.Time  `json:"expected_return_date"`
	ActualReturnDate   *time.Time `json:"actual_return_date,omitempty"`

	Items []RentalItem `json:"items"`

	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	SecurityDeposit   decimal.Decimal `json:"security_deposit"`
	DeliveryRequired  bool            `json:"delivery_required"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	DeliveryAddress   string          `json:"delivery_address,omitempty"`
	PickupRequired    bool            `json:"pickup_required"`
	PickupFee         decimal.Decimal `json:"pickup_fee"`
	AdditionalCharges decimal.Decimal `json:"additional_charges"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	// OutstandingAmount is TotalAmount − PaidAmount and may be negative,
	// meaning a refund is due to the customer.
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`

	Status        RentalStatus  `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	QRCode    string    `json:"qr_code"`
	Notes     string    `json:"notes,omitempty"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
