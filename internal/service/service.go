package service

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// RentalItemRequest is one requested line on a new rental. Duration is the
// planned duration in units of RateType; the unit rate is resolved from the
// equipment's pricing at creation time.
type RentalItemRequest struct {
	EquipmentID int32           `json:"equipment_id"`
	Quantity    int32           `json:"quantity"`
	RateType    domain.RateType `json:"rate_type"`
	Duration    int32           `json:"duration"`
}

// CreateRentalRequest is the candidate rental submitted by the request layer.
type CreateRentalRequest struct {
	CustomerID         int32               `json:"customer_id"`
	Items              []RentalItemRequest `json:"items"`
	StartDate          time.Time           `json:"start_date"`
	ExpectedReturnDate time.Time           `json:"expected_return_date"`
	DeliveryRequired   bool                `json:"delivery_required"`
	DeliveryAddress    string              `json:"delivery_address,omitempty"`
	PickupRequired     bool                `json:"pickup_required"`
	DiscountAmount     decimal.Decimal     `json:"discount_amount"`
	Notes              string              `json:"notes,omitempty"`
}

// RentalTotals is the financial summary exposed to the request layer.
type RentalTotals struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

type RentalService interface {
	CreateRental(ctx context.Context, req *CreateRentalRequest) (*domain.Rental, error)
	CancelRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	ProcessReturn(ctx context.Context, rentalID int32, actualReturn time.Time, additionalCharges decimal.Decimal, notes string) (*domain.Rental, error)
	GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error)
	GetRentalTotals(ctx context.Context, rentalID int32) (*RentalTotals, error)
	GetRentalInvoice(ctx context.Context, rentalID int32) (*domain.Invoice, error)
	ListRentals(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	RecordPayment(ctx context.Context, rentalID int32, amount decimal.Decimal, method domain.PaymentMethod, reference string) (*domain.Rental, error)
}

type EquipmentService interface {
	AddEquipment(ctx context.Context, eq *domain.Equipment) error
	GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error)
	UpdateEquipment(ctx context.Context, eq *domain.Equipment) error
	ListEquipment(ctx context.Context, page, pageSize int32) ([]domain.Equipment, int32, error)
	SearchEquipment(ctx context.Context, query, category string) ([]domain.Equipment, error)
	CheckAvailability(ctx context.Context, equipmentID, quantity int32) (bool, error)
	AdjustStock(ctx context.Context, equipmentID, availableDelta, maintenanceDelta int32) (*domain.Equipment, error)
}

type CustomerService interface {
	AddCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, id int32) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
	ListCustomers(ctx context.Context, page, pageSize int32) ([]domain.Customer, int32, error)
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)
}

type EmailService interface {
	SendReturnReceipt(ctx context.Context, email, name, rentalNumber string, totalAmount, outstandingAmount decimal.Decimal) error
	SendOverdueReminder(ctx context.Context, email, name, rentalNumber string, expectedReturn time.Time) error
}
