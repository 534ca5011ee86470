package repository

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"

	"github.com/shopspring/decimal"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id int32) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Customer, int32, error)
	Search(ctx context.Context, query string) ([]domain.Customer, error)
	// AddRentalStats bumps the running totals after a rental is created or
	// its outstanding balance changes. Deltas may be negative.
	AddRentalStats(ctx context.Context, id int32, rentalDelta int32, spentDelta, outstandingDelta decimal.Decimal) error
}

type EquipmentRepository interface {
	Create(ctx context.Context, eq *domain.Equipment) error
	GetByID(ctx context.Context, id int32) (*domain.Equipment, error)
	Update(ctx context.Context, eq *domain.Equipment) error
	List(ctx context.Context, page, pageSize int32) ([]domain.Equipment, int32, error)
	Search(ctx context.Context, query, category string) ([]domain.Equipment, error)

	// Reserve atomically moves quantity units from available to reserved for
	// one equipment id. It fails with InsufficientAvailabilityError when fewer
	// than quantity units are available, leaving the counters untouched.
	Reserve(ctx context.Context, equipmentID, quantity int32) error
	// Release atomically moves quantity units from reserved back to available.
	// It fails with OverReleaseError when quantity exceeds the reserved count.
	Release(ctx context.Context, equipmentID, quantity int32) error
	// AdjustStock atomically applies inventory deltas to the available and
	// maintenance counters, moving total by their sum. It fails with
	// InvalidStockAdjustmentError when either counter would go negative.
	AdjustStock(ctx context.Context, equipmentID, availableDelta, maintenanceDelta int32) error
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)
	Update(ctx context.Context, rental *domain.Rental) error
	// UpdateWithItems writes the rental row and every line item in one
	// database transaction, so a return never persists partially.
	UpdateWithItems(ctx context.Context, rental *domain.Rental) error
	ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error)
	// NextRentalNumber returns the next human-readable rental number (R001, ...).
	NextRentalNumber(ctx context.Context) (string, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByRental(ctx context.Context, rentalID int32) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, id int32, status domain.InvoiceStatus) error
	// NextInvoiceNumber returns the next INVyymm### number for the month of at.
	NextInvoiceNumber(ctx context.Context, at time.Time) (string, error)
}

type PaymentRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.PaymentTransaction, error)
	ListByCustomer(ctx context.Context, customerID int32, page, pageSize int32) ([]domain.PaymentTransaction, int32, error)
}
