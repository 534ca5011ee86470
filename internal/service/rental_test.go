package service

import (
	"context"
	"testing"
	"time"

	"equiprent-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

type rentalServiceMocks struct {
	rentalRepo    *MockRentalRepo
	equipmentRepo *MockEquipmentRepo
	customerRepo  *MockCustomerRepo
	paymentRepo   *MockPaymentRepo
	invoiceRepo   *MockInvoiceRepo
	emailSvc      *MockEmailService
}

func newTestRentalService() (RentalService, *rentalServiceMocks) {
	m := &rentalServiceMocks{
		rentalRepo:    new(MockRentalRepo),
		equipmentRepo: new(MockEquipmentRepo),
		customerRepo:  new(MockCustomerRepo),
		paymentRepo:   new(MockPaymentRepo),
		invoiceRepo:   new(MockInvoiceRepo),
		emailSvc:      new(MockEmailService),
	}

	svc := NewRentalService(m.rentalRepo, m.equipmentRepo, m.customerRepo, m.paymentRepo,
		m.invoiceRepo, m.emailSvc, nil, dec(8), dec(5000), dec(5000))
	return svc, m
}

func TestRentalService_CreateRental(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	customer := &domain.Customer{ID: 1, Name: "Acme Builders", Email: "acme@test.com"}
	excavator := &domain.Equipment{
		ID:                2,
		Name:              "Mini Excavator",
		DailyRate:         dec(15000),
		SecurityDeposit:   dec(100000),
		AvailableQuantity: 3,
		TotalQuantity:     3,
	}

	t.Run("Success", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.customerRepo.On("GetByID", ctx, int32(1)).Return(customer, nil)
		m.equipmentRepo.On("GetByID", ctx, int32(2)).Return(excavator, nil)
		m.equipmentRepo.On("Reserve", ctx, int32(2), int32(1)).Return(nil)
		m.rentalRepo.On("NextRentalNumber", ctx).Return("R001", nil)
		m.rentalRepo.On("Create", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(1), mock.Anything, mock.Anything).Return(nil)

		res, err := svc.CreateRental(ctx, &CreateRentalRequest{
			CustomerID:         1,
			StartDate:          start,
			ExpectedReturnDate: end,
			Items: []RentalItemRequest{
				{EquipmentID: 2, Quantity: 1, RateType: domain.RateTypeDaily, Duration: 7},
			},
		})
		assert.NoError(t, err)
		assert.NotNil(t, res)
		assert.Equal(t, "R001", res.RentalNumber)
		assert.Equal(t, domain.RentalStatusActive, res.Status)
		assert.Equal(t, domain.PaymentStatusPending, res.PaymentStatus)

		// 7 days at 15000/day, 8% tax, 100000 deposit.
		assert.True(t, res.Subtotal.Equal(dec(105000)), "subtotal %s", res.Subtotal)
		assert.True(t, res.TaxAmount.Equal(dec(8400)), "tax %s", res.TaxAmount)
		assert.True(t, res.TotalAmount.Equal(dec(213400)), "total %s", res.TotalAmount)
		assert.True(t, res.OutstandingAmount.Equal(dec(213400)))
		m.equipmentRepo.AssertCalled(t, "Reserve", ctx, int32(2), int32(1))
	})

	t.Run("Missing Customer", func(t *testing.T) {
		svc, _ := newTestRentalService()

		res, err := svc.CreateRental(ctx, &CreateRentalRequest{
			StartDate:          start,
			ExpectedReturnDate: end,
			Items:              []RentalItemRequest{{EquipmentID: 2, Quantity: 1, RateType: domain.RateTypeDaily, Duration: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrCustomerRequired)
		assert.Nil(t, res)
	})

	t.Run("Empty Items", func(t *testing.T) {
		svc, _ := newTestRentalService()

		res, err := svc.CreateRental(ctx, &CreateRentalRequest{
			CustomerID:         1,
			StartDate:          start,
			ExpectedReturnDate: end,
		})
		assert.ErrorIs(t, err, domain.ErrEmptyRental)
		assert.Nil(t, res)
	})

	t.Run("Start After End", func(t *testing.T) {
		svc, _ := newTestRentalService()

		res, err := svc.CreateRental(ctx, &CreateRentalRequest{
			CustomerID:         1,
			StartDate:          end,
			ExpectedReturnDate: start,
			Items:              []RentalItemRequest{{EquipmentID: 2, Quantity: 1, RateType: domain.RateTypeDaily, Duration: 1}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
		assert.Nil(t, res)
	})

	t.Run("Insufficient Availability Rolls Back Prior Reservations", func(t *testing.T) {
		svc, m := newTestRentalService()

		generator := &domain.Equipment{
			ID:                3,
			Name:              "Generator",
			DailyRate:         dec(8000),
			AvailableQuantity: 1,
			TotalQuantity:     1,
		}

		m.customerRepo.On("GetByID", ctx, int32(1)).Return(customer, nil)
		m.equipmentRepo.On("GetByID", ctx, int32(2)).Return(excavator, nil)
		m.equipmentRepo.On("GetByID", ctx, int32(3)).Return(generator, nil)
		m.equipmentRepo.On("Reserve", ctx, int32(2), int32(1)).Return(nil)
		m.equipmentRepo.On("Reserve", ctx, int32(3), int32(2)).Return(&domain.InsufficientAvailabilityError{
			EquipmentID: 3, Requested: 2, Available: 1,
		})
		m.equipmentRepo.On("Release", ctx, int32(2), int32(1)).Return(nil)

		res, err := svc.CreateRental(ctx, &CreateRentalRequest{
			CustomerID:         1,
			StartDate:          start,
			ExpectedReturnDate: end,
			Items: []RentalItemRequest{
				{EquipmentID: 2, Quantity: 1, RateType: domain.RateTypeDaily, Duration: 7},
				{EquipmentID: 3, Quantity: 2, RateType: domain.RateTypeDaily, Duration: 7},
			},
		})
		assert.Nil(t, res)
		var availErr *domain.InsufficientAvailabilityError
		assert.ErrorAs(t, err, &availErr)
		assert.Equal(t, int32(3), availErr.EquipmentID)

		// The first line's reservation must be compensated.
		m.equipmentRepo.AssertCalled(t, "Release", ctx, int32(2), int32(1))
	})
}

func TestRentalService_ProcessReturn(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	activeRental := func() *domain.Rental {
		return &domain.Rental{
			ID:                 7,
			RentalNumber:       "R007",
			CustomerID:         1,
			CustomerName:       "Acme Builders",
			StartDate:          start,
			ExpectedReturnDate: start.Add(72 * time.Hour),
			Status:             domain.RentalStatusActive,
			PaymentStatus:      domain.PaymentStatusPending,
			TaxRate:            dec(8),
			Items: []domain.RentalItem{
				{ID: 1, RentalID: 7, EquipmentID: 2, Quantity: 2, RateType: domain.RateTypeDaily, Rate: dec(10000), Duration: 3, Subtotal: dec(60000)},
			},
		}
	}

	t.Run("Late Return Rebills Elapsed Days", func(t *testing.T) {
		svc, m := newTestRentalService()

		rental := activeRental()
		m.rentalRepo.On("GetByID", ctx, int32(7)).Return(rental, nil)
		m.rentalRepo.On("UpdateWithItems", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.equipmentRepo.On("Release", ctx, int32(2), int32(2)).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(0), mock.Anything, mock.Anything).Return(nil)
		m.customerRepo.On("GetByID", ctx, int32(1)).Return(&domain.Customer{ID: 1, Name: "Acme Builders", Email: "acme@test.com"}, nil)
		m.invoiceRepo.On("NextInvoiceNumber", ctx, mock.AnythingOfType("time.Time")).Return("INV2603001", nil)
		m.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
		m.emailSvc.On("SendReturnReceipt", ctx, "acme@test.com", "Acme Builders", "R007", mock.Anything, mock.Anything).Return(nil)

		// Returned 3 days 2 hours after start: 74 elapsed hours bills 4 days.
		actualReturn := start.Add(74 * time.Hour)
		res, err := svc.ProcessReturn(ctx, 7, actualReturn, decimal.Zero, "")
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusReturned, res.Status)
		assert.Equal(t, int32(4), res.Items[0].Duration)
		assert.True(t, res.Items[0].Subtotal.Equal(dec(80000)), "line subtotal %s", res.Items[0].Subtotal)
		assert.True(t, res.Subtotal.Equal(dec(80000)))
		assert.True(t, res.TaxAmount.Equal(dec(6400)))
		assert.True(t, res.TotalAmount.Equal(dec(86400)))
		assert.True(t, res.OutstandingAmount.Equal(dec(86400)))
		assert.NotNil(t, res.ActualReturnDate)

		m.rentalRepo.AssertCalled(t, "UpdateWithItems", ctx, mock.AnythingOfType("*domain.Rental"))
		m.equipmentRepo.AssertCalled(t, "Release", ctx, int32(2), int32(2))
		m.emailSvc.AssertNumberOfCalls(t, "SendReturnReceipt", 1)
	})

	t.Run("Return Issues Invoice For Billed Totals", func(t *testing.T) {
		svc, m := newTestRentalService()

		rental := activeRental()
		m.rentalRepo.On("GetByID", ctx, int32(7)).Return(rental, nil)
		m.rentalRepo.On("UpdateWithItems", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.equipmentRepo.On("Release", ctx, int32(2), int32(2)).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(0), mock.Anything, mock.Anything).Return(nil)
		m.customerRepo.On("GetByID", ctx, int32(1)).Return(&domain.Customer{ID: 1, Name: "Acme Builders"}, nil)
		m.emailSvc.On("SendReturnReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		actualReturn := start.Add(72 * time.Hour)
		m.invoiceRepo.On("NextInvoiceNumber", ctx, actualReturn).Return("INV2603004", nil)

		var issued *domain.Invoice
		m.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Run(func(args mock.Arguments) {
			issued = args.Get(1).(*domain.Invoice)
		}).Return(nil)

		res, err := svc.ProcessReturn(ctx, 7, actualReturn, decimal.Zero, "")
		assert.NoError(t, err)
		assert.NotNil(t, issued)
		assert.Equal(t, "INV2603004", issued.InvoiceNumber)
		assert.Equal(t, int32(7), issued.RentalID)
		assert.Equal(t, int32(1), issued.CustomerID)
		assert.Equal(t, domain.InvoiceStatusSent, issued.Status)
		assert.True(t, issued.TotalAmount.Equal(res.TotalAmount))
		assert.True(t, issued.Subtotal.Equal(res.Subtotal))
		assert.Equal(t, actualReturn.Add(14*24*time.Hour), issued.DueDate)
	})

	t.Run("Double Return Rejected Without Releasing Stock", func(t *testing.T) {
		svc, m := newTestRentalService()

		rental := activeRental()
		rental.Status = domain.RentalStatusReturned
		m.rentalRepo.On("GetByID", ctx, int32(7)).Return(rental, nil)

		res, err := svc.ProcessReturn(ctx, 7, start.Add(80*time.Hour), decimal.Zero, "")
		assert.Nil(t, res)
		var stateErr *domain.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
		assert.Equal(t, domain.RentalStatusReturned, stateErr.From)
		m.equipmentRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
		m.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Return Before Start Rejected", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.rentalRepo.On("GetByID", ctx, int32(7)).Return(activeRental(), nil)

		res, err := svc.ProcessReturn(ctx, 7, start.Add(-time.Hour), decimal.Zero, "")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrInvalidReturnTime)
	})

	t.Run("Overdue Rental Can Be Returned", func(t *testing.T) {
		svc, m := newTestRentalService()

		rental := activeRental()
		rental.Status = domain.RentalStatusOverdue
		m.rentalRepo.On("GetByID", ctx, int32(7)).Return(rental, nil)
		m.rentalRepo.On("UpdateWithItems", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.equipmentRepo.On("Release", ctx, int32(2), int32(2)).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(0), mock.Anything, mock.Anything).Return(nil)
		m.customerRepo.On("GetByID", ctx, int32(1)).Return(&domain.Customer{ID: 1, Name: "Acme Builders"}, nil)
		m.invoiceRepo.On("NextInvoiceNumber", ctx, mock.AnythingOfType("time.Time")).Return("INV2603002", nil)
		m.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
		m.emailSvc.On("SendReturnReceipt", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		res, err := svc.ProcessReturn(ctx, 7, start.Add(96*time.Hour), decimal.Zero, "")
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusReturned, res.Status)
	})
}

func TestRentalService_CancelRental(t *testing.T) {
	ctx := context.Background()

	t.Run("Active Rental Releases Stock", func(t *testing.T) {
		svc, m := newTestRentalService()

		rental := &domain.Rental{
			ID:           5,
			RentalNumber: "R005",
			Status:       domain.RentalStatusActive,
			Items: []domain.RentalItem{
				{EquipmentID: 2, Quantity: 3},
			},
		}
		m.rentalRepo.On("GetByID", ctx, int32(5)).Return(rental, nil)
		m.equipmentRepo.On("Release", ctx, int32(2), int32(3)).Return(nil)
		m.rentalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)

		res, err := svc.CancelRental(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCancelled, res.Status)
		m.equipmentRepo.AssertCalled(t, "Release", ctx, int32(2), int32(3))
	})

	t.Run("Returned Rental Cannot Be Cancelled", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.rentalRepo.On("GetByID", ctx, int32(5)).Return(&domain.Rental{
			ID:     5,
			Status: domain.RentalStatusReturned,
		}, nil)

		res, err := svc.CancelRental(ctx, 5)
		assert.Nil(t, res)
		var stateErr *domain.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
		m.equipmentRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRentalService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	rentalWith := func(total, paid int64) *domain.Rental {
		return &domain.Rental{
			ID:                9,
			RentalNumber:      "R009",
			CustomerID:        1,
			Status:            domain.RentalStatusReturned,
			TotalAmount:       dec(total),
			PaidAmount:        dec(paid),
			OutstandingAmount: dec(total - paid),
			PaymentStatus:     domain.PaymentStatusPending,
		}
	}

	t.Run("Partial Payment", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.rentalRepo.On("GetByID", ctx, int32(9)).Return(rentalWith(100000, 0), nil)
		m.paymentRepo.On("CreateTransaction", ctx, mock.AnythingOfType("*domain.PaymentTransaction")).Return(nil)
		m.rentalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(0), mock.Anything, mock.Anything).Return(nil)

		res, err := svc.RecordPayment(ctx, 9, dec(40000), domain.PaymentMethodCash, "")
		assert.NoError(t, err)
		assert.True(t, res.PaidAmount.Equal(dec(40000)))
		assert.True(t, res.OutstandingAmount.Equal(dec(60000)))
		assert.Equal(t, domain.PaymentStatusPartial, res.PaymentStatus)
		m.invoiceRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Full Payment Marks Invoice Paid", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.rentalRepo.On("GetByID", ctx, int32(9)).Return(rentalWith(100000, 40000), nil)
		m.paymentRepo.On("CreateTransaction", ctx, mock.AnythingOfType("*domain.PaymentTransaction")).Return(nil)
		m.rentalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(0), mock.Anything, mock.Anything).Return(nil)
		m.invoiceRepo.On("GetByRental", ctx, int32(9)).Return(&domain.Invoice{
			ID:            3,
			InvoiceNumber: "INV2603003",
			RentalID:      9,
			Status:        domain.InvoiceStatusSent,
		}, nil)
		m.invoiceRepo.On("UpdateStatus", ctx, int32(3), domain.InvoiceStatusPaid).Return(nil)

		res, err := svc.RecordPayment(ctx, 9, dec(60000), domain.PaymentMethodCard, "ref-42")
		assert.NoError(t, err)
		assert.True(t, res.OutstandingAmount.IsZero())
		assert.Equal(t, domain.PaymentStatusPaid, res.PaymentStatus)
		m.invoiceRepo.AssertCalled(t, "UpdateStatus", ctx, int32(3), domain.InvoiceStatusPaid)
	})

	t.Run("Refund Recorded As Refund Transaction", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.rentalRepo.On("GetByID", ctx, int32(9)).Return(rentalWith(100000, 100000), nil)
		m.paymentRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(tx *domain.PaymentTransaction) bool {
			return tx.Type == domain.PaymentTypeRefund
		})).Return(nil)
		m.rentalRepo.On("Update", ctx, mock.AnythingOfType("*domain.Rental")).Return(nil)
		m.customerRepo.On("AddRentalStats", ctx, int32(1), int32(0), mock.Anything, mock.Anything).Return(nil)

		res, err := svc.RecordPayment(ctx, 9, dec(-20000), domain.PaymentMethodCash, "")
		assert.NoError(t, err)
		assert.True(t, res.PaidAmount.Equal(dec(80000)))
	})

	t.Run("Cancelled Rental Rejected", func(t *testing.T) {
		svc, m := newTestRentalService()

		m.rentalRepo.On("GetByID", ctx, int32(9)).Return(&domain.Rental{
			ID:     9,
			Status: domain.RentalStatusCancelled,
		}, nil)

		res, err := svc.RecordPayment(ctx, 9, dec(1000), domain.PaymentMethodCash, "")
		assert.Nil(t, res)
		var stateErr *domain.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
		m.paymentRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})
}
