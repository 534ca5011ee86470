package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"equiprent-backend/internal/billing"
	"equiprent-backend/internal/cache"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type rentalService struct {
	rentalRepo    repository.RentalRepository
	equipmentRepo repository.EquipmentRepository
	customerRepo  repository.CustomerRepository
	paymentRepo   repository.PaymentRepository
	invoiceRepo   repository.InvoiceRepository
	emailSvc      EmailService
	cache         cache.Client

	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
	pickupFee   decimal.Decimal
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	equipmentRepo repository.EquipmentRepository,
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	emailSvc EmailService,
	cacheClient cache.Client,
	taxRate, deliveryFee, pickupFee decimal.Decimal,
) RentalService {
	return &rentalService{
		rentalRepo:    rentalRepo,
		equipmentRepo: equipmentRepo,
		customerRepo:  customerRepo,
		paymentRepo:   paymentRepo,
		invoiceRepo:   invoiceRepo,
		emailSvc:      emailSvc,
		cache:         cacheClient,
		taxRate:       taxRate,
		deliveryFee:   deliveryFee,
		pickupFee:     pickupFee,
	}
}

// CreateRental validates the candidate rental, resolves rates, reserves stock
// for every line, and persists the rental as ACTIVE. Reservation is
// all-or-nothing: if any line cannot be reserved, every already-reserved line
// is released before the error is returned.
func (s *rentalService) CreateRental(ctx context.Context, req *CreateRentalRequest) (*domain.Rental, error) {
	if req.CustomerID == 0 {
		return nil, domain.ErrCustomerRequired
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyRental
	}
	if req.StartDate.After(req.ExpectedReturnDate) {
		return nil, domain.ErrInvalidDateRange
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrCustomerRequired
		}
		return nil, err
	}

	// Build and validate every line before touching stock, so validation
	// failures never leave partial reservations behind.
	items := make([]domain.RentalItem, 0, len(req.Items))
	deposit := decimal.Zero
	for _, lr := range req.Items {
		eq, err := s.equipmentRepo.GetByID(ctx, lr.EquipmentID)
		if err != nil {
			return nil, err
		}
		rate, err := billing.ResolveRate(eq, lr.RateType)
		if err != nil {
			return nil, err
		}
		subtotal, err := billing.ComputeLineSubtotal(rate, lr.Quantity, lr.Duration)
		if err != nil {
			return nil, err
		}
		deposit = deposit.Add(eq.SecurityDeposit.Mul(decimal.NewFromInt32(lr.Quantity)))
		items = append(items, domain.RentalItem{
			EquipmentID:   eq.ID,
			EquipmentName: eq.Name,
			Quantity:      lr.Quantity,
			RateType:      lr.RateType,
			Rate:          rate,
			Duration:      lr.Duration,
			Subtotal:      subtotal,
			ConditionOut:  string(eq.Condition),
		})
	}

	if err := s.reserveAll(ctx, items); err != nil {
		return nil, err
	}

	deliveryFee := decimal.Zero
	if req.DeliveryRequired {
		deliveryFee = s.deliveryFee
	}
	pickupFee := decimal.Zero
	if req.PickupRequired {
		pickupFee = s.pickupFee
	}

	totals := billing.ComputeTotals(items, s.taxRate, deliveryFee, pickupFee,
		req.DiscountAmount, deposit, decimal.Zero, decimal.Zero)

	number, err := s.rentalRepo.NextRentalNumber(ctx)
	if err != nil {
		s.releaseAll(ctx, items)
		return nil, err
	}

	rental := &domain.Rental{
		RentalNumber:       number,
		CustomerID:         customer.ID,
		CustomerName:       customer.Name,
		StartDate:          req.StartDate,
		ExpectedReturnDate: req.ExpectedReturnDate,
		Items:              items,
		Subtotal:           totals.Subtotal,
		TaxRate:            s.taxRate,
		TaxAmount:          totals.TaxAmount,
		DiscountAmount:     req.DiscountAmount,
		SecurityDeposit:    deposit,
		DeliveryRequired:   req.DeliveryRequired,
		DeliveryFee:        deliveryFee,
		DeliveryAddress:    req.DeliveryAddress,
		PickupRequired:     req.PickupRequired,
		PickupFee:          pickupFee,
		AdditionalCharges:  decimal.Zero,
		TotalAmount:        totals.TotalAmount,
		PaidAmount:         decimal.Zero,
		OutstandingAmount:  totals.OutstandingAmount,
		Status:             domain.RentalStatusActive,
		PaymentStatus:      domain.PaymentStatusPending,
		QRCode:             generateQRCode("RNT"),
		Notes:              req.Notes,
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		s.releaseAll(ctx, rental.Items)
		return nil, err
	}

	if err := s.customerRepo.AddRentalStats(ctx, customer.ID, 1, rental.TotalAmount, rental.OutstandingAmount); err != nil {
		logger.Error("Failed to update customer rental stats", "customer_id", customer.ID, "error", err)
	}

	logger.Info("Rental created", "rental_number", rental.RentalNumber,
		"customer_id", customer.ID, "total", rental.TotalAmount)
	return rental, nil
}

// reserveAll reserves every line, releasing all prior reservations of this
// batch when one fails (compensating rollback).
func (s *rentalService) reserveAll(ctx context.Context, items []domain.RentalItem) error {
	for i, item := range items {
		if err := s.equipmentRepo.Reserve(ctx, item.EquipmentID, item.Quantity); err != nil {
			s.releaseAll(ctx, items[:i])
			return err
		}
		s.invalidateEquipment(ctx, item.EquipmentID)
	}
	return nil
}

// releaseAll releases reserved stock for the given lines. Failures here mean
// the ledger was already out of balance; they are logged and surfaced via the
// last error only when every release has been attempted.
func (s *rentalService) releaseAll(ctx context.Context, items []domain.RentalItem) error {
	var lastErr error
	for _, item := range items {
		if err := s.equipmentRepo.Release(ctx, item.EquipmentID, item.Quantity); err != nil {
			logger.Error("Failed to release reserved stock",
				"equipment_id", item.EquipmentID, "quantity", item.Quantity, "error", err)
			lastErr = err
			continue
		}
		s.invalidateEquipment(ctx, item.EquipmentID)
	}
	return lastErr
}

func (s *rentalService) invalidateEquipment(ctx context.Context, equipmentID int32) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.EquipmentKey(equipmentID)); err != nil {
		logger.Warn("Failed to invalidate equipment cache", "equipment_id", equipmentID, "error", err)
	}
}

// CancelRental releases all reserved stock without charging return amounts.
// Only DRAFT and ACTIVE rentals can be cancelled.
func (s *rentalService) CancelRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusDraft && rental.Status != domain.RentalStatusActive {
		return nil, &domain.InvalidStateTransitionError{
			RentalID: rentalID,
			From:     rental.Status,
			To:       domain.RentalStatusCancelled,
		}
	}

	if err := s.releaseAll(ctx, rental.Items); err != nil {
		return nil, err
	}

	rental.Status = domain.RentalStatusCancelled
	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, err
	}

	logger.Info("Rental cancelled", "rental_number", rental.RentalNumber)
	return rental, nil
}

// ProcessReturn finalizes a rental against the actual return time: every line's
// duration is recomputed from elapsed time by its cadence, subtotals and totals
// are rebuilt, reserved stock is released, and the rental becomes RETURNED.
// A second return attempt fails on the status check, so stock is never
// released twice.
func (s *rentalService) ProcessReturn(ctx context.Context, rentalID int32, actualReturn time.Time, additionalCharges decimal.Decimal, notes string) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != domain.RentalStatusActive && rental.Status != domain.RentalStatusOverdue {
		return nil, &domain.InvalidStateTransitionError{
			RentalID: rentalID,
			From:     rental.Status,
			To:       domain.RentalStatusReturned,
		}
	}

	elapsed, err := billing.ComputeElapsed(rental.StartDate, actualReturn)
	if err != nil {
		return nil, err
	}

	for i := range rental.Items {
		item := &rental.Items[i]
		duration, err := billing.DurationForRateType(item.RateType, elapsed)
		if err != nil {
			return nil, err
		}
		subtotal, err := billing.ComputeLineSubtotal(item.Rate, item.Quantity, duration)
		if err != nil {
			return nil, err
		}
		item.Duration = duration
		item.Subtotal = subtotal
	}

	oldTotal := rental.TotalAmount
	oldOutstanding := rental.OutstandingAmount

	totals := billing.ComputeTotals(rental.Items, rental.TaxRate, rental.DeliveryFee,
		rental.PickupFee, rental.DiscountAmount, rental.SecurityDeposit,
		additionalCharges, rental.PaidAmount)

	rental.Subtotal = totals.Subtotal
	rental.TaxAmount = totals.TaxAmount
	rental.AdditionalCharges = additionalCharges
	rental.TotalAmount = totals.TotalAmount
	rental.OutstandingAmount = totals.OutstandingAmount
	rental.ActualReturnDate = &actualReturn
	rental.Status = domain.RentalStatusReturned
	rental.PaymentStatus = derivePaymentStatus(rental.TotalAmount, rental.PaidAmount)
	if notes != "" {
		rental.Notes = strings.TrimSpace(rental.Notes + "\n" + notes)
	}

	if err := s.rentalRepo.UpdateWithItems(ctx, rental); err != nil {
		return nil, err
	}

	s.issueInvoice(ctx, rental, actualReturn)

	if err := s.releaseAll(ctx, rental.Items); err != nil {
		return nil, err
	}

	if err := s.customerRepo.AddRentalStats(ctx, rental.CustomerID, 0,
		rental.TotalAmount.Sub(oldTotal), rental.OutstandingAmount.Sub(oldOutstanding)); err != nil {
		logger.Error("Failed to update customer rental stats", "customer_id", rental.CustomerID, "error", err)
	}

	if s.emailSvc != nil {
		customer, err := s.customerRepo.GetByID(ctx, rental.CustomerID)
		if err == nil && customer.Email != "" {
			if err := s.emailSvc.SendReturnReceipt(ctx, customer.Email, customer.Name,
				rental.RentalNumber, rental.TotalAmount, rental.OutstandingAmount); err != nil {
				logger.Warn("Failed to send return receipt", "rental_number", rental.RentalNumber, "error", err)
			}
		}
	}

	logger.Info("Rental returned", "rental_number", rental.RentalNumber,
		"total", rental.TotalAmount, "outstanding", rental.OutstandingAmount)
	return rental, nil
}

const invoiceDueTerm = 14 * 24 * time.Hour

// issueInvoice writes the billing document for a just-returned rental. A
// failure is logged and does not undo the return; the rental record remains
// the financial source of truth.
func (s *rentalService) issueInvoice(ctx context.Context, rental *domain.Rental, issuedAt time.Time) {
	number, err := s.invoiceRepo.NextInvoiceNumber(ctx, issuedAt)
	if err != nil {
		logger.Error("Failed to allocate invoice number", "rental_number", rental.RentalNumber, "error", err)
		return
	}

	status := domain.InvoiceStatusSent
	if !rental.OutstandingAmount.IsPositive() {
		status = domain.InvoiceStatusPaid
	}

	inv := &domain.Invoice{
		InvoiceNumber:  number,
		RentalID:       rental.ID,
		CustomerID:     rental.CustomerID,
		InvoiceDate:    issuedAt,
		DueDate:        issuedAt.Add(invoiceDueTerm),
		Subtotal:       rental.Subtotal,
		TaxAmount:      rental.TaxAmount,
		DiscountAmount: rental.DiscountAmount,
		TotalAmount:    rental.TotalAmount,
		Status:         status,
	}
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		logger.Error("Failed to create invoice", "invoice_number", number,
			"rental_number", rental.RentalNumber, "error", err)
		return
	}
	logger.Info("Invoice issued", "invoice_number", number, "rental_number", rental.RentalNumber)
}

func (s *rentalService) GetRental(ctx context.Context, rentalID int32) (*domain.Rental, error) {
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) GetRentalInvoice(ctx context.Context, rentalID int32) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByRental(ctx, rentalID)
}

func (s *rentalService) GetRentalTotals(ctx context.Context, rentalID int32) (*RentalTotals, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return &RentalTotals{
		Subtotal:          rental.Subtotal,
		TaxAmount:         rental.TaxAmount,
		TotalAmount:       rental.TotalAmount,
		OutstandingAmount: rental.OutstandingAmount,
	}, nil
}

func (s *rentalService) ListRentals(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	return s.rentalRepo.List(ctx, status, page, pageSize)
}

// RecordPayment applies a received payment (or a negative refund) to a rental
// and keeps paidAmount, outstandingAmount, and paymentStatus consistent.
func (s *rentalService) RecordPayment(ctx context.Context, rentalID int32, amount decimal.Decimal, method domain.PaymentMethod, reference string) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status == domain.RentalStatusCancelled {
		return nil, &domain.InvalidStateTransitionError{
			RentalID: rentalID,
			From:     rental.Status,
			To:       rental.Status,
		}
	}

	txType := domain.PaymentTypePayment
	if amount.IsNegative() {
		txType = domain.PaymentTypeRefund
	}
	tx := &domain.PaymentTransaction{
		RentalID:    rental.ID,
		CustomerID:  rental.CustomerID,
		Amount:      amount,
		Type:        txType,
		Method:      method,
		Reference:   reference,
		Description: fmt.Sprintf("Payment for rental %s", rental.RentalNumber),
	}
	if err := s.paymentRepo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	rental.PaidAmount = rental.PaidAmount.Add(amount)
	rental.OutstandingAmount = rental.TotalAmount.Sub(rental.PaidAmount)
	rental.PaymentStatus = derivePaymentStatus(rental.TotalAmount, rental.PaidAmount)
	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, err
	}

	if err := s.customerRepo.AddRentalStats(ctx, rental.CustomerID, 0, decimal.Zero, amount.Neg()); err != nil {
		logger.Error("Failed to update customer balance", "customer_id", rental.CustomerID, "error", err)
	}

	if rental.PaymentStatus == domain.PaymentStatusPaid {
		if inv, err := s.invoiceRepo.GetByRental(ctx, rental.ID); err == nil && inv.Status != domain.InvoiceStatusPaid {
			if err := s.invoiceRepo.UpdateStatus(ctx, inv.ID, domain.InvoiceStatusPaid); err != nil {
				logger.Warn("Failed to mark invoice paid", "invoice_number", inv.InvoiceNumber, "error", err)
			}
		}
	}

	return rental, nil
}

func derivePaymentStatus(total, paid decimal.Decimal) domain.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return domain.PaymentStatusPaid
	case paid.IsPositive():
		return domain.PaymentStatusPartial
	default:
		return domain.PaymentStatusPending
	}
}

func generateQRCode(prefix string) string {
	return prefix + strings.ToUpper(uuid.NewString()[:8])
}
