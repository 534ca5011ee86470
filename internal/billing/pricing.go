package billing

import (
	"time"

	"equiprent-backend/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// ResolveRate returns the unit price for the requested billing cadence. Cadences
// without an explicit rate fall back to multiples of the daily rate: weekly is
// daily×7, monthly is daily×30. Hourly has no sub-division of the daily rate, so
// without an explicit hourly rate a full daily rate is charged per hour block.
func ResolveRate(eq *domain.Equipment, rateType domain.RateType) (decimal.Decimal, error) {
	switch rateType {
	case domain.RateTypeHourly:
		if eq.HourlyRate.IsPositive() {
			return eq.HourlyRate, nil
		}
		return eq.DailyRate, nil
	case domain.RateTypeDaily:
		return eq.DailyRate, nil
	case domain.RateTypeWeekly:
		if eq.WeeklyRate.IsPositive() {
			return eq.WeeklyRate, nil
		}
		return eq.DailyRate.Mul(decimal.NewFromInt(daysPerWeek)), nil
	case domain.RateTypeMonthly:
		if eq.MonthlyRate.IsPositive() {
			return eq.MonthlyRate, nil
		}
		return eq.DailyRate.Mul(decimal.NewFromInt(daysPerMonth)), nil
	default:
		return decimal.Zero, &domain.InvalidRateTypeError{RateType: rateType}
	}
}

// ComputeLineSubtotal returns rate × quantity × duration. It is pure: identical
// inputs always produce identical output.
func ComputeLineSubtotal(rate decimal.Decimal, quantity, duration int32) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, &domain.InvalidLineInputError{Reason: "quantity must be at least 1"}
	}
	if duration < 1 {
		return decimal.Zero, &domain.InvalidLineInputError{Reason: "duration must be at least 1"}
	}
	if !rate.IsPositive() {
		return decimal.Zero, &domain.InvalidLineInputError{Reason: "rate must be positive"}
	}
	return rate.Mul(decimal.NewFromInt32(quantity)).Mul(decimal.NewFromInt32(duration)), nil
}

// Totals is the financial summary of a rental.
type Totals struct {
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
	OutstandingAmount decimal.Decimal
}

// ComputeTotals aggregates line subtotals and applies tax, fees, discount, and
// deposit. The discount is intentionally not clamped against the chargeable
// base; a discount larger than the charges yields a negative total, which
// mirrors the business's manual override practice.
//
//	taxAmount = subtotal × taxRate / 100
//	total     = subtotal + tax + deliveryFee + pickupFee + additionalCharges − discount + deposit
//	outstanding = total − paid
func ComputeTotals(items []domain.RentalItem, taxRate, deliveryFee, pickupFee,
	discountAmount, securityDeposit, additionalCharges, paidAmount decimal.Decimal) Totals {

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}

	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.
		Add(taxAmount).
		Add(deliveryFee).
		Add(pickupFee).
		Add(additionalCharges).
		Sub(discountAmount).
		Add(securityDeposit)

	return Totals{
		Subtotal:          subtotal,
		TaxAmount:         taxAmount,
		TotalAmount:       total,
		OutstandingAmount: total.Sub(paidAmount),
	}
}

// ElapsedUnits holds the whole billing units between rental start and actual
// return, rounded up and clamped so a same-instant return still bills one unit.
type ElapsedUnits struct {
	Hours int32
	Days  int32
}

// ComputeElapsed converts the span between start and actualReturn into whole
// billing hours and days. Partial hours round up; a return before start is
// rejected with ErrInvalidReturnTime.
func ComputeElapsed(start, actualReturn time.Time) (ElapsedUnits, error) {
	if actualReturn.Before(start) {
		return ElapsedUnits{}, domain.ErrInvalidReturnTime
	}

	hours := int32(actualReturn.Sub(start).Hours())
	if actualReturn.Sub(start) > time.Duration(hours)*time.Hour {
		hours++
	}
	if hours < 1 {
		hours = 1
	}

	days := hours / 24
	if hours%24 > 0 {
		days++
	}
	return ElapsedUnits{Hours: hours, Days: days}, nil
}

// DurationForRateType maps elapsed time onto the cadence of a line item,
// rounding partial weeks and months up.
func DurationForRateType(rateType domain.RateType, elapsed ElapsedUnits) (int32, error) {
	switch rateType {
	case domain.RateTypeHourly:
		return elapsed.Hours, nil
	case domain.RateTypeDaily:
		return elapsed.Days, nil
	case domain.RateTypeWeekly:
		weeks := elapsed.Days / daysPerWeek
		if elapsed.Days%daysPerWeek > 0 {
			weeks++
		}
		if weeks < 1 {
			weeks = 1
		}
		return weeks, nil
	case domain.RateTypeMonthly:
		months := elapsed.Days / daysPerMonth
		if elapsed.Days%daysPerMonth > 0 {
			months++
		}
		if months < 1 {
			months = 1
		}
		return months, nil
	default:
		return 0, &domain.InvalidRateTypeError{RateType: rateType}
	}
}
