package domain

import (
	"errors"
	"fmt"
)

// Business-rule failures raised by the rental core. All of them are terminal
// validation outcomes, never retried.
var (
	ErrCustomerRequired  = errors.New("rental requires a customer")
	ErrEmptyRental       = errors.New("rental requires at least one line item")
	ErrInvalidDateRange  = errors.New("start date must not be after expected return date")
	ErrInvalidReturnTime = errors.New("actual return time is before rental start")
	ErrNotFound          = errors.New("record not found")
)

// InvalidRateTypeError is returned when a billing cadence is not one of
// hourly, daily, weekly, monthly.
type InvalidRateTypeError struct {
	RateType RateType
}

func (e *InvalidRateTypeError) Error() string {
	return fmt.Sprintf("invalid rate type %q", e.RateType)
}

// InvalidLineInputError is returned when a line's quantity, duration, or rate
// is outside the valid range.
type InvalidLineInputError struct {
	Reason string
}

func (e *InvalidLineInputError) Error() string {
	return fmt.Sprintf("invalid line input: %s", e.Reason)
}

// InsufficientAvailabilityError is returned when a reservation asks for more
// units than the equipment currently has available.
type InsufficientAvailabilityError struct {
	EquipmentID int32
	Requested   int32
	Available   int32
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("equipment %d: requested %d but only %d available",
		e.EquipmentID, e.Requested, e.Available)
}

// OverReleaseError indicates a release larger than the reserved count. It means
// reserve/release calls got unpaired somewhere and must be surfaced, not swallowed.
type OverReleaseError struct {
	EquipmentID int32
	Requested   int32
	Reserved    int32
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("equipment %d: releasing %d but only %d reserved",
		e.EquipmentID, e.Requested, e.Reserved)
}

// InvalidStockAdjustmentError is returned when an inventory adjustment would
// drive the available or maintenance counter negative.
type InvalidStockAdjustmentError struct {
	EquipmentID      int32
	AvailableDelta   int32
	MaintenanceDelta int32
	Available        int32
	Maintenance      int32
}

func (e *InvalidStockAdjustmentError) Error() string {
	return fmt.Sprintf("equipment %d: adjustment (%+d available, %+d maintenance) does not fit current counters (%d available, %d maintenance)",
		e.EquipmentID, e.AvailableDelta, e.MaintenanceDelta, e.Available, e.Maintenance)
}

// InvalidStateTransitionError is returned for any rental status transition the
// lifecycle does not allow.
type InvalidStateTransitionError struct {
	RentalID int32
	From     RentalStatus
	To       RentalStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("rental %d: cannot transition from %s to %s", e.RentalID, e.From, e.To)
}
