package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentStatusMaintenance EquipmentStatus = "MAINTENANCE"
	EquipmentStatusRetired     EquipmentStatus = "RETIRED"
)

type EquipmentType string

const (
	EquipmentTypeMaterial EquipmentType = "material"
	EquipmentTypeMachine  EquipmentType = "machine"
)

type EquipmentCondition string

const (
	EquipmentConditionExcellent   EquipmentCondition = "EXCELLENT"
	EquipmentConditionGood        EquipmentCondition = "GOOD"
	EquipmentConditionFair        EquipmentCondition = "FAIR"
	EquipmentConditionNeedsRepair EquipmentCondition = "NEEDS_REPAIR"
)

// Equipment is a stock-tracked inventory item. The quantity counters obey
// available + reserved + maintenance == total; only the rental reserve/release
// path mutates available and reserved, maintenance is managed by inventory staff.
type Equipment struct {
	ID        int32              `json:"id"`
	Name      string             `json:"name"`
	Type      EquipmentType      `json:"type"`
	Category  string             `json:"category"`
	Brand     string             `json:"brand,omitempty"`
	Condition EquipmentCondition `json:"condition"`

	TotalQuantity       int32 `json:"total_quantity"`
	AvailableQuantity   int32 `json:"available_quantity"`
	ReservedQuantity    int32 `json:"reserved_quantity"`
	MaintenanceQuantity int32 `json:"maintenance_quantity"`

	// DailyRate is required; the other cadence rates are optional and fall back
	// to multiples of the daily rate when zero.
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	WeeklyRate      decimal.Decimal `json:"weekly_rate"`
	MonthlyRate     decimal.Decimal `json:"monthly_rate"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`

	Status    EquipmentStatus `json:"status"`
	QRCode    string          `json:"qr_code"`
	Location  string          `json:"location,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedOn time.Time       `json:"created_on"`
	UpdatedOn time.Time       `json:"updated_on"`
}

// CountersConsistent reports whether the stock counters still add up.
func (e *Equipment) CountersConsistent() bool {
	return e.AvailableQuantity+e.ReservedQuantity+e.MaintenanceQuantity == e.TotalQuantity &&
		e.AvailableQuantity >= 0 && e.ReservedQuantity >= 0 && e.MaintenanceQuantity >= 0
}
