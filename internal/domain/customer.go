package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeCompany    CustomerType = "company"
)

type CustomerStatus string

const (
	CustomerStatusActive      CustomerStatus = "ACTIVE"
	CustomerStatusInactive    CustomerStatus = "INACTIVE"
	CustomerStatusBlacklisted CustomerStatus = "BLACKLISTED"
)

type Customer struct {
	ID            int32        `json:"id"`
	Type          CustomerType `json:"type"`
	Name          string       `json:"name"`
	CompanyName   string       `json:"company_name,omitempty"`
	ContactPerson string       `json:"contact_person,omitempty"`
	PrimaryPhone  string       `json:"primary_phone"`
	Email         string       `json:"email,omitempty"`
	IDNumber      string       `json:"id_number"`
	AddressLine1  string       `json:"address_line1,omitempty"`
	City          string       `json:"city,omitempty"`

	// Running totals maintained by the rental service.
	TotalRentals       int32           `json:"total_rentals"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`

	Status    CustomerStatus `json:"status"`
	Notes     string         `json:"notes,omitempty"`
	CreatedOn time.Time      `json:"created_on"`
	UpdatedOn time.Time      `json:"updated_on"`
}
