package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "BANK_TRANSFER"
)

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeRefund  PaymentType = "REFUND"
)

// PaymentTransaction records money moving against a rental. Amount is positive
// for payments received, negative for refunds issued.
type PaymentTransaction struct {
	ID          int32           `json:"id"`
	RentalID    int32           `json:"rental_id"`
	CustomerID  int32           `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        PaymentType     `json:"type"`
	Method      PaymentMethod   `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedOn   time.Time       `json:"created_on"`
}
