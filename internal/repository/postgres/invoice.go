package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, invoice_number, rental_id, customer_id, invoice_date, due_date,
	subtotal, tax_amount, discount_amount, total_amount, status, created_on, updated_on`

func (r *invoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (invoice_number, rental_id, customer_id, invoice_date, due_date,
	          subtotal, tax_amount, discount_amount, total_amount, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, inv.InvoiceNumber, inv.RentalID, inv.CustomerID,
		inv.InvoiceDate, inv.DueDate, inv.Subtotal, inv.TaxAmount, inv.DiscountAmount,
		inv.TotalAmount, inv.Status, now, now).Scan(&inv.ID)
}

func (r *invoiceRepository) GetByRental(ctx context.Context, rentalID int32) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE rental_id = $1`, invoiceColumns)
	err := r.db.QueryRowContext(ctx, query, rentalID).Scan(&inv.ID, &inv.InvoiceNumber,
		&inv.RentalID, &inv.CustomerID, &inv.InvoiceDate, &inv.DueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount,
		&inv.Status, &inv.CreatedOn, &inv.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id int32, status domain.InvoiceStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = $2, updated_on = $3 WHERE id = $1`,
		id, status, time.Now())
	return err
}

// NextInvoiceNumber counts the month's invoices and appends a three-digit
// sequence to the INVyymm prefix. Concurrent issuers can collide on the count;
// the UNIQUE constraint on invoice_number rejects the loser.
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	prefix := "INV" + at.Format("0601")
	var count int32
	query := `SELECT count(*) FROM invoices WHERE invoice_number LIKE $1`
	if err := r.db.QueryRowContext(ctx, query, prefix+"%").Scan(&count); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}
