package postgres_test

import (
	"context"
	"testing"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewInvoiceRepository(db)
	ctx := context.Background()

	inv := &domain.Invoice{
		InvoiceNumber: "INV2603001",
		RentalID:      7,
		CustomerID:    1,
		InvoiceDate:   time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 3, 27, 10, 0, 0, 0, time.UTC),
		Subtotal:      decimal.NewFromInt(80000),
		TaxAmount:     decimal.NewFromInt(6400),
		TotalAmount:   decimal.NewFromInt(86400),
		Status:        domain.InvoiceStatusSent,
	}

	mock.ExpectQuery("INSERT INTO invoices").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	assert.NoError(t, repo.Create(ctx, inv))
	assert.Equal(t, int32(3), inv.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepository_GetByRental(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewInvoiceRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE rental_id").
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "invoice_number", "rental_id", "customer_id", "invoice_date", "due_date",
				"subtotal", "tax_amount", "discount_amount", "total_amount", "status", "created_on", "updated_on",
			}).AddRow(3, "INV2603001", 7, 1, now, now.Add(14*24*time.Hour),
				"80000", "6400", "0", "86400", "SENT", now, now))

		inv, err := repo.GetByRental(ctx, 7)
		assert.NoError(t, err)
		assert.Equal(t, "INV2603001", inv.InvoiceNumber)
		assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(86400)))
	})

	t.Run("Missing Invoice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM invoices WHERE rental_id").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		inv, err := repo.GetByRental(ctx, 99)
		assert.Nil(t, inv)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvoiceRepository_NextInvoiceNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewInvoiceRepository(db)
	ctx := context.Background()

	t.Run("First Of The Month", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM invoices WHERE invoice_number LIKE").
			WithArgs("INV2603%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		number, err := repo.NextInvoiceNumber(ctx, time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, "INV2603001", number)
	})

	t.Run("Counter Resets Each Month", func(t *testing.T) {
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM invoices WHERE invoice_number LIKE").
			WithArgs("INV2604%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

		number, err := repo.NextInvoiceNumber(ctx, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, "INV2604042", number)
	})
}
