package postgres

import (
	"context"
	"database/sql"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	query := `INSERT INTO payment_transactions (rental_id, customer_id, amount, type, method, reference, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query, tx.RentalID, tx.CustomerID, tx.Amount, tx.Type,
		tx.Method, tx.Reference, tx.Description, time.Now()).Scan(&tx.ID)
}

func (r *paymentRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.PaymentTransaction, error) {
	query := `SELECT id, rental_id, customer_id, amount, type, method, reference, description, created_on
	          FROM payment_transactions WHERE rental_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.PaymentTransaction
	for rows.Next() {
		var tx domain.PaymentTransaction
		if err := rows.Scan(&tx.ID, &tx.RentalID, &tx.CustomerID, &tx.Amount, &tx.Type,
			&tx.Method, &tx.Reference, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (r *paymentRepository) ListByCustomer(ctx context.Context, customerID int32, page, pageSize int32) ([]domain.PaymentTransaction, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM payment_transactions WHERE customer_id = $1`, customerID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, rental_id, customer_id, amount, type, method, reference, description, created_on
	          FROM payment_transactions WHERE customer_id = $1
	          ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, customerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.PaymentTransaction
	for rows.Next() {
		var tx domain.PaymentTransaction
		if err := rows.Scan(&tx.ID, &tx.RentalID, &tx.CustomerID, &tx.Amount, &tx.Type,
			&tx.Method, &tx.Reference, &tx.Description, &tx.CreatedOn); err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}
