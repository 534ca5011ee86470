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

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, rental_number, customer_id, customer_name, start_date,
	expected_return_date, actual_return_date, subtotal, tax_rate, tax_amount,
	discount_amount, security_deposit, delivery_required, delivery_fee, delivery_address,
	pickup_required, pickup_fee, additional_charges, total_amount, paid_amount,
	outstanding_amount, status, payment_status, qr_code, notes, created_on, updated_on`

func scanRental(row interface{ Scan(...interface{}) error }, rt *domain.Rental) error {
	return row.Scan(&rt.ID, &rt.RentalNumber, &rt.CustomerID, &rt.CustomerName, &rt.StartDate,
		&rt.ExpectedReturnDate, &rt.ActualReturnDate, &rt.Subtotal, &rt.TaxRate, &rt.TaxAmount,
		&rt.DiscountAmount, &rt.SecurityDeposit, &rt.DeliveryRequired, &rt.DeliveryFee, &rt.DeliveryAddress,
		&rt.PickupRequired, &rt.PickupFee, &rt.AdditionalCharges, &rt.TotalAmount, &rt.PaidAmount,
		&rt.OutstandingAmount, &rt.Status, &rt.PaymentStatus, &rt.QRCode, &rt.Notes, &rt.CreatedOn, &rt.UpdatedOn)
}

// Create inserts the rental and its line items in one database transaction so
// a rental never persists without its items.
func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	query := `INSERT INTO rentals (rental_number, customer_id, customer_name, start_date,
	          expected_return_date, actual_return_date, subtotal, tax_rate, tax_amount,
	          discount_amount, security_deposit, delivery_required, delivery_fee, delivery_address,
	          pickup_required, pickup_fee, additional_charges, total_amount, paid_amount,
	          outstanding_amount, status, payment_status, qr_code, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	                  $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	          RETURNING id`
	err = tx.QueryRowContext(ctx, query, rt.RentalNumber, rt.CustomerID, rt.CustomerName, rt.StartDate,
		rt.ExpectedReturnDate, rt.ActualReturnDate, rt.Subtotal, rt.TaxRate, rt.TaxAmount,
		rt.DiscountAmount, rt.SecurityDeposit, rt.DeliveryRequired, rt.DeliveryFee, rt.DeliveryAddress,
		rt.PickupRequired, rt.PickupFee, rt.AdditionalCharges, rt.TotalAmount, rt.PaidAmount,
		rt.OutstandingAmount, rt.Status, rt.PaymentStatus, rt.QRCode, rt.Notes, now, now).Scan(&rt.ID)
	if err != nil {
		return err
	}

	itemQuery := `INSERT INTO rental_items (rental_id, equipment_id, equipment_name, quantity,
	              rate_type, rate, duration, subtotal, condition_out, condition_in, damage_notes)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	              RETURNING id`
	for i := range rt.Items {
		item := &rt.Items[i]
		item.RentalID = rt.ID
		err = tx.QueryRowContext(ctx, itemQuery, item.RentalID, item.EquipmentID, item.EquipmentName,
			item.Quantity, item.RateType, item.Rate, item.Duration, item.Subtotal,
			item.ConditionOut, item.ConditionIn, item.DamageNotes).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt := &domain.Rental{}
	query := fmt.Sprintf(`SELECT %s FROM rentals WHERE id = $1`, rentalColumns)
	err := scanRental(r.db.QueryRowContext(ctx, query, id), rt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	rt.Items = items
	return rt, nil
}

func (r *rentalRepository) getItems(ctx context.Context, rentalID int32) ([]domain.RentalItem, error) {
	query := `SELECT id, rental_id, equipment_id, equipment_name, quantity, rate_type,
	          rate, duration, subtotal, condition_out, condition_in, damage_notes
	          FROM rental_items WHERE rental_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.RentalItem
	for rows.Next() {
		var it domain.RentalItem
		if err := rows.Scan(&it.ID, &it.RentalID, &it.EquipmentID, &it.EquipmentName,
			&it.Quantity, &it.RateType, &it.Rate, &it.Duration, &it.Subtotal,
			&it.ConditionOut, &it.ConditionIn, &it.DamageNotes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const rentalUpdateQuery = `UPDATE rentals SET actual_return_date=$1, subtotal=$2, tax_amount=$3,
	discount_amount=$4, additional_charges=$5, total_amount=$6, paid_amount=$7,
	outstanding_amount=$8, status=$9, payment_status=$10, notes=$11, updated_on=$12
	WHERE id=$13`

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	_, err := r.db.ExecContext(ctx, rentalUpdateQuery, rt.ActualReturnDate, rt.Subtotal, rt.TaxAmount,
		rt.DiscountAmount, rt.AdditionalCharges, rt.TotalAmount, rt.PaidAmount,
		rt.OutstandingAmount, rt.Status, rt.PaymentStatus, rt.Notes, time.Now(), rt.ID)
	return err
}

// UpdateWithItems mirrors Create: the rental row and all line items commit or
// roll back together.
func (r *rentalRepository) UpdateWithItems(ctx context.Context, rt *domain.Rental) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, rentalUpdateQuery, rt.ActualReturnDate, rt.Subtotal, rt.TaxAmount,
		rt.DiscountAmount, rt.AdditionalCharges, rt.TotalAmount, rt.PaidAmount,
		rt.OutstandingAmount, rt.Status, rt.PaymentStatus, rt.Notes, time.Now(), rt.ID)
	if err != nil {
		return err
	}

	itemQuery := `UPDATE rental_items SET duration=$1, subtotal=$2, condition_in=$3, damage_notes=$4
	              WHERE id=$5`
	for i := range rt.Items {
		item := &rt.Items[i]
		if _, err := tx.ExecContext(ctx, itemQuery, item.Duration, item.Subtotal,
			item.ConditionIn, item.DamageNotes, item.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *rentalRepository) ListByCustomer(ctx context.Context, customerID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	base := fmt.Sprintf(`SELECT %s FROM rentals WHERE customer_id = $1`, rentalColumns)
	args := []interface{}{customerID}
	argIdx := 2
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	return r.listPage(ctx, base, args, argIdx, page, pageSize)
}

func (r *rentalRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Rental, int32, error) {
	base := fmt.Sprintf(`SELECT %s FROM rentals WHERE 1=1`, rentalColumns)
	var args []interface{}
	argIdx := 1
	if status != "" {
		base += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}
	return r.listPage(ctx, base, args, argIdx, page, pageSize)
}

func (r *rentalRepository) listPage(ctx context.Context, base string, args []interface{}, argIdx int, page, pageSize int32) ([]domain.Rental, int32, error) {
	var count int32
	countQuery := "SELECT count(*) FROM (" + base + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	base += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, base, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		var rt domain.Rental
		if err := scanRental(rows, &rt); err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, rt)
	}
	return rentals, count, rows.Err()
}

// NextRentalNumber draws from a dedicated sequence so concurrent creations
// never contend for the same number. Numbers stay monotonic but may have gaps
// when a creation fails after the draw.
func (r *rentalRepository) NextRentalNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('rental_number_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("R%03d", n), nil
}
