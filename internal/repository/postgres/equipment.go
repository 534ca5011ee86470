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

type equipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) repository.EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `id, name, type, category, brand, condition,
	total_quantity, available_quantity, reserved_quantity, maintenance_quantity,
	hourly_rate, daily_rate, weekly_rate, monthly_rate, security_deposit,
	status, qr_code, location, notes, created_on, updated_on`

func scanEquipment(row interface{ Scan(...interface{}) error }, eq *domain.Equipment) error {
	return row.Scan(&eq.ID, &eq.Name, &eq.Type, &eq.Category, &eq.Brand, &eq.Condition,
		&eq.TotalQuantity, &eq.AvailableQuantity, &eq.ReservedQuantity, &eq.MaintenanceQuantity,
		&eq.HourlyRate, &eq.DailyRate, &eq.WeeklyRate, &eq.MonthlyRate, &eq.SecurityDeposit,
		&eq.Status, &eq.QRCode, &eq.Location, &eq.Notes, &eq.CreatedOn, &eq.UpdatedOn)
}

func (r *equipmentRepository) Create(ctx context.Context, eq *domain.Equipment) error {
	query := `INSERT INTO equipment (name, type, category, brand, condition,
	          total_quantity, available_quantity, reserved_quantity, maintenance_quantity,
	          hourly_rate, daily_rate, weekly_rate, monthly_rate, security_deposit,
	          status, qr_code, location, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, eq.Name, eq.Type, eq.Category, eq.Brand, eq.Condition,
		eq.TotalQuantity, eq.AvailableQuantity, eq.ReservedQuantity, eq.MaintenanceQuantity,
		eq.HourlyRate, eq.DailyRate, eq.WeeklyRate, eq.MonthlyRate, eq.SecurityDeposit,
		eq.Status, eq.QRCode, eq.Location, eq.Notes, now, now).Scan(&eq.ID)
}

func (r *equipmentRepository) GetByID(ctx context.Context, id int32) (*domain.Equipment, error) {
	eq := &domain.Equipment{}
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE id = $1`, equipmentColumns)
	err := scanEquipment(r.db.QueryRowContext(ctx, query, id), eq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return eq, nil
}

// Update writes metadata and pricing only. Stock counters are mutated solely
// through Reserve, Release, and AdjustStock so the counter invariant can never
// be broken by a plain record edit.
func (r *equipmentRepository) Update(ctx context.Context, eq *domain.Equipment) error {
	query := `UPDATE equipment SET name=$1, type=$2, category=$3, brand=$4, condition=$5,
	          hourly_rate=$6, daily_rate=$7, weekly_rate=$8,
	          monthly_rate=$9, security_deposit=$10, status=$11, location=$12, notes=$13,
	          updated_on=$14 WHERE id=$15`
	_, err := r.db.ExecContext(ctx, query, eq.Name, eq.Type, eq.Category, eq.Brand, eq.Condition,
		eq.HourlyRate, eq.DailyRate, eq.WeeklyRate,
		eq.MonthlyRate, eq.SecurityDeposit, eq.Status, eq.Location, eq.Notes,
		time.Now(), eq.ID)
	return err
}

func (r *equipmentRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Equipment, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM equipment WHERE status != 'RETIRED'`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM equipment WHERE status != 'RETIRED' ORDER BY name LIMIT $1 OFFSET $2`, equipmentColumns)
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		var eq domain.Equipment
		if err := scanEquipment(rows, &eq); err != nil {
			return nil, 0, err
		}
		items = append(items, eq)
	}
	return items, count, rows.Err()
}

func (r *equipmentRepository) Search(ctx context.Context, query, category string) ([]domain.Equipment, error) {
	sqlq := fmt.Sprintf(`SELECT %s FROM equipment
	        WHERE (name ILIKE '%%' || $1 || '%%' OR brand ILIKE '%%' || $1 || '%%' OR qr_code ILIKE '%%' || $1 || '%%')`, equipmentColumns)
	args := []interface{}{query}
	if category != "" {
		sqlq += ` AND category = $2`
		args = append(args, category)
	}
	sqlq += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Equipment
	for rows.Next() {
		var eq domain.Equipment
		if err := scanEquipment(rows, &eq); err != nil {
			return nil, err
		}
		items = append(items, eq)
	}
	return items, rows.Err()
}

// Reserve moves units from available to reserved with a guarded UPDATE, so two
// concurrent reservations can never both pass the availability check. The
// database applies the row update atomically; when the guard fails no row
// matches and the current counter is fetched for the error.
func (r *equipmentRepository) Reserve(ctx context.Context, equipmentID, quantity int32) error {
	query := `UPDATE equipment
	          SET available_quantity = available_quantity - $2,
	              reserved_quantity  = reserved_quantity + $2,
	              updated_on = $3
	          WHERE id = $1 AND available_quantity >= $2`
	res, err := r.db.ExecContext(ctx, query, equipmentID, quantity, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var available int32
		err := r.db.QueryRowContext(ctx, `SELECT available_quantity FROM equipment WHERE id = $1`, equipmentID).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return &domain.InsufficientAvailabilityError{
			EquipmentID: equipmentID,
			Requested:   quantity,
			Available:   available,
		}
	}
	return nil
}

// Release is the inverse of Reserve with the guard on reserved_quantity. A
// failed guard means reserve/release got unpaired and is surfaced as
// OverReleaseError.
func (r *equipmentRepository) Release(ctx context.Context, equipmentID, quantity int32) error {
	query := `UPDATE equipment
	          SET available_quantity = available_quantity + $2,
	              reserved_quantity  = reserved_quantity - $2,
	              updated_on = $3
	          WHERE id = $1 AND reserved_quantity >= $2`
	res, err := r.db.ExecContext(ctx, query, equipmentID, quantity, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var reserved int32
		err := r.db.QueryRowContext(ctx, `SELECT reserved_quantity FROM equipment WHERE id = $1`, equipmentID).Scan(&reserved)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return &domain.OverReleaseError{
			EquipmentID: equipmentID,
			Requested:   quantity,
			Reserved:    reserved,
		}
	}
	return nil
}

// AdjustStock applies inventory-staff counter changes with the same guarded
// UPDATE shape as Reserve/Release. Total moves by the sum of the deltas, so a
// pure maintenance move is (-n available, +n maintenance) with total unchanged,
// and a restock is (+n available, 0 maintenance) growing total by n. The guard
// keeps both counters non-negative; a failed guard reports the current counters.
func (r *equipmentRepository) AdjustStock(ctx context.Context, equipmentID, availableDelta, maintenanceDelta int32) error {
	query := `UPDATE equipment
	          SET available_quantity   = available_quantity + $2,
	              maintenance_quantity = maintenance_quantity + $3,
	              total_quantity       = total_quantity + $2 + $3,
	              updated_on = $4
	          WHERE id = $1
	            AND available_quantity + $2 >= 0
	            AND maintenance_quantity + $3 >= 0`
	res, err := r.db.ExecContext(ctx, query, equipmentID, availableDelta, maintenanceDelta, time.Now())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var available, maintenance int32
		err := r.db.QueryRowContext(ctx,
			`SELECT available_quantity, maintenance_quantity FROM equipment WHERE id = $1`,
			equipmentID).Scan(&available, &maintenance)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		return &domain.InvalidStockAdjustmentError{
			EquipmentID:      equipmentID,
			AvailableDelta:   availableDelta,
			MaintenanceDelta: maintenanceDelta,
			Available:        available,
			Maintenance:      maintenance,
		}
	}
	return nil
}
