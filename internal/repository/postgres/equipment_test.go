package postgres_test

import (
	"context"
	"testing"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEquipmentRepository_Reserve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewEquipmentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(3), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Reserve(ctx, 2, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient Availability", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(5), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT available_quantity FROM equipment WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"available_quantity"}).AddRow(3))

		err := repo.Reserve(ctx, 2, 5)
		var availErr *domain.InsufficientAvailabilityError
		assert.ErrorAs(t, err, &availErr)
		assert.Equal(t, int32(5), availErr.Requested)
		assert.Equal(t, int32(3), availErr.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Equipment", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(99), int32(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT available_quantity FROM equipment WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"available_quantity"}))

		err := repo.Reserve(ctx, 99, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEquipmentRepository_AdjustStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewEquipmentRepository(db)
	ctx := context.Background()

	t.Run("Move To Maintenance", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(-2), int32(2), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdjustStock(ctx, 2, -2, 2)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Restock", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(5), int32(0), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdjustStock(ctx, 2, 5, 0)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Counter Would Go Negative", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(-4), int32(4), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT available_quantity, maintenance_quantity FROM equipment WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"available_quantity", "maintenance_quantity"}).AddRow(3, 0))

		err := repo.AdjustStock(ctx, 2, -4, 4)
		var adjustErr *domain.InvalidStockAdjustmentError
		assert.ErrorAs(t, err, &adjustErr)
		assert.Equal(t, int32(3), adjustErr.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Equipment", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(99), int32(1), int32(0), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT available_quantity, maintenance_quantity FROM equipment WHERE id = \\$1").
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"available_quantity", "maintenance_quantity"}))

		err := repo.AdjustStock(ctx, 99, 1, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEquipmentRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewEquipmentRepository(db)
	ctx := context.Background()

	// Update must never touch the stock counters; those go through
	// Reserve/Release/AdjustStock so the counter-sum constraint cannot break.
	t.Run("Leaves Counters Alone", func(t *testing.T) {
		eq := &domain.Equipment{
			ID:                  2,
			Name:                "Mini Excavator",
			DailyRate:           decimal.NewFromInt(15000),
			TotalQuantity:       5,
			AvailableQuantity:   5,
			MaintenanceQuantity: 2, // stale client value, must be ignored
			Status:              domain.EquipmentStatusAvailable,
		}

		mock.ExpectExec(`UPDATE equipment SET name=\$1, type=\$2, category=\$3, brand=\$4, condition=\$5,\s+hourly_rate=`).
			WithArgs(eq.Name, eq.Type, eq.Category, eq.Brand, eq.Condition,
				eq.HourlyRate, eq.DailyRate, eq.WeeklyRate, eq.MonthlyRate, eq.SecurityDeposit,
				eq.Status, eq.Location, eq.Notes, sqlmock.AnyArg(), eq.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, eq)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEquipmentRepository_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewEquipmentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(3), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Release(ctx, 2, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Over Release", func(t *testing.T) {
		mock.ExpectExec("UPDATE equipment").
			WithArgs(int32(2), int32(4), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT reserved_quantity FROM equipment WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"reserved_quantity"}).AddRow(2))

		err := repo.Release(ctx, 2, 4)
		var releaseErr *domain.OverReleaseError
		assert.ErrorAs(t, err, &releaseErr)
		assert.Equal(t, int32(2), releaseErr.Reserved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
