package postgres

import (
	"database/sql"

	"equiprent-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.CustomerRepository
	repository.EquipmentRepository
	repository.RentalRepository
	repository.PaymentRepository
	repository.InvoiceRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                  db,
		CustomerRepository:  NewCustomerRepository(db),
		EquipmentRepository: NewEquipmentRepository(db),
		RentalRepository:    NewRentalRepository(db),
		PaymentRepository:   NewPaymentRepository(db),
		InvoiceRepository:   NewInvoiceRepository(db),
	}
}
