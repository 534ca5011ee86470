package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, type, name, company_name, contact_person, primary_phone,
	email, id_number, address_line1, city, total_rentals, total_spent,
	outstanding_balance, status, notes, created_on, updated_on`

func scanCustomer(row interface{ Scan(...interface{}) error }, c *domain.Customer) error {
	return row.Scan(&c.ID, &c.Type, &c.Name, &c.CompanyName, &c.ContactPerson, &c.PrimaryPhone,
		&c.Email, &c.IDNumber, &c.AddressLine1, &c.City, &c.TotalRentals, &c.TotalSpent,
		&c.OutstandingBalance, &c.Status, &c.Notes, &c.CreatedOn, &c.UpdatedOn)
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	query := `INSERT INTO customers (type, name, company_name, contact_person, primary_phone,
	          email, id_number, address_line1, city, total_rentals, total_spent,
	          outstanding_balance, status, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, 0, $10, $11, $12, $13)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, c.Type, c.Name, c.CompanyName, c.ContactPerson,
		c.PrimaryPhone, c.Email, c.IDNumber, c.AddressLine1, c.City,
		c.Status, c.Notes, now, now).Scan(&c.ID)
}

func (r *customerRepository) GetByID(ctx context.Context, id int32) (*domain.Customer, error) {
	c := &domain.Customer{}
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	err := scanCustomer(r.db.QueryRowContext(ctx, query, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domain.Customer) error {
	query := `UPDATE customers SET type=$1, name=$2, company_name=$3, contact_person=$4,
	          primary_phone=$5, email=$6, id_number=$7, address_line1=$8, city=$9,
	          status=$10, notes=$11, updated_on=$12 WHERE id=$13`
	_, err := r.db.ExecContext(ctx, query, c.Type, c.Name, c.CompanyName, c.ContactPerson,
		c.PrimaryPhone, c.Email, c.IDNumber, c.AddressLine1, c.City,
		c.Status, c.Notes, time.Now(), c.ID)
	return err
}

func (r *customerRepository) List(ctx context.Context, page, pageSize int32) ([]domain.Customer, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM customers`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY name LIMIT $1 OFFSET $2`, customerColumns)
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, count, rows.Err()
}

func (r *customerRepository) Search(ctx context.Context, query string) ([]domain.Customer, error) {
	sqlq := fmt.Sprintf(`SELECT %s FROM customers
	        WHERE name ILIKE '%%' || $1 || '%%'
	           OR company_name ILIKE '%%' || $1 || '%%'
	           OR primary_phone LIKE '%%' || $1 || '%%'
	           OR id_number ILIKE '%%' || $1 || '%%'
	        ORDER BY name`, customerColumns)
	rows, err := r.db.QueryContext(ctx, sqlq, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) AddRentalStats(ctx context.Context, id int32, rentalDelta int32, spentDelta, outstandingDelta decimal.Decimal) error {
	query := `UPDATE customers
	          SET total_rentals = total_rentals + $2,
	              total_spent = total_spent + $3,
	              outstanding_balance = outstanding_balance + $4,
	              updated_on = $5
	          WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, rentalDelta, spentDelta, outstandingDelta, time.Now())
	return err
}
