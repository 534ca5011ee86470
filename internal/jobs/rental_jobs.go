package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/logger"
)

// MarkOverdueRentals flips ACTIVE rentals past their expected return date to
// OVERDUE. Unpaid rentals get their payment status flipped too. The rental
// core treats OVERDUE as a derived status: returns from OVERDUE follow the
// same reconciliation path as returns from ACTIVE.
func (jr *JobRunner) MarkOverdueRentals() {
	jr.runWithRecovery("MarkOverdueRentals", func() {
		ctx := context.Background()

		query := `
			UPDATE rentals
			SET status = 'OVERDUE',
			    payment_status = CASE WHEN payment_status = 'PAID' THEN payment_status ELSE 'OVERDUE' END,
			    updated_on = NOW()
			WHERE status = 'ACTIVE'
			  AND expected_return_date < $1
			RETURNING id, rental_number, customer_id, expected_return_date
		`

		rows, err := jr.db.QueryContext(ctx, query, time.Now())
		if err != nil {
			logger.Error("Failed to mark overdue rentals", "error", err)
			return
		}
		defer rows.Close()

		count := 0
		for rows.Next() {
			var (
				id           int32
				rentalNumber string
				customerID   int32
				expected     time.Time
			)
			if err := rows.Scan(&id, &rentalNumber, &customerID, &expected); err != nil {
				logger.Error("Failed to scan overdue rental", "error", err)
				continue
			}
			count++
			logger.Debug("Marked rental as overdue",
				"rental_id", id,
				"rental_number", rentalNumber,
				"customer_id", customerID,
				"expected_return_date", expected.Format("2006-01-02"))
		}

		if err := rows.Err(); err != nil {
			logger.Error("Error iterating overdue rentals", "error", err)
			return
		}

		logger.Info("Marked rentals as overdue", "count", count)

		jr.markOverdueInvoices(ctx)
	})
}

// markOverdueInvoices flips SENT invoices past their due date to OVERDUE in
// the same nightly pass.
func (jr *JobRunner) markOverdueInvoices(ctx context.Context) {
	res, err := jr.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = 'OVERDUE',
		    updated_on = NOW()
		WHERE status = 'SENT'
		  AND due_date < $1
	`, time.Now())
	if err != nil {
		logger.Error("Failed to mark overdue invoices", "error", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil {
		logger.Info("Marked invoices as overdue", "count", n)
	}
}

// SendOverdueReminders emails the customer of every OVERDUE rental.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		query := `
			SELECT r.rental_number, r.expected_return_date, c.name, c.email
			FROM rentals r
			JOIN customers c ON c.id = r.customer_id
			WHERE r.status = 'OVERDUE'
			  AND c.email != ''
		`

		rows, err := jr.db.QueryContext(ctx, query)
		if err != nil {
			logger.Error("Failed to load overdue rentals for reminders", "error", err)
			return
		}
		defer rows.Close()

		sent := 0
		for rows.Next() {
			var (
				rentalNumber string
				expected     time.Time
				name, email  string
			)
			if err := rows.Scan(&rentalNumber, &expected, &name, &email); err != nil {
				logger.Error("Failed to scan overdue rental", "error", err)
				continue
			}
			if err := jr.emailSvc.SendOverdueReminder(ctx, email, name, rentalNumber, expected); err != nil {
				logger.Error("Failed to send overdue reminder", "rental_number", rentalNumber, "error", err)
				continue
			}
			sent++
		}

		if err := rows.Err(); err != nil {
			logger.Error("Error iterating overdue rentals", "error", err)
			return
		}

		logger.Info("Sent overdue reminders", "count", sent)
	})
}
