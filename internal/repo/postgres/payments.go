package postgres

import (
	"context"
	"errors"

	"github.com/dicoevent/dicoevent/internal/domain/payment"
	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentsRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentsRepo(pool *pgxpool.Pool) *PaymentsRepo {
	return &PaymentsRepo{pool: pool}
}

func mapPaymentFKViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "payments_registration_id_fkey" {
		return registration.ErrNotFound
	}
	return err
}

func (r *PaymentsRepo) Create(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (id, registration_id, method, status, amount_paid, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.RegistrationID, string(p.Method), string(p.Status), p.AmountPaid, p.CreatedAt, p.UpdatedAt,
	)

	if err != nil {
		return payment.Payment{}, mapPaymentFKViolation(err)
	}

	return p, nil
}

func (r *PaymentsRepo) GetByID(ctx context.Context, id string) (payment.Payment, error) {
	var p payment.Payment
	var method, status string

	err := r.pool.QueryRow(ctx,
		`SELECT id, registration_id, method, status, amount_paid, created_at, updated_at
		 FROM payments
		 WHERE id = $1`, id,
	).Scan(&p.ID, &p.RegistrationID, &method, &status, &p.AmountPaid, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, err
	}

	p.Method = payment.Method(method)
	p.Status = payment.Status(status)
	return p, nil
}

func (r *PaymentsRepo) List(ctx context.Context, limit, offset int) ([]payment.Payment, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, registration_id, method, status, amount_paid, created_at, updated_at,
		        COUNT(*) OVER() AS total
		 FROM payments
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]payment.Payment, 0, limit)
	total := 0

	for rows.Next() {
		var p payment.Payment
		var method, status string
		var t int

		err = rows.Scan(&p.ID, &p.RegistrationID, &method, &status, &p.AmountPaid, &p.CreatedAt, &p.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		p.Method = payment.Method(method)
		p.Status = payment.Status(status)
		total = t
		out = append(out, p)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *PaymentsRepo) Update(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	var out payment.Payment
	var method, status string

	err := r.pool.QueryRow(ctx,
		`UPDATE payments
		 SET method = $2,
		     status = $3,
		     amount_paid = $4,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, registration_id, method, status, amount_paid, created_at, updated_at`,
		p.ID, string(p.Method), string(p.Status), p.AmountPaid,
	).Scan(&out.ID, &out.RegistrationID, &method, &status, &out.AmountPaid, &out.CreatedAt, &out.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, err
	}

	out.Method = payment.Method(method)
	out.Status = payment.Status(status)
	return out, nil
}

func (r *PaymentsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return payment.ErrNotFound
	}

	return nil
}
