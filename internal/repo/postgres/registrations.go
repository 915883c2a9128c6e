package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dicoevent/dicoevent/internal/domain/registration"
	"github.com/dicoevent/dicoevent/internal/domain/ticket"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/dicoevent/dicoevent/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *RegistrationsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx runs the whole admission chain inside the caller's transaction.
// The ticket row is locked FOR UPDATE so two concurrent registrations for the
// last slot serialize; the loser re-reads a full quota and is rejected.
func (repo *RegistrationsRepo) CreateTx(ctx context.Context, tx pgx.Tx, req registration.CreateRegistrationRequest) (reg registration.Registration, err error) {
	// 1) lock ticket row, read the sales window and quota
	var t ticket.Summary

	err = repo.observe("registrations.create_tx.ticket_lock", func() error {
		return tx.QueryRow(ctx, `
			SELECT id, name, price, sales_start, sales_end, quota
			FROM tickets
			WHERE id = $1
			FOR UPDATE
		`, req.TicketID).Scan(&t.ID, &t.Name, &t.Price, &t.SalesStart, &t.SalesEnd, &t.Quota)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ticket.ErrNotFound
		}
		return
	}

	// 2) the registrant must exist
	var u user.Summary

	err = repo.observe("registrations.create_tx.user_check", func() error {
		return tx.QueryRow(ctx, `SELECT id, username, email FROM users WHERE id = $1`, req.UserID).
			Scan(&u.ID, &u.Username, &u.Email)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		return
	}

	// 3) current count and duplicate flag, read under the ticket lock
	var current int
	var duplicate bool

	err = repo.observe("registrations.create_tx.counts", func() error {
		return tx.QueryRow(ctx, `
			SELECT COUNT(*),
			       COALESCE(BOOL_OR(user_id = $2), FALSE)
			FROM registrations
			WHERE ticket_id = $1
		`, req.TicketID, req.UserID).Scan(&current, &duplicate)
	})

	if err != nil {
		return
	}

	err = registration.ValidateCreate(t.SalesStart, t.SalesEnd, t.Quota, current, duplicate, time.Now().UTC())

	if err != nil {
		return
	}

	reg = registration.NewFromCreateRequest(req)
	reg.User = u
	reg.Ticket = t

	err = repo.observe("registrations.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO registrations (id, ticket_id, user_id, registered_at)
			VALUES ($1,$2,$3,$4)
		`, reg.ID, reg.TicketID, reg.UserID, reg.RegisteredAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "registrations_ticket_user_uniq" {
			err = registration.ErrAlreadyRegistered
		}
		reg = registration.Registration{}
		return
	}

	return
}

func (repo *RegistrationsRepo) GetByID(ctx context.Context, id string) (registration.Registration, error) {
	var r registration.Registration

	err := repo.observe("registrations.get_by_id", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT r.id, r.ticket_id, r.user_id, r.registered_at,
			       u.username, u.email,
			       t.name, t.price, t.sales_start, t.sales_end, t.quota
			FROM registrations r
			JOIN users u ON u.id = r.user_id
			JOIN tickets t ON t.id = r.ticket_id
			WHERE r.id = $1
		`, id).Scan(&r.ID, &r.TicketID, &r.UserID, &r.RegisteredAt,
			&r.User.Username, &r.User.Email,
			&r.Ticket.Name, &r.Ticket.Price, &r.Ticket.SalesStart, &r.Ticket.SalesEnd, &r.Ticket.Quota)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, err
	}

	r.User.ID = r.UserID
	r.Ticket.ID = r.TicketID
	return r, nil
}

func (repo *RegistrationsRepo) List(ctx context.Context, limit, offset int) (regs []registration.Registration, total int, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.list", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
			SELECT r.id, r.ticket_id, r.user_id, r.registered_at,
			       u.username, u.email,
			       t.name, t.price, t.sales_start, t.sales_end, t.quota,
			       COUNT(*) OVER() AS total
			FROM registrations r
			JOIN users u ON u.id = r.user_id
			JOIN tickets t ON t.id = r.ticket_id
			ORDER BY r.registered_at DESC, r.id DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		return qerr
	})

	if err != nil {
		return
	}

	defer rows.Close()

	regs = make([]registration.Registration, 0, limit)

	for rows.Next() {
		var r registration.Registration
		var t int

		e := rows.Scan(&r.ID, &r.TicketID, &r.UserID, &r.RegisteredAt,
			&r.User.Username, &r.User.Email,
			&r.Ticket.Name, &r.Ticket.Price, &r.Ticket.SalesStart, &r.Ticket.SalesEnd, &r.Ticket.Quota, &t)

		if e != nil {
			err = e
			return
		}

		r.User.ID = r.UserID
		r.Ticket.ID = r.TicketID
		total = t
		regs = append(regs, r)
	}

	if e := rows.Err(); e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("registrations.list", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

func (repo *RegistrationsRepo) Delete(ctx context.Context, id string) (err error) {
	var tag pgconn.CommandTag

	err = repo.observe("registrations.delete", func() error {
		var e error
		tag, e = repo.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = registration.ErrNotFound
		return
	}

	return
}

// RemindersBetween returns one row per registration whose event starts in
// [from, to]. Cancelled and completed events are skipped.
func (repo *RegistrationsRepo) RemindersBetween(ctx context.Context, from, to time.Time) (reminders []registration.Reminder, err error) {
	var rows pgx.Rows

	err = repo.observe("registrations.reminders_between", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
			SELECT r.id, e.id, e.name, u.email, u.username, e.start_time
			FROM registrations r
			JOIN tickets t ON t.id = r.ticket_id
			JOIN events e ON e.id = t.event_id
			JOIN users u ON u.id = r.user_id
			WHERE e.status = 'scheduled'
			  AND e.start_time >= $1
			  AND e.start_time <= $2
			ORDER BY e.start_time ASC, r.id ASC
		`, from, to)
		return qerr
	})

	if err != nil {
		return
	}

	defer rows.Close()

	reminders = make([]registration.Reminder, 0)

	for rows.Next() {
		var rem registration.Reminder

		e := rows.Scan(&rem.RegistrationID, &rem.EventID, &rem.EventName, &rem.Email, &rem.Username, &rem.StartTime)

		if e != nil {
			err = e
			return
		}

		reminders = append(reminders, rem)
	}

	err = rows.Err()
	return
}
