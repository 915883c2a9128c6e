package postgres

import (
	"context"
	"errors"

	"github.com/dicoevent/dicoevent/internal/domain/event"
	"github.com/dicoevent/dicoevent/internal/domain/ticket"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketsRepo struct {
	pool *pgxpool.Pool
}

func NewTicketsRepo(pool *pgxpool.Pool) *TicketsRepo {
	return &TicketsRepo{pool: pool}
}

func mapTicketFKViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "tickets_event_id_fkey" {
		return event.ErrNotFound
	}
	return err
}

func (r *TicketsRepo) Create(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tickets (id, event_id, name, price, sales_start, sales_end, quota, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.EventID, t.Name, t.Price, t.SalesStart, t.SalesEnd, t.Quota, t.CreatedAt, t.UpdatedAt,
	)

	if err != nil {
		return ticket.Ticket{}, mapTicketFKViolation(err)
	}

	return r.GetByID(ctx, t.ID)
}

func (r *TicketsRepo) GetByID(ctx context.Context, id string) (ticket.Ticket, error) {
	var t ticket.Ticket

	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.event_id, e.name, t.name, t.price, t.sales_start, t.sales_end, t.quota, t.created_at, t.updated_at
		 FROM tickets t
		 JOIN events e ON e.id = t.event_id
		 WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.EventID, &t.EventName, &t.Name, &t.Price, &t.SalesStart, &t.SalesEnd, &t.Quota, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ticket.Ticket{}, ticket.ErrNotFound
		}
		return ticket.Ticket{}, err
	}

	return t, nil
}

func (r *TicketsRepo) List(ctx context.Context, limit, offset int) ([]ticket.Ticket, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.event_id, e.name, t.name, t.price, t.sales_start, t.sales_end, t.quota, t.created_at, t.updated_at,
		        COUNT(*) OVER() AS total
		 FROM tickets t
		 JOIN events e ON e.id = t.event_id
		 ORDER BY t.created_at DESC, t.id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]ticket.Ticket, 0, limit)
	total := 0

	for rows.Next() {
		var t ticket.Ticket
		var tot int

		err = rows.Scan(&t.ID, &t.EventID, &t.EventName, &t.Name, &t.Price, &t.SalesStart, &t.SalesEnd, &t.Quota, &t.CreatedAt, &t.UpdatedAt, &tot)

		if err != nil {
			return nil, 0, err
		}

		total = tot
		out = append(out, t)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *TicketsRepo) Update(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tickets
		 SET event_id = $2,
		     name = $3,
		     price = $4,
		     sales_start = $5,
		     sales_end = $6,
		     quota = $7,
		     updated_at = NOW()
		 WHERE id = $1`,
		t.ID, t.EventID, t.Name, t.Price, t.SalesStart, t.SalesEnd, t.Quota,
	)

	if err != nil {
		return ticket.Ticket{}, mapTicketFKViolation(err)
	}

	if tag.RowsAffected() == 0 {
		return ticket.Ticket{}, ticket.ErrNotFound
	}

	return r.GetByID(ctx, t.ID)
}

func (r *TicketsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ticket.ErrNotFound
	}

	return nil
}

// EventOf returns the parent event id of a ticket, for object-level
// authorization through the event's organizer.
func (r *TicketsRepo) EventOf(ctx context.Context, id string) (string, error) {
	var eventID string

	err := r.pool.QueryRow(ctx, `SELECT event_id FROM tickets WHERE id = $1`, id).Scan(&eventID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ticket.ErrNotFound
		}
		return "", err
	}

	return eventID, nil
}
