package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dicoevent/dicoevent/internal/domain/event"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	pool *pgxpool.Pool
}

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepo {
	return &EventsRepo{pool: pool}
}

// ListEventsFilter narrows the event list; nil fields are ignored.
type ListEventsFilter struct {
	Status   *string
	Category *string
	Location *string
	Limit    int
	Offset   int
}

func mapEventFKViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "events_organizer_id_fkey" {
		return user.ErrNotFound
	}
	return err
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, name, description, location, start_time, end_time, status, quota, category, organizer_id, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.Name, e.Description, e.Location, e.StartTime, e.EndTime, string(e.Status), e.Quota, e.Category, e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	)

	if err != nil {
		return event.Event{}, mapEventFKViolation(err)
	}

	return r.GetByID(ctx, e.ID)
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event
	var status string

	err := r.pool.QueryRow(ctx,
		`SELECT e.id, e.name, e.description, e.location, e.start_time, e.end_time, e.status, e.quota, e.category, e.organizer_id, e.created_at, e.updated_at,
		        u.username, u.email
		 FROM events e
		 JOIN users u ON u.id = e.organizer_id
		 WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.StartTime, &e.EndTime, &status, &e.Quota, &e.Category, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
		&e.Organizer.Username, &e.Organizer.Email)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	e.Status = event.Status(status)
	e.Organizer.ID = e.OrganizerID
	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, filter ListEventsFilter) ([]event.Event, int, error) {
	baseQuery := `SELECT e.id, e.name, e.description, e.location, e.start_time, e.end_time, e.status, e.quota, e.category, e.organizer_id, e.created_at, e.updated_at,
		       u.username, u.email,
		       COUNT(*) OVER() AS total
		FROM events e
		JOIN users u ON u.id = e.organizer_id
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("e.status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if filter.Category != nil {
		conds = append(conds, fmt.Sprintf("e.category = $%d", argsPosition))
		args = append(args, *filter.Category)
		argsPosition++
	}

	if filter.Location != nil {
		conds = append(conds, fmt.Sprintf("e.location = $%d", argsPosition))
		args = append(args, *filter.Location)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY e.start_time ASC, e.id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]event.Event, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var e event.Event
		var status string
		var t int

		err = rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.StartTime, &e.EndTime, &status, &e.Quota, &e.Category, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
			&e.Organizer.Username, &e.Organizer.Email, &t)

		if err != nil {
			return nil, 0, err
		}

		e.Status = event.Status(status)
		e.Organizer.ID = e.OrganizerID
		total = t
		out = append(out, e)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *EventsRepo) Update(ctx context.Context, e event.Event) (event.Event, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events
		 SET name = $2,
		     description = $3,
		     location = $4,
		     start_time = $5,
		     end_time = $6,
		     status = $7,
		     quota = $8,
		     category = $9,
		     organizer_id = $10,
		     updated_at = NOW()
		 WHERE id = $1`,
		e.ID, e.Name, e.Description, e.Location, e.StartTime, e.EndTime, string(e.Status), e.Quota, e.Category, e.OrganizerID,
	)

	if err != nil {
		return event.Event{}, mapEventFKViolation(err)
	}

	if tag.RowsAffected() == 0 {
		return event.Event{}, event.ErrNotFound
	}

	return r.GetByID(ctx, e.ID)
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}

	return nil
}

// OrganizerOf returns the organizer user id of an event. Object-level
// authorization checks read this before mutating events, tickets or posters.
func (r *EventsRepo) OrganizerOf(ctx context.Context, id string) (string, error) {
	var organizerID string

	err := r.pool.QueryRow(ctx, `SELECT organizer_id FROM events WHERE id = $1`, id).Scan(&organizerID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", event.ErrNotFound
		}
		return "", err
	}

	return organizerID, nil
}
