package postgres

import (
	"context"
	"errors"

	"github.com/dicoevent/dicoevent/internal/domain/event"
	"github.com/dicoevent/dicoevent/internal/domain/poster"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostersRepo struct {
	pool *pgxpool.Pool
}

func NewPostersRepo(pool *pgxpool.Pool) *PostersRepo {
	return &PostersRepo{pool: pool}
}

func (r *PostersRepo) Create(ctx context.Context, p poster.Poster) (poster.Poster, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_posters (id, event_id, object_key, content_type, size_bytes, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.EventID, p.ObjectKey, p.ContentType, p.SizeBytes, p.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "event_posters_event_id_fkey" {
			return poster.Poster{}, event.ErrNotFound
		}
		return poster.Poster{}, err
	}

	return p, nil
}

func (r *PostersRepo) GetByID(ctx context.Context, id string) (poster.Poster, error) {
	var p poster.Poster

	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, object_key, content_type, size_bytes, created_at
		 FROM event_posters
		 WHERE id = $1`, id,
	).Scan(&p.ID, &p.EventID, &p.ObjectKey, &p.ContentType, &p.SizeBytes, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return poster.Poster{}, poster.ErrNotFound
		}
		return poster.Poster{}, err
	}

	return p, nil
}

func (r *PostersRepo) List(ctx context.Context, limit, offset int) ([]poster.Poster, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, object_key, content_type, size_bytes, created_at,
		        COUNT(*) OVER() AS total
		 FROM event_posters
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]poster.Poster, 0, limit)
	total := 0

	for rows.Next() {
		var p poster.Poster
		var t int

		err = rows.Scan(&p.ID, &p.EventID, &p.ObjectKey, &p.ContentType, &p.SizeBytes, &p.CreatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		out = append(out, p)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *PostersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_posters WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return poster.ErrNotFound
	}

	return nil
}

// EventOf returns the parent event id of a poster, for object-level
// authorization through the event's organizer.
func (r *PostersRepo) EventOf(ctx context.Context, id string) (string, error) {
	var eventID string

	err := r.pool.QueryRow(ctx, `SELECT event_id FROM event_posters WHERE id = $1`, id).Scan(&eventID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", poster.ErrNotFound
		}
		return "", err
	}

	return eventID, nil
}
