package postgres

import (
	"context"
	"errors"

	"github.com/dicoevent/dicoevent/internal/domain/group"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GroupsRepo struct {
	pool *pgxpool.Pool
}

func NewGroupsRepo(pool *pgxpool.Pool) *GroupsRepo {
	return &GroupsRepo{pool: pool}
}

func (r *GroupsRepo) Create(ctx context.Context, g group.Group) (group.Group, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO groups (id, name, created_at) VALUES ($1,$2,$3)`,
		g.ID, g.Name, g.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "groups_name_key" {
			return group.Group{}, group.ErrNameTaken
		}
		return group.Group{}, err
	}

	return g, nil
}

func (r *GroupsRepo) GetByID(ctx context.Context, id string) (group.Group, error) {
	var g group.Group

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, err
	}

	return g, nil
}

func (r *GroupsRepo) List(ctx context.Context, limit, offset int) ([]group.Group, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at, COUNT(*) OVER() AS total
		 FROM groups
		 ORDER BY name ASC, id ASC
		 LIMIT $1 OFFSET $2`, limit, offset)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]group.Group, 0, limit)
	total := 0

	for rows.Next() {
		var g group.Group
		var t int

		if err = rows.Scan(&g.ID, &g.Name, &g.CreatedAt, &t); err != nil {
			return nil, 0, err
		}

		total = t
		out = append(out, g)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *GroupsRepo) Update(ctx context.Context, g group.Group) (group.Group, error) {
	var out group.Group

	err := r.pool.QueryRow(ctx,
		`UPDATE groups SET name = $2 WHERE id = $1
		 RETURNING id, name, created_at`,
		g.ID, g.Name,
	).Scan(&out.ID, &out.Name, &out.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.Group{}, group.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "groups_name_key" {
			return group.Group{}, group.ErrNameTaken
		}
		return group.Group{}, err
	}

	return out, nil
}

func (r *GroupsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return group.ErrNotFound
	}

	return nil
}
