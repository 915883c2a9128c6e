package postgres

import (
	"context"
	"errors"

	"github.com/dicoevent/dicoevent/internal/domain/group"
	"github.com/dicoevent/dicoevent/internal/domain/role"
	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RolesRepo struct {
	pool *pgxpool.Pool
}

func NewRolesRepo(pool *pgxpool.Pool) *RolesRepo {
	return &RolesRepo{pool: pool}
}

func (r *RolesRepo) Create(ctx context.Context, a role.Assignment) (role.Assignment, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO role_assignments (id, user_id, group_id, created_at) VALUES ($1,$2,$3,$4)`,
		a.ID, a.UserID, a.GroupID, a.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == "23505" && pgErr.ConstraintName == "role_assignments_user_group_uniq":
				return role.Assignment{}, role.ErrAlreadyAssigned
			case pgErr.Code == "23503" && pgErr.ConstraintName == "role_assignments_user_id_fkey":
				return role.Assignment{}, user.ErrNotFound
			case pgErr.Code == "23503" && pgErr.ConstraintName == "role_assignments_group_id_fkey":
				return role.Assignment{}, group.ErrNotFound
			}
		}
		return role.Assignment{}, err
	}

	return r.GetByID(ctx, a.ID)
}

func (r *RolesRepo) GetByID(ctx context.Context, id string) (role.Assignment, error) {
	var a role.Assignment

	err := r.pool.QueryRow(ctx,
		`SELECT ra.id, ra.user_id, ra.group_id, ra.created_at,
		        u.username, u.email,
		        g.name
		 FROM role_assignments ra
		 JOIN users u ON u.id = ra.user_id
		 JOIN groups g ON g.id = ra.group_id
		 WHERE ra.id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.GroupID, &a.CreatedAt,
		&a.User.Username, &a.User.Email,
		&a.Group.Name)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return role.Assignment{}, role.ErrNotFound
		}
		return role.Assignment{}, err
	}

	a.User.ID = a.UserID
	a.Group.ID = a.GroupID
	return a, nil
}

func (r *RolesRepo) List(ctx context.Context, limit, offset int) ([]role.Assignment, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ra.id, ra.user_id, ra.group_id, ra.created_at,
		        u.username, u.email,
		        g.name,
		        COUNT(*) OVER() AS total
		 FROM role_assignments ra
		 JOIN users u ON u.id = ra.user_id
		 JOIN groups g ON g.id = ra.group_id
		 ORDER BY ra.created_at DESC, ra.id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]role.Assignment, 0, limit)
	total := 0

	for rows.Next() {
		var a role.Assignment
		var t int

		err = rows.Scan(&a.ID, &a.UserID, &a.GroupID, &a.CreatedAt,
			&a.User.Username, &a.User.Email,
			&a.Group.Name, &t)

		if err != nil {
			return nil, 0, err
		}

		a.User.ID = a.UserID
		a.Group.ID = a.GroupID
		total = t
		out = append(out, a)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *RolesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_assignments WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return role.ErrNotFound
	}

	return nil
}
