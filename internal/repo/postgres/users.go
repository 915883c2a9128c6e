package postgres

import (
	"context"
	"errors"

	"github.com/dicoevent/dicoevent/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEmailAlreadyUsed    = errors.New("email already used")
	ErrUsernameAlreadyUsed = errors.New("username already used")
)

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func mapUserUniqueViolation(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailAlreadyUsed
		case "users_username_key":
			return ErrUsernameAlreadyUsed
		}
	}
	return err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, password_hash, is_superuser, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.Superuser, u.CreatedAt, u.UpdatedAt,
	)

	if err != nil {
		return user.User{}, mapUserUniqueViolation(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, is_superuser, created_at, updated_at
		 FROM users
		 WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Superuser, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	roles, err := r.roleNames(ctx, u.ID)

	if err != nil {
		return user.User{}, err
	}

	u.Roles = roles
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, is_superuser, created_at, updated_at
		 FROM users
		 WHERE email = $1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Superuser, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	roles, err := r.roleNames(ctx, u.ID)

	if err != nil {
		return user.User{}, err
	}

	u.Roles = roles
	return u, nil
}

// roleNames returns the group names assigned to a user. The authorization
// engine reads these fresh on every request.
func (r *UsersRepo) roleNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT g.name
		 FROM role_assignments ra
		 JOIN groups g ON g.id = ra.group_id
		 WHERE ra.user_id = $1
		 ORDER BY g.name`, userID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	roles := make([]string, 0, 2)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}

	return roles, rows.Err()
}

func (r *UsersRepo) List(ctx context.Context, limit, offset int) ([]user.User, int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, email, first_name, last_name, password_hash, is_superuser, created_at, updated_at,
		        COUNT(*) OVER() AS total
		 FROM users
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]user.User, 0, limit)
	total := 0

	for rows.Next() {
		var u user.User
		var t int

		err = rows.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.Superuser, &u.CreatedAt, &u.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		u.Roles = []string{}
		out = append(out, u)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	// one round trip per page of 10 keeps this simple; the list endpoint is
	// admin-only and low traffic
	for i := range out {
		roles, rerr := r.roleNames(ctx, out[i].ID)
		if rerr != nil {
			return nil, 0, rerr
		}
		out[i].Roles = roles
	}

	return out, total, nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET username = $2,
		     email = $3,
		     first_name = $4,
		     last_name = $5,
		     password_hash = $6,
		     updated_at = NOW()
		 WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash,
	)

	if err != nil {
		return user.User{}, mapUserUniqueViolation(err)
	}

	if tag.RowsAffected() == 0 {
		return user.User{}, user.ErrNotFound
	}

	return r.GetByID(ctx, u.ID)
}

// Delete removes the user; role assignments, registrations and payments go
// with it via ON DELETE CASCADE.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)

	return exists, err
}
