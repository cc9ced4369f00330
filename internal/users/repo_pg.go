package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (username, password_hash, created_at)
VALUES ($1, $2, now())
ON CONFLICT (username) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, user.Username, user.PasswordHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, username string) (User, error) {
	const query = `
SELECT username, password_hash, created_at
FROM users
WHERE username = $1
LIMIT 1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, username).Scan(&user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
