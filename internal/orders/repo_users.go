package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *Repo) UserByID(ctx context.Context, id string) (*User, error) {
	return r.scanUser(ctx, `WHERE id = $1`, id)
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(ctx, `WHERE email = $1`, email)
}

func (r *Repo) scanUser(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, password,
		       COALESCE(phone, ''), COALESCE(country, ''),
		       COALESCE(address, ''), COALESCE(city, ''), is_admin
		FROM users `+where, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.Password,
		&u.Phone, &u.Country, &u.Address, &u.City, &u.IsAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *User) error {
	u.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, name, email, password, phone, country, address, city, is_admin)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)`,
		u.ID, u.Name, u.Email, u.Password, u.Phone, u.Country, u.Address, u.City, u.IsAdmin)
	return err
}

func (r *Repo) ListUsers(ctx context.Context) ([]UserSnapshot, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email,
		       COALESCE(phone, ''), COALESCE(country, ''),
		       COALESCE(address, ''), COALESCE(city, '')
		FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserSnapshot
	for rows.Next() {
		var u UserSnapshot
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Country, &u.Address, &u.City); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
