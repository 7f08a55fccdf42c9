package store

import "context"

const userColumns = `id, email, referred_by, status, role, expo_push_token, created_at, updated_at`

func scanUser(s scanner) (User, error) {
	var u User
	err := s.Scan(&u.ID, &u.Email, &u.ReferredBy, &u.Status, &u.Role, &u.ExpoPushToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, mapError(err)
	}
	return u, nil
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const listAdmins = `SELECT ` + userColumns + ` FROM users WHERE role = 'admin' ORDER BY id`

func (q *Queries) ListAdmins(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listAdmins)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
