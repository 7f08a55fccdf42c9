package store

import "context"

type CreateNotificationParams struct {
	UserID  int64
	Kind    string
	Title   string
	Message string
	Data    []byte
}

type ListNotificationsByUserParams struct {
	UserID int64
	Limit  int32
	Offset int32
}

const notificationColumns = `id, user_id, kind, title, message, data, read, created_at`

func scanNotification(s scanner) (Notification, error) {
	var n Notification
	err := s.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt)
	if err != nil {
		return Notification{}, mapError(err)
	}
	return n, nil
}

const createNotification = `
INSERT INTO notifications (user_id, kind, title, message, data)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + notificationColumns

func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	return scanNotification(q.db.QueryRowContext(ctx, createNotification,
		arg.UserID, arg.Kind, arg.Title, arg.Message, arg.Data))
}

const listNotificationsByUser = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

func (q *Queries) ListNotificationsByUser(ctx context.Context, arg ListNotificationsByUserParams) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, listNotificationsByUser, arg.UserID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
