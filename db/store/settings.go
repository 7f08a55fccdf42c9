package store

import "context"

const getSetting = `SELECT key, value, updated_at FROM settings WHERE key = $1`

func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	var s Setting
	err := q.db.QueryRowContext(ctx, getSetting, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return Setting{}, mapError(err)
	}
	return s, nil
}
