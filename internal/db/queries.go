package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createDelivery = `
INSERT INTO deliveries (id, app_id, endpoint, payload, status_code, response_body, error)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateDeliveryParams struct {
	ID           string
	AppID        string
	Endpoint     string
	Payload      string
	StatusCode   sql.NullInt64
	ResponseBody sql.NullString
	Error        sql.NullString
}

func (q *Queries) CreateDelivery(ctx context.Context, arg CreateDeliveryParams) (Delivery, error) {
	_, err := q.db.ExecContext(ctx, createDelivery,
		arg.ID,
		arg.AppID,
		arg.Endpoint,
		arg.Payload,
		arg.StatusCode,
		arg.ResponseBody,
		arg.Error,
	)
	if err != nil {
		return Delivery{}, err
	}
	return q.GetDelivery(ctx, arg.ID)
}

const getDelivery = `
SELECT id, app_id, endpoint, payload, status_code, response_body, error, created_at
FROM deliveries
WHERE id = ?
`

func (q *Queries) GetDelivery(ctx context.Context, id string) (Delivery, error) {
	row := q.db.QueryRowContext(ctx, getDelivery, id)
	var i Delivery
	err := row.Scan(
		&i.ID,
		&i.AppID,
		&i.Endpoint,
		&i.Payload,
		&i.StatusCode,
		&i.ResponseBody,
		&i.Error,
		&i.CreatedAt,
	)
	return i, err
}

const listDeliveries = `
SELECT id, app_id, endpoint, payload, status_code, response_body, error, created_at
FROM deliveries
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`

func (q *Queries) ListDeliveries(ctx context.Context, limit int64) ([]Delivery, error) {
	rows, err := q.db.QueryContext(ctx, listDeliveries, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Delivery
	for rows.Next() {
		var i Delivery
		if err := rows.Scan(
			&i.ID,
			&i.AppID,
			&i.Endpoint,
			&i.Payload,
			&i.StatusCode,
			&i.ResponseBody,
			&i.Error,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countDeliveries = `SELECT COUNT(*) FROM deliveries`

func (q *Queries) CountDeliveries(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countDeliveries)
	var count int64
	err := row.Scan(&count)
	return count, err
}
