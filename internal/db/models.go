package db

import (
	"database/sql"
	"time"
)

type Delivery struct {
	ID           string
	AppID        string
	Endpoint     string
	Payload      string
	StatusCode   sql.NullInt64
	ResponseBody sql.NullString
	Error        sql.NullString
	CreatedAt    time.Time
}
