package models

import "time"

// Session is a gira: a scheduled ritual event at which attendance is taken.
type Session struct {
	ID         int64     `db:"id" json:"id"`
	Date       time.Time `db:"date" json:"date"`
	Kind       string    `db:"kind" json:"kind"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	LeaderID   *int64    `db:"leader_id" json:"leader_id,omitempty"`
	LeaderName *string   `db:"leader_name" json:"leader_name,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	ActiveOnly bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
}
