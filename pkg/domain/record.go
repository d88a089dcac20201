package domain

import "time"

// Record is a delivered bulletin kept in the history store
type Record struct {
	EntryID    string    `db:"entry_id" json:"entry_id"`
	EventID    string    `db:"event_id" json:"event_id"`
	Kind       string    `db:"kind" json:"kind"`
	Title      string    `db:"title" json:"title"`
	Link       string    `db:"link" json:"link"`
	ReportTime time.Time `db:"report_time" json:"report_time"`
	Text       string    `db:"text" json:"text"`
	Escalated  bool      `db:"escalated" json:"escalated"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
