package models

import "time"

// MeasureKind is the severity of a disciplinary measure.
type MeasureKind string

const (
	MeasureWarning    MeasureKind = "WARNING"
	MeasureSuspension MeasureKind = "SUSPENSION"
	MeasureExpulsion  MeasureKind = "EXPULSION"
)

// Valid reports whether the kind is recognised.
func (k MeasureKind) Valid() bool {
	switch k {
	case MeasureWarning, MeasureSuspension, MeasureExpulsion:
		return true
	default:
		return false
	}
}

// MeasureStatus tracks whether a measure is still in force.
type MeasureStatus string

const (
	MeasureActive MeasureStatus = "ACTIVE"
	MeasureClosed MeasureStatus = "CLOSED"
)

// DisciplinaryMeasure is one warning, suspension or expulsion. AutoGenerated
// rows are only ever written by the escalation rule.
type DisciplinaryMeasure struct {
	ID            int64         `db:"id" json:"id"`
	MemberID      int64         `db:"member_id" json:"member_id"`
	Kind          MeasureKind   `db:"kind" json:"kind"`
	Reason        string        `db:"reason" json:"reason"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	StartDate     *time.Time    `db:"start_date" json:"start_date,omitempty"`
	EndDate       *time.Time    `db:"end_date" json:"end_date,omitempty"`
	Status        MeasureStatus `db:"status" json:"status"`
	AutoGenerated bool          `db:"auto_generated" json:"auto_generated"`
}

// MeasureFilter narrows measure listings.
type MeasureFilter struct {
	MemberID *int64
	Limit    int
}
