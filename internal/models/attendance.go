package models

import "time"

// AttendanceStatus tags one member's attendance at one session.
type AttendanceStatus string

const (
	AttendancePresent       AttendanceStatus = "PRESENT"
	AttendanceAbsent        AttendanceStatus = "ABSENT"
	AttendanceExcusedAbsent AttendanceStatus = "EXCUSED_ABSENT"
	AttendanceOnLeave       AttendanceStatus = "ON_LEAVE"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcusedAbsent, AttendanceOnLeave:
		return true
	default:
		return false
	}
}

// AttendanceRecord is unique per (member, session); resubmissions overwrite it.
type AttendanceRecord struct {
	ID        int64            `db:"id" json:"id"`
	MemberID  int64            `db:"member_id" json:"member_id"`
	SessionID int64            `db:"session_id" json:"session_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Note      *string          `db:"note" json:"note,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// SessionAttendance joins a record with the member it belongs to.
type SessionAttendance struct {
	AttendanceRecord
	MemberCode string `db:"member_code" json:"member_code"`
	MemberName string `db:"member_name" json:"member_name"`
}

// AttendanceTally counts a member's records per status.
type AttendanceTally struct {
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	ExcusedAbsent int `json:"excused_absent"`
	OnLeave       int `json:"on_leave"`
}

// Add counts one record. Unknown statuses are ignored.
func (t *AttendanceTally) Add(status AttendanceStatus, n int) {
	switch status {
	case AttendancePresent:
		t.Present += n
	case AttendanceAbsent:
		t.Absent += n
	case AttendanceExcusedAbsent:
		t.ExcusedAbsent += n
	case AttendanceOnLeave:
		t.OnLeave += n
	}
}

// Considered is the denominator for absence ratios; on-leave sessions do not count.
func (t AttendanceTally) Considered() int {
	return t.Present + t.Absent + t.ExcusedAbsent
}

// Absences counts plain and excused absences alike.
func (t AttendanceTally) Absences() int {
	return t.Absent + t.ExcusedAbsent
}

// AbsenceRatio returns absences over considered sessions, or 0 without any.
func (t AttendanceTally) AbsenceRatio() float64 {
	considered := t.Considered()
	if considered == 0 {
		return 0
	}
	return float64(t.Absences()) / float64(considered)
}

// AttendanceSummaryRow is one line of the per-member attendance overview.
type AttendanceSummaryRow struct {
	MemberID     int64   `json:"member_id"`
	MemberCode   string  `json:"member_code"`
	MemberName   string  `json:"member_name"`
	Considered   int     `json:"considered_sessions"`
	Presences    int     `json:"presences"`
	Absences     int     `json:"absences"`
	AbsenceRatio float64 `json:"absence_ratio"`
}

// AttendanceCountRow is the raw aggregate read from the ledger.
type AttendanceCountRow struct {
	MemberID   int64            `db:"member_id"`
	MemberCode string           `db:"member_code"`
	MemberName string           `db:"member_name"`
	Status     AttendanceStatus `db:"status"`
	Total      int              `db:"total"`
}
