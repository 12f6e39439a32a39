package dto

import "time"

// CreateSessionRequest schedules a gira.
type CreateSessionRequest struct {
	Date     time.Time `json:"date" validate:"required"`
	Kind     string    `json:"kind" validate:"required,max=120"`
	Notes    *string   `json:"notes"`
	LeaderID *int64    `json:"leaderId" validate:"omitempty,gt=0"`
}

// AttendanceEntry is one member's status within a submission.
type AttendanceEntry struct {
	MemberID int64   `json:"memberId" validate:"required,gt=0"`
	Status   string  `json:"status" validate:"required,attendance_status"`
	Note     *string `json:"note" validate:"omitempty,max=500"`
}

// SubmitAttendanceRequest upserts the attendance of a whole session.
type SubmitAttendanceRequest struct {
	Records []AttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

// SubmitAttendanceResponse reports how many records were written.
type SubmitAttendanceResponse struct {
	SessionID int64 `json:"sessionId"`
	Saved     int   `json:"saved"`
}
