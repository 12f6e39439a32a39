package models

import "time"

// NotificationKind labels outbound messages for the external mailer.
type NotificationKind string

const (
	NotificationAbsenceWarning  NotificationKind = "ABSENCE_WARNING"
	NotificationAbsenceCritical NotificationKind = "ABSENCE_CRITICAL"
	NotificationSessionReminder NotificationKind = "SESSION_REMINDER"
)

// Notification is a message handed to the dispatch collaborator.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	MemberID  int64            `json:"member_id"`
	To        string           `json:"to"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"created_at"`
}

// DispatchFailure records a member whose notification could not be sent.
type DispatchFailure struct {
	MemberID int64     `json:"member_id"`
	Tier     AlertTier `json:"tier,omitempty"`
	Error    string    `json:"error"`
}

// SweepReport summarises one attendance alert run.
type SweepReport struct {
	RunID        string            `json:"run_id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Evaluated    int               `json:"evaluated"`
	Skipped      int               `json:"skipped"`
	WarningSent  int               `json:"warning_sent"`
	CriticalSent int               `json:"critical_sent"`
	Failures     []DispatchFailure `json:"failures"`
}

// ReminderReport summarises one session reminder run.
type ReminderReport struct {
	RunID      string            `json:"run_id"`
	TargetDate time.Time         `json:"target_date"`
	Sessions   int               `json:"sessions"`
	Sent       int               `json:"sent"`
	Failures   []DispatchFailure `json:"failures"`
}
