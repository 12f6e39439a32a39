package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

// AttendanceRepository persists the attendance ledger.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// UpsertBatch writes every record, overwriting the status and note of an
// existing (member, session) pair.
func (r *AttendanceRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	const query = `INSERT INTO attendance_records (member_id, session_id, status, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (member_id, session_id)
DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note, updated_at = EXCLUDED.updated_at`
	target := r.exec(exec)
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if _, err := target.ExecContext(ctx, query, rec.MemberID, rec.SessionID, rec.Status, rec.Note, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for member %d: %w", rec.MemberID, err)
		}
	}
	return nil
}

// ListBySession returns the records of a session with member identification.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.SessionAttendance, error) {
	const query = `SELECT a.id, a.member_id, a.session_id, a.status, a.note, a.created_at, a.updated_at,
       m.code AS member_code, m.name AS member_name
FROM attendance_records a
JOIN members m ON m.id = a.member_id
WHERE a.session_id = $1
ORDER BY m.name ASC`
	var rows []models.SessionAttendance
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session attendance: %w", err)
	}
	return rows, nil
}

// CountByMember tallies one member's records per status.
func (r *AttendanceRepository) CountByMember(ctx context.Context, exec sqlx.ExtContext, memberID int64) (models.AttendanceTally, error) {
	const query = `SELECT status, COUNT(*) AS total FROM attendance_records WHERE member_id = $1 GROUP BY status`
	var rows []struct {
		Status models.AttendanceStatus `db:"status"`
		Total  int                     `db:"total"`
	}
	var tally models.AttendanceTally
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, memberID); err != nil {
		return tally, fmt.Errorf("count attendance: %w", err)
	}
	for _, row := range rows {
		tally.Add(row.Status, row.Total)
	}
	return tally, nil
}

// CountsForAll aggregates records per member and status for every member.
// Members without records are returned once with an empty status.
func (r *AttendanceRepository) CountsForAll(ctx context.Context) ([]models.AttendanceCountRow, error) {
	const query = `SELECT m.id AS member_id, m.code AS member_code, m.name AS member_name,
       COALESCE(a.status, '') AS status, COUNT(a.id) AS total
FROM members m
LEFT JOIN attendance_records a ON a.member_id = m.id
GROUP BY m.id, m.code, m.name, a.status
ORDER BY m.name ASC, m.id ASC`
	var rows []models.AttendanceCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("aggregate attendance: %w", err)
	}
	return rows, nil
}
