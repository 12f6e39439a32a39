package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

const sessionSelect = `SELECT s.id, s.date, s.kind, s.notes, s.leader_id, l.name AS leader_name, s.active, s.created_at
FROM sessions s
LEFT JOIN members l ON l.id = s.leader_id`

// SessionRepository persists giras.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts an active session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.CreatedAt = time.Now().UTC()
	session.Active = true
	const query = `INSERT INTO sessions (date, kind, notes, leader_id, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	if err := r.db.GetContext(ctx, &session.ID, query,
		session.Date, session.Kind, session.Notes, session.LeaderID, session.Active, session.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByID loads a session. It returns sql.ErrNoRows when absent.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	var session models.Session
	if err := r.db.GetContext(ctx, &session, sessionSelect+` WHERE s.id = $1`, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns sessions newest first.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 2)
	if filter.ActiveOnly {
		conditions = append(conditions, "s.active = TRUE")
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("s.date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("s.date < $%d", len(args)))
	}
	query := sessionSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY s.date DESC, s.id DESC LIMIT %d", limit)

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Deactivate hides a session from listings and reminders.
func (r *SessionRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sessions SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return expectAffected(result, "deactivate session")
}
