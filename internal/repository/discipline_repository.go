package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

const measureColumns = `id, member_id, kind, reason, created_at, start_date, end_date, status, auto_generated`

// DisciplineRepository persists the disciplinary ledger.
type DisciplineRepository struct {
	db *sqlx.DB
}

// NewDisciplineRepository constructs the repository.
func NewDisciplineRepository(db *sqlx.DB) *DisciplineRepository {
	return &DisciplineRepository{db: db}
}

func (r *DisciplineRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a measure and fills its id and creation time.
func (r *DisciplineRepository) Create(ctx context.Context, exec sqlx.ExtContext, measure *models.DisciplinaryMeasure) error {
	if measure.CreatedAt.IsZero() {
		measure.CreatedAt = time.Now().UTC()
	}
	if measure.Status == "" {
		measure.Status = models.MeasureActive
	}
	const query = `INSERT INTO disciplinary_measures (member_id, kind, reason, created_at, start_date, end_date, status, auto_generated)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	if err := sqlx.GetContext(ctx, r.exec(exec), &measure.ID, query,
		measure.MemberID, measure.Kind, measure.Reason, measure.CreatedAt,
		measure.StartDate, measure.EndDate, measure.Status, measure.AutoGenerated,
	); err != nil {
		return fmt.Errorf("insert disciplinary measure: %w", err)
	}
	return nil
}

// CountByKind counts every measure of the kind recorded for the member,
// automatic ones included.
func (r *DisciplineRepository) CountByKind(ctx context.Context, exec sqlx.ExtContext, memberID int64, kind models.MeasureKind) (int, error) {
	var total int
	const query = `SELECT COUNT(*) FROM disciplinary_measures WHERE member_id = $1 AND kind = $2`
	if err := sqlx.GetContext(ctx, r.exec(exec), &total, query, memberID, kind); err != nil {
		return 0, fmt.Errorf("count disciplinary measures: %w", err)
	}
	return total, nil
}

// List returns measures newest first.
func (r *DisciplineRepository) List(ctx context.Context, filter models.MeasureFilter) ([]models.DisciplinaryMeasure, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query := `SELECT ` + measureColumns + ` FROM disciplinary_measures`
	args := []interface{}{}
	if filter.MemberID != nil {
		query += ` WHERE member_id = $1`
		args = append(args, *filter.MemberID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit)

	var measures []models.DisciplinaryMeasure
	if err := r.db.SelectContext(ctx, &measures, query, args...); err != nil {
		return nil, fmt.Errorf("list disciplinary measures: %w", err)
	}
	return measures, nil
}
