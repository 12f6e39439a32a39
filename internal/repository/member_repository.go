package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

// memberCodeLockKey serialises code assignment across concurrent registrations.
const memberCodeLockKey = 0x4d454d42

const memberColumns = `id, code, name, email, phone, level, standing, alert_25_sent, alert_50_sent,
       birth_date, entry_date, termination_date, created_at, updated_at`

// MemberRepository persists the member registry.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs the repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create assigns the next sequential code and inserts the member in one transaction.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin member transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, memberCodeLockKey); err != nil {
		return fmt.Errorf("lock member code sequence: %w", err)
	}

	var last string
	const lastCodeQuery = `SELECT code FROM members WHERE code ~ '^M[0-9]+$'
ORDER BY CAST(SUBSTRING(code FROM 2) AS INTEGER) DESC LIMIT 1`
	if err = tx.GetContext(ctx, &last, lastCodeQuery); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read last member code: %w", err)
	}
	member.Code = models.NextCode(models.MemberCodePrefix, last)

	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	if member.Standing == "" {
		member.Standing = models.StandingActive
	}
	if member.Level == "" {
		member.Level = models.LevelBeginner
	}

	const insertQuery = `INSERT INTO members (code, name, email, phone, level, standing, alert_25_sent, alert_50_sent,
       birth_date, entry_date, termination_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, FALSE, $7, $8, $9, $10, $11)
RETURNING id`
	if err = tx.GetContext(ctx, &member.ID, insertQuery,
		member.Code, member.Name, member.Email, member.Phone, member.Level, member.Standing,
		member.BirthDate, member.EntryDate, member.TerminationDate, member.CreatedAt, member.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit member: %w", err)
	}
	return nil
}

// FindByID loads a member. It returns sql.ErrNoRows when absent.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member
	if err := r.db.GetContext(ctx, &member, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &member, nil
}

// LockByID loads a member and holds its row lock until exec's transaction ends.
func (r *MemberRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Member, error) {
	var member models.Member
	if err := sqlx.GetContext(ctx, r.exec(exec), &member, `SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id); err != nil {
		return nil, err
	}
	return &member, nil
}

func memberConditions(filter models.MemberFilter) (string, []interface{}) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Standing != nil {
		args = append(args, *filter.Standing)
		conditions = append(conditions, fmt.Sprintf("standing = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns members ordered by name.
func (r *MemberRepository) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, error) {
	where, args := memberConditions(filter)
	limit := filter.Limit
	if limit <= 0 || limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	query := `SELECT ` + memberColumns + ` FROM members` + where + fmt.Sprintf(" ORDER BY name ASC LIMIT %d", limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Count returns how many members match the filter, ignoring paging.
func (r *MemberRepository) Count(ctx context.Context, filter models.MemberFilter) (int, error) {
	where, args := memberConditions(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM members`+where, args...); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return total, nil
}

// ListContactable returns active members that have an e-mail address.
func (r *MemberRepository) ListContactable(ctx context.Context) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members
WHERE standing = $1 AND email IS NOT NULL AND email <> ''
ORDER BY id ASC`
	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, query, models.StandingActive); err != nil {
		return nil, fmt.Errorf("list contactable members: %w", err)
	}
	return members, nil
}

// ExistingIDs returns which of the given ids belong to registered members.
func (r *MemberRepository) ExistingIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var rows []int64
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, `SELECT id FROM members WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("check member ids: %w", err)
	}
	for _, id := range rows {
		found[id] = true
	}
	return found, nil
}

// Update persists an administrative edit. The code and alert flags are never touched.
func (r *MemberRepository) Update(ctx context.Context, exec sqlx.ExtContext, member *models.Member) error {
	member.UpdatedAt = time.Now().UTC()
	const query = `UPDATE members SET name = :name, email = :email, phone = :phone, level = :level, standing = :standing,
       birth_date = :birth_date, entry_date = :entry_date, termination_date = :termination_date, updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, member)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return expectAffected(result, "update member")
}

// SetStanding changes the standing and termination date of a member.
func (r *MemberRepository) SetStanding(ctx context.Context, exec sqlx.ExtContext, id int64, standing models.Standing, terminationDate *time.Time) error {
	const query = `UPDATE members SET standing = $1, termination_date = $2, updated_at = $3 WHERE id = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, standing, terminationDate, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set member standing: %w", err)
	}
	return expectAffected(result, "set member standing")
}

// SetAlertFlag marks the one-time absence alert of the tier as sent.
func (r *MemberRepository) SetAlertFlag(ctx context.Context, exec sqlx.ExtContext, id int64, tier models.AlertTier) error {
	var column string
	switch tier {
	case models.AlertTierWarning:
		column = "alert_25_sent"
	case models.AlertTierCritical:
		column = "alert_50_sent"
	default:
		return fmt.Errorf("set alert flag: unsupported tier %d", tier)
	}
	query := fmt.Sprintf(`UPDATE members SET %s = TRUE, updated_at = $1 WHERE id = $2`, column)
	result, err := r.exec(exec).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set alert flag: %w", err)
	}
	return expectAffected(result, "set alert flag")
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
