package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() {
		_ = sqlxDB.Close()
	})
	return sqlxDB, mock
}

var errDBDown = errors.New("db down")

var memberRowColumns = []string{"id", "code", "name", "email", "phone", "level", "standing", "alert_25_sent", "alert_50_sent",
	"birth_date", "entry_date", "termination_date", "created_at", "updated_at"}

func memberRow(rows *sqlmock.Rows, id int64, code, name string, standing models.Standing) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, code, name, "medium@example.com", nil, models.LevelBeginner, standing, false, false, nil, nil, nil, now, now)
}

func TestMemberRepositoryCreateAssignsNextCode(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(memberCodeLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT code FROM members")).
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("M041"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members")).
		WithArgs("M042", "Maria", sqlmock.AnyArg(), sqlmock.AnyArg(), models.LevelBeginner, models.StandingActive,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	member := &models.Member{Name: "Maria"}
	require.NoError(t, repo.Create(context.Background(), member))
	assert.Equal(t, int64(42), member.ID)
	assert.Equal(t, "M042", member.Code)
	assert.Equal(t, models.StandingActive, member.Standing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryCreateFirstMember(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT code FROM members")).
		WillReturnRows(sqlmock.NewRows([]string{"code"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	member := &models.Member{Name: "João", Standing: models.StandingOnLeave}
	require.NoError(t, repo.Create(context.Background(), member))
	assert.Equal(t, "M001", member.Code)
	assert.Equal(t, models.StandingOnLeave, member.Standing)
}

func TestMemberRepositoryCreateRollsBackOnInsertError(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT code FROM members")).
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("M001"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO members")).
		WillReturnError(errDBDown)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Member{Name: "Ana"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDBDown)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryLockByID(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	rows := memberRow(sqlmock.NewRows(memberRowColumns), 7, "M007", "Pedro", models.StandingActive)
	mock.ExpectQuery(regexp.QuoteMeta("FROM members WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	member, err := repo.LockByID(context.Background(), nil, 7)
	require.NoError(t, err)
	assert.Equal(t, "M007", member.Code)
	assert.Equal(t, "medium@example.com", member.ContactEmail())
}

func TestMemberRepositoryListFilters(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	standing := models.StandingActive
	rows := memberRow(sqlmock.NewRows(memberRowColumns), 1, "M001", "Ana", standing)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE standing = $1 AND (name ILIKE $2 OR code ILIKE $2) ORDER BY name ASC LIMIT 200")).
		WithArgs(standing, "%an%").
		WillReturnRows(rows)

	members, err := repo.List(context.Background(), models.MemberFilter{Standing: &standing, Search: " an "})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Ana", members[0].Name)
}

func TestMemberRepositoryListPageAndCount(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	filter := models.MemberFilter{Search: "M0", Limit: 20, Offset: 40}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (name ILIKE $1 OR code ILIKE $1) ORDER BY name ASC LIMIT 20 OFFSET 40")).
		WithArgs("%M0%").
		WillReturnRows(sqlmock.NewRows(memberRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM members WHERE (name ILIKE $1 OR code ILIKE $1)")).
		WithArgs("%M0%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	members, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Empty(t, members)
	total, err := repo.Count(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 41, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositorySetStandingMissingMember(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET standing = $1")).
		WithArgs(models.StandingTerminated, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now()
	err := repo.SetStanding(context.Background(), nil, 99, models.StandingTerminated, &now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemberRepositorySetAlertFlag(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET alert_50_sent = TRUE")).
		WithArgs(sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetAlertFlag(context.Background(), nil, 3, models.AlertTierCritical))
	assert.Error(t, repo.SetAlertFlag(context.Background(), nil, 3, models.AlertTier(75)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryUpdateInsideTransaction(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET name = $1, email = $2, phone = $3")).
		WithArgs("Ana", nil, "555", models.LevelBeginner, models.StandingTerminated,
			nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	terminated := time.Now().UTC()
	phone := "555"
	member := &models.Member{ID: 4, Name: "Ana", Phone: &phone, Level: models.LevelBeginner,
		Standing: models.StandingTerminated, TerminationDate: &terminated}
	require.NoError(t, repo.Update(context.Background(), tx, member))
	require.NoError(t, tx.Commit())
	assert.False(t, member.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
