package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

func TestDisciplineRepositoryCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDisciplineRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO disciplinary_measures")).
		WithArgs(int64(5), models.MeasureWarning, "late", sqlmock.AnyArg(), nil, nil, models.MeasureActive, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	measure := &models.DisciplinaryMeasure{MemberID: 5, Kind: models.MeasureWarning, Reason: "late"}
	require.NoError(t, repo.Create(context.Background(), nil, measure))
	assert.Equal(t, int64(11), measure.ID)
	assert.Equal(t, models.MeasureActive, measure.Status)
	assert.False(t, measure.CreatedAt.IsZero())
}

func TestDisciplineRepositoryCountByKind(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDisciplineRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM disciplinary_measures WHERE member_id = $1 AND kind = $2")).
		WithArgs(int64(5), models.MeasureSuspension).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.CountByKind(context.Background(), nil, 5, models.MeasureSuspension)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestDisciplineRepositoryListForMember(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewDisciplineRepository(db)

	now := time.Now().UTC()
	end := now.AddDate(0, 0, 30)
	rows := sqlmock.NewRows([]string{"id", "member_id", "kind", "reason", "created_at", "start_date", "end_date", "status", "auto_generated"}).
		AddRow(int64(2), int64(5), "SUSPENSION", "auto", now, now, end, "ACTIVE", true).
		AddRow(int64(1), int64(5), "WARNING", "late", now, nil, nil, "ACTIVE", false)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE member_id = $1 ORDER BY created_at DESC, id DESC LIMIT 100")).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	memberID := int64(5)
	measures, err := repo.List(context.Background(), models.MeasureFilter{MemberID: &memberID})
	require.NoError(t, err)
	require.Len(t, measures, 2)
	assert.True(t, measures[0].AutoGenerated)
	require.NotNil(t, measures[0].EndDate)
	assert.Nil(t, measures[1].StartDate)
}
