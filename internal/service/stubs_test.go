package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type memberStoreStub struct {
	mu       sync.Mutex
	members  map[int64]*models.Member
	lockErr  error
	flagErr  error
	flagSets int
}

func newMemberStoreStub(members ...models.Member) *memberStoreStub {
	stub := &memberStoreStub{members: make(map[int64]*models.Member)}
	for i := range members {
		m := members[i]
		stub.members[m.ID] = &m
	}
	return stub
}

func (s *memberStoreStub) get(id int64) (*models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *m
	return &clone, nil
}

func (s *memberStoreStub) Create(ctx context.Context, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member.ID = int64(len(s.members) + 1)
	member.Code = models.NextCode(models.MemberCodePrefix, "")
	clone := *member
	s.members[member.ID] = &clone
	return nil
}

func (s *memberStoreStub) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	return s.get(id)
}

func (s *memberStoreStub) LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Member, error) {
	if s.lockErr != nil {
		return nil, s.lockErr
	}
	return s.get(id)
}

func (s *memberStoreStub) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		if filter.Standing != nil && m.Standing != *filter.Standing {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if filter.Offset >= len(out) {
		return []models.Member{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *memberStoreStub) Count(ctx context.Context, filter models.MemberFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, m := range s.members {
		if filter.Standing == nil || m.Standing == *filter.Standing {
			total++
		}
	}
	return total, nil
}

func (s *memberStoreStub) Update(ctx context.Context, exec sqlx.ExtContext, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *member
	s.members[member.ID] = &clone
	return nil
}

func (s *memberStoreStub) ListContactable(ctx context.Context) ([]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Member, 0, len(s.members))
	for _, m := range s.members {
		if m.Standing == models.StandingActive && m.ContactEmail() != "" {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memberStoreStub) SetStanding(ctx context.Context, exec sqlx.ExtContext, id int64, standing models.Standing, terminationDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return sql.ErrNoRows
	}
	m.Standing = standing
	m.TerminationDate = terminationDate
	return nil
}

func (s *memberStoreStub) SetAlertFlag(ctx context.Context, exec sqlx.ExtContext, id int64, tier models.AlertTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flagErr != nil {
		return s.flagErr
	}
	m, ok := s.members[id]
	if !ok {
		return sql.ErrNoRows
	}
	switch tier {
	case models.AlertTierWarning:
		m.Alert25Sent = true
	case models.AlertTierCritical:
		m.Alert50Sent = true
	default:
		return errors.New("unsupported tier")
	}
	s.flagSets++
	return nil
}

func (s *memberStoreStub) ExistingIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.members[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

func (s *memberStoreStub) member(id int64) models.Member {
	m, _ := s.get(id)
	return *m
}

type measureStoreStub struct {
	measures  []models.DisciplinaryMeasure
	createErr error
}

func (s *measureStoreStub) Create(ctx context.Context, exec sqlx.ExtContext, measure *models.DisciplinaryMeasure) error {
	if s.createErr != nil {
		return s.createErr
	}
	measure.ID = int64(len(s.measures) + 1)
	s.measures = append(s.measures, *measure)
	return nil
}

func (s *measureStoreStub) CountByKind(ctx context.Context, exec sqlx.ExtContext, memberID int64, kind models.MeasureKind) (int, error) {
	count := 0
	for _, m := range s.measures {
		if m.MemberID == memberID && m.Kind == kind {
			count++
		}
	}
	return count, nil
}

func (s *measureStoreStub) List(ctx context.Context, filter models.MeasureFilter) ([]models.DisciplinaryMeasure, error) {
	out := make([]models.DisciplinaryMeasure, 0)
	for i := len(s.measures) - 1; i >= 0; i-- {
		m := s.measures[i]
		if filter.MemberID != nil && m.MemberID != *filter.MemberID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *measureStoreStub) autoGenerated() []models.DisciplinaryMeasure {
	out := make([]models.DisciplinaryMeasure, 0)
	for _, m := range s.measures {
		if m.AutoGenerated {
			out = append(out, m)
		}
	}
	return out
}

type attendanceCounterStub struct {
	tallies map[int64]models.AttendanceTally
}

func (s attendanceCounterStub) CountByMember(ctx context.Context, exec sqlx.ExtContext, memberID int64) (models.AttendanceTally, error) {
	return s.tallies[memberID], nil
}

type dispatcherStub struct {
	mu     sync.Mutex
	sent   []models.Notification
	failTo map[string]bool
}

func (d *dispatcherStub) Send(ctx context.Context, notification models.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failTo[notification.To] {
		return errors.New("mailer unavailable")
	}
	d.sent = append(d.sent, notification)
	return nil
}

func (d *dispatcherStub) byMember(memberID int64) []models.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range d.sent {
		if n.MemberID == memberID {
			out = append(out, n)
		}
	}
	return out
}

func strPtr(v string) *string { return &v }
