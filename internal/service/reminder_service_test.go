package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

type sessionListerStub struct {
	sessions []models.Session
	filter   models.SessionFilter
}

func (s *sessionListerStub) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	s.filter = filter
	return s.sessions, nil
}

func TestRunSessionReminders(t *testing.T) {
	leader := "Pai Joaquim"
	sessions := &sessionListerStub{sessions: []models.Session{
		{ID: 9, Date: time.Date(2024, 6, 4, 20, 0, 0, 0, time.UTC), Kind: "Gira de Preto Velho", LeaderName: &leader, Active: true},
	}}
	members := newMemberStoreStub(
		activeMember(1, "Ana", "ana@example.com"),
		activeMember(2, "Bia", "bia@example.com"),
		models.Member{ID: 3, Name: "Sem e-mail", Standing: models.StandingActive},
	)
	dispatcher := &dispatcherStub{failTo: map[string]bool{"bia@example.com": true}}
	svc := NewReminderService(sessions, members, dispatcher, nil, nil, ReminderConfig{HouseName: "Casa"})

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	report, err := svc.RunSessionReminders(context.Background(), now)
	require.NoError(t, err)

	require.NotNil(t, sessions.filter.DateFrom)
	require.NotNil(t, sessions.filter.DateTo)
	assert.True(t, sessions.filter.ActiveOnly)
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), *sessions.filter.DateFrom)
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), *sessions.filter.DateTo)

	assert.Equal(t, 1, report.Sessions)
	assert.Equal(t, 1, report.Sent)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, int64(2), report.Failures[0].MemberID)

	sent := dispatcher.byMember(1)
	require.Len(t, sent, 1)
	assert.Equal(t, models.NotificationSessionReminder, sent[0].Kind)
	assert.Equal(t, "Lembrete de sessão – 04/06/2024 (Gira de Preto Velho)", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Dirigente espiritual: Pai Joaquim")
	assert.Contains(t, sent[0].Body, "Daqui a 3 dias")
}

func TestRunSessionRemindersWithoutSessions(t *testing.T) {
	dispatcher := &dispatcherStub{}
	svc := NewReminderService(&sessionListerStub{}, newMemberStoreStub(activeMember(1, "Ana", "ana@example.com")), dispatcher, nil, nil, ReminderConfig{})

	report, err := svc.RunSessionReminders(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, report.Sessions)
	assert.Empty(t, dispatcher.sent)
}
