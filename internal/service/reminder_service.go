package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	logging "github.com/noah-isme/terreiro-erp-api/pkg/logger"
	"github.com/noah-isme/terreiro-erp-api/pkg/notify"
)

const sweepReminders = "session_reminders"

type sessionLister interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
}

type contactableMembers interface {
	ListContactable(ctx context.Context) ([]models.Member, error)
}

// ReminderConfig tunes the upcoming session reminders.
type ReminderConfig struct {
	DaysAhead int
	Workers   int
	HouseName string
}

// ReminderService e-mails active members about sessions a few days ahead.
// Reminders carry no idempotency flag; the trigger is expected once a day.
type ReminderService struct {
	sessions   sessionLister
	members    contactableMembers
	dispatcher notify.Dispatcher
	metrics    *MetricsService
	logger     *zap.Logger
	config     ReminderConfig
}

// NewReminderService constructs the reminder service.
func NewReminderService(sessions sessionLister, members contactableMembers, dispatcher notify.Dispatcher, metrics *MetricsService, logger *zap.Logger, config ReminderConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DaysAhead <= 0 {
		config.DaysAhead = 3
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return &ReminderService{sessions: sessions, members: members, dispatcher: dispatcher, metrics: metrics, logger: logger, config: config}
}

// RunSessionReminders sends one reminder per active session falling on the
// calendar day now+DaysAhead and per active member with an e-mail address.
func (s *ReminderService) RunSessionReminders(ctx context.Context, now time.Time) (*models.ReminderReport, error) {
	started := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day()+s.config.DaysAhead, 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	report := &models.ReminderReport{RunID: uuid.NewString(), TargetDate: dayStart, Failures: []models.DispatchFailure{}}
	logger := logging.FromContext(ctx, s.logger).With(zap.String("run_id", report.RunID), zap.Time("target_date", dayStart))

	sessions, err := s.sessions.List(ctx, models.SessionFilter{ActiveOnly: true, DateFrom: &dayStart, DateTo: &dayEnd, Limit: 200})
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}
	report.Sessions = len(sessions)
	if len(sessions) == 0 {
		logger.Info("no sessions to remind")
		return report, nil
	}

	members, err := s.members.ListContactable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminder recipients: %w", err)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.Workers)
	for _, session := range sessions {
		for _, member := range members {
			session, member := session, member
			group.Go(func() error {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				sendErr := s.send(groupCtx, session, member)

				mu.Lock()
				defer mu.Unlock()
				if sendErr != nil {
					s.metrics.RecordReminder(AlertResultFailed)
					report.Failures = append(report.Failures, models.DispatchFailure{MemberID: member.ID, Error: sendErr.Error()})
					logger.Warn("session reminder failed", zap.Int64("member_id", member.ID), zap.Int64("session_id", session.ID), zap.Error(sendErr))
					return nil
				}
				s.metrics.RecordReminder(AlertResultSent)
				report.Sent++
				return nil
			})
		}
	}
	waitErr := group.Wait()

	s.metrics.ObserveSweep(sweepReminders, time.Since(started))
	logger.Info("session reminders finished",
		zap.Int("sessions", report.Sessions),
		zap.Int("sent", report.Sent),
		zap.Int("failures", len(report.Failures)),
	)
	return report, waitErr
}

func (s *ReminderService) send(ctx context.Context, session models.Session, member models.Member) error {
	data := reminderMessage{
		Name:      member.Name,
		House:     s.config.HouseName,
		Date:      session.Date.Format("02/01/2006"),
		Kind:      session.Kind,
		DaysAhead: s.config.DaysAhead,
	}
	if session.LeaderName != nil {
		data.Leader = *session.LeaderName
	}
	body, err := renderTemplate(sessionReminderTemplate, data)
	if err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}
	err = s.dispatcher.Send(ctx, models.Notification{
		Kind:     models.NotificationSessionReminder,
		MemberID: member.ID,
		To:       member.ContactEmail(),
		Subject:  fmt.Sprintf("Lembrete de sessão – %s (%s)", data.Date, session.Kind),
		Body:     body,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDispatch.Code, appErrors.ErrDispatch.Status, appErrors.ErrDispatch.Message)
	}
	return nil
}
