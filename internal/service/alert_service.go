package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	logging "github.com/noah-isme/terreiro-erp-api/pkg/logger"
	"github.com/noah-isme/terreiro-erp-api/pkg/notify"
)

const sweepAttendance = "attendance_alerts"

type alertMemberStore interface {
	ListContactable(ctx context.Context) ([]models.Member, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Member, error)
	SetAlertFlag(ctx context.Context, exec sqlx.ExtContext, id int64, tier models.AlertTier) error
}

type attendanceCounter interface {
	CountByMember(ctx context.Context, exec sqlx.ExtContext, memberID int64) (models.AttendanceTally, error)
}

// AlertConfig tunes the attendance alert sweep.
type AlertConfig struct {
	MinConsideredSessions int
	WarningRatio          float64
	CriticalRatio         float64
	Workers               int
	HouseName             string
}

func (c AlertConfig) withDefaults() AlertConfig {
	if c.MinConsideredSessions <= 0 {
		c.MinConsideredSessions = 10
	}
	if c.WarningRatio <= 0 {
		c.WarningRatio = 0.25
	}
	if c.CriticalRatio <= 0 {
		c.CriticalRatio = 0.50
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// AlertService runs the one-time absence alert sweep.
type AlertService struct {
	tx         txProvider
	members    alertMemberStore
	attendance attendanceCounter
	dispatcher notify.Dispatcher
	metrics    *MetricsService
	logger     *zap.Logger
	config     AlertConfig
	now        func() time.Time
}

// NewAlertService constructs the alert service.
func NewAlertService(tx txProvider, members alertMemberStore, attendance attendanceCounter, dispatcher notify.Dispatcher, metrics *MetricsService, logger *zap.Logger, config AlertConfig) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		tx:         tx,
		members:    members,
		attendance: attendance,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		config:     config.withDefaults(),
		now:        time.Now,
	}
}

type memberOutcome int

const (
	outcomeNone memberOutcome = iota
	outcomeSkipped
	outcomeSent
	outcomeFailed
)

// RunAttendanceSweep evaluates every active member with an e-mail address.
// Members are processed concurrently, each in its own transaction holding the
// member row lock; one member's failure never stops the others. The returned
// error is only set when the candidate list cannot be read or ctx ends.
func (s *AlertService) RunAttendanceSweep(ctx context.Context) (*models.SweepReport, error) {
	started := s.now().UTC()
	report := &models.SweepReport{RunID: uuid.NewString(), StartedAt: started, Failures: []models.DispatchFailure{}}
	logger := logging.FromContext(ctx, s.logger).With(zap.String("run_id", report.RunID))

	candidates, err := s.members.ListContactable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alert candidates: %w", err)
	}
	logger.Info("attendance alert sweep started", zap.Int("candidates", len(candidates)))

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.Workers)
	for _, candidate := range candidates {
		memberID := candidate.ID
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcome, tier, evalErr := s.evaluateMember(groupCtx, memberID)

			mu.Lock()
			defer mu.Unlock()
			report.Evaluated++
			switch outcome {
			case outcomeSkipped:
				report.Skipped++
			case outcomeSent:
				if tier == models.AlertTierCritical {
					report.CriticalSent++
				} else {
					report.WarningSent++
				}
			case outcomeFailed:
				report.Failures = append(report.Failures, models.DispatchFailure{MemberID: memberID, Tier: tier, Error: evalErr.Error()})
				logger.Warn("attendance alert failed", zap.Int64("member_id", memberID), zap.Int("tier", int(tier)), zap.Error(evalErr))
			}
			return nil
		})
	}
	waitErr := group.Wait()

	report.FinishedAt = s.now().UTC()
	s.metrics.ObserveSweep(sweepAttendance, report.FinishedAt.Sub(started))
	logger.Info("attendance alert sweep finished",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("skipped", report.Skipped),
		zap.Int("warning_sent", report.WarningSent),
		zap.Int("critical_sent", report.CriticalSent),
		zap.Int("failures", len(report.Failures)),
	)
	if waitErr != nil {
		return report, waitErr
	}
	return report, nil
}

// evaluateMember runs check, send and record for one member. The flag is
// written only after the dispatcher accepted the message; any failure rolls
// the transaction back so the next sweep retries.
func (s *AlertService) evaluateMember(ctx context.Context, memberID int64) (outcome memberOutcome, tier models.AlertTier, err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return outcomeFailed, 0, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	member, err := s.members.LockByID(ctx, tx, memberID)
	if err != nil {
		return outcomeFailed, 0, fmt.Errorf("lock member: %w", err)
	}
	if member.Standing != models.StandingActive || member.ContactEmail() == "" {
		return outcomeNone, 0, nil
	}

	tally, err := s.attendance.CountByMember(ctx, tx, memberID)
	if err != nil {
		return outcomeFailed, 0, fmt.Errorf("count attendance: %w", err)
	}
	if tally.Considered() < s.config.MinConsideredSessions {
		return outcomeSkipped, 0, nil
	}

	ratio := tally.AbsenceRatio()
	tier, ok := s.selectTier(member, ratio)
	if !ok {
		return outcomeNone, 0, nil
	}

	notification, err := s.buildAbsenceNotification(member, tier, ratio)
	if err != nil {
		return outcomeFailed, tier, err
	}
	if err := s.dispatcher.Send(ctx, notification); err != nil {
		s.metrics.RecordAlert(tier, AlertResultFailed)
		return outcomeFailed, tier, appErrors.Wrap(err, appErrors.ErrDispatch.Code, appErrors.ErrDispatch.Status, appErrors.ErrDispatch.Message)
	}

	if err := s.members.SetAlertFlag(ctx, tx, memberID, tier); err != nil {
		s.metrics.RecordAlert(tier, AlertResultFailed)
		return outcomeFailed, tier, fmt.Errorf("set alert flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.metrics.RecordAlert(tier, AlertResultFailed)
		return outcomeFailed, tier, fmt.Errorf("commit: %w", err)
	}
	committed = true
	s.metrics.RecordAlert(tier, AlertResultSent)

	s.logger.Info("attendance alert sent",
		zap.Int64("member_id", memberID),
		zap.Int("tier", int(tier)),
		zap.Float64("absence_ratio", ratio),
	)
	return outcomeSent, tier, nil
}

// selectTier applies the tier rules. The critical tier takes precedence, and
// once it has fired the warning tier is never sent on its own.
func (s *AlertService) selectTier(member *models.Member, ratio float64) (models.AlertTier, bool) {
	switch {
	case ratio >= s.config.CriticalRatio:
		if member.Alert50Sent {
			return 0, false
		}
		return models.AlertTierCritical, true
	case ratio >= s.config.WarningRatio:
		if member.Alert25Sent || member.Alert50Sent {
			return 0, false
		}
		return models.AlertTierWarning, true
	default:
		return 0, false
	}
}

func (s *AlertService) buildAbsenceNotification(member *models.Member, tier models.AlertTier, ratio float64) (models.Notification, error) {
	data := absenceMessage{Name: member.Name, House: s.config.HouseName, Percent: int(math.Round(ratio * 100))}
	notification := models.Notification{MemberID: member.ID, To: member.ContactEmail(), CreatedAt: s.now().UTC()}

	var body string
	var err error
	switch tier {
	case models.AlertTierCritical:
		notification.Kind = models.NotificationAbsenceCritical
		notification.Subject = absenceCriticalSubject
		body, err = renderTemplate(absenceCriticalTemplate, data)
	case models.AlertTierWarning:
		notification.Kind = models.NotificationAbsenceWarning
		notification.Subject = fmt.Sprintf(absenceWarningSubjectFormat, int(math.Round(s.config.WarningRatio*100)))
		body, err = renderTemplate(absenceWarningTemplate, data)
	default:
		return notification, errors.New("unsupported alert tier")
	}
	if err != nil {
		return notification, fmt.Errorf("render alert message: %w", err)
	}
	notification.Body = body
	return notification, nil
}
