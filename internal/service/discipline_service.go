package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/dto"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
)

const (
	autoSuspensionReason = "Suspensão automática por acúmulo de 3 advertências."
	autoExpulsionReason  = "Expulsão automática por acúmulo de 2 suspensões."
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type disciplineMemberStore interface {
	FindByID(ctx context.Context, id int64) (*models.Member, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Member, error)
	SetStanding(ctx context.Context, exec sqlx.ExtContext, id int64, standing models.Standing, terminationDate *time.Time) error
}

type measureStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, measure *models.DisciplinaryMeasure) error
	CountByKind(ctx context.Context, exec sqlx.ExtContext, memberID int64, kind models.MeasureKind) (int, error)
	List(ctx context.Context, filter models.MeasureFilter) ([]models.DisciplinaryMeasure, error)
}

// DisciplineConfig holds the escalation thresholds.
type DisciplineConfig struct {
	WarningThreshold      int
	SuspensionThreshold   int
	DefaultSuspensionDays int
	AutoSuspensionDays    int
}

func (c DisciplineConfig) withDefaults() DisciplineConfig {
	if c.WarningThreshold <= 0 {
		c.WarningThreshold = 3
	}
	if c.SuspensionThreshold <= 0 {
		c.SuspensionThreshold = 2
	}
	if c.DefaultSuspensionDays <= 0 {
		c.DefaultSuspensionDays = 30
	}
	if c.AutoSuspensionDays <= 0 {
		c.AutoSuspensionDays = 30
	}
	return c
}

// DisciplineService records disciplinary measures and applies the escalation rule.
type DisciplineService struct {
	tx        txProvider
	members   disciplineMemberStore
	measures  measureStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    DisciplineConfig
	now       func() time.Time
}

// NewDisciplineService constructs the discipline service.
func NewDisciplineService(tx txProvider, members disciplineMemberStore, measures measureStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config DisciplineConfig) *DisciplineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DisciplineService{
		tx:        tx,
		members:   members,
		measures:  measures,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config.withDefaults(),
		now:       time.Now,
	}
	svc.validator.RegisterValidation("measure_kind", func(fl validator.FieldLevel) bool {
		return models.MeasureKind(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// RecordMeasure inserts one manual measure and escalates inside the same
// transaction, holding the member row lock throughout. It returns the manual
// measure whether or not escalation fired.
func (s *DisciplineService) RecordMeasure(ctx context.Context, req dto.RecordMeasureRequest) (measure *models.DisciplinaryMeasure, err error) {
	req.Kind = strings.ToUpper(strings.TrimSpace(req.Kind))
	req.Reason = strings.TrimSpace(req.Reason)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid disciplinary measure payload")
	}
	kind := models.MeasureKind(req.Kind)

	now := s.now().UTC()
	measure = &models.DisciplinaryMeasure{
		MemberID:  req.MemberID,
		Kind:      kind,
		Reason:    req.Reason,
		CreatedAt: now,
		Status:    models.MeasureActive,
	}
	if kind == models.MeasureSuspension {
		days := s.config.DefaultSuspensionDays
		if req.SuspensionDays != nil {
			days = *req.SuspensionDays
		}
		start, end := now, now.AddDate(0, 0, days)
		measure.StartDate = &start
		measure.EndDate = &end
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.members.LockByID(ctx, tx, req.MemberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock member")
	}

	if err = s.measures.Create(ctx, tx, measure); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record measure")
	}

	escalated, err := s.escalate(ctx, tx, measure, now)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit measure")
	}

	s.metrics.RecordMeasure(measure.Kind, false)
	for _, auto := range escalated {
		s.metrics.RecordMeasure(auto.Kind, true)
		s.logger.Info("disciplinary escalation",
			zap.Int64("member_id", auto.MemberID),
			zap.Int64("measure_id", auto.ID),
			zap.String("kind", string(auto.Kind)),
		)
	}
	s.logger.Info("disciplinary measure recorded",
		zap.Int64("member_id", measure.MemberID),
		zap.Int64("measure_id", measure.ID),
		zap.String("kind", string(measure.Kind)),
	)
	return measure, nil
}

// escalate applies the threshold checks for the measure just written. Counts
// include that measure and every earlier one of the same kind, so a qualifying
// insert escalates each time.
func (s *DisciplineService) escalate(ctx context.Context, tx sqlx.ExtContext, manual *models.DisciplinaryMeasure, now time.Time) ([]models.DisciplinaryMeasure, error) {
	switch manual.Kind {
	case models.MeasureWarning:
		count, err := s.measures.CountByKind(ctx, tx, manual.MemberID, models.MeasureWarning)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count warnings")
		}
		if count < s.config.WarningThreshold {
			return nil, nil
		}
		start, end := now, now.AddDate(0, 0, s.config.AutoSuspensionDays)
		auto := models.DisciplinaryMeasure{
			MemberID:      manual.MemberID,
			Kind:          models.MeasureSuspension,
			Reason:        autoSuspensionReason,
			CreatedAt:     now,
			StartDate:     &start,
			EndDate:       &end,
			Status:        models.MeasureActive,
			AutoGenerated: true,
		}
		if err := s.measures.Create(ctx, tx, &auto); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record automatic suspension")
		}
		return []models.DisciplinaryMeasure{auto}, nil

	case models.MeasureSuspension:
		count, err := s.measures.CountByKind(ctx, tx, manual.MemberID, models.MeasureSuspension)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count suspensions")
		}
		if count < s.config.SuspensionThreshold {
			return nil, nil
		}
		start := now
		auto := models.DisciplinaryMeasure{
			MemberID:      manual.MemberID,
			Kind:          models.MeasureExpulsion,
			Reason:        autoExpulsionReason,
			CreatedAt:     now,
			StartDate:     &start,
			Status:        models.MeasureActive,
			AutoGenerated: true,
		}
		if err := s.measures.Create(ctx, tx, &auto); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record automatic expulsion")
		}
		terminated := now
		if err := s.members.SetStanding(ctx, tx, manual.MemberID, models.StandingTerminated, &terminated); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to terminate member")
		}
		return []models.DisciplinaryMeasure{auto}, nil
	}
	return nil, nil
}

// List returns the latest measures, optionally for a single member.
func (s *DisciplineService) List(ctx context.Context, memberID *int64) ([]models.DisciplinaryMeasure, error) {
	measures, err := s.measures.List(ctx, models.MeasureFilter{MemberID: memberID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list measures")
	}
	return measures, nil
}

// ListForMember returns a member's measures, failing when the member is unknown.
func (s *DisciplineService) ListForMember(ctx context.Context, memberID int64) ([]models.DisciplinaryMeasure, error) {
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	return s.List(ctx, &memberID)
}
