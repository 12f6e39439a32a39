package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/dto"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	"github.com/noah-isme/terreiro-erp-api/pkg/export"
)

const attendanceSummaryCacheKey = "attendance:summary"

type attendanceStore interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, records []models.AttendanceRecord) error
	ListBySession(ctx context.Context, sessionID int64) ([]models.SessionAttendance, error)
	CountsForAll(ctx context.Context) ([]models.AttendanceCountRow, error)
}

type sessionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

type memberIDChecker interface {
	ExistingIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (map[int64]bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// AttendanceService coordinates attendance submissions and summaries.
type AttendanceService struct {
	tx        txProvider
	repo      attendanceStore
	sessions  sessionFinder
	members   memberIDChecker
	cache     *CacheService
	csv       csvRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(tx txProvider, repo attendanceStore, sessions sessionFinder, members memberIDChecker, cache *CacheService, csv csvRenderer, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	svc := &AttendanceService{
		tx:        tx,
		repo:      repo,
		sessions:  sessions,
		members:   members,
		cache:     cache,
		csv:       csv,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// Submit upserts the attendance of a session in a single transaction.
func (s *AttendanceService) Submit(ctx context.Context, sessionID int64, req dto.SubmitAttendanceRequest) (resp *dto.SubmitAttendanceResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid attendance payload")
	}
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}

	byMember := make(map[int64]int, len(req.Records))
	records := make([]models.AttendanceRecord, 0, len(req.Records))
	ids := make([]int64, 0, len(req.Records))
	for _, entry := range req.Records {
		record := models.AttendanceRecord{
			MemberID:  entry.MemberID,
			SessionID: sessionID,
			Status:    models.AttendanceStatus(strings.ToUpper(entry.Status)),
			Note:      trimmedOrNil(entry.Note),
		}
		// The last entry for a member wins, matching the upsert semantics.
		if idx, ok := byMember[entry.MemberID]; ok {
			records[idx] = record
			continue
		}
		byMember[entry.MemberID] = len(records)
		records = append(records, record)
		ids = append(ids, entry.MemberID)
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

	existing, err := s.members.ExistingIDs(ctx, tx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify members")
	}
	for _, id := range ids {
		if !existing[id] {
			err = appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("member %d not found", id))
			return nil, err
		}
	}

	if err = s.repo.UpsertBatch(ctx, tx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit attendance")
	}

	if cacheErr := s.cache.Invalidate(ctx, attendanceSummaryCacheKey); cacheErr != nil {
		s.logger.Warn("attendance summary not invalidated", zap.Error(cacheErr))
	}
	s.logger.Info("attendance submitted", zap.Int64("session_id", sessionID), zap.Int("records", len(records)))
	return &dto.SubmitAttendanceResponse{SessionID: sessionID, Saved: len(records)}, nil
}

// ListForSession returns the attendance taken at a session.
func (s *AttendanceService) ListForSession(ctx context.Context, sessionID int64) ([]models.SessionAttendance, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, nil
}

// Summary returns per-member presence figures and whether they came from the
// cache. On-leave sessions are left out of the denominator.
func (s *AttendanceService) Summary(ctx context.Context) ([]models.AttendanceSummaryRow, bool, error) {
	return Remember(ctx, s.cache, attendanceSummaryCacheKey, s.cacheTTL, func(ctx context.Context) ([]models.AttendanceSummaryRow, error) {
		counts, err := s.repo.CountsForAll(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
		}
		return buildAttendanceSummary(counts), nil
	})
}

// ExportSummary renders the summary as CSV.
func (s *AttendanceService) ExportSummary(ctx context.Context) ([]byte, error) {
	summary, _, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"codigo", "nome", "sessoes_consideradas", "presencas", "faltas", "percentual_faltas"},
		Rows:    make([]map[string]string, 0, len(summary)),
	}
	for _, row := range summary {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"codigo":               row.MemberCode,
			"nome":                 row.MemberName,
			"sessoes_consideradas": strconv.Itoa(row.Considered),
			"presencas":            strconv.Itoa(row.Presences),
			"faltas":               strconv.Itoa(row.Absences),
			"percentual_faltas":    strconv.FormatFloat(row.AbsenceRatio*100, 'f', 1, 64),
		})
	}
	out, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance export")
	}
	return out, nil
}

func (s *AttendanceService) loadSession(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

func buildAttendanceSummary(counts []models.AttendanceCountRow) []models.AttendanceSummaryRow {
	summary := make([]models.AttendanceSummaryRow, 0)
	index := make(map[int64]int)
	tallies := make([]models.AttendanceTally, 0)
	for _, row := range counts {
		idx, ok := index[row.MemberID]
		if !ok {
			idx = len(summary)
			index[row.MemberID] = idx
			summary = append(summary, models.AttendanceSummaryRow{
				MemberID:   row.MemberID,
				MemberCode: row.MemberCode,
				MemberName: row.MemberName,
			})
			tallies = append(tallies, models.AttendanceTally{})
		}
		tallies[idx].Add(row.Status, row.Total)
	}
	for i, tally := range tallies {
		summary[i].Considered = tally.Considered()
		summary[i].Presences = tally.Present
		summary[i].Absences = tally.Absences()
		summary[i].AbsenceRatio = tally.AbsenceRatio()
	}
	return summary
}
