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

type memberStore interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id int64) (*models.Member, error)
	List(ctx context.Context, filter models.MemberFilter) ([]models.Member, error)
	Count(ctx context.Context, filter models.MemberFilter) (int, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Member, error)
	Update(ctx context.Context, exec sqlx.ExtContext, member *models.Member) error
}

// MemberService manages the member registry.
type MemberService struct {
	tx        txProvider
	repo      memberStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMemberService constructs the member service.
func NewMemberService(tx txProvider, repo memberStore, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &MemberService{tx: tx, repo: repo, validator: validate, logger: logger, now: time.Now}
	svc.validator.RegisterValidation("standing", func(fl validator.FieldLevel) bool {
		return models.Standing(strings.ToUpper(fl.Field().String())).Valid()
	})
	svc.validator.RegisterValidation("member_level", func(fl validator.FieldLevel) bool {
		return models.MemberLevel(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// Create registers a member and assigns its code.
func (s *MemberService) Create(ctx context.Context, req dto.CreateMemberRequest) (*models.Member, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = trimmedOrNil(req.Email)
	req.Phone = trimmedOrNil(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid member payload")
	}

	member := &models.Member{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Level:     models.MemberLevel(strings.ToUpper(req.Level)),
		Standing:  models.Standing(strings.ToUpper(req.Standing)),
		BirthDate: req.BirthDate,
		EntryDate: req.EntryDate,
	}
	if member.Standing == models.StandingTerminated {
		now := s.now().UTC()
		member.TerminationDate = &now
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create member")
	}
	s.logger.Info("member registered", zap.Int64("member_id", member.ID), zap.String("code", member.Code))
	return member, nil
}

// Get returns a single member.
func (s *MemberService) Get(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	return member, nil
}

// List returns one page of members ordered by name.
func (s *MemberService) List(ctx context.Context, query dto.MemberListQuery) ([]models.Member, *models.Pagination, error) {
	page := models.NewPagination(query.Page, query.PageSize)
	filter := models.MemberFilter{Search: query.Search, Limit: page.PageSize, Offset: page.Offset()}
	if raw := strings.TrimSpace(query.Standing); raw != "" {
		standing := models.Standing(strings.ToUpper(raw))
		if !standing.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid standing filter")
		}
		filter.Standing = &standing
	}
	members, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count members")
	}
	page.TotalCount = total
	return members, &page, nil
}

// Update applies an administrative edit to the locked member row, so a
// standing change committed by escalation is never overwritten by a stale read.
// Moving a member to Terminated stamps the termination date when missing; any
// other standing clears it.
func (s *MemberService) Update(ctx context.Context, id int64, req dto.UpdateMemberRequest) (member *models.Member, err error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid member payload")
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

	member, err = s.repo.LockByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock member")
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Email != nil {
		member.Email = trimmedOrNil(req.Email)
	}
	if req.Phone != nil {
		member.Phone = trimmedOrNil(req.Phone)
	}
	if req.Level != nil {
		member.Level = models.MemberLevel(strings.ToUpper(*req.Level))
	}
	if req.BirthDate != nil {
		member.BirthDate = req.BirthDate
	}
	if req.EntryDate != nil {
		member.EntryDate = req.EntryDate
	}
	if req.Standing != nil {
		member.Standing = models.Standing(strings.ToUpper(*req.Standing))
		if member.Standing == models.StandingTerminated {
			if member.TerminationDate == nil {
				now := s.now().UTC()
				member.TerminationDate = &now
			}
		} else {
			member.TerminationDate = nil
		}
	}

	if err = s.repo.Update(ctx, tx, member); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update member")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit member update")
	}
	return member, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
