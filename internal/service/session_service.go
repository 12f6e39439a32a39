package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/dto"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
)

type sessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error)
	Deactivate(ctx context.Context, id int64) error
}

type memberFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Member, error)
}

// SessionService manages giras.
type SessionService struct {
	repo      sessionStore
	members   memberFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(repo sessionStore, members memberFinder, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, members: members, validator: validate, logger: logger}
}

// Create schedules a session. The optional leader must be a registered member.
func (s *SessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	req.Kind = strings.TrimSpace(req.Kind)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid session payload")
	}

	session := &models.Session{
		Date:     req.Date,
		Kind:     req.Kind,
		Notes:    trimmedOrNil(req.Notes),
		LeaderID: req.LeaderID,
	}
	if req.LeaderID != nil {
		leader, err := s.members.FindByID(ctx, *req.LeaderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "leader not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leader")
		}
		session.LeaderName = &leader.Name
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.logger.Info("session scheduled", zap.Int64("session_id", session.ID), zap.Time("date", session.Date))
	return session, nil
}

// Get returns a session.
func (s *SessionService) Get(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// List returns the latest active sessions.
func (s *SessionService) List(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.repo.List(ctx, models.SessionFilter{ActiveOnly: true, Limit: 50})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Deactivate soft deletes a session. Its attendance stays in the ledger.
func (s *SessionService) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate session")
	}
	return nil
}
