package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/terreiro-erp-api/internal/dto"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
)

type sessionServiceMock struct {
	created     dto.CreateSessionRequest
	deactivated int64
	err         error
}

func (m *sessionServiceMock) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	m.created = req
	return &models.Session{ID: 1, Date: req.Date, Kind: req.Kind, Active: true}, m.err
}

func (m *sessionServiceMock) Get(ctx context.Context, id int64) (*models.Session, error) {
	return &models.Session{ID: id}, m.err
}

func (m *sessionServiceMock) List(ctx context.Context) ([]models.Session, error) {
	return nil, m.err
}

func (m *sessionServiceMock) Deactivate(ctx context.Context, id int64) error {
	m.deactivated = id
	return m.err
}

func TestSessionHandlerCreate(t *testing.T) {
	svc := &sessionServiceMock{}
	handler := NewSessionHandler(svc)

	c, w := newGinContext(http.MethodPost, "/sessions", []byte(`{"date":"2024-06-04T20:00:00-03:00","kind":"Gira de Caboclo"}`))
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Gira de Caboclo", svc.created.Kind)
	assert.Equal(t, 4, svc.created.Date.Day())
}

func TestSessionHandlerDeactivate(t *testing.T) {
	svc := &sessionServiceMock{}
	handler := NewSessionHandler(svc)

	c, _ := newGinContext(http.MethodDelete, "/sessions/8", nil)
	c.AddParam("id", "8")
	handler.Deactivate(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, int64(8), svc.deactivated)

	handler = NewSessionHandler(&sessionServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "session not found")})
	c, w := newGinContext(http.MethodDelete, "/sessions/8", nil)
	c.AddParam("id", "8")
	handler.Deactivate(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
