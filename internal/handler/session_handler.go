package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/terreiro-erp-api/internal/dto"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	"github.com/noah-isme/terreiro-erp-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error)
	Get(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context) ([]models.Session, error)
	Deactivate(ctx context.Context, id int64) error
}

// SessionHandler exposes gira scheduling endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// List godoc
// @Summary List the latest active sessions
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create godoc
// @Summary Schedule session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid session payload"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Deactivate godoc
// @Summary Deactivate session
// @Tags Sessions
// @Param id path int true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
