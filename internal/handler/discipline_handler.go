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

type disciplineService interface {
	RecordMeasure(ctx context.Context, req dto.RecordMeasureRequest) (*models.DisciplinaryMeasure, error)
	List(ctx context.Context, memberID *int64) ([]models.DisciplinaryMeasure, error)
}

// DisciplineHandler exposes the disciplinary ledger.
type DisciplineHandler struct {
	service disciplineService
}

// NewDisciplineHandler constructs the handler.
func NewDisciplineHandler(service disciplineService) *DisciplineHandler {
	return &DisciplineHandler{service: service}
}

// Record godoc
// @Summary Record a disciplinary measure
// @Description Warnings and suspensions escalate automatically once their thresholds are reached.
// @Tags Discipline
// @Accept json
// @Produce json
// @Param payload body dto.RecordMeasureRequest true "Measure payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /discipline/measures [post]
func (h *DisciplineHandler) Record(c *gin.Context) {
	var req dto.RecordMeasureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid measure payload"))
		return
	}
	measure, err := h.service.RecordMeasure(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, measure)
}

// List godoc
// @Summary List the latest disciplinary measures
// @Tags Discipline
// @Produce json
// @Param memberId query int false "Member ID"
// @Success 200 {object} response.Envelope
// @Router /discipline/measures [get]
func (h *DisciplineHandler) List(c *gin.Context) {
	memberID, err := parseOptionalIDQuery(c, "memberId")
	if err != nil {
		response.Error(c, err)
		return
	}
	measures, err := h.service.List(c.Request.Context(), memberID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, measures, nil)
}
