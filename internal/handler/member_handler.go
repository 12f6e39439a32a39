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

type memberService interface {
	Create(ctx context.Context, req dto.CreateMemberRequest) (*models.Member, error)
	Get(ctx context.Context, id int64) (*models.Member, error)
	List(ctx context.Context, query dto.MemberListQuery) ([]models.Member, *models.Pagination, error)
	Update(ctx context.Context, id int64, req dto.UpdateMemberRequest) (*models.Member, error)
}

type memberMeasureLister interface {
	ListForMember(ctx context.Context, memberID int64) ([]models.DisciplinaryMeasure, error)
}

// MemberHandler exposes the member registry.
type MemberHandler struct {
	service  memberService
	measures memberMeasureLister
}

// NewMemberHandler constructs the handler.
func NewMemberHandler(service memberService, measures memberMeasureLister) *MemberHandler {
	return &MemberHandler{service: service, measures: measures}
}

// List godoc
// @Summary List members
// @Tags Members
// @Produce json
// @Param standing query string false "Standing (ACTIVE/ON_LEAVE/SUSPENDED/TERMINATED)"
// @Param search query string false "Name or code fragment"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 200)"
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	var query dto.MemberListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid query parameters"))
		return
	}
	members, page, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, page)
}

// Get godoc
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Register member
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body dto.CreateMemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Router /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	var req dto.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid member payload"))
		return
	}
	member, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Edit member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param payload body dto.UpdateMemberRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /members/{id} [patch]
func (h *MemberHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid member payload"))
		return
	}
	member, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Measures godoc
// @Summary List disciplinary measures of a member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id}/measures [get]
func (h *MemberHandler) Measures(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	measures, err := h.measures.ListForMember(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, measures, nil)
}
