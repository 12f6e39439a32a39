package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/terreiro-erp-api/internal/dto"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	appErrors "github.com/noah-isme/terreiro-erp-api/pkg/errors"
	"github.com/noah-isme/terreiro-erp-api/pkg/export"
	"github.com/noah-isme/terreiro-erp-api/pkg/response"
)

type attendanceService interface {
	Submit(ctx context.Context, sessionID int64, req dto.SubmitAttendanceRequest) (*dto.SubmitAttendanceResponse, error)
	ListForSession(ctx context.Context, sessionID int64) ([]models.SessionAttendance, error)
	Summary(ctx context.Context) ([]models.AttendanceSummaryRow, bool, error)
	ExportSummary(ctx context.Context) ([]byte, error)
}

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	service attendanceService
	now     func() time.Time
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service, now: time.Now}
}

// Submit godoc
// @Summary Submit the attendance of a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param payload body dto.SubmitAttendanceRequest true "Attendance records"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/attendance [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SubmitAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid attendance payload"))
		return
	}
	result, err := h.service.Submit(c.Request.Context(), sessionID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListForSession godoc
// @Summary List the attendance of a session
// @Tags Attendance
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *AttendanceHandler) ListForSession(c *gin.Context) {
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.ListForSession(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Summary godoc
// @Summary Per-member attendance summary
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /members/attendance-summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	start := time.Now()
	rows, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := response.Meta{
		"cache_hit":          cacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, rows, nil, meta)
}

// ExportSummary godoc
// @Summary Download the attendance summary as CSV
// @Tags Attendance
// @Produce text/csv
// @Success 200 {file} file
// @Router /members/attendance-summary/export [get]
func (h *AttendanceHandler) ExportSummary(c *gin.Context) {
	payload, err := h.service.ExportSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("frequencia-%s.csv", h.now().Format("20060102"))
	response.Attachment(c, filename, export.ContentTypeCSV, payload)
}
