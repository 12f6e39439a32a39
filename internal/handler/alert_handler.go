package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/middleware"
	"github.com/noah-isme/terreiro-erp-api/internal/models"
	logging "github.com/noah-isme/terreiro-erp-api/pkg/logger"
	"github.com/noah-isme/terreiro-erp-api/pkg/response"
)

type attendanceSweeper interface {
	RunAttendanceSweep(ctx context.Context) (*models.SweepReport, error)
}

type sessionReminder interface {
	RunSessionReminders(ctx context.Context, now time.Time) (*models.ReminderReport, error)
}

// AlertHandler exposes administrative triggers for the notification sweeps.
type AlertHandler struct {
	alerts    attendanceSweeper
	reminders sessionReminder
	logger    *zap.Logger
	now       func() time.Time
}

// NewAlertHandler constructs the handler.
func NewAlertHandler(alerts attendanceSweeper, reminders sessionReminder, logger *zap.Logger) *AlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertHandler{alerts: alerts, reminders: reminders, logger: logger, now: time.Now}
}

// RunAttendance godoc
// @Summary Run the attendance alert sweep now
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/alerts/attendance/run [post]
func (h *AlertHandler) RunAttendance(c *gin.Context) {
	h.logTrigger(c, "attendance")
	report, err := h.alerts.RunAttendanceSweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// RunSessionReminders godoc
// @Summary Send reminders for upcoming sessions now
// @Tags Admin
// @Produce json
// @Param date query string false "Reference day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /admin/alerts/session-reminders/run [post]
func (h *AlertHandler) RunSessionReminders(c *gin.Context) {
	reference, err := parseDateParam(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	now := h.now()
	if reference != nil {
		now = time.Date(reference.Year(), reference.Month(), reference.Day(), now.Hour(), now.Minute(), 0, 0, now.Location())
	}

	h.logTrigger(c, "session_reminders")
	report, err := h.reminders.RunSessionReminders(c.Request.Context(), now)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func (h *AlertHandler) logTrigger(c *gin.Context, sweep string) {
	fields := []zap.Field{zap.String("sweep", sweep)}
	if claims, ok := middleware.Claims(c); ok {
		fields = append(fields, zap.Int64("triggered_by", claims.UserID))
	}
	logging.FromContext(c.Request.Context(), h.logger).Info("manual sweep triggered", fields...)
}
