package app

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/terreiro-erp-api/internal/handler"
	"github.com/noah-isme/terreiro-erp-api/internal/middleware"
	"github.com/noah-isme/terreiro-erp-api/pkg/config"
	"github.com/noah-isme/terreiro-erp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/terreiro-erp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/terreiro-erp-api/pkg/middleware/requestid"
)

// NewRouter registers every HTTP route on a fresh gin engine.
func NewRouter(c *Container) *gin.Engine {
	cfg := c.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(c.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(c.Metrics, "/metrics"))

	metricsHandler := handler.NewMetricsHandler(c.Metrics, c.readinessChecks())
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	memberHandler := handler.NewMemberHandler(c.Members, c.Discipline)
	sessionHandler := handler.NewSessionHandler(c.Sessions)
	attendanceHandler := handler.NewAttendanceHandler(c.Attendance)
	disciplineHandler := handler.NewDisciplineHandler(c.Discipline)
	alertHandler := handler.NewAlertHandler(c.Alerts, c.Reminders, c.Logger.Named("admin"))

	audit := c.Logger.Named("audit")
	read := middleware.RBAC(middleware.ReadRoles...)
	write := middleware.RBAC(middleware.WriteRoles...)
	admin := middleware.RBAC(middleware.AdminRoles...)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(c.Auth, cfg.JWT.CookieName))

	members := api.Group("/members")
	members.GET("", read, memberHandler.List)
	members.POST("", write, middleware.Audit(audit, "create", "member"), memberHandler.Create)
	members.GET("/attendance-summary", read, attendanceHandler.Summary)
	members.GET("/attendance-summary/export", read, attendanceHandler.ExportSummary)
	members.GET("/:id", read, memberHandler.Get)
	members.PATCH("/:id", write, middleware.Audit(audit, "update", "member"), memberHandler.Update)
	members.GET("/:id/measures", read, memberHandler.Measures)

	sessions := api.Group("/sessions")
	sessions.GET("", read, sessionHandler.List)
	sessions.POST("", write, middleware.Audit(audit, "create", "session"), sessionHandler.Create)
	sessions.GET("/:id", read, sessionHandler.Get)
	sessions.DELETE("/:id", write, middleware.Audit(audit, "deactivate", "session"), sessionHandler.Deactivate)
	sessions.GET("/:id/attendance", read, attendanceHandler.ListForSession)
	sessions.POST("/:id/attendance", write, middleware.Audit(audit, "submit", "attendance"), attendanceHandler.Submit)

	discipline := api.Group("/discipline")
	discipline.GET("/measures", read, disciplineHandler.List)
	discipline.POST("/measures", write, middleware.Audit(audit, "record", "measure"), disciplineHandler.Record)

	adminGroup := api.Group("/admin/alerts", admin)
	adminGroup.POST("/attendance/run", middleware.Audit(audit, "run", "attendance_alerts"), alertHandler.RunAttendance)
	adminGroup.POST("/session-reminders/run", middleware.Audit(audit, "run", "session_reminders"), alertHandler.RunSessionReminders)

	return r
}

func (c *Container) readinessChecks() map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": func(ctx context.Context) error {
			if c.DB == nil {
				return errors.New("database not configured")
			}
			return c.DB.PingContext(ctx)
		},
	}
	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}
	}
	return checks
}
