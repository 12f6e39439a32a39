package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/repository"
	"github.com/noah-isme/terreiro-erp-api/internal/service"
	"github.com/noah-isme/terreiro-erp-api/pkg/cache"
	"github.com/noah-isme/terreiro-erp-api/pkg/config"
	"github.com/noah-isme/terreiro-erp-api/pkg/database"
	"github.com/noah-isme/terreiro-erp-api/pkg/export"
	"github.com/noah-isme/terreiro-erp-api/pkg/notify"
)

// Container holds the shared infrastructure and services of one process.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *service.MetricsService

	Auth       *service.AuthService
	Members    *service.MemberService
	Sessions   *service.SessionService
	Attendance *service.AttendanceService
	Discipline *service.DisciplineService
	Alerts     *service.AlertService
	Reminders  *service.ReminderService
}

// Build connects to PostgreSQL (and Redis when caching or the Redis outbox is
// enabled) and assembles every service.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, appName string) (*Container, error) {
	db, err := database.NewPostgres(ctx, cfg.Database, appName)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Notify.Driver == notify.DriverRedis {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	dispatcher, err := notify.New(cfg.Notify, redisClient, logger.Named("notify"))
	if err != nil {
		_ = db.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	memberRepo := repository.NewMemberRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	disciplineRepo := repository.NewDisciplineRepository(db)

	var cacheStore service.CacheRepository
	if redisClient != nil {
		cacheStore = repository.NewCacheRepository(redisClient, cfg.Cache.KeyPrefix)
	}
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Cache.SummaryTTL, logger.Named("cache"), cfg.Cache.Enabled)

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Redis:   redisClient,
		Metrics: metrics,
		Auth: service.NewAuthService(logger.Named("auth"), service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			Issuer:            cfg.JWT.Issuer,
		}),
		Members:  service.NewMemberService(db, memberRepo, validate, logger.Named("members")),
		Sessions: service.NewSessionService(sessionRepo, memberRepo, validate, logger.Named("sessions")),
		Attendance: service.NewAttendanceService(db, attendanceRepo, sessionRepo, memberRepo, cacheSvc,
			export.NewCSVExporter(true), validate, logger.Named("attendance"), cfg.Cache.SummaryTTL),
		Discipline: service.NewDisciplineService(db, memberRepo, disciplineRepo, metrics, validate, logger.Named("discipline"),
			service.DisciplineConfig{
				WarningThreshold:      cfg.Discipline.WarningThreshold,
				SuspensionThreshold:   cfg.Discipline.SuspensionThreshold,
				DefaultSuspensionDays: cfg.Discipline.DefaultSuspensionDays,
				AutoSuspensionDays:    cfg.Discipline.AutoSuspensionDays,
			}),
		Alerts: service.NewAlertService(db, memberRepo, attendanceRepo, dispatcher, metrics, logger.Named("alerts"),
			service.AlertConfig{
				MinConsideredSessions: cfg.Alerts.MinConsideredSessions,
				WarningRatio:          cfg.Alerts.WarningRatio,
				CriticalRatio:         cfg.Alerts.CriticalRatio,
				Workers:               cfg.Alerts.Workers,
				HouseName:             cfg.Notify.HouseName,
			}),
		Reminders: service.NewReminderService(sessionRepo, memberRepo, dispatcher, metrics, logger.Named("reminders"),
			service.ReminderConfig{
				DaysAhead: cfg.Reminders.DaysAhead,
				Workers:   cfg.Alerts.Workers,
				HouseName: cfg.Notify.HouseName,
			}),
	}
	return c, nil
}

// Close releases the connections held by the container.
func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("postgres close failed", zap.Error(err))
		}
	}
}
