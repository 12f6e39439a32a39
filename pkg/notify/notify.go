// Package notify hands outbound member notifications to the external mailer.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	"github.com/noah-isme/terreiro-erp-api/pkg/config"
)

const (
	DriverRedis = "redis"
	DriverLog   = "log"
)

// Dispatcher delivers a single notification. A nil error means the message
// was accepted by the downstream collaborator.
type Dispatcher interface {
	Send(ctx context.Context, notification models.Notification) error
}

type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisDispatcher pushes JSON encoded notifications onto a Redis list that the
// mailer consumes.
type RedisDispatcher struct {
	client listPusher
	key    string
	sender string
	now    func() time.Time
}

// NewRedisDispatcher constructs a dispatcher writing to the given list key.
func NewRedisDispatcher(client listPusher, key, sender string) *RedisDispatcher {
	return &RedisDispatcher{client: client, key: key, sender: sender, now: time.Now}
}

type envelope struct {
	models.Notification
	From string `json:"from,omitempty"`
}

// Send stamps an id and enqueues the notification.
func (d *RedisDispatcher) Send(ctx context.Context, notification models.Notification) error {
	if strings.TrimSpace(notification.To) == "" {
		return fmt.Errorf("notify member %d: missing recipient", notification.MemberID)
	}
	prepare(&notification, d.now)

	payload, err := json.Marshal(envelope{Notification: notification, From: d.sender})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := d.client.LPush(ctx, d.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification %s: %w", notification.ID, err)
	}
	return nil
}

// LogDispatcher writes notifications to the application log. It is meant for
// development environments without a mailer.
type LogDispatcher struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewLogDispatcher constructs a log-only dispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger, now: time.Now}
}

// Send logs the notification.
func (d *LogDispatcher) Send(_ context.Context, notification models.Notification) error {
	if strings.TrimSpace(notification.To) == "" {
		return fmt.Errorf("notify member %d: missing recipient", notification.MemberID)
	}
	prepare(&notification, d.now)
	d.logger.Info("notification",
		zap.String("id", notification.ID),
		zap.String("kind", string(notification.Kind)),
		zap.Int64("member_id", notification.MemberID),
		zap.String("to", notification.To),
		zap.String("subject", notification.Subject),
	)
	return nil
}

// New selects a dispatcher according to the configured driver.
func New(cfg config.NotifyConfig, client *redis.Client, logger *zap.Logger) (Dispatcher, error) {
	switch cfg.Driver {
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("notify driver %q requires a redis client", cfg.Driver)
		}
		return NewRedisDispatcher(client, cfg.QueueKey, cfg.Sender), nil
	case DriverLog, "":
		return NewLogDispatcher(logger), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}

func prepare(n *models.Notification, now func() time.Time) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now().UTC()
	}
}
