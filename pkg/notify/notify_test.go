package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	"github.com/noah-isme/terreiro-erp-api/pkg/config"
)

type pusherStub struct {
	key    string
	values []interface{}
	err    error
}

func (p *pusherStub) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	p.key = key
	p.values = append(p.values, values...)
	return redis.NewIntResult(int64(len(p.values)), p.err)
}

func TestRedisDispatcherEnqueuesJSON(t *testing.T) {
	stub := &pusherStub{}
	dispatcher := NewRedisDispatcher(stub, "terreiro:notifications", "secretaria@example.com")

	err := dispatcher.Send(context.Background(), models.Notification{
		Kind:     models.NotificationAbsenceWarning,
		MemberID: 7,
		To:       "medium@example.com",
		Subject:  "Aviso",
		Body:     "corpo",
	})
	require.NoError(t, err)
	assert.Equal(t, "terreiro:notifications", stub.key)
	require.Len(t, stub.values, 1)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(stub.values[0].([]byte), &decoded))
	assert.Equal(t, "ABSENCE_WARNING", decoded["kind"])
	assert.Equal(t, "secretaria@example.com", decoded["from"])
	assert.NotEmpty(t, decoded["id"])
}

func TestRedisDispatcherPropagatesErrors(t *testing.T) {
	stub := &pusherStub{err: errors.New("connection refused")}
	dispatcher := NewRedisDispatcher(stub, "q", "")

	err := dispatcher.Send(context.Background(), models.Notification{MemberID: 1, To: "a@b.c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDispatchersRejectMissingRecipient(t *testing.T) {
	assert.Error(t, NewRedisDispatcher(&pusherStub{}, "q", "").Send(context.Background(), models.Notification{MemberID: 1}))
	assert.Error(t, NewLogDispatcher(zap.NewNop()).Send(context.Background(), models.Notification{MemberID: 1, To: " "}))
}

func TestNewSelectsDriver(t *testing.T) {
	d, err := New(config.NotifyConfig{Driver: DriverLog}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogDispatcher{}, d)

	_, err = New(config.NotifyConfig{Driver: DriverRedis}, nil, nil)
	assert.Error(t, err)

	_, err = New(config.NotifyConfig{Driver: "smtp"}, nil, nil)
	assert.Error(t, err)
}
