package events

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentacar-backend/internal/config"
	"rentacar-backend/internal/domain"
)

func TestNewPublisher_EmptyAddrIsNoop(t *testing.T) {
	p := NewPublisher(config.RedisConfig{Channel: "reservations.changed"})
	_, ok := p.(noopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), ReservationChanged{ReservationID: 1}))
	assert.NoError(t, p.Close())
}

func TestRedisPublisher_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	p := NewRedisPublisher(client, "reservations.changed")
	defer p.Close()

	err := p.Publish(context.Background(), ReservationChanged{
		ReservationID: 5,
		VehicleID:     7,
		Event:         domain.EventMarkPaid,
		From:          domain.ReservationStatusPendingNoPayment,
		To:            domain.ReservationStatusPendingWithPayment,
		Actor:         "staff@rentacar.co",
		OccurredAt:    time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish reservation event")
}
