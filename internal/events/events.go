package events

import (
	"context"
	"time"

	"rentacar-backend/internal/domain"
)

// ReservationChanged is published after every committed lifecycle change
type ReservationChanged struct {
	ReservationID int64                    `json:"reservation_id"`
	VehicleID     int64                    `json:"vehicle_id"`
	Event         domain.ReservationEvent  `json:"event"`
	From          domain.ReservationStatus `json:"from,omitempty"`
	To            domain.ReservationStatus `json:"to"`
	Actor         string                   `json:"actor"`
	RequestID     string                   `json:"request_id,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

// EventCreate marks the initial insert; it is not a lifecycle transition
const EventCreate domain.ReservationEvent = "create"

type Publisher interface {
	Publish(ctx context.Context, ev ReservationChanged) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, ReservationChanged) error { return nil }
func (noopPublisher) Close() error                                       { return nil }
