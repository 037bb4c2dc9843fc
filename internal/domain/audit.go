package domain

import "time"

const (
	AuditEntityReservation = "reservation"
	AuditEntityContract    = "contract"
)

type AuditEntry struct {
	ID          int64     `json:"id"`
	Actor       string    `json:"actor"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    int64     `json:"entity_id"`
	BeforeState string    `json:"before_state"`
	AfterState  string    `json:"after_state"`
	RequestID   string    `json:"request_id"`
	CreatedAt   time.Time `json:"created_at"`
}
