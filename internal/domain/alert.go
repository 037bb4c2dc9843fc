package domain

import "time"

type AlertPriority string

const (
	AlertPriorityHigh   AlertPriority = "high"
	AlertPriorityMedium AlertPriority = "medium"
	AlertPriorityLow    AlertPriority = "low"
)

const AlertKindBlockedCustomer = "blocked_customer_reservation"

// SecurityAlert records an intercepted operation for staff review
type SecurityAlert struct {
	ID         int64         `json:"id"`
	Kind       string        `json:"kind"`
	Priority   AlertPriority `json:"priority"`
	Actor      string        `json:"actor"`
	CustomerID int64         `json:"customer_id"`
	VehicleID  int64         `json:"vehicle_id"`
	Message    string        `json:"message"`
	CreatedAt  time.Time     `json:"created_at"`
}
