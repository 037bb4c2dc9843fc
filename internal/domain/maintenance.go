package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// MaintenanceRecord blocks a vehicle for every civil day in [StartDate, EndDate]
type MaintenanceRecord struct {
	ID          int64      `json:"id"`
	VehicleID   int64      `json:"vehicle_id"`
	StartDate   civil.Date `json:"start_date"`
	EndDate     civil.Date `json:"end_date"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}
