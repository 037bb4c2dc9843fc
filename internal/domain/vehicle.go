package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

type Vehicle struct {
	ID        int64         `json:"id"`
	Plate     string        `json:"plate"`
	Make      string        `json:"make"`
	Model     string        `json:"model"`
	Year      int32         `json:"year"`
	DailyRate int64         `json:"daily_rate"` // tax-exclusive, whole currency units
	Odometer  int64         `json:"odometer"`
	Status    VehicleStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
