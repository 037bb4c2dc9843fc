package domain

import "time"

type ContractKind string

const (
	ContractKindPreliminary ContractKind = "preliminary"
	ContractKindFinal       ContractKind = "final"
)

func (k ContractKind) IsValid() bool {
	return k == ContractKindPreliminary || k == ContractKindFinal
}

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusConverted ContractStatus = "converted"
)

// ContractSnapshot freezes the customer, vehicle and price as they were at
// signing time. It is stored alongside, not instead of, the foreign keys.
type ContractSnapshot struct {
	CustomerName     string    `json:"customer_name"`
	CustomerDocument string    `json:"customer_document"`
	CustomerEmail    string    `json:"customer_email"`
	CustomerPhone    string    `json:"customer_phone"`
	VehiclePlate     string    `json:"vehicle_plate"`
	VehicleMake      string    `json:"vehicle_make"`
	VehicleModel     string    `json:"vehicle_model"`
	VehicleYear      int32     `json:"vehicle_year"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	Days             int32     `json:"days"`
	DailyRate        int64     `json:"daily_rate"`
	Subtotal         int64     `json:"subtotal"`
	Tax              int64     `json:"tax"`
	GrossTotal       int64     `json:"gross_total"`
	Discount         int64     `json:"discount"`
	NetTotal         int64     `json:"net_total"`
}

// ContractEvidence references stored signature artifacts by storage key
type ContractEvidence struct {
	SignatureKey   string `json:"signature_key"`
	FingerprintKey string `json:"fingerprint_key,omitempty"`
	PhotoKey       string `json:"photo_key,omitempty"`
	DocumentKey    string `json:"document_key,omitempty"`
}

type Contract struct {
	ID            int64            `json:"id"`
	Number        string           `json:"number"`
	ReservationID *int64           `json:"reservation_id,omitempty"` // nil for walk-in contracts
	CustomerID    int64            `json:"customer_id"`
	VehicleID     int64            `json:"vehicle_id"`
	Kind          ContractKind     `json:"kind"`
	Status        ContractStatus   `json:"status"`
	Locked        bool             `json:"locked"`
	ConvertedFrom *int64           `json:"converted_from,omitempty"`
	Snapshot      ContractSnapshot `json:"snapshot"`
	Evidence      ContractEvidence `json:"evidence"`
	SignedBy      string           `json:"signed_by"`
	SignedAt      time.Time        `json:"signed_at"`
	CreatedAt     time.Time        `json:"created_at"`
}
