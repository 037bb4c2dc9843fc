package domain

import (
	"fmt"
	"slices"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPendingNoPayment   ReservationStatus = "pending_no_payment"
	ReservationStatusPendingWithPayment ReservationStatus = "pending_with_payment"
	ReservationStatusContractGenerated  ReservationStatus = "contract_generated"
	ReservationStatusConfirmed          ReservationStatus = "confirmed"
	ReservationStatusCompleted          ReservationStatus = "completed"
	ReservationStatusExpired            ReservationStatus = "expired"
	ReservationStatusCancelled          ReservationStatus = "cancelled"
)

// IsActive reports whether the reservation still occupies its vehicle's calendar
func (s ReservationStatus) IsActive() bool {
	return s != ReservationStatusCancelled && s != ReservationStatusExpired
}

// IsValid reports whether s is a known status
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPendingNoPayment, ReservationStatusPendingWithPayment,
		ReservationStatusContractGenerated, ReservationStatusConfirmed,
		ReservationStatusCompleted, ReservationStatusExpired, ReservationStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type RefundStatus string

const (
	RefundStatusNone     RefundStatus = "none"
	RefundStatusPending  RefundStatus = "pending"
	RefundStatusRefunded RefundStatus = "refunded"
)

type Reservation struct {
	ID            int64  `json:"id"`
	VehicleID     int64  `json:"vehicle_id"`
	CustomerID    int64  `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	// Price snapshot captured at creation time
	Days          int32   `json:"days"`
	DailyRate     int64   `json:"daily_rate"`
	Subtotal      int64   `json:"subtotal"`
	Tax           int64   `json:"tax"`
	GrossTotal    int64   `json:"gross_total"`
	DiscountKind  string  `json:"discount_kind"`
	DiscountValue float64 `json:"discount_value"`
	Discount      int64   `json:"discount"`
	NetTotal      int64   `json:"net_total"`

	Status        ReservationStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	PaymentDate   *time.Time        `json:"payment_date,omitempty"`
	AutoCancelAt  *time.Time        `json:"auto_cancel_at,omitempty"`

	CancelledAt        *time.Time   `json:"cancelled_at,omitempty"`
	CancelledBy        string       `json:"cancelled_by,omitempty"`
	CancellationReason string       `json:"cancellation_reason,omitempty"`
	RefundStatus       RefundStatus `json:"refund_status"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Back-to-back intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

type ReservationEvent string

const (
	EventMarkPaid      ReservationEvent = "mark_paid"
	EventExpire        ReservationEvent = "auto_expire"
	EventIssueContract ReservationEvent = "issue_contract"
	EventConfirm       ReservationEvent = "confirm"
	EventCancel        ReservationEvent = "cancel"
	EventComplete      ReservationEvent = "complete"
)

// VehicleEffect is the vehicle status write a transition carries, if any
type VehicleEffect string

const (
	VehicleEffectNone    VehicleEffect = ""
	VehicleEffectHold    VehicleEffect = "hold"
	VehicleEffectRelease VehicleEffect = "release"
)

// Transition is one row of the reservation lifecycle table
type Transition struct {
	Event   ReservationEvent
	From    []ReservationStatus
	To      ReservationStatus
	Vehicle VehicleEffect
}

var transitions = map[ReservationEvent]Transition{
	EventMarkPaid: {
		Event: EventMarkPaid,
		From:  []ReservationStatus{ReservationStatusPendingNoPayment},
		To:    ReservationStatusPendingWithPayment,
	},
	EventExpire: {
		Event: EventExpire,
		From:  []ReservationStatus{ReservationStatusPendingNoPayment, ReservationStatusPendingWithPayment},
		To:    ReservationStatusExpired,
	},
	EventIssueContract: {
		Event: EventIssueContract,
		From:  []ReservationStatus{ReservationStatusPendingWithPayment},
		To:    ReservationStatusContractGenerated,
	},
	EventConfirm: {
		Event:   EventConfirm,
		From:    []ReservationStatus{ReservationStatusContractGenerated},
		To:      ReservationStatusConfirmed,
		Vehicle: VehicleEffectHold,
	},
	EventCancel: {
		Event: EventCancel,
		From: []ReservationStatus{
			ReservationStatusContractGenerated,
			ReservationStatusPendingWithPayment,
			ReservationStatusConfirmed,
		},
		To:      ReservationStatusCancelled,
		Vehicle: VehicleEffectRelease,
	},
	EventComplete: {
		Event:   EventComplete,
		From:    []ReservationStatus{ReservationStatusConfirmed},
		To:      ReservationStatusCompleted,
		Vehicle: VehicleEffectRelease,
	},
}

// TransitionFor returns the lifecycle row for an event
func TransitionFor(event ReservationEvent) (Transition, error) {
	t, ok := transitions[event]
	if !ok {
		return Transition{}, fmt.Errorf("%w: unknown reservation event %q", ErrValidation, event)
	}
	return t, nil
}

// Allows reports whether the transition may start from status
func (t Transition) Allows(status ReservationStatus) bool {
	return slices.Contains(t.From, status)
}

// Apply returns the target status, or ErrConflict when current is not a source state
func (t Transition) Apply(current ReservationStatus) (ReservationStatus, error) {
	if !t.Allows(current) {
		return "", fmt.Errorf("%w: cannot %s a reservation in state %s", ErrConflict, t.Event, current)
	}
	return t.To, nil
}

// FromStrings returns the source states as strings, for SQL array parameters
func (t Transition) FromStrings() []string {
	out := make([]string, len(t.From))
	for i, s := range t.From {
		out[i] = string(s)
	}
	return out
}

// ReservationPatch holds the columns a transition writes besides status
type ReservationPatch struct {
	PaymentStatus      *PaymentStatus
	PaymentDate        *time.Time
	ClearAutoCancel    bool
	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string
	RefundStatus       *RefundStatus
	CompletedAt        *time.Time
}

// ReservationFilter narrows ListReservations; zero values mean "any"
type ReservationFilter struct {
	Status     ReservationStatus
	VehicleID  int64
	CustomerID int64
	Page       int32
	PageSize   int32
}

// Apply mirrors a committed transition onto the in-memory copy
func (r *Reservation) Apply(t Transition, p ReservationPatch, at time.Time) {
	r.Status = t.To
	r.UpdatedAt = at
	if p.PaymentStatus != nil {
		r.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentDate != nil {
		r.PaymentDate = p.PaymentDate
	}
	if p.ClearAutoCancel {
		r.AutoCancelAt = nil
	}
	if p.CancelledAt != nil {
		r.CancelledAt = p.CancelledAt
	}
	if p.CancelledBy != nil {
		r.CancelledBy = *p.CancelledBy
	}
	if p.CancellationReason != nil {
		r.CancellationReason = *p.CancellationReason
	}
	if p.RefundStatus != nil {
		r.RefundStatus = *p.RefundStatus
	}
	if p.CompletedAt != nil {
		r.CompletedAt = p.CompletedAt
	}
}
