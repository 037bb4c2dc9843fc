package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlaps(t *testing.T) {
	at := func(d int) time.Time { return time.Date(2025, 3, d, 9, 0, 0, 0, time.UTC) }

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"Inside", at(1), at(5), at(3), at(4), true},
		{"BackToBack", at(1), at(5), at(5), at(8), false},
		{"BackToBackReversed", at(5), at(8), at(1), at(5), false},
		{"Straddles", at(1), at(5), at(4), at(8), true},
		{"Disjoint", at(1), at(2), at(6), at(8), false},
		{"Identical", at(1), at(5), at(1), at(5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		event   ReservationEvent
		from    ReservationStatus
		want    ReservationStatus
		vehicle VehicleEffect
	}{
		{EventMarkPaid, ReservationStatusPendingNoPayment, ReservationStatusPendingWithPayment, VehicleEffectNone},
		{EventExpire, ReservationStatusPendingNoPayment, ReservationStatusExpired, VehicleEffectNone},
		{EventExpire, ReservationStatusPendingWithPayment, ReservationStatusExpired, VehicleEffectNone},
		{EventIssueContract, ReservationStatusPendingWithPayment, ReservationStatusContractGenerated, VehicleEffectNone},
		{EventConfirm, ReservationStatusContractGenerated, ReservationStatusConfirmed, VehicleEffectHold},
		{EventCancel, ReservationStatusPendingWithPayment, ReservationStatusCancelled, VehicleEffectRelease},
		{EventCancel, ReservationStatusContractGenerated, ReservationStatusCancelled, VehicleEffectRelease},
		{EventCancel, ReservationStatusConfirmed, ReservationStatusCancelled, VehicleEffectRelease},
		{EventComplete, ReservationStatusConfirmed, ReservationStatusCompleted, VehicleEffectRelease},
	}
	for _, tt := range tests {
		t.Run(string(tt.event)+"/"+string(tt.from), func(t *testing.T) {
			tr, err := TransitionFor(tt.event)
			require.NoError(t, err)
			got, err := tr.Apply(tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.vehicle, tr.Vehicle)
		})
	}
}

func TestTransition_RejectsOtherStates(t *testing.T) {
	tests := []struct {
		event ReservationEvent
		from  ReservationStatus
	}{
		{EventMarkPaid, ReservationStatusPendingWithPayment},
		{EventConfirm, ReservationStatusPendingWithPayment},
		{EventCancel, ReservationStatusPendingNoPayment},
		{EventCancel, ReservationStatusCancelled},
		{EventComplete, ReservationStatusContractGenerated},
		{EventExpire, ReservationStatusConfirmed},
		{EventIssueContract, ReservationStatusConfirmed},
	}
	for _, tt := range tests {
		tr, err := TransitionFor(tt.event)
		require.NoError(t, err)
		_, err = tr.Apply(tt.from)
		assert.ErrorIs(t, err, ErrConflict, "%s from %s", tt.event, tt.from)
	}

	_, err := TransitionFor("teleport")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	for _, terminal := range []ReservationStatus{ReservationStatusCompleted, ReservationStatusExpired, ReservationStatusCancelled} {
		for event := range transitions {
			tr, _ := TransitionFor(event)
			assert.False(t, tr.Allows(terminal), "%s must not leave %s", event, terminal)
		}
	}
}

func TestReservation_Apply(t *testing.T) {
	deadline := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	paidAt := deadline.Add(-time.Hour)
	paid := PaymentStatusPaid
	r := &Reservation{Status: ReservationStatusPendingNoPayment, PaymentStatus: PaymentStatusUnpaid, AutoCancelAt: &deadline}

	tr, _ := TransitionFor(EventMarkPaid)
	r.Apply(tr, ReservationPatch{PaymentStatus: &paid, PaymentDate: &paidAt, ClearAutoCancel: true}, paidAt)

	assert.Equal(t, ReservationStatusPendingWithPayment, r.Status)
	assert.Equal(t, PaymentStatusPaid, r.PaymentStatus)
	assert.Equal(t, &paidAt, r.PaymentDate)
	assert.Nil(t, r.AutoCancelAt)
	assert.Equal(t, paidAt, r.UpdatedAt)
}

func TestReservationStatus(t *testing.T) {
	assert.True(t, ReservationStatusConfirmed.IsActive())
	assert.True(t, ReservationStatusCompleted.IsActive())
	assert.False(t, ReservationStatusExpired.IsActive())
	assert.False(t, ReservationStatusCancelled.IsActive())

	assert.True(t, ReservationStatusPendingWithPayment.IsValid())
	assert.False(t, ReservationStatus("con_pago").IsValid())
}
