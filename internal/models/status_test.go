package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripTransitions(t *testing.T) {
	tests := []struct {
		from, to TripStatus
		ok       bool
	}{
		{TripStatusDraft, TripStatusPublished, true},
		{TripStatusDraft, TripStatusArchived, true},
		{TripStatusDraft, TripStatusActive, false},
		{TripStatusPublished, TripStatusArchived, true},
		{TripStatusPublished, TripStatusActive, true},
		{TripStatusPublished, TripStatusDraft, false},
		{TripStatusArchived, TripStatusDraft, true},
		{TripStatusArchived, TripStatusPublished, false},
		{TripStatusActive, TripStatusCompleted, true},
		{TripStatusCompleted, TripStatusArchived, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRequestTransitions(t *testing.T) {
	assert.True(t, RequestStatusPending.CanTransitionTo(RequestStatusAccepted))
	assert.True(t, RequestStatusPending.CanTransitionTo(RequestStatusDeclined))
	assert.True(t, RequestStatusPending.CanTransitionTo(RequestStatusCancelled))
	assert.False(t, RequestStatusPending.CanTransitionTo(RequestStatusCompleted))
	assert.True(t, RequestStatusAccepted.CanTransitionTo(RequestStatusCompleted))
	assert.True(t, RequestStatusAccepted.CanTransitionTo(RequestStatusCancelled))
	assert.False(t, RequestStatusAccepted.CanTransitionTo(RequestStatusAccepted))
	assert.False(t, RequestStatusDeclined.CanTransitionTo(RequestStatusPending))
	assert.False(t, RequestStatus("unknown").Valid())
}

func TestBookingTransitions(t *testing.T) {
	assert.True(t, BookingStatusConfirmed.CanTransitionTo(BookingStatusInProgress))
	assert.True(t, BookingStatusInProgress.CanTransitionTo(BookingStatusCancelled))
	assert.False(t, BookingStatusCompleted.CanTransitionTo(BookingStatusCancelled))
	assert.False(t, BookingStatusCancelled.CanTransitionTo(BookingStatusConfirmed))
}

func TestErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("accept: %w", NewError(CodeCapacityExceeded, "свободно %d", 1))

	require.ErrorIs(t, err, ErrCapacityExceeded)
	assert.False(t, errors.Is(err, ErrInsufficientSeats))
	assert.Equal(t, CodeCapacityExceeded, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestPayMethodSet(t *testing.T) {
	set, err := NewPayMethodSet(PayMethodCard, PayMethodCash, PayMethodCard)
	require.NoError(t, err)
	assert.Equal(t, PayMethodSet{PayMethodCard, PayMethodCash}, set)
	assert.True(t, set.ContainsAll(PayMethodSet{PayMethodCash}))

	_, err = NewPayMethodSet("crypto")
	require.ErrorIs(t, err, ErrValidation)

	v, err := set.Value()
	require.NoError(t, err)
	assert.Equal(t, "{\"card\",\"cash\"}", v)

	var back PayMethodSet
	require.NoError(t, back.Scan([]byte("{card,cash}")))
	assert.Equal(t, set, back)
}

func TestTripCloneIsDeep(t *testing.T) {
	lat := 40.1
	trip := Trip{
		From:       Location{Latitude: &lat},
		PayMethods: PayMethodSet{PayMethodCash},
	}
	cp := trip.Clone()
	*cp.From.Latitude = 1
	cp.PayMethods[0] = PayMethodCard

	assert.Equal(t, 40.1, *trip.From.Latitude)
	assert.Equal(t, PayMethodCash, trip.PayMethods[0])
}
