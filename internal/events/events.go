package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents is the Kafka topic carrying booking lifecycle events.
const TopicBookingEvents = "booking.events"

// Event types published on TopicBookingEvents.
const (
	BookingRequested = "booking.requested"
	BookingApproved  = "booking.approved"
	BookingRejected  = "booking.rejected"
)

// BookingRequestedEvent is published when a booker requests an item.
type BookingRequestedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingApprovedEvent is published when the item owner approves a booking.
type BookingApprovedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingRejectedEvent is published when the item owner rejects a booking.
type BookingRejectedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ItemID     uuid.UUID `json:"item_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	BookerID   uuid.UUID `json:"booker_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
