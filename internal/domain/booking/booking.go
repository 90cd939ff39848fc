package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/itemshare/service-booking/pkg/domain"
)

// Booking is the aggregate root for the booking domain: a reservation
// of an item by a user for a time interval, with an approval status.
type Booking struct {
	id       uuid.UUID
	bookerID uuid.UUID
	itemID   uuid.UUID
	start    time.Time
	end      time.Time
	status   Status

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking in the waiting state.
func NewBooking(bookerID, itemID uuid.UUID, start, end time.Time) (*Booking, error) {
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if !start.Before(end) {
		return nil, domain.NewValidationError("booking start must be before its end")
	}

	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		bookerID:  bookerID,
		itemID:    itemID,
		start:     start,
		end:       end,
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookerID uuid.UUID,
	itemID uuid.UUID,
	start time.Time,
	end time.Time,
	status Status,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		bookerID:  bookerID,
		itemID:    itemID,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookerID returns the id of the user who requested the booking.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// ItemID returns the id of the booked item.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// Start returns the start of the booked interval.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the booked interval.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Approve transitions the booking from waiting to approved.
func (b *Booking) Approve() error {
	if !b.status.CanTransitionTo(StatusApproved) {
		return domain.NewInvalidStateError(string(b.status), string(StatusApproved))
	}
	b.status = StatusApproved
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reject transitions the booking from waiting to rejected.
func (b *Booking) Reject() error {
	if !b.status.CanTransitionTo(StatusRejected) {
		return domain.NewInvalidStateError(string(b.status), string(StatusRejected))
	}
	b.status = StatusRejected
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
