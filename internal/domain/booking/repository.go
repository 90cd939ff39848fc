package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ref is a lightweight reference to a booking, surfaced on item views.
type Ref struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"booker_id"`
}

// BookingRepository defines the persistence contract for booking aggregates.
//
// The listing queries mirror the symbolic search states: exactly one of
// them is issued per listing call. All listings sort by booking start,
// descending, and paginate by page index and size.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByBooker retrieves all bookings requested by the given user.
	FindByBooker(ctx context.Context, bookerID uuid.UUID, page, size int) ([]*Booking, int64, error)

	// FindByBookerCurrent retrieves the booker's bookings whose interval contains now.
	FindByBookerCurrent(ctx context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*Booking, int64, error)

	// FindByBookerPast retrieves the booker's bookings that ended before now.
	FindByBookerPast(ctx context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*Booking, int64, error)

	// FindByBookerFuture retrieves the booker's bookings that start after now.
	FindByBookerFuture(ctx context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*Booking, int64, error)

	// FindByBookerAndStatus retrieves the booker's bookings in the given status.
	FindByBookerAndStatus(ctx context.Context, bookerID uuid.UUID, status Status, page, size int) ([]*Booking, int64, error)

	// FindByOwner retrieves all bookings on items owned by the given user.
	FindByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*Booking, int64, error)

	// FindByOwnerCurrent retrieves the owner's bookings whose interval contains now.
	FindByOwnerCurrent(ctx context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*Booking, int64, error)

	// FindByOwnerPast retrieves the owner's bookings that ended before now.
	FindByOwnerPast(ctx context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*Booking, int64, error)

	// FindByOwnerFuture retrieves the owner's bookings that start after now.
	FindByOwnerFuture(ctx context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*Booking, int64, error)

	// FindByOwnerAndStatus retrieves the owner's bookings in the given status.
	FindByOwnerAndStatus(ctx context.Context, ownerID uuid.UUID, status Status, page, size int) ([]*Booking, int64, error)

	// FindLastForItem retrieves the approved booking for the item with the
	// latest end among those already started, or nil if there is none.
	FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindNextForItem retrieves the soonest approved booking for the item
	// starting after now, or nil if there is none.
	FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
