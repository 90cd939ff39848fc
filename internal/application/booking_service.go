package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/itemshare/service-booking/internal/domain/booking"
	itemDomain "github.com/itemshare/service-booking/internal/domain/item"
	userDomain "github.com/itemshare/service-booking/internal/domain/user"
	"github.com/itemshare/service-booking/internal/events"
	"github.com/itemshare/service-booking/pkg/domain"
	"github.com/itemshare/service-booking/pkg/kafka"
)

const serviceName = "service-booking"

// EventPublisher publishes CloudEvents to a topic. Satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// UserSummaryDTO is the denormalized booker identity on a booking response.
type UserSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ItemSummaryDTO is the denormalized item identity on a booking response.
type ItemSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        uuid.UUID      `json:"id"`
	Start     time.Time      `json:"start"`
	End       time.Time      `json:"end"`
	Status    string         `json:"status"`
	Booker    UserSummaryDTO `json:"booker"`
	Item      ItemSummaryDTO `json:"item"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: creation validation, the owner approval workflow, and the
// time-window classification of listings.
type BookingService struct {
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.BookingRepository,
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		producer: producer,
		logger:   logger,
	}
}

// Create validates and persists a new booking request. The booking
// starts in the waiting state, pending the item owner's decision.
func (s *BookingService) Create(ctx context.Context, bookerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	booker, err := s.users.FindByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !req.Start.Before(req.End) {
		return nil, domain.NewValidationError("booking start must be before its end")
	}
	if !it.Available() {
		return nil, domain.NewValidationError(fmt.Sprintf("item %s is not available for booking", it.ID()))
	}
	if it.IsOwnedBy(bookerID) {
		return nil, domain.NewValidationError("owner can't book own item")
	}

	bk, err := bookingDomain.NewBooking(bookerID, req.ItemID, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishEvent(ctx, events.BookingRequested, bk.ID().String(), events.BookingRequestedEvent{
		BookingID:  bk.ID(),
		ItemID:     it.ID(),
		OwnerID:    it.OwnerID(),
		BookerID:   bookerID,
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("item_id", it.ID().String()),
		zap.String("booker_id", bookerID.String()),
	)

	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// ChangeStatus applies the item owner's decision to a waiting booking:
// approve=true moves it to approved, approve=false to rejected. Only the
// owner of the booked item may decide; anyone else is told the acting
// user does not exist rather than that they lack permission.
func (s *BookingService) ChangeStatus(ctx context.Context, actingUserID, bookingID uuid.UUID, approve bool) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if !it.IsOwnedBy(actingUserID) {
		return nil, domain.NewNotFoundError("User", actingUserID.String())
	}

	if approve {
		err = bk.Approve()
	} else {
		err = bk.Reject()
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}

	if approve {
		s.publishEvent(ctx, events.BookingApproved, bk.ID().String(), events.BookingApprovedEvent{
			BookingID:  bk.ID(),
			ItemID:     it.ID(),
			OwnerID:    it.OwnerID(),
			BookerID:   bk.BookerID(),
			OccurredAt: time.Now().UTC(),
		})
	} else {
		s.publishEvent(ctx, events.BookingRejected, bk.ID().String(), events.BookingRejectedEvent{
			BookingID:  bk.ID(),
			ItemID:     it.ID(),
			OwnerID:    it.OwnerID(),
			BookerID:   bk.BookerID(),
			OccurredAt: time.Now().UTC(),
		})
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("status", bk.Status().String()),
	)

	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// GetBooking retrieves a single booking, visible only to its booker or
// the owner of the booked item. Anyone else gets a not-found.
func (s *BookingService) GetBooking(ctx context.Context, viewerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	it, err := s.items.FindByID(ctx, bk.ItemID())
	if err != nil {
		return nil, err
	}

	if bk.BookerID() != viewerID && !it.IsOwnedBy(viewerID) {
		return nil, domain.NewNotFoundError("Booking", bookingID.String())
	}

	booker, err := s.users.FindByID(ctx, bk.BookerID())
	if err != nil {
		return nil, err
	}

	result := toBookingDTO(bk, booker, it)
	return &result, nil
}

// ListByBooker returns one page of the booker's bookings filtered by the
// symbolic search state, sorted by start descending.
func (s *BookingService) ListByBooker(ctx context.Context, bookerID uuid.UUID, state string, from, size int) (*domain.PaginatedResult[BookingDTO], error) {
	if _, err := s.users.FindByID(ctx, bookerID); err != nil {
		return nil, err
	}

	searchState, err := bookingDomain.ParseSearchState(state)
	if err != nil {
		return nil, err
	}
	page, err := pageIndex(from, size)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var (
		bookings []*bookingDomain.Booking
		total    int64
	)
	switch searchState {
	case bookingDomain.SearchAll:
		bookings, total, err = s.bookings.FindByBooker(ctx, bookerID, page, size)
	case bookingDomain.SearchCurrent:
		bookings, total, err = s.bookings.FindByBookerCurrent(ctx, bookerID, now, page, size)
	case bookingDomain.SearchPast:
		bookings, total, err = s.bookings.FindByBookerPast(ctx, bookerID, now, page, size)
	case bookingDomain.SearchFuture:
		bookings, total, err = s.bookings.FindByBookerFuture(ctx, bookerID, now, page, size)
	case bookingDomain.SearchWaiting:
		bookings, total, err = s.bookings.FindByBookerAndStatus(ctx, bookerID, bookingDomain.StatusWaiting, page, size)
	case bookingDomain.SearchRejected:
		bookings, total, err = s.bookings.FindByBookerAndStatus(ctx, bookerID, bookingDomain.StatusRejected, page, size)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by booker: %w", err)
	}

	dtos, err := s.toBookingDTOs(ctx, bookings)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(dtos, total, page, size)
	return &result, nil
}

// ListByOwner returns one page of the bookings placed on the owner's
// items, filtered by the symbolic search state, sorted by start
// descending. An owner with no listed items gets a not-found.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID uuid.UUID, state string, from, size int) (*domain.PaginatedResult[BookingDTO], error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	owned, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner items: %w", err)
	}
	if len(owned) == 0 {
		return nil, domain.NewNotFoundError("Items", ownerID.String())
	}

	searchState, err := bookingDomain.ParseSearchState(state)
	if err != nil {
		return nil, err
	}
	page, err := pageIndex(from, size)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var (
		bookings []*bookingDomain.Booking
		total    int64
	)
	switch searchState {
	case bookingDomain.SearchAll:
		bookings, total, err = s.bookings.FindByOwner(ctx, ownerID, page, size)
	case bookingDomain.SearchCurrent:
		bookings, total, err = s.bookings.FindByOwnerCurrent(ctx, ownerID, now, page, size)
	case bookingDomain.SearchPast:
		bookings, total, err = s.bookings.FindByOwnerPast(ctx, ownerID, now, page, size)
	case bookingDomain.SearchFuture:
		bookings, total, err = s.bookings.FindByOwnerFuture(ctx, ownerID, now, page, size)
	case bookingDomain.SearchWaiting:
		bookings, total, err = s.bookings.FindByOwnerAndStatus(ctx, ownerID, bookingDomain.StatusWaiting, page, size)
	case bookingDomain.SearchRejected:
		bookings, total, err = s.bookings.FindByOwnerAndStatus(ctx, ownerID, bookingDomain.StatusRejected, page, size)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by owner: %w", err)
	}

	dtos, err := s.toBookingDTOs(ctx, bookings)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(dtos, total, page, size)
	return &result, nil
}

// LastForItem returns a reference to the approved booking for the item
// with the latest end among those already started, or nil if none.
func (s *BookingService) LastForItem(ctx context.Context, itemID uuid.UUID) (*bookingDomain.Ref, error) {
	bk, err := s.bookings.FindLastForItem(ctx, itemID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if bk == nil {
		return nil, nil
	}
	return &bookingDomain.Ref{ID: bk.ID(), BookerID: bk.BookerID()}, nil
}

// NextForItem returns a reference to the soonest approved booking for
// the item starting after now, or nil if none.
func (s *BookingService) NextForItem(ctx context.Context, itemID uuid.UUID) (*bookingDomain.Ref, error) {
	bk, err := s.bookings.FindNextForItem(ctx, itemID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if bk == nil {
		return nil, nil
	}
	return &bookingDomain.Ref{ID: bk.ID(), BookerID: bk.BookerID()}, nil
}

// --- Helpers ---

// pageIndex maps the offset-style from/size parameters onto a page
// index: from/size when from is positive, page zero otherwise. The
// mapping is lossy for offsets that are not size-aligned; clients have
// depended on it since the first release of the listing API, so it is
// kept as is.
func pageIndex(from, size int) (int, error) {
	if from < 0 {
		return 0, domain.NewValidationError("from must not be negative")
	}
	if size <= 0 {
		return 0, domain.NewValidationError("size must be positive")
	}
	if from > 0 {
		return from / size, nil
	}
	return 0, nil
}

// toBookingDTOs denormalizes booker and item identity onto each booking,
// caching lookups across the page.
func (s *BookingService) toBookingDTOs(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	itemCache := make(map[uuid.UUID]*itemDomain.Item)
	userCache := make(map[uuid.UUID]*userDomain.User)

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		it, ok := itemCache[bk.ItemID()]
		if !ok {
			var err error
			it, err = s.items.FindByID(ctx, bk.ItemID())
			if err != nil {
				return nil, err
			}
			itemCache[bk.ItemID()] = it
		}

		booker, ok := userCache[bk.BookerID()]
		if !ok {
			var err error
			booker, err = s.users.FindByID(ctx, bk.BookerID())
			if err != nil {
				return nil, err
			}
			userCache[bk.BookerID()] = booker
		}

		dtos[i] = toBookingDTO(bk, booker, it)
	}
	return dtos, nil
}

func toBookingDTO(bk *bookingDomain.Booking, booker *userDomain.User, it *itemDomain.Item) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  bk.Start(),
		End:    bk.End(),
		Status: string(bk.Status()),
		Booker: UserSummaryDTO{
			ID:   booker.ID(),
			Name: booker.Name(),
		},
		Item: ItemSummaryDTO{
			ID:   it.ID(),
			Name: it.Name(),
		},
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(serviceName, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
