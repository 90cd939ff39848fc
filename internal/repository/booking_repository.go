package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/itemshare/service-booking/internal/domain/booking"
	"github.com/itemshare/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt   time.Time `gorm:"not null;index"`
	EndAt     time.Time `gorm:"not null"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindByBooker retrieves all bookings requested by the given user.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID uuid.UUID, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).Where("booker_id = ?", bookerID)
	return r.paginate(q, page, size)
}

// FindByBookerCurrent retrieves the booker's bookings whose interval contains now.
func (r *GormBookingRepository) FindByBookerCurrent(ctx context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND start_at < ? AND end_at > ?", bookerID, now, now)
	return r.paginate(q, page, size)
}

// FindByBookerPast retrieves the booker's bookings that ended before now.
func (r *GormBookingRepository) FindByBookerPast(ctx context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND end_at < ?", bookerID, now)
	return r.paginate(q, page, size)
}

// FindByBookerFuture retrieves the booker's bookings that start after now.
func (r *GormBookingRepository) FindByBookerFuture(ctx context.Context, bookerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND start_at > ?", bookerID, now)
	return r.paginate(q, page, size)
}

// FindByBookerAndStatus retrieves the booker's bookings in the given status.
func (r *GormBookingRepository) FindByBookerAndStatus(ctx context.Context, bookerID uuid.UUID, status bookingDomain.Status, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND status = ?", bookerID, string(status))
	return r.paginate(q, page, size)
}

// FindByOwner retrieves all bookings on items owned by the given user.
func (r *GormBookingRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.ownerScope(ctx).Where("items.owner_id = ?", ownerID)
	return r.paginate(q, page, size)
}

// FindByOwnerCurrent retrieves the owner's bookings whose interval contains now.
func (r *GormBookingRepository) FindByOwnerCurrent(ctx context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.ownerScope(ctx).
		Where("items.owner_id = ? AND bookings.start_at < ? AND bookings.end_at > ?", ownerID, now, now)
	return r.paginate(q, page, size)
}

// FindByOwnerPast retrieves the owner's bookings that ended before now.
func (r *GormBookingRepository) FindByOwnerPast(ctx context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.ownerScope(ctx).
		Where("items.owner_id = ? AND bookings.end_at < ?", ownerID, now)
	return r.paginate(q, page, size)
}

// FindByOwnerFuture retrieves the owner's bookings that start after now.
func (r *GormBookingRepository) FindByOwnerFuture(ctx context.Context, ownerID uuid.UUID, now time.Time, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.ownerScope(ctx).
		Where("items.owner_id = ? AND bookings.start_at > ?", ownerID, now)
	return r.paginate(q, page, size)
}

// FindByOwnerAndStatus retrieves the owner's bookings in the given status.
func (r *GormBookingRepository) FindByOwnerAndStatus(ctx context.Context, ownerID uuid.UUID, status bookingDomain.Status, page, size int) ([]*bookingDomain.Booking, int64, error) {
	q := r.ownerScope(ctx).
		Where("items.owner_id = ? AND bookings.status = ?", ownerID, string(status))
	return r.paginate(q, page, size)
}

// FindLastForItem retrieves the approved booking for the item with the
// latest end among those already started. Absence is not an error.
func (r *GormBookingRepository) FindLastForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND status = ? AND start_at < ?", itemID, string(bookingDomain.StatusApproved), now).
		Order("end_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last booking for item: %w", err)
	}
	return toDomainBooking(&model), nil
}

// FindNextForItem retrieves the soonest approved booking for the item
// starting after now. Absence is not an error.
func (r *GormBookingRepository) FindNextForItem(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND status = ? AND start_at > ?", itemID, string(bookingDomain.StatusApproved), now).
		Order("start_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find next booking for item: %w", err)
	}
	return toDomainBooking(&model), nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"start_at":   model.StartAt,
			"end_at":     model.EndAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// ownerScope starts a query over bookings joined with the items table,
// for filtering by item owner.
func (r *GormBookingRepository) ownerScope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&BookingModel{}).
		Joins("JOIN items ON items.id = bookings.item_id")
}

// paginate counts the filtered set, then fetches one page ordered by
// booking start descending. page is a zero-based page index.
func (r *GormBookingRepository) paginate(q *gorm.DB, page, size int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := q.Session(&gorm.Session{}).
		Select("bookings.*").
		Order("bookings.start_at DESC").
		Offset(page * size).
		Limit(size).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bookings[i] = toDomainBooking(&m)
	}
	return bookings, total, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		BookerID:  bk.BookerID(),
		ItemID:    bk.ItemID(),
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookerID,
		m.ItemID,
		m.StartAt,
		m.EndAt,
		bookingDomain.Status(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
