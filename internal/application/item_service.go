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
	"github.com/itemshare/service-booking/pkg/domain"
)

// CreateItemRequest is the request DTO for listing a new item.
type CreateItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Available   *bool  `json:"available" binding:"required"`
}

// UpdateItemRequest is the request DTO for a partial item update.
type UpdateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}

// ItemDTO is the API response representation of an item. LastBooking and
// NextBooking are populated only when the item is rendered for its owner.
type ItemDTO struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Available   bool               `json:"available"`
	LastBooking *bookingDomain.Ref `json:"last_booking,omitempty"`
	NextBooking *bookingDomain.Ref `json:"next_booking,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ItemService implements use cases for catalogue item management.
type ItemService struct {
	items    itemDomain.ItemRepository
	users    userDomain.UserRepository
	bookings bookingDomain.BookingRepository
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.ItemRepository,
	users userDomain.UserRepository,
	bookings bookingDomain.BookingRepository,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{items: items, users: users, bookings: bookings, logger: logger}
}

// CreateItem lists a new item for the given owner.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	it, err := itemDomain.NewItem(ownerID, req.Name, req.Description, *req.Available)
	if err != nil {
		return nil, err
	}

	if err := s.items.Save(ctx, it); err != nil {
		s.logger.Error("failed to create item", zap.Error(err))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("item listed",
		zap.String("item_id", it.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toItemDTO(it)
	return &result, nil
}

// UpdateItem applies a partial update to an item, verifying ownership.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !it.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("you do not own this item")
	}

	it.Update(req.Name, req.Description, req.Available)
	if err := s.items.Update(ctx, it); err != nil {
		s.logger.Error("failed to update item", zap.Error(err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("item updated", zap.String("item_id", itemID.String()))
	result := toItemDTO(it)
	return &result, nil
}

// GetItem returns a single item. When the viewer is the item's owner the
// response carries references to the item's last and next approved
// bookings; other viewers never see them.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID uuid.UUID) (*ItemDTO, error) {
	it, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := toItemDTO(it)
	if it.IsOwnedBy(viewerID) {
		if err := s.attachBookingRefs(ctx, &result); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// GetMyItems returns all items listed by the given owner, each carrying
// its last and next booking references.
func (s *ItemService) GetMyItems(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
		if err := s.attachBookingRefs(ctx, &dtos[i]); err != nil {
			return nil, err
		}
	}
	return dtos, nil
}

func (s *ItemService) attachBookingRefs(ctx context.Context, dto *ItemDTO) error {
	now := time.Now().UTC()

	last, err := s.bookings.FindLastForItem(ctx, dto.ID, now)
	if err != nil {
		return err
	}
	if last != nil {
		dto.LastBooking = &bookingDomain.Ref{ID: last.ID(), BookerID: last.BookerID()}
	}

	next, err := s.bookings.FindNextForItem(ctx, dto.ID, now)
	if err != nil {
		return err
	}
	if next != nil {
		dto.NextBooking = &bookingDomain.Ref{ID: next.ID(), BookerID: next.BookerID()}
	}
	return nil
}

func toItemDTO(it *itemDomain.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}
