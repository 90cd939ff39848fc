package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/itemshare/service-booking/pkg/domain"
)

// Item is an entry in the sharing catalogue: something an owner has
// listed for others to borrow.
type Item struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	name        string
	description string
	available   bool

	createdAt time.Time
	updatedAt time.Time
}

// NewItem creates a new Item owned by the given user.
func NewItem(ownerID uuid.UUID, name, description string, available bool) (*Item, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("item description is required")
	}

	now := time.Now().UTC()
	return &Item{
		id:          uuid.New(),
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructItem rebuilds an Item from persistence data (no validation).
func ReconstructItem(id, ownerID uuid.UUID, name, description string, available bool, createdAt, updatedAt time.Time) *Item {
	return &Item{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		description: description,
		available:   available,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the item's unique identifier.
func (i *Item) ID() uuid.UUID { return i.id }

// OwnerID returns the id of the user who listed the item.
func (i *Item) OwnerID() uuid.UUID { return i.ownerID }

// Name returns the item's display name.
func (i *Item) Name() string { return i.name }

// Description returns the item's description.
func (i *Item) Description() string { return i.description }

// Available reports whether the item can currently be booked.
func (i *Item) Available() bool { return i.available }

// CreatedAt returns the creation timestamp.
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// IsOwnedBy reports whether the given user listed this item.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.ownerID == userID
}

// Update applies a partial update; empty strings and nil leave fields unchanged.
func (i *Item) Update(name, description string, available *bool) {
	if name != "" {
		i.name = name
	}
	if description != "" {
		i.description = description
	}
	if available != nil {
		i.available = *available
	}
	i.updatedAt = time.Now().UTC()
}
