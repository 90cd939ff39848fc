package item

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines the persistence contract for catalogue items.
type ItemRepository interface {
	// FindByID retrieves an item by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByOwnerID retrieves all items listed by the given owner,
	// ordered by creation time.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)

	// Save persists a new item.
	Save(ctx context.Context, item *Item) error

	// Update persists changes to an existing item.
	Update(ctx context.Context, item *Item) error
}
