package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	itemDomain "github.com/itemshare/service-booking/internal/domain/item"
	"github.com/itemshare/service-booking/pkg/domain"
)

// ItemModel is the GORM model for the items table.
type ItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	Available   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (ItemModel) TableName() string { return "items" }

// GormItemRepository implements ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id.String())
		}
		return nil, err
	}
	return toItemDomain(&model), nil
}

func (r *GormItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*itemDomain.Item, error) {
	var models []ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]*itemDomain.Item, len(models))
	for i, m := range models {
		items[i] = toItemDomain(&m)
	}
	return items, nil
}

func (r *GormItemRepository) Save(ctx context.Context, it *itemDomain.Item) error {
	model := toItemModel(it)
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *GormItemRepository) Update(ctx context.Context, it *itemDomain.Item) error {
	model := toItemModel(it)
	result := r.db.WithContext(ctx).
		Model(&ItemModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"description": model.Description,
			"available":   model.Available,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Item", model.ID.String())
	}
	return nil
}

// --- Conversions ---

func toItemModel(it *itemDomain.Item) *ItemModel {
	return &ItemModel{
		ID:          it.ID(),
		OwnerID:     it.OwnerID(),
		Name:        it.Name(),
		Description: it.Description(),
		Available:   it.Available(),
		CreatedAt:   it.CreatedAt(),
		UpdatedAt:   it.UpdatedAt(),
	}
}

func toItemDomain(m *ItemModel) *itemDomain.Item {
	return itemDomain.ReconstructItem(
		m.ID, m.OwnerID,
		m.Name, m.Description,
		m.Available,
		m.CreatedAt, m.UpdatedAt,
	)
}
