package menurepo

import (
	"context"
	"errors"

	"tableorder/internal/core/domain/model/catalog"
	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMenuRepository implements ports.MenuCatalog using GORM.
type GormMenuRepository struct {
	db *gorm.DB
}

// NewGormMenuRepository creates a new GORM menu repository.
func NewGormMenuRepository(db *gorm.DB) *GormMenuRepository {
	return &GormMenuRepository{db: db}
}

// GetMenuItem reads the current state of a menu item, inactive ones included.
func (r *GormMenuRepository) GetMenuItem(ctx context.Context, id kernel.UUID) (*catalog.MenuItem, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto MenuItemDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("menu item", id.String())
		}
		return nil, errs.NewPersistenceError("get menu item", err)
	}

	return toDomain(dto)
}

// Save inserts the item or overwrites its name, price and availability.
func (r *GormMenuRepository) Save(ctx context.Context, item *catalog.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	dto := fromDomain(item)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "active"}),
		}).
		Create(&dto).Error
	if err != nil {
		return errs.NewPersistenceError("save menu item", err)
	}

	return nil
}

// List returns every menu item ordered by name.
func (r *GormMenuRepository) List(ctx context.Context) ([]*catalog.MenuItem, error) {
	var dtos []MenuItemDTO
	if err := r.db.WithContext(ctx).Order("name").Find(&dtos).Error; err != nil {
		return nil, errs.NewPersistenceError("list menu items", err)
	}

	items := make([]*catalog.MenuItem, 0, len(dtos))
	for _, dto := range dtos {
		item, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}
