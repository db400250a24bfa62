// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRepositoryImpl implements ItemRepository
type ItemRepositoryImpl struct {
	*BaseRepository[models.Item, models.ItemFilter]
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &ItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Item, models.ItemFilter](db),
	}
}

func (r *ItemRepositoryImpl) ByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Item, error) {
	db := r.getDB(ctx)

	var item models.Item
	err := db.Where("public_id = ?", publicID).Last(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &item, nil
}

// ByPublicIDWithLinks loads the item plus its resource links ordered for display
func (r *ItemRepositoryImpl) ByPublicIDWithLinks(ctx context.Context, publicID uuid.UUID) (*models.Item, error) {
	db := r.getDB(ctx)

	var item models.Item
	err := db.Preload("ResourceLinks", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC, id ASC")
	}).Where("public_id = ?", publicID).Last(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &item, nil
}

func (r *ItemRepositoryImpl) ListByProperty(ctx context.Context, propertyID uint) ([]*models.Item, error) {
	return r.ByFilter(ctx, models.ItemFilter{PropertyID: &propertyID}, "display_order ASC, id ASC", 0, 0)
}

// Update persists the mutable fields of an item
func (r *ItemRepositoryImpl) Update(ctx context.Context, item *models.Item) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":          item.Name,
			"description":   item.Description,
			"qr_code_url":   item.QRCodeURL,
			"display_order": item.DisplayOrder,
			"updated_at":    utils.UTCNow(),
		}).Error
	return err
}

// Delete removes an item together with its resource links, visits and reactions
func (r *ItemRepositoryImpl) Delete(ctx context.Context, itemID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if err = db.Where("item_id = ?", itemID).Delete(&models.ItemResourceLink{}).Error; err != nil {
		return err
	}
	if err = db.Where("item_id = ?", itemID).Delete(&models.ItemVisit{}).Error; err != nil {
		return err
	}
	if err = db.Where("item_id = ?", itemID).Delete(&models.ItemReaction{}).Error; err != nil {
		return err
	}

	err = db.Delete(&models.Item{}, itemID).Error
	return err
}

// ReplaceResourceLinks drops the item's links and writes the new set in one transaction
func (r *ItemRepositoryImpl) ReplaceResourceLinks(ctx context.Context, itemID uint, links []*models.ItemResourceLink) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	if err = db.Where("item_id = ?", itemID).Delete(&models.ItemResourceLink{}).Error; err != nil {
		return err
	}

	for _, link := range links {
		link.ItemID = itemID
	}
	if len(links) > 0 {
		err = db.Create(&links).Error
	}
	return err
}

func (r *ItemRepositoryImpl) applyFilter(query *gorm.DB, filter models.ItemFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		query = query.Where("public_id = ?", *filter.PublicID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves items based on filter criteria
func (r *ItemRepositoryImpl) ByFilter(ctx context.Context, filter models.ItemFilter, orderBy string, limit, offset int) ([]*models.Item, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Item{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var items []*models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

// Count returns the number of items matching the filter
func (r *ItemRepositoryImpl) Count(ctx context.Context, filter models.ItemFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Item{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any item matching the filter exists
func (r *ItemRepositoryImpl) Exists(ctx context.Context, filter models.ItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
