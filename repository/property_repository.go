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

// PropertyRepositoryImpl implements PropertyRepository
type PropertyRepositoryImpl struct {
	*BaseRepository[models.Property, models.PropertyFilter]
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &PropertyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Property, models.PropertyFilter](db),
	}
}

func (r *PropertyRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	db := r.getDB(ctx)

	var property models.Property
	err := db.Where("uuid = ?", id).Last(&property).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &property, nil
}

func (r *PropertyRepositoryImpl) ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.Property, error) {
	return r.ByFilter(ctx, models.PropertyFilter{AccountID: &accountID}, "created_at DESC", limit, offset)
}

// Update persists the mutable fields of a property
func (r *PropertyRepositoryImpl) Update(ctx context.Context, property *models.Property) error {
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

	err = db.Model(&models.Property{}).
		Where("id = ?", property.ID).
		Updates(map[string]any{
			"name":          property.Name,
			"nickname":      property.Nickname,
			"address":       property.Address,
			"property_type": property.PropertyType,
			"updated_at":    utils.UTCNow(),
		}).Error
	return err
}

// Delete removes a property and its items. Resource links, visits and
// reactions of those items go with them so no orphan rows survive.
func (r *PropertyRepositoryImpl) Delete(ctx context.Context, propertyID uint) error {
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

	itemIDs := db.Model(&models.Item{}).Select("id").Where("property_id = ?", propertyID)
	if err = db.Where("item_id IN (?)", itemIDs).Delete(&models.ItemResourceLink{}).Error; err != nil {
		return err
	}
	if err = db.Where("item_id IN (?)", itemIDs).Delete(&models.ItemVisit{}).Error; err != nil {
		return err
	}
	if err = db.Where("item_id IN (?)", itemIDs).Delete(&models.ItemReaction{}).Error; err != nil {
		return err
	}
	if err = db.Where("property_id = ?", propertyID).Delete(&models.Item{}).Error; err != nil {
		return err
	}

	err = db.Delete(&models.Property{}, propertyID).Error
	return err
}

func (r *PropertyRepositoryImpl) applyFilter(query *gorm.DB, filter models.PropertyFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.PropertyType != nil {
		query = query.Where("property_type = ?", *filter.PropertyType)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves properties based on filter criteria
func (r *PropertyRepositoryImpl) ByFilter(ctx context.Context, filter models.PropertyFilter, orderBy string, limit, offset int) ([]*models.Property, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Property{}), filter)

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

	var properties []*models.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, err
	}

	return properties, nil
}

// Count returns the number of properties matching the filter
func (r *PropertyRepositoryImpl) Count(ctx context.Context, filter models.PropertyFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Property{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any property matching the filter exists
func (r *PropertyRepositoryImpl) Exists(ctx context.Context, filter models.PropertyFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
