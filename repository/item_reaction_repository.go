// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/faqbnb/faqbnb-api/models"
	"gorm.io/gorm"
)

// ItemReactionRepositoryImpl implements ItemReactionRepository
type ItemReactionRepositoryImpl struct {
	*BaseRepository[models.ItemReaction, models.ItemReactionFilter]
}

// NewItemReactionRepository creates a new item reaction repository
func NewItemReactionRepository(db *gorm.DB) ItemReactionRepository {
	return &ItemReactionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ItemReaction, models.ItemReactionFilter](db),
	}
}

// CountByType aggregates reaction counts per reaction type for an item
func (r *ItemReactionRepositoryImpl) CountByType(ctx context.Context, itemID uint) (map[string]int64, error) {
	db := r.getDB(ctx)

	var rows []struct {
		ReactionType string
		Count        int64
	}
	err := db.Model(&models.ItemReaction{}).
		Select("reaction_type, COUNT(*) AS count").
		Where("item_id = ?", itemID).
		Group("reaction_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ReactionType] = row.Count
	}

	return counts, nil
}

// DeleteBySession removes one session's reaction of the given type from an item
func (r *ItemReactionRepositoryImpl) DeleteBySession(ctx context.Context, itemID uint, sessionID, reactionType string) error {
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

	err = db.Where("item_id = ? AND session_id = ? AND reaction_type = ?", itemID, sessionID, reactionType).
		Delete(&models.ItemReaction{}).Error
	return err
}

func (r *ItemReactionRepositoryImpl) applyFilter(query *gorm.DB, filter models.ItemReactionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}
	if filter.ReactionType != nil {
		query = query.Where("reaction_type = ?", *filter.ReactionType)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves reactions based on filter criteria
func (r *ItemReactionRepositoryImpl) ByFilter(ctx context.Context, filter models.ItemReactionFilter, orderBy string, limit, offset int) ([]*models.ItemReaction, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ItemReaction{}), filter)

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

	var reactions []*models.ItemReaction
	if err := query.Find(&reactions).Error; err != nil {
		return nil, err
	}

	return reactions, nil
}

// Count returns the number of reactions matching the filter
func (r *ItemReactionRepositoryImpl) Count(ctx context.Context, filter models.ItemReactionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ItemReaction{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any reaction matching the filter exists
func (r *ItemReactionRepositoryImpl) Exists(ctx context.Context, filter models.ItemReactionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
