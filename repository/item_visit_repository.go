// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/faqbnb/faqbnb-api/models"
	"gorm.io/gorm"
)

// ItemVisitRepositoryImpl implements ItemVisitRepository
type ItemVisitRepositoryImpl struct {
	*BaseRepository[models.ItemVisit, models.ItemVisitFilter]
}

// NewItemVisitRepository creates a new item visit repository
func NewItemVisitRepository(db *gorm.DB) ItemVisitRepository {
	return &ItemVisitRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ItemVisit, models.ItemVisitFilter](db),
	}
}

func (r *ItemVisitRepositoryImpl) CountSince(ctx context.Context, itemID uint, since time.Time) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.ItemVisit{}).
		Where("item_id = ? AND visited_at >= ?", itemID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ItemVisitRepositoryImpl) CountUniqueSessions(ctx context.Context, itemID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.ItemVisit{}).
		Where("item_id = ? AND session_id IS NOT NULL", itemID).
		Distinct("session_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// TopItemsByVisits ranks the given items by visit volume inside the window
func (r *ItemVisitRepositoryImpl) TopItemsByVisits(ctx context.Context, itemIDs []uint, since time.Time, limit int) ([]ItemVisitCount, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var counts []ItemVisitCount
	query := db.Model(&models.ItemVisit{}).
		Select("item_id, COUNT(*) AS count").
		Where("item_id IN ? AND visited_at >= ?", itemIDs, since).
		Group("item_id").
		Order("count DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&counts).Error; err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *ItemVisitRepositoryImpl) applyFilter(query *gorm.DB, filter models.ItemVisitFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}
	if filter.VisitedAfter != nil {
		query = query.Where("visited_at > ?", *filter.VisitedAfter)
	}
	if filter.VisitedBefore != nil {
		query = query.Where("visited_at < ?", *filter.VisitedBefore)
	}

	return query
}

// ByFilter retrieves visits based on filter criteria
func (r *ItemVisitRepositoryImpl) ByFilter(ctx context.Context, filter models.ItemVisitFilter, orderBy string, limit, offset int) ([]*models.ItemVisit, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ItemVisit{}), filter)

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

	var visits []*models.ItemVisit
	if err := query.Find(&visits).Error; err != nil {
		return nil, err
	}

	return visits, nil
}

// Count returns the number of visits matching the filter
func (r *ItemVisitRepositoryImpl) Count(ctx context.Context, filter models.ItemVisitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ItemVisit{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any visit matching the filter exists
func (r *ItemVisitRepositoryImpl) Exists(ctx context.Context, filter models.ItemVisitFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
