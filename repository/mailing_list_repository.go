// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/utils"
	"gorm.io/gorm"
)

// MailingListRepositoryImpl implements MailingListRepository
type MailingListRepositoryImpl struct {
	*BaseRepository[models.MailingListSubscriber, models.MailingListSubscriberFilter]
}

// NewMailingListRepository creates a new mailing list repository
func NewMailingListRepository(db *gorm.DB) MailingListRepository {
	return &MailingListRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MailingListSubscriber, models.MailingListSubscriberFilter](db),
	}
}

func (r *MailingListRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.MailingListSubscriber, error) {
	db := r.getDB(ctx)

	var subscriber models.MailingListSubscriber
	err := db.Where("email = ?", utils.NormalizeEmail(email)).Last(&subscriber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &subscriber, nil
}

// Resubscribe reactivates a previously unsubscribed address
func (r *MailingListRepositoryImpl) Resubscribe(ctx context.Context, subscriberID uint, at time.Time) error {
	return r.update(ctx, subscriberID, map[string]any{
		"unsubscribed_at": nil,
		"subscribed_at":   at,
	})
}

func (r *MailingListRepositoryImpl) Unsubscribe(ctx context.Context, subscriberID uint, at time.Time) error {
	return r.update(ctx, subscriberID, map[string]any{
		"unsubscribed_at": at,
	})
}

func (r *MailingListRepositoryImpl) update(ctx context.Context, subscriberID uint, fields map[string]any) error {
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

	err = db.Model(&models.MailingListSubscriber{}).Where("id = ?", subscriberID).Updates(fields).Error
	return err
}

func (r *MailingListRepositoryImpl) applyFilter(query *gorm.DB, filter models.MailingListSubscriberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.SubscribedAfter != nil {
		query = query.Where("subscribed_at > ?", *filter.SubscribedAfter)
	}
	if filter.SubscribedBefore != nil {
		query = query.Where("subscribed_at < ?", *filter.SubscribedBefore)
	}
	if filter.IsSubscribed != nil {
		if *filter.IsSubscribed {
			query = query.Where("unsubscribed_at IS NULL")
		} else {
			query = query.Where("unsubscribed_at IS NOT NULL")
		}
	}

	return query
}

// ByFilter retrieves subscribers based on filter criteria
func (r *MailingListRepositoryImpl) ByFilter(ctx context.Context, filter models.MailingListSubscriberFilter, orderBy string, limit, offset int) ([]*models.MailingListSubscriber, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MailingListSubscriber{}), filter)

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

	var subscribers []*models.MailingListSubscriber
	if err := query.Find(&subscribers).Error; err != nil {
		return nil, err
	}

	return subscribers, nil
}

// Count returns the number of subscribers matching the filter
func (r *MailingListRepositoryImpl) Count(ctx context.Context, filter models.MailingListSubscriberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MailingListSubscriber{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any subscriber matching the filter exists
func (r *MailingListRepositoryImpl) Exists(ctx context.Context, filter models.MailingListSubscriberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
