// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/utils"
	"gorm.io/gorm"
)

// UserSessionRepositoryImpl implements UserSessionRepository
type UserSessionRepositoryImpl struct {
	*BaseRepository[models.UserSession, models.UserSessionFilter]
}

// NewUserSessionRepository creates a new user session repository
func NewUserSessionRepository(db *gorm.DB) UserSessionRepository {
	return &UserSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UserSession, models.UserSessionFilter](db),
	}
}

func (r *UserSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.UserSession, error) {
	db := r.getDB(ctx)

	var session models.UserSession
	err := db.Preload("User").Preload("User.Account").Where("session_token = ?", token).Last(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *UserSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error) {
	db := r.getDB(ctx)

	var session models.UserSession
	err := db.Preload("User").Preload("User.Account").Where("refresh_token = ?", token).Last(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// DeactivateByUser marks every active session of the user as inactive
func (r *UserSessionRepositoryImpl) DeactivateByUser(ctx context.Context, userID uint) error {
	return r.deactivate(ctx, "user_id = ? AND is_active = ?", userID, true)
}

// DeactivateByToken marks the session holding the token as inactive
func (r *UserSessionRepositoryImpl) DeactivateByToken(ctx context.Context, token string) error {
	return r.deactivate(ctx, "session_token = ?", token)
}

func (r *UserSessionRepositoryImpl) deactivate(ctx context.Context, cond string, args ...any) error {
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

	err = db.Model(&models.UserSession{}).
		Where(cond, args...).
		Updates(map[string]any{
			"is_active":        false,
			"last_accessed_at": utils.UTCNow(),
		}).Error
	return err
}

func (r *UserSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.UserSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CorrelationID != nil {
		query = query.Where("correlation_id = ?", *filter.CorrelationID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IPAddress != nil {
		query = query.Where("ip_address = ?", *filter.IPAddress)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}
	if filter.AccessedAfter != nil {
		query = query.Where("last_accessed_at > ?", *filter.AccessedAfter)
	}
	if filter.AccessedBefore != nil {
		query = query.Where("last_accessed_at < ?", *filter.AccessedBefore)
	}
	if filter.IsExpired != nil {
		if *filter.IsExpired {
			query = query.Where("expires_at <= ?", utils.UTCNow())
		} else {
			query = query.Where("expires_at > ?", utils.UTCNow())
		}
	}

	return query
}

// ByFilter retrieves sessions based on filter criteria
func (r *UserSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.UserSessionFilter, orderBy string, limit, offset int) ([]*models.UserSession, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.UserSession{}), filter)

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

	var sessions []*models.UserSession
	if err := query.Find(&sessions).Error; err != nil {
		return nil, err
	}

	return sessions, nil
}

// Count returns the number of sessions matching the filter
func (r *UserSessionRepositoryImpl) Count(ctx context.Context, filter models.UserSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.UserSession{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any session matching the filter exists
func (r *UserSessionRepositoryImpl) Exists(ctx context.Context, filter models.UserSessionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
