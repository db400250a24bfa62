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

// AccessRequestRepositoryImpl implements AccessRequestRepository
type AccessRequestRepositoryImpl struct {
	*BaseRepository[models.AccessRequest, models.AccessRequestFilter]
}

// NewAccessRequestRepository creates a new access request repository
func NewAccessRequestRepository(db *gorm.DB) AccessRequestRepository {
	return &AccessRequestRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AccessRequest, models.AccessRequestFilter](db),
	}
}

func (r *AccessRequestRepositoryImpl) ByAccessCode(ctx context.Context, code string) (*models.AccessRequest, error) {
	db := r.getDB(ctx)

	var request models.AccessRequest
	err := db.Where("access_code = ?", code).Last(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &request, nil
}

// LiveByEmail returns the pending or approved request holding the email slot, if any
func (r *AccessRequestRepositoryImpl) LiveByEmail(ctx context.Context, email string) (*models.AccessRequest, error) {
	db := r.getDB(ctx)

	var request models.AccessRequest
	err := db.Where("requester_email = ? AND status IN ?",
		utils.NormalizeEmail(email),
		[]string{models.AccessRequestStatusPending, models.AccessRequestStatusApproved}).
		Last(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &request, nil
}

// MarkApproved assigns the access code and moves the request to approved
func (r *AccessRequestRepositoryImpl) MarkApproved(ctx context.Context, requestID uint, code string, at time.Time, notes *string) error {
	fields := map[string]any{
		"status":        models.AccessRequestStatusApproved,
		"access_code":   code,
		"approval_date": at,
		"updated_at":    at,
	}
	if notes != nil {
		fields["notes"] = *notes
	}
	return r.update(ctx, requestID, fields)
}

// MarkDenied moves the request to denied, a terminal state
func (r *AccessRequestRepositoryImpl) MarkDenied(ctx context.Context, requestID uint, at time.Time, notes *string) error {
	fields := map[string]any{
		"status":     models.AccessRequestStatusDenied,
		"updated_at": at,
	}
	if notes != nil {
		fields["notes"] = *notes
	}
	return r.update(ctx, requestID, fields)
}

func (r *AccessRequestRepositoryImpl) UpdateNotes(ctx context.Context, requestID uint, notes string) error {
	return r.update(ctx, requestID, map[string]any{
		"notes":      notes,
		"updated_at": utils.UTCNow(),
	})
}

// ConsumeByCode atomically flips an approved request to registered. The
// conditional WHERE on status is the whole one-time guarantee: a second
// consume of the same code matches zero rows.
func (r *AccessRequestRepositoryImpl) ConsumeByCode(ctx context.Context, code string, userID, accountID *uint, at time.Time) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	res := db.Model(&models.AccessRequest{}).
		Where("access_code = ? AND status = ?", code, models.AccessRequestStatusApproved).
		Updates(map[string]any{
			"status":            models.AccessRequestStatusRegistered,
			"registration_date": at,
			"user_id":           userID,
			"account_id":        accountID,
			"updated_at":        at,
		})
	err = res.Error
	if err != nil {
		return 0, err
	}

	return res.RowsAffected, nil
}

// CountByStatus aggregates request counts per status for the admin dashboard
func (r *AccessRequestRepositoryImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	db := r.getDB(ctx)

	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.AccessRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func (r *AccessRequestRepositoryImpl) update(ctx context.Context, requestID uint, fields map[string]any) error {
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

	err = db.Model(&models.AccessRequest{}).Where("id = ?", requestID).Updates(fields).Error
	return err
}

func (r *AccessRequestRepositoryImpl) applyFilter(query *gorm.DB, filter models.AccessRequestFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.RequesterEmail != nil {
		query = query.Where("requester_email = ?", *filter.RequesterEmail)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.AccessCode != nil {
		query = query.Where("access_code = ?", *filter.AccessCode)
	}
	if filter.RequestedAfter != nil {
		query = query.Where("request_date > ?", *filter.RequestedAfter)
	}
	if filter.RequestedBefore != nil {
		query = query.Where("request_date < ?", *filter.RequestedBefore)
	}

	return query
}

// ByFilter retrieves access requests based on filter criteria
func (r *AccessRequestRepositoryImpl) ByFilter(ctx context.Context, filter models.AccessRequestFilter, orderBy string, limit, offset int) ([]*models.AccessRequest, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AccessRequest{}), filter)

	if orderBy == "" {
		orderBy = "request_date DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var requests []*models.AccessRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

// Count returns the number of access requests matching the filter
func (r *AccessRequestRepositoryImpl) Count(ctx context.Context, filter models.AccessRequestFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AccessRequest{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any access request matching the filter exists
func (r *AccessRequestRepositoryImpl) Exists(ctx context.Context, filter models.AccessRequestFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
