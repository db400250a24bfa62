// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/faqbnb/faqbnb-api/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for accounts
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Account, error)
	UpdateOwner(ctx context.Context, accountID, ownerID uint) error
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.User, error)
	ListByAccount(ctx context.Context, accountID uint) ([]*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	DeactivateByUser(ctx context.Context, userID uint) error
	DeactivateByToken(ctx context.Context, token string) error
}

// PropertyRepository defines operations for properties
type PropertyRepository interface {
	Repository[models.Property, models.PropertyFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Property, error)
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, propertyID uint) error
}

// ItemRepository defines operations for items and their resource links
type ItemRepository interface {
	Repository[models.Item, models.ItemFilter]
	ByPublicID(ctx context.Context, publicID uuid.UUID) (*models.Item, error)
	ByPublicIDWithLinks(ctx context.Context, publicID uuid.UUID) (*models.Item, error)
	ListByProperty(ctx context.Context, propertyID uint) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, itemID uint) error
	ReplaceResourceLinks(ctx context.Context, itemID uint, links []*models.ItemResourceLink) error
}

// ItemVisitRepository defines operations for item visit events
type ItemVisitRepository interface {
	Repository[models.ItemVisit, models.ItemVisitFilter]
	CountSince(ctx context.Context, itemID uint, since time.Time) (int64, error)
	CountUniqueSessions(ctx context.Context, itemID uint) (int64, error)
	TopItemsByVisits(ctx context.Context, itemIDs []uint, since time.Time, limit int) ([]ItemVisitCount, error)
}

// ItemVisitCount pairs an item with its visit count for ranking queries
type ItemVisitCount struct {
	ItemID uint  `json:"item_id"`
	Count  int64 `json:"count"`
}

// ItemReactionRepository defines operations for item reactions
type ItemReactionRepository interface {
	Repository[models.ItemReaction, models.ItemReactionFilter]
	CountByType(ctx context.Context, itemID uint) (map[string]int64, error)
	DeleteBySession(ctx context.Context, itemID uint, sessionID, reactionType string) error
}

// AccessRequestRepository defines operations for access requests
type AccessRequestRepository interface {
	Repository[models.AccessRequest, models.AccessRequestFilter]
	ByAccessCode(ctx context.Context, code string) (*models.AccessRequest, error)
	LiveByEmail(ctx context.Context, email string) (*models.AccessRequest, error)
	MarkApproved(ctx context.Context, requestID uint, code string, at time.Time, notes *string) error
	MarkDenied(ctx context.Context, requestID uint, at time.Time, notes *string) error
	UpdateNotes(ctx context.Context, requestID uint, notes string) error
	// ConsumeByCode atomically flips an approved request to registered.
	// Returns the number of rows updated: zero means the code was not in
	// the approved state at update time.
	ConsumeByCode(ctx context.Context, code string, userID, accountID *uint, at time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// MailingListRepository defines operations for mailing list subscribers
type MailingListRepository interface {
	Repository[models.MailingListSubscriber, models.MailingListSubscriberFilter]
	ByEmail(ctx context.Context, email string) (*models.MailingListSubscriber, error)
	Resubscribe(ctx context.Context, subscriberID uint, at time.Time) error
	Unsubscribe(ctx context.Context, subscriberID uint, at time.Time) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListRecentByUser(ctx context.Context, userID uint, limit int) ([]*models.AuditLog, error)
}
