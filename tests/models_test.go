// Package tests contains unit tests for domain model behavior
package tests

import (
	"testing"
	"time"

	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/stretchr/testify/assert"
)

func TestAccessRequestStates(t *testing.T) {
	t.Run("PendingIsLive", func(t *testing.T) {
		request := models.AccessRequest{Status: models.AccessRequestStatusPending}
		assert.True(t, request.IsPending())
		assert.True(t, request.IsLive())
		assert.False(t, request.IsApproved())
		assert.False(t, request.IsRegistered())
		assert.False(t, request.IsDenied())
	})

	t.Run("ApprovedIsLive", func(t *testing.T) {
		request := models.AccessRequest{Status: models.AccessRequestStatusApproved}
		assert.True(t, request.IsApproved())
		assert.True(t, request.IsLive())
	})

	t.Run("DeniedAndRegisteredAreNotLive", func(t *testing.T) {
		denied := models.AccessRequest{Status: models.AccessRequestStatusDenied}
		registered := models.AccessRequest{Status: models.AccessRequestStatusRegistered}
		assert.False(t, denied.IsLive())
		assert.False(t, registered.IsLive())
	})
}

func TestAccessRequestValidators(t *testing.T) {
	assert.True(t, models.IsValidAccessRequestStatus(models.AccessRequestStatusPending))
	assert.True(t, models.IsValidAccessRequestStatus(models.AccessRequestStatusRegistered))
	assert.False(t, models.IsValidAccessRequestStatus("archived"))

	assert.True(t, models.IsValidAccessRequestSource(models.AccessRequestSourceBetaWaitlist))
	assert.True(t, models.IsValidAccessRequestSource(models.AccessRequestSourceAdminCreated))
	assert.False(t, models.IsValidAccessRequestSource("word_of_mouth"))
}

func TestUserIsAdmin(t *testing.T) {
	admin := models.User{Role: models.UserRoleAdmin}
	user := models.User{Role: models.UserRoleUser}
	assert.True(t, admin.IsAdmin())
	assert.False(t, user.IsAdmin())
}

func TestUserSessionValidity(t *testing.T) {
	t.Run("ActiveAndUnexpired", func(t *testing.T) {
		session := models.UserSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: time.Now().Add(1 * time.Hour),
		}
		assert.True(t, session.IsValid())
		assert.False(t, session.IsExpired())
	})

	t.Run("Expired", func(t *testing.T) {
		session := models.UserSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: time.Now().Add(-1 * time.Minute),
		}
		assert.True(t, session.IsExpired())
		assert.False(t, session.IsValid())
	})

	t.Run("Deactivated", func(t *testing.T) {
		session := models.UserSession{
			IsActive:  utils.ToPtr(false),
			ExpiresAt: time.Now().Add(1 * time.Hour),
		}
		assert.False(t, session.IsValid())
	})
}

func TestMailingListSubscriberState(t *testing.T) {
	active := models.MailingListSubscriber{}
	assert.True(t, active.IsSubscribed())

	gone := models.MailingListSubscriber{UnsubscribedAt: utils.UTCNowPtr()}
	assert.False(t, gone.IsSubscribed())
}

func TestPropertyTypeValidation(t *testing.T) {
	for _, propertyType := range []string{
		models.PropertyTypeHouse, models.PropertyTypeApartment, models.PropertyTypeCondo,
		models.PropertyTypeCabin, models.PropertyTypeOffice, models.PropertyTypeOther,
	} {
		assert.True(t, models.IsValidPropertyType(propertyType), propertyType)
	}
	assert.False(t, models.IsValidPropertyType("houseboat"))
	assert.False(t, models.IsValidPropertyType(""))
}

func TestLinkTypeValidation(t *testing.T) {
	for _, linkType := range []string{
		models.LinkTypeYouTube, models.LinkTypePDF, models.LinkTypeImage,
		models.LinkTypeText, models.LinkTypeLink,
	} {
		assert.True(t, models.IsValidLinkType(linkType), linkType)
	}
	assert.False(t, models.IsValidLinkType("vimeo"))
}

func TestReactionTypeValidation(t *testing.T) {
	for _, reactionType := range []string{
		models.ReactionTypeLike, models.ReactionTypeDislike,
		models.ReactionTypeLove, models.ReactionTypeConfused,
	} {
		assert.True(t, models.IsValidReactionType(reactionType), reactionType)
	}
	assert.False(t, models.IsValidReactionType("angry"))
}

func TestAuditLogHelpers(t *testing.T) {
	failed := models.AuditLog{Success: utils.ToPtr(false)}
	assert.True(t, failed.IsFailed())

	ok := models.AuditLog{Success: utils.ToPtr(true)}
	assert.False(t, ok.IsFailed())

	login := models.AuditLog{Action: models.AuditActionLoginFailed}
	assert.True(t, login.IsSecurityEvent())

	created := models.AuditLog{Action: models.AuditActionItemCreated}
	assert.False(t, created.IsSecurityEvent())
}
