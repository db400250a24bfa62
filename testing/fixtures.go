// Package testing provides test utilities and database setup for testing the property management system
package testing

import (
	"fmt"
	"math/rand"
	"time"

	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates an account with an owning user already attached.
func (tf *TestFixtures) CreateTestAccount(name string) (*models.Account, *models.User, error) {
	account := &models.Account{
		UUID:     uuid.New(),
		Name:     name,
		IsActive: utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test account: %w", err)
	}

	owner, err := tf.CreateTestUser(&account.ID, models.UserRoleUser)
	if err != nil {
		return nil, nil, err
	}

	account.OwnerID = &owner.ID
	if err := tf.DB.DB.Save(account).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to set account owner: %w", err)
	}

	return account, owner, nil
}

// CreateTestUser creates a user with the password "TestPass123!".
func (tf *TestFixtures) CreateTestUser(accountID *uint, role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	user := &models.User{
		UUID:            uuid.New(),
		AccountID:       accountID,
		Email:           fmt.Sprintf("jane.host.%s@example.com", randomDigits),
		FullName:        "Jane Host",
		PasswordHash:    string(hashedPassword),
		Role:            role,
		IsActive:        utils.ToPtr(true),
		IsEmailVerified: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestAdmin creates an admin user with no account.
func (tf *TestFixtures) CreateTestAdmin() (*models.User, error) {
	return tf.CreateTestUser(nil, models.UserRoleAdmin)
}

// CreateTestProperty creates a property under the given account.
func (tf *TestFixtures) CreateTestProperty(accountID uint, name string) (*models.Property, error) {
	address := "12 Seaside Lane"
	property := &models.Property{
		UUID:         uuid.New(),
		AccountID:    accountID,
		Name:         name,
		Address:      &address,
		PropertyType: models.PropertyTypeHouse,
	}

	if err := tf.DB.DB.Create(property).Error; err != nil {
		return nil, fmt.Errorf("failed to create test property: %w", err)
	}

	return property, nil
}

// CreateTestItem creates an item with a single resource link.
func (tf *TestFixtures) CreateTestItem(propertyID uint, name string) (*models.Item, error) {
	description := "How to use the " + name
	item := &models.Item{
		PublicID:    uuid.New(),
		PropertyID:  propertyID,
		Name:        name,
		Description: &description,
		ResourceLinks: []models.ItemResourceLink{
			{
				LinkType:     models.LinkTypePDF,
				Title:        name + " manual",
				URL:          "https://cdn.example.com/manuals/" + uuid.NewString() + ".pdf",
				DisplayOrder: 0,
			},
		},
	}

	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test item: %w", err)
	}

	return item, nil
}

// CreateTestAccessRequest creates an access request in the given status.
// Approved requests get an access code assigned the way the approval flow does.
func (tf *TestFixtures) CreateTestAccessRequest(email, status, source string) (*models.AccessRequest, error) {
	name := "Sam Requester"
	request := &models.AccessRequest{
		RequesterEmail: email,
		RequesterName:  &name,
		Status:         status,
		Source:         source,
		RequestDate:    utils.UTCNow(),
		UpdatedAt:      utils.UTCNow(),
	}

	if status == models.AccessRequestStatusApproved || status == models.AccessRequestStatusRegistered {
		code, err := businessflow.GenerateAccessCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate access code: %w", err)
		}
		approvedAt := utils.UTCNow()
		request.AccessCode = &code
		request.ApprovalDate = &approvedAt
	}
	if status == models.AccessRequestStatusRegistered {
		registeredAt := utils.UTCNow()
		request.RegistrationDate = &registeredAt
	}

	if err := tf.DB.DB.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create test access request: %w", err)
	}

	return request, nil
}

// CreateTestSession creates an active session for the user.
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken := uuid.NewString() + uuid.NewString()
	refreshToken := uuid.NewString() + uuid.NewString()
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestVisit records a public visit against the item.
func (tf *TestFixtures) CreateTestVisit(itemID uint, sessionID string, visitedAt time.Time) (*models.ItemVisit, error) {
	ipAddress := "203.0.113.7"
	userAgent := "Test Visitor Agent"

	visit := &models.ItemVisit{
		ItemID:    itemID,
		SessionID: &sessionID,
		IPAddress: &ipAddress,
		UserAgent: &userAgent,
		VisitedAt: visitedAt,
	}

	if err := tf.DB.DB.Create(visit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test visit: %w", err)
	}

	return visit, nil
}

// CreateTestReaction records an anonymous reaction against the item.
func (tf *TestFixtures) CreateTestReaction(itemID uint, sessionID, reactionType string) (*models.ItemReaction, error) {
	reaction := &models.ItemReaction{
		ItemID:       itemID,
		SessionID:    sessionID,
		ReactionType: reactionType,
	}

	if err := tf.DB.DB.Create(reaction).Error; err != nil {
		return nil, fmt.Errorf("failed to create test reaction: %w", err)
	}

	return reaction, nil
}

// CreateTestSubscriber adds an address to the mailing list.
func (tf *TestFixtures) CreateTestSubscriber(email string) (*models.MailingListSubscriber, error) {
	subscriber := &models.MailingListSubscriber{
		Email:        email,
		Source:       "website",
		SubscribedAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(subscriber).Error; err != nil {
		return nil, fmt.Errorf("failed to create test subscriber: %w", err)
	}

	return subscriber, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
