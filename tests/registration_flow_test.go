// Package tests contains integration tests for registration with access codes
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) services.TokenService {
	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour, "test-issuer", "test-audience",
		false, "", "", "test-secret-key-for-signing-tokens")
	require.NoError(t, err)
	return tokenService
}

func newRegistrationFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.RegistrationFlow {
	return businessflow.NewRegistrationFlow(
		repository.NewAccessRequestRepository(testDB.DB),
		repository.NewAccountRepository(testDB.DB),
		repository.NewUserRepository(testDB.DB),
		repository.NewUserSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		newTestTokenService(t),
		businessflow.NewNoopRateLimiter(),
		testDB.DB,
	)
}

func registerRequest(accessCode, email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		AccessCode:      accessCode,
		Email:           email,
		FullName:        "Jane Host",
		AccountName:     "Seaside Rentals",
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
	}
}

func TestRegistrationFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newRegistrationFlow(t, testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			request, err := fixtures.CreateTestAccessRequest(
				"newcomer@example.com", models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)
			require.NotNil(t, request.AccessCode)

			result, err := flow.Register(context.Background(), registerRequest(*request.AccessCode, "newcomer@example.com"), metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Token)
			assert.NotEmpty(t, result.Refresh)
			assert.Equal(t, "newcomer@example.com", result.User.Email)
			assert.Equal(t, models.UserRoleUser, result.User.Role)
			require.NotNil(t, result.User.AccountName)
			assert.Equal(t, "Seaside Rentals", *result.User.AccountName)
			assert.NotEmpty(t, result.Session.SessionToken)

			// The user owns the freshly minted account
			var account models.Account
			err = testDB.DB.Where("name = ?", "Seaside Rentals").First(&account).Error
			require.NoError(t, err)
			require.NotNil(t, account.OwnerID)
			assert.Equal(t, result.User.ID, *account.OwnerID)

			// The request is now registered and linked to the new user
			var consumed models.AccessRequest
			err = testDB.DB.First(&consumed, request.ID).Error
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusRegistered, consumed.Status)
			require.NotNil(t, consumed.UserID)
			assert.Equal(t, result.User.ID, *consumed.UserID)
			assert.NotNil(t, consumed.AccountID)
			assert.NotNil(t, consumed.RegistrationDate)
		})

		t.Run("CodeCannotBeUsedTwice", func(t *testing.T) {
			request, err := fixtures.CreateTestAccessRequest(
				"one.shot@example.com", models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.Register(context.Background(), registerRequest(*request.AccessCode, "one.shot@example.com"), metadata)
			require.NoError(t, err)

			_, err = flow.Register(context.Background(), registerRequest(*request.AccessCode, "one.shot@example.com"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessCodeAlreadyUsed(err))
		})

		t.Run("UnknownCode", func(t *testing.T) {
			_, err := flow.Register(context.Background(), registerRequest("AAAA00000000", "nobody@example.com"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessCodeNotFound(err))
		})

		t.Run("EmailMustMatchRequest", func(t *testing.T) {
			request, err := fixtures.CreateTestAccessRequest(
				"intended@example.com", models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.Register(context.Background(), registerRequest(*request.AccessCode, "impostor@example.com"), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailMismatch(err))

			// The failed attempt must not burn the code
			var unchanged models.AccessRequest
			err = testDB.DB.First(&unchanged, request.ID).Error
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusApproved, unchanged.Status)
		})

		t.Run("ExistingEmailRejected", func(t *testing.T) {
			existing, err := fixtures.CreateTestUser(nil, models.UserRoleUser)
			require.NoError(t, err)

			request, err := fixtures.CreateTestAccessRequest(
				existing.Email, models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.Register(context.Background(), registerRequest(*request.AccessCode, existing.Email), metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("RegistrationEmailIsNormalized", func(t *testing.T) {
			request, err := fixtures.CreateTestAccessRequest(
				"case.fold@example.com", models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			result, err := flow.Register(context.Background(), registerRequest(*request.AccessCode, "Case.Fold@Example.COM"), metadata)
			require.NoError(t, err)
			assert.Equal(t, "case.fold@example.com", result.User.Email)
			assert.True(t, utils.IsTrue(result.User.IsActive))
		})

		return nil
	})
	require.NoError(t, err)
}
