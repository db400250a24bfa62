// Package tests contains integration tests for login, logout, and token refresh
package tests

import (
	"context"
	"testing"

	"github.com/faqbnb/faqbnb-api/app/dto"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The captcha service is left nil so AdminLogin skips the challenge check.
// Captcha verification itself is covered in the services tests.
func newLoginFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.LoginFlow {
	return businessflow.NewLoginFlow(
		repository.NewUserRepository(testDB.DB),
		repository.NewUserSessionRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		newTestTokenService(t),
		nil,
		testDB.DB,
	)
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLoginFlow(t, testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SuccessfulLogin", func(t *testing.T) {
			_, user, err := fixtures.CreateTestAccount("Harbor House")
			require.NoError(t, err)

			result, err := flow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotEmpty(t, result.Token)
			assert.NotEmpty(t, result.Refresh)
			assert.Equal(t, user.Email, result.User.Email)
			assert.NotEmpty(t, result.Session.SessionToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)

			// Login stamps last_login_at
			var reloaded models.User
			err = testDB.DB.First(&reloaded, user.ID).Error
			require.NoError(t, err)
			assert.NotNil(t, reloaded.LastLoginAt)
		})

		t.Run("UnknownUserAndWrongPasswordAreIndistinguishable", func(t *testing.T) {
			_, user, err := fixtures.CreateTestAccount("Cliff Cabin")
			require.NoError(t, err)

			_, errUnknown := flow.Login(context.Background(), &dto.LoginRequest{
				Email:    "ghost@example.com",
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, errUnknown)

			_, errWrongPass := flow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, metadata)
			require.Error(t, errWrongPass)

			var unknownBiz, wrongPassBiz *businessflow.BusinessError
			require.ErrorAs(t, errUnknown, &unknownBiz)
			require.ErrorAs(t, errWrongPass, &wrongPassBiz)
			assert.Equal(t, "INVALID_CREDENTIALS", unknownBiz.Code)
			assert.Equal(t, unknownBiz.Code, wrongPassBiz.Code)
			assert.Equal(t, unknownBiz.Message, wrongPassBiz.Message)
		})

		t.Run("InactiveUserRejected", func(t *testing.T) {
			_, user, err := fixtures.CreateTestAccount("Dormant Den")
			require.NoError(t, err)

			user.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(user).Error)

			_, err = flow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserInactive(err))
		})

		t.Run("AdminLoginRejectsRegularUser", func(t *testing.T) {
			_, user, err := fixtures.CreateTestAccount("Not An Admin")
			require.NoError(t, err)

			_, err = flow.AdminLogin(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.Error(t, err)

			// A non-admin reads as invalid credentials, not as forbidden
			var bizErr *businessflow.BusinessError
			require.ErrorAs(t, err, &bizErr)
			assert.Equal(t, "INVALID_CREDENTIALS", bizErr.Code)
		})

		t.Run("AdminLoginSucceedsForAdmin", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			result, err := flow.AdminLogin(context.Background(), &dto.LoginRequest{
				Email:    admin.Email,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.UserRoleAdmin, result.User.Role)
			assert.Nil(t, result.User.AccountID)
		})

		t.Run("Logout", func(t *testing.T) {
			_, user, err := fixtures.CreateTestAccount("Leaving Lodge")
			require.NoError(t, err)

			loginResult, err := flow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.Logout(context.Background(), loginResult.Token, metadata)
			require.NoError(t, err)

			// The session row is deactivated, not deleted
			var session models.UserSession
			err = testDB.DB.Where("session_token = ?", loginResult.Token).First(&session).Error
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(session.IsActive))
		})

		t.Run("LogoutUnknownToken", func(t *testing.T) {
			_, err := flow.Logout(context.Background(), "no-such-token", metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		t.Run("RefreshRotatesSession", func(t *testing.T) {
			_, user, err := fixtures.CreateTestAccount("Rotating Retreat")
			require.NoError(t, err)

			loginResult, err := flow.Login(context.Background(), &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			refreshResult, err := flow.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: loginResult.Refresh,
			}, metadata)
			require.NoError(t, err)
			assert.NotEqual(t, loginResult.Token, refreshResult.Token)
			assert.NotEqual(t, loginResult.Refresh, refreshResult.Refresh)

			// The rotated-out refresh token no longer works
			_, err = flow.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: loginResult.Refresh,
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSessionExpired(err))
		})

		t.Run("RefreshUnknownToken", func(t *testing.T) {
			_, err := flow.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
				RefreshToken: "no-such-refresh-token",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
