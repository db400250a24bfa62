// Package tests contains integration tests for profiles and the admin account list
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

func newAccountFlow(testDB *testingutil.TestDB) businessflow.AccountFlow {
	return businessflow.NewAccountFlow(
		repository.NewAccountRepository(testDB.DB),
		repository.NewUserRepository(testDB.DB),
		repository.NewPropertyRepository(testDB.DB),
	)
}

func TestAccountFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAccountFlow(testDB)

		t.Run("ProfileWithAccount", func(t *testing.T) {
			account, user, err := fixtures.CreateTestAccount("Profile Props")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProperty(account.ID, "Counted Condo")
			require.NoError(t, err)

			profile, err := flow.Profile(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, profile.User.Email)
			require.NotNil(t, profile.Account)
			assert.Equal(t, "Profile Props", profile.Account.Name)
			assert.Equal(t, int64(1), profile.Account.PropertyCount)
			require.NotNil(t, profile.Account.OwnerEmail)
			assert.Equal(t, user.Email, *profile.Account.OwnerEmail)
		})

		t.Run("AdminProfileHasNoAccount", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			profile, err := flow.Profile(context.Background(), admin.ID)
			require.NoError(t, err)
			assert.Equal(t, models.UserRoleAdmin, profile.User.Role)
			assert.Nil(t, profile.Account)
		})

		t.Run("ProfileUnknownUser", func(t *testing.T) {
			_, err := flow.Profile(context.Background(), 999999)
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("ListAccounts", func(t *testing.T) {
			_, _, err := fixtures.CreateTestAccount("Listed One")
			require.NoError(t, err)
			inactive, _, err := fixtures.CreateTestAccount("Listed Two")
			require.NoError(t, err)

			inactive.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(inactive).Error)

			all, err := flow.ListAccounts(context.Background(), &dto.AccountListRequest{})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, all.Total, int64(2))

			active, err := flow.ListAccounts(context.Background(), &dto.AccountListRequest{OnlyActive: true})
			require.NoError(t, err)
			assert.Less(t, active.Total, all.Total)
			for _, a := range active.Items {
				assert.True(t, utils.IsTrue(a.IsActive))
			}
		})

		t.Run("ListAccountsPagination", func(t *testing.T) {
			page, err := flow.ListAccounts(context.Background(), &dto.AccountListRequest{Page: 1, PageSize: 1})
			require.NoError(t, err)
			assert.Len(t, page.Items, 1)
			assert.Equal(t, 1, page.Page)
			assert.Equal(t, 1, page.PageSize)
		})

		return nil
	})
	require.NoError(t, err)
}
