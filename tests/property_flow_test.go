// Package tests contains integration tests for property management
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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPropertyFlow(testDB *testingutil.TestDB) businessflow.PropertyFlow {
	return businessflow.NewPropertyFlow(
		repository.NewPropertyRepository(testDB.DB),
		repository.NewItemRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func TestPropertyFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newPropertyFlow(testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		account, _, err := fixtures.CreateTestAccount("Coastal Stays")
		require.NoError(t, err)

		otherAccount, _, err := fixtures.CreateTestAccount("Mountain Stays")
		require.NoError(t, err)

		t.Run("CreateAndGet", func(t *testing.T) {
			nickname := "The Blue House"
			created, err := flow.Create(context.Background(), account.ID, &dto.CreatePropertyRequest{
				Name:         "Beach House",
				Nickname:     &nickname,
				PropertyType: models.PropertyTypeHouse,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Beach House", created.Property.Name)
			assert.NotEmpty(t, created.Property.UUID)

			propertyUUID, err := uuid.Parse(created.Property.UUID)
			require.NoError(t, err)

			fetched, err := flow.Get(context.Background(), account.ID, propertyUUID)
			require.NoError(t, err)
			assert.Equal(t, created.Property.ID, fetched.Property.ID)
			require.NotNil(t, fetched.Property.Nickname)
			assert.Equal(t, "The Blue House", *fetched.Property.Nickname)
		})

		t.Run("CreateRejectsUnknownType", func(t *testing.T) {
			_, err := flow.Create(context.Background(), account.ID, &dto.CreatePropertyRequest{
				Name:         "Weird Place",
				PropertyType: "castle",
			}, metadata)
			require.Error(t, err)
		})

		t.Run("ForeignPropertyReadsAsNotFound", func(t *testing.T) {
			property, err := fixtures.CreateTestProperty(otherAccount.ID, "Their Chalet")
			require.NoError(t, err)

			_, err = flow.Get(context.Background(), account.ID, property.UUID)
			require.Error(t, err)
			assert.True(t, businessflow.IsPropertyNotFound(err))
		})

		t.Run("ListIsScopedToAccount", func(t *testing.T) {
			_, err := fixtures.CreateTestProperty(account.ID, "City Flat")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProperty(otherAccount.ID, "Alpine Hut")
			require.NoError(t, err)

			result, err := flow.List(context.Background(), account.ID, &dto.PropertyListRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(len(result.Items)), result.Total)
			for _, p := range result.Items {
				assert.NotEqual(t, "Alpine Hut", p.Name)
			}
		})

		t.Run("Update", func(t *testing.T) {
			property, err := fixtures.CreateTestProperty(account.ID, "Old Name")
			require.NoError(t, err)

			newName := "New Name"
			newType := models.PropertyTypeCabin
			updated, err := flow.Update(context.Background(), account.ID, property.UUID, &dto.UpdatePropertyRequest{
				Name:         &newName,
				PropertyType: &newType,
			})
			require.NoError(t, err)
			assert.Equal(t, "New Name", updated.Property.Name)
			assert.Equal(t, models.PropertyTypeCabin, updated.Property.PropertyType)
		})

		t.Run("UpdateRejectsUnknownType", func(t *testing.T) {
			property, err := fixtures.CreateTestProperty(account.ID, "Typed Place")
			require.NoError(t, err)

			badType := "yurt"
			_, err = flow.Update(context.Background(), account.ID, property.UUID, &dto.UpdatePropertyRequest{
				PropertyType: &badType,
			})
			require.Error(t, err)
		})

		t.Run("DeleteRemovesItemsWithIt", func(t *testing.T) {
			property, err := fixtures.CreateTestProperty(account.ID, "Doomed Duplex")
			require.NoError(t, err)
			item, err := fixtures.CreateTestItem(property.ID, "Smart Lock")
			require.NoError(t, err)

			err = flow.Delete(context.Background(), account.ID, property.UUID, metadata)
			require.NoError(t, err)

			_, err = flow.Get(context.Background(), account.ID, property.UUID)
			require.Error(t, err)
			assert.True(t, businessflow.IsPropertyNotFound(err))

			var count int64
			err = testDB.DB.Model(&models.Item{}).Where("id = ?", item.ID).Count(&count).Error
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("ItemCountOnGet", func(t *testing.T) {
			property, err := fixtures.CreateTestProperty(account.ID, "Counted Cottage")
			require.NoError(t, err)
			_, err = fixtures.CreateTestItem(property.ID, "Thermostat")
			require.NoError(t, err)
			_, err = fixtures.CreateTestItem(property.ID, "Dishwasher")
			require.NoError(t, err)

			fetched, err := flow.Get(context.Background(), account.ID, property.UUID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), fetched.Property.ItemCount)
			assert.True(t, utils.IsTrue(account.IsActive))
		})

		return nil
	})
	require.NoError(t, err)
}
