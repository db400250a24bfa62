// Package tests contains integration tests for item management
package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemFlow(testDB *testingutil.TestDB) businessflow.ItemFlow {
	return businessflow.NewItemFlow(
		repository.NewPropertyRepository(testDB.DB),
		repository.NewItemRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		services.NewQRService("https://faqbnb.com"),
		testDB.DB,
	)
}

func TestItemFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newItemFlow(testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		account, _, err := fixtures.CreateTestAccount("Item Tests")
		require.NoError(t, err)
		property, err := fixtures.CreateTestProperty(account.ID, "Testing Townhouse")
		require.NoError(t, err)

		otherAccount, _, err := fixtures.CreateTestAccount("Someone Else")
		require.NoError(t, err)

		t.Run("CreateMintsPublicIDAndQRURL", func(t *testing.T) {
			description := "Front door smart lock"
			created, err := flow.Create(context.Background(), account.ID, property.UUID, &dto.CreateItemRequest{
				Name:        "Smart Lock",
				Description: &description,
				ResourceLinks: []dto.ResourceLinkInput{
					{LinkType: models.LinkTypeYouTube, Title: "Setup video", URL: "https://youtube.com/watch?v=abc"},
					{LinkType: models.LinkTypePDF, Title: "Manual", URL: "https://cdn.example.com/lock.pdf", DisplayOrder: 1},
				},
			}, metadata)
			require.NoError(t, err)

			publicID, err := uuid.Parse(created.Item.PublicID)
			require.NoError(t, err)
			require.NotNil(t, created.Item.QRCodeURL)
			assert.Equal(t, "https://faqbnb.com/item/"+publicID.String(), *created.Item.QRCodeURL)
			assert.Len(t, created.Item.ResourceLinks, 2)
		})

		t.Run("CreateRejectsUnknownLinkType", func(t *testing.T) {
			_, err := flow.Create(context.Background(), account.ID, property.UUID, &dto.CreateItemRequest{
				Name: "Bad Links",
				ResourceLinks: []dto.ResourceLinkInput{
					{LinkType: "gopher", Title: "Nope", URL: "gopher://example.com"},
				},
			}, metadata)
			require.Error(t, err)
		})

		t.Run("CreateOnForeignPropertyFails", func(t *testing.T) {
			_, err := flow.Create(context.Background(), otherAccount.ID, property.UUID, &dto.CreateItemRequest{
				Name: "Sneaky Item",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsPropertyNotFound(err))
		})

		t.Run("ListByPropertyInDisplayOrder", func(t *testing.T) {
			orderedProperty, err := fixtures.CreateTestProperty(account.ID, "Ordered Outpost")
			require.NoError(t, err)

			_, err = flow.Create(context.Background(), account.ID, orderedProperty.UUID, &dto.CreateItemRequest{
				Name: "Second", DisplayOrder: 2,
			}, metadata)
			require.NoError(t, err)
			_, err = flow.Create(context.Background(), account.ID, orderedProperty.UUID, &dto.CreateItemRequest{
				Name: "First", DisplayOrder: 1,
			}, metadata)
			require.NoError(t, err)

			list, err := flow.ListByProperty(context.Background(), account.ID, orderedProperty.UUID)
			require.NoError(t, err)
			require.Len(t, list.Items, 2)
			assert.Equal(t, "First", list.Items[0].Name)
			assert.Equal(t, "Second", list.Items[1].Name)
		})

		t.Run("UpdateReplacesLinkSet", func(t *testing.T) {
			created, err := flow.Create(context.Background(), account.ID, property.UUID, &dto.CreateItemRequest{
				Name: "Coffee Machine",
				ResourceLinks: []dto.ResourceLinkInput{
					{LinkType: models.LinkTypePDF, Title: "Old manual", URL: "https://cdn.example.com/old.pdf"},
				},
			}, metadata)
			require.NoError(t, err)

			publicID, err := uuid.Parse(created.Item.PublicID)
			require.NoError(t, err)

			newName := "Espresso Machine"
			newLinks := []dto.ResourceLinkInput{
				{LinkType: models.LinkTypeYouTube, Title: "How to brew", URL: "https://youtube.com/watch?v=brew"},
			}
			updated, err := flow.Update(context.Background(), account.ID, publicID, &dto.UpdateItemRequest{
				Name:          &newName,
				ResourceLinks: &newLinks,
			})
			require.NoError(t, err)
			assert.Equal(t, "Espresso Machine", updated.Item.Name)
			require.Len(t, updated.Item.ResourceLinks, 1)
			assert.Equal(t, models.LinkTypeYouTube, updated.Item.ResourceLinks[0].LinkType)

			// The public ID and QR URL never change
			assert.Equal(t, created.Item.PublicID, updated.Item.PublicID)
			assert.Equal(t, *created.Item.QRCodeURL, *updated.Item.QRCodeURL)
		})

		t.Run("UpdateWithNilLinksKeepsThem", func(t *testing.T) {
			created, err := flow.Create(context.Background(), account.ID, property.UUID, &dto.CreateItemRequest{
				Name: "Router",
				ResourceLinks: []dto.ResourceLinkInput{
					{LinkType: models.LinkTypeText, Title: "WiFi password", URL: "https://cdn.example.com/wifi.txt"},
				},
			}, metadata)
			require.NoError(t, err)

			publicID, err := uuid.Parse(created.Item.PublicID)
			require.NoError(t, err)

			newName := "WiFi Router"
			updated, err := flow.Update(context.Background(), account.ID, publicID, &dto.UpdateItemRequest{
				Name: &newName,
			})
			require.NoError(t, err)
			assert.Len(t, updated.Item.ResourceLinks, 1)
		})

		t.Run("ForeignItemReadsAsNotFound", func(t *testing.T) {
			theirProperty, err := fixtures.CreateTestProperty(otherAccount.ID, "Their House")
			require.NoError(t, err)
			theirItem, err := fixtures.CreateTestItem(theirProperty.ID, "Their TV")
			require.NoError(t, err)

			_, err = flow.Get(context.Background(), account.ID, theirItem.PublicID)
			require.Error(t, err)
			assert.True(t, businessflow.IsItemNotFound(err))
		})

		t.Run("DeleteRemovesLinks", func(t *testing.T) {
			created, err := flow.Create(context.Background(), account.ID, property.UUID, &dto.CreateItemRequest{
				Name: "Disposable",
				ResourceLinks: []dto.ResourceLinkInput{
					{LinkType: models.LinkTypeLink, Title: "Docs", URL: "https://example.com/docs"},
				},
			}, metadata)
			require.NoError(t, err)

			publicID, err := uuid.Parse(created.Item.PublicID)
			require.NoError(t, err)

			err = flow.Delete(context.Background(), account.ID, publicID, metadata)
			require.NoError(t, err)

			_, err = flow.Get(context.Background(), account.ID, publicID)
			require.Error(t, err)
			assert.True(t, businessflow.IsItemNotFound(err))

			var linkCount int64
			err = testDB.DB.Model(&models.ItemResourceLink{}).Where("item_id = ?", created.Item.ID).Count(&linkCount).Error
			require.NoError(t, err)
			assert.Zero(t, linkCount)
		})

		t.Run("QRURLUsesConfiguredBase", func(t *testing.T) {
			created, err := flow.Create(context.Background(), account.ID, property.UUID, &dto.CreateItemRequest{
				Name: "Base URL Check",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, created.Item.QRCodeURL)
			assert.True(t, strings.HasPrefix(*created.Item.QRCodeURL, "https://faqbnb.com/item/"))
		})

		return nil
	})
	require.NoError(t, err)
}
