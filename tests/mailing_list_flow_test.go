// Package tests contains integration tests for the mailing list and beta waitlist
package tests

import (
	"context"
	"testing"

	"github.com/faqbnb/faqbnb-api/app/dto"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMailingListFlow(testDB *testingutil.TestDB) businessflow.MailingListFlow {
	return businessflow.NewMailingListFlow(
		repository.NewMailingListRepository(testDB.DB),
		repository.NewAccessRequestRepository(testDB.DB),
		businessflow.NewNoopRateLimiter(),
		testDB.DB,
	)
}

func TestMailingListFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newMailingListFlow(testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SubscribeJoinsBetaWaitlist", func(t *testing.T) {
			result, err := flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "eager@example.com",
			}, metadata)
			require.NoError(t, err)
			assert.True(t, result.Subscribed)

			// A first-time subscriber also gets a pending waitlist request
			var request models.AccessRequest
			err = testDB.DB.Where("requester_email = ?", "eager@example.com").First(&request).Error
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusPending, request.Status)
			assert.Equal(t, models.AccessRequestSourceBetaWaitlist, request.Source)
		})

		t.Run("SubscribeLeavesOpenRequestAlone", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			_, err := fixtures.CreateTestAccessRequest(
				"already.asked@example.com", models.AccessRequestStatusPending, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "already.asked@example.com",
			}, metadata)
			require.NoError(t, err)

			var count int64
			err = testDB.DB.Model(&models.AccessRequest{}).
				Where("requester_email = ?", "already.asked@example.com").Count(&count).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("DoubleSubscribeRejected", func(t *testing.T) {
			_, err := flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "twice@example.com",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "twice@example.com",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadySubscribed(err))
		})

		t.Run("UnsubscribeAndResubscribe", func(t *testing.T) {
			_, err := flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "onoff@example.com",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.Unsubscribe(context.Background(), &dto.UnsubscribeRequest{
				Email: "onoff@example.com",
			})
			require.NoError(t, err)

			var subscriber models.MailingListSubscriber
			err = testDB.DB.Where("email = ?", "onoff@example.com").First(&subscriber).Error
			require.NoError(t, err)
			assert.NotNil(t, subscriber.UnsubscribedAt)

			// Resubscribing reactivates the same row
			_, err = flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "onoff@example.com",
			}, metadata)
			require.NoError(t, err)

			err = testDB.DB.Where("email = ?", "onoff@example.com").First(&subscriber).Error
			require.NoError(t, err)
			assert.Nil(t, subscriber.UnsubscribedAt)

			var rowCount int64
			err = testDB.DB.Model(&models.MailingListSubscriber{}).
				Where("email = ?", "onoff@example.com").Count(&rowCount).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), rowCount)
		})

		t.Run("UnsubscribeUnknownEmail", func(t *testing.T) {
			_, err := flow.Unsubscribe(context.Background(), &dto.UnsubscribeRequest{
				Email: "stranger@example.com",
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsNotSubscribed(err))
		})

		t.Run("ListOnlyActive", func(t *testing.T) {
			_, err := flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "active@example.com",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email: "inactive@example.com",
			}, metadata)
			require.NoError(t, err)
			_, err = flow.Unsubscribe(context.Background(), &dto.UnsubscribeRequest{
				Email: "inactive@example.com",
			})
			require.NoError(t, err)

			result, err := flow.List(context.Background(), &dto.SubscriberListRequest{OnlyActive: true})
			require.NoError(t, err)
			for _, subscriber := range result.Items {
				assert.Nil(t, subscriber.UnsubscribedAt)
			}
		})

		t.Run("SubscribeKeepsCustomSource", func(t *testing.T) {
			source := "landing_page"
			_, err := flow.Subscribe(context.Background(), &dto.SubscribeRequest{
				Email:  "sourced@example.com",
				Source: &source,
			}, metadata)
			require.NoError(t, err)

			var subscriber models.MailingListSubscriber
			err = testDB.DB.Where("email = ?", "sourced@example.com").First(&subscriber).Error
			require.NoError(t, err)
			assert.Equal(t, "landing_page", subscriber.Source)
		})

		return nil
	})
	require.NoError(t, err)
}
