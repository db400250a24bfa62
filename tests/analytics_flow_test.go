// Package tests contains integration tests for analytics and reporting
package tests

import (
	"bytes"
	"context"
	"testing"
	"time"

	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newAnalyticsFlow(testDB *testingutil.TestDB) businessflow.AnalyticsFlow {
	return businessflow.NewAnalyticsFlow(
		repository.NewAccountRepository(testDB.DB),
		repository.NewUserRepository(testDB.DB),
		repository.NewPropertyRepository(testDB.DB),
		repository.NewItemRepository(testDB.DB),
		repository.NewItemVisitRepository(testDB.DB),
		repository.NewItemReactionRepository(testDB.DB),
		repository.NewAccessRequestRepository(testDB.DB),
		repository.NewMailingListRepository(testDB.DB),
	)
}

func TestAnalyticsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newAnalyticsFlow(testDB)

		account, _, err := fixtures.CreateTestAccount("Analytics Co")
		require.NoError(t, err)
		property, err := fixtures.CreateTestProperty(account.ID, "Tracked Tower")
		require.NoError(t, err)
		item, err := fixtures.CreateTestItem(property.ID, "Elevator")
		require.NoError(t, err)

		now := utils.UTCNow()

		// Two recent visits, one ancient one
		_, err = fixtures.CreateTestVisit(item.ID, "sess-1", now.Add(-1*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(item.ID, "sess-2", now.Add(-3*24*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestVisit(item.ID, "sess-1", now.Add(-60*24*time.Hour))
		require.NoError(t, err)

		_, err = fixtures.CreateTestReaction(item.ID, "sess-1", models.ReactionTypeLike)
		require.NoError(t, err)
		_, err = fixtures.CreateTestReaction(item.ID, "sess-2", models.ReactionTypeLike)
		require.NoError(t, err)
		_, err = fixtures.CreateTestReaction(item.ID, "sess-2", models.ReactionTypeDislike)
		require.NoError(t, err)

		t.Run("DashboardStats", func(t *testing.T) {
			stats, err := flow.DashboardStats(context.Background(), account.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.PropertyCount)
			assert.Equal(t, int64(1), stats.ItemCount)
			assert.Equal(t, int64(1), stats.VisitsLast7d)
			assert.Equal(t, int64(2), stats.VisitsLast30d)
			assert.Equal(t, int64(2), stats.ReactionsByType[models.ReactionTypeLike])
			assert.Equal(t, int64(1), stats.ReactionsByType[models.ReactionTypeDislike])
			require.NotEmpty(t, stats.TopItems)
			assert.Equal(t, item.ID, stats.TopItems[0].ItemID)
		})

		t.Run("ItemAnalytics", func(t *testing.T) {
			result, err := flow.ItemAnalytics(context.Background(), account.ID, item.PublicID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), result.VisitsLast24h)
			assert.Equal(t, int64(1), result.VisitsLast7d)
			assert.Equal(t, int64(2), result.VisitsLast30d)
			assert.Equal(t, int64(3), result.VisitsAllTime)
			assert.Equal(t, int64(2), result.UniqueSessions)
			assert.Equal(t, int64(2), result.Reactions[models.ReactionTypeLike])
		})

		t.Run("ItemAnalyticsForeignItem", func(t *testing.T) {
			otherAccount, _, err := fixtures.CreateTestAccount("Rival Co")
			require.NoError(t, err)

			_, err = flow.ItemAnalytics(context.Background(), otherAccount.ID, item.PublicID)
			require.Error(t, err)
			assert.True(t, businessflow.IsItemNotFound(err))
		})

		t.Run("ItemAnalyticsUnknownItem", func(t *testing.T) {
			_, err := flow.ItemAnalytics(context.Background(), account.ID, uuid.New())
			require.Error(t, err)
			assert.True(t, businessflow.IsItemNotFound(err))
		})

		t.Run("SystemStats", func(t *testing.T) {
			_, err := fixtures.CreateTestAccessRequest(
				"counted@example.com", models.AccessRequestStatusPending, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)
			_, err = fixtures.CreateTestSubscriber("reader@example.com")
			require.NoError(t, err)

			stats, err := flow.SystemStats(context.Background())
			require.NoError(t, err)
			assert.Greater(t, stats.AccountCount, int64(0))
			assert.Greater(t, stats.UserCount, int64(0))
			assert.Greater(t, stats.PropertyCount, int64(0))
			assert.Greater(t, stats.ItemCount, int64(0))
			assert.Greater(t, stats.AccessRequestCounts[models.AccessRequestStatusPending], int64(0))
			assert.Greater(t, stats.SubscriberCount, int64(0))
		})

		t.Run("ExportAccountReport", func(t *testing.T) {
			filename, data, err := flow.ExportAccountReport(context.Background(), account.ID)
			require.NoError(t, err)
			assert.Contains(t, filename, ".xlsx")
			require.NotEmpty(t, data)

			// The payload must open as a real workbook
			workbook, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer workbook.Close()
			assert.NotEmpty(t, workbook.GetSheetList())
		})

		t.Run("ExportUnknownAccount", func(t *testing.T) {
			_, _, err := flow.ExportAccountReport(context.Background(), 999999)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
