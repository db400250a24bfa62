// Package tests contains integration tests for the public item page and reactions
package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/faqbnb/faqbnb-api/app/dto"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublicItemFlow(testDB *testingutil.TestDB) businessflow.PublicItemFlow {
	return businessflow.NewPublicItemFlow(
		repository.NewItemRepository(testDB.DB),
		repository.NewItemVisitRepository(testDB.DB),
		repository.NewItemReactionRepository(testDB.DB),
		testDB.DB,
	)
}

func TestPublicItemFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newPublicItemFlow(testDB)
		metadata := businessflow.NewClientMetadata("203.0.113.7", "Test Visitor Agent")

		account, _, err := fixtures.CreateTestAccount("Public Page Tests")
		require.NoError(t, err)
		property, err := fixtures.CreateTestProperty(account.ID, "Open House")
		require.NoError(t, err)
		item, err := fixtures.CreateTestItem(property.ID, "Hot Tub")
		require.NoError(t, err)

		t.Run("ViewRecordsVisit", func(t *testing.T) {
			sessionID := "visitor-session-1"
			result, err := flow.View(context.Background(), item.PublicID, &sessionID, metadata)
			require.NoError(t, err)
			assert.Equal(t, item.PublicID.String(), result.PublicID)
			assert.Equal(t, "Hot Tub", result.Name)
			assert.NotEmpty(t, result.ResourceLinks)

			var visitCount int64
			err = testDB.DB.Model(&models.ItemVisit{}).Where("item_id = ?", item.ID).Count(&visitCount).Error
			require.NoError(t, err)
			assert.Equal(t, int64(1), visitCount)
		})

		t.Run("ViewExposesNoOwnerData", func(t *testing.T) {
			// The public response carries item content only; property and
			// account stay behind the authenticated API.
			result, err := flow.View(context.Background(), item.PublicID, nil, metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, result.PublicID)
			assert.NotNil(t, result.Reactions)
		})

		t.Run("ViewUnknownItem", func(t *testing.T) {
			_, err := flow.View(context.Background(), uuid.New(), nil, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsItemNotFound(err))
		})

		t.Run("ReactIsIdempotentPerSession", func(t *testing.T) {
			req := &dto.ReactionRequest{
				SessionID:    "visitor-session-2",
				ReactionType: models.ReactionTypeLike,
			}

			first, err := flow.React(context.Background(), item.PublicID, req)
			require.NoError(t, err)
			assert.Equal(t, int64(1), first.Reactions[models.ReactionTypeLike])

			second, err := flow.React(context.Background(), item.PublicID, req)
			require.NoError(t, err)
			assert.Equal(t, int64(1), second.Reactions[models.ReactionTypeLike])
		})

		t.Run("SessionsCountIndependently", func(t *testing.T) {
			target, err := fixtures.CreateTestItem(property.ID, "Fireplace")
			require.NoError(t, err)

			for _, session := range []string{"sess-a", "sess-b", "sess-c"} {
				_, err := flow.React(context.Background(), target.PublicID, &dto.ReactionRequest{
					SessionID:    session,
					ReactionType: models.ReactionTypeLove,
				})
				require.NoError(t, err)
			}

			result, err := flow.View(context.Background(), target.PublicID, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(3), result.Reactions[models.ReactionTypeLove])
		})

		t.Run("RemoveReaction", func(t *testing.T) {
			req := &dto.ReactionRequest{
				SessionID:    "visitor-session-3",
				ReactionType: models.ReactionTypeConfused,
			}

			_, err := flow.React(context.Background(), item.PublicID, req)
			require.NoError(t, err)

			result, err := flow.RemoveReaction(context.Background(), item.PublicID, req)
			require.NoError(t, err)
			assert.Zero(t, result.Reactions[models.ReactionTypeConfused])

			// Removing what is not there is a no-op
			_, err = flow.RemoveReaction(context.Background(), item.PublicID, req)
			require.NoError(t, err)
		})

		t.Run("ReactRejectsUnknownType", func(t *testing.T) {
			_, err := flow.React(context.Background(), item.PublicID, &dto.ReactionRequest{
				SessionID:    "visitor-session-4",
				ReactionType: "shrug",
			})
			require.Error(t, err)
		})

		t.Run("FailedVisitWriteDoesNotBlockView", func(t *testing.T) {
			// A session ID longer than the column allows fails the visit
			// insert; the page must still render.
			sessionID := strings.Repeat("x", 65)

			result, err := flow.View(context.Background(), item.PublicID, &sessionID, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Hot Tub", result.Name)
		})

		return nil
	})
	require.NoError(t, err)
}
