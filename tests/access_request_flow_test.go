// Package tests contains integration tests for the access request lifecycle
package tests

import (
	"context"
	"regexp"
	"testing"

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

var accessCodePattern = regexp.MustCompile(`^[A-Z0-9]{12}$`)

func newAccessRequestFlow(testDB *testingutil.TestDB) businessflow.AccessRequestFlow {
	requestRepo := repository.NewAccessRequestRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	notificationService := services.NewNotificationService(services.NewMockEmailProvider())

	return businessflow.NewAccessRequestFlow(
		requestRepo,
		auditRepo,
		notificationService,
		businessflow.NewNoopRateLimiter(),
		testDB.DB,
	)
}

func TestAccessRequestFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newAccessRequestFlow(testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SubmitPublicForm", func(t *testing.T) {
			name := "Sam Requester"
			result, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "sam@example.com",
				Name:  &name,
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.NotZero(t, result.RequestID)
			assert.Equal(t, models.AccessRequestStatusPending, result.Status)

			var request models.AccessRequest
			err = testDB.DB.First(&request, result.RequestID).Error
			require.NoError(t, err)
			assert.Equal(t, "sam@example.com", request.RequesterEmail)
			assert.Equal(t, models.AccessRequestSourcePublicForm, request.Source)
			assert.Nil(t, request.AccessCode)
		})

		t.Run("SubmitNormalizesEmail", func(t *testing.T) {
			result, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "  Mixed.Case@Example.COM ",
			}, models.AccessRequestSourceDirectRequest, metadata)
			require.NoError(t, err)

			var request models.AccessRequest
			err = testDB.DB.First(&request, result.RequestID).Error
			require.NoError(t, err)
			assert.Equal(t, "mixed.case@example.com", request.RequesterEmail)
		})

		t.Run("SubmitBlockedByLiveRequest", func(t *testing.T) {
			_, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "duplicate@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)

			_, err = flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "duplicate@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadyRequested(err))
		})

		t.Run("SubmitAllowedAfterDenial", func(t *testing.T) {
			first, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "second.chance@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)

			_, err = flow.Deny(context.Background(), first.RequestID, &dto.AccessRequestDecisionRequest{}, metadata)
			require.NoError(t, err)

			// A denied request no longer occupies the email slot
			second, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "second.chance@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)
			assert.NotEqual(t, first.RequestID, second.RequestID)
		})

		t.Run("SubmitRejectsUnknownSource", func(t *testing.T) {
			_, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "bad.source@example.com",
			}, "carrier_pigeon", metadata)
			require.Error(t, err)
		})

		t.Run("ApproveAssignsCode", func(t *testing.T) {
			submitted, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "approve.me@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)

			decision, err := flow.Approve(context.Background(), submitted.RequestID, &dto.AccessRequestDecisionRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusApproved, decision.Request.Status)
			require.NotNil(t, decision.Request.AccessCode)
			assert.Regexp(t, accessCodePattern, *decision.Request.AccessCode)
			assert.NotNil(t, decision.Request.ApprovalDate)
		})

		t.Run("ApproveRejectsNonPending", func(t *testing.T) {
			request, err := testingutil.NewTestFixtures(testDB).CreateTestAccessRequest(
				"already.denied@example.com", models.AccessRequestStatusDenied, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.Approve(context.Background(), request.ID, &dto.AccessRequestDecisionRequest{}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidAccessRequestStatus(err))
		})

		t.Run("ApproveUnknownRequest", func(t *testing.T) {
			_, err := flow.Approve(context.Background(), 999999, &dto.AccessRequestDecisionRequest{}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessRequestNotFound(err))
		})

		t.Run("DenyIsTerminal", func(t *testing.T) {
			submitted, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "deny.me@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)

			notes := "not a good fit"
			decision, err := flow.Deny(context.Background(), submitted.RequestID, &dto.AccessRequestDecisionRequest{Notes: &notes}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusDenied, decision.Request.Status)
			assert.Nil(t, decision.Request.AccessCode)

			_, err = flow.Deny(context.Background(), submitted.RequestID, &dto.AccessRequestDecisionRequest{}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidAccessRequestStatus(err))
		})

		t.Run("AdminCreateWithAutoApprove", func(t *testing.T) {
			decision, err := flow.AdminCreate(context.Background(), &dto.AdminCreateAccessRequestRequest{
				Email:       "vip@example.com",
				AutoApprove: true,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusApproved, decision.Request.Status)
			assert.Equal(t, models.AccessRequestSourceAdminCreated, decision.Request.Source)
			require.NotNil(t, decision.Request.AccessCode)
			assert.Regexp(t, accessCodePattern, *decision.Request.AccessCode)
		})

		t.Run("AdminCreateWithoutApproval", func(t *testing.T) {
			decision, err := flow.AdminCreate(context.Background(), &dto.AdminCreateAccessRequestRequest{
				Email: "later@example.com",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, models.AccessRequestStatusPending, decision.Request.Status)
			assert.Nil(t, decision.Request.AccessCode)
		})

		t.Run("UpdateNotes", func(t *testing.T) {
			submitted, err := flow.Submit(context.Background(), &dto.AccessRequestCreateRequest{
				Email: "notes@example.com",
			}, models.AccessRequestSourcePublicForm, metadata)
			require.NoError(t, err)

			decision, err := flow.UpdateNotes(context.Background(), submitted.RequestID, &dto.AccessRequestNotesRequest{
				Notes: "spoke on the phone, sounds legit",
			})
			require.NoError(t, err)
			require.NotNil(t, decision.Request.Notes)
			assert.Equal(t, "spoke on the phone, sounds legit", *decision.Request.Notes)
		})

		t.Run("ValidateCode", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			request, err := fixtures.CreateTestAccessRequest(
				"validate@example.com", models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)
			require.NotNil(t, request.AccessCode)

			result, err := flow.ValidateCode(context.Background(), &dto.ValidateAccessCodeRequest{
				AccessCode: *request.AccessCode,
				Email:      "validate@example.com",
			})
			require.NoError(t, err)
			assert.True(t, result.Valid)
		})

		t.Run("ValidateCodeEmailMismatch", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			request, err := fixtures.CreateTestAccessRequest(
				"right@example.com", models.AccessRequestStatusApproved, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.ValidateCode(context.Background(), &dto.ValidateAccessCodeRequest{
				AccessCode: *request.AccessCode,
				Email:      "wrong@example.com",
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailMismatch(err))
		})

		t.Run("ValidateCodeUnknown", func(t *testing.T) {
			_, err := flow.ValidateCode(context.Background(), &dto.ValidateAccessCodeRequest{
				AccessCode: "ZZZZ99999999",
				Email:      "whoever@example.com",
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessCodeNotFound(err))
		})

		t.Run("ValidateCodeAlreadyUsed", func(t *testing.T) {
			fixtures := testingutil.NewTestFixtures(testDB)
			request, err := fixtures.CreateTestAccessRequest(
				"used@example.com", models.AccessRequestStatusRegistered, models.AccessRequestSourcePublicForm)
			require.NoError(t, err)

			_, err = flow.ValidateCode(context.Background(), &dto.ValidateAccessCodeRequest{
				AccessCode: *request.AccessCode,
				Email:      "used@example.com",
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsAccessCodeAlreadyUsed(err))
		})

		t.Run("Stats", func(t *testing.T) {
			stats, err := flow.Stats(context.Background())
			require.NoError(t, err)
			assert.Greater(t, stats.Counts[models.AccessRequestStatusPending], int64(0))
			assert.Greater(t, stats.Counts[models.AccessRequestStatusApproved], int64(0))
			assert.Greater(t, stats.Counts[models.AccessRequestStatusDenied], int64(0))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := businessflow.GenerateAccessCode()
		require.NoError(t, err)
		assert.Len(t, code, utils.AccessCodeLength)
		assert.Regexp(t, accessCodePattern, code)
		assert.False(t, seen[code], "generated a duplicate code: %s", code)
		seen[code] = true
	}
}
