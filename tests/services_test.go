// Package tests contains unit tests for the token, QR, PDF, and captcha services
package tests

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/faqbnb/faqbnb-api/app/services"
	"github.com/faqbnb/faqbnb-api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour, "test-issuer", "test-audience",
		false, "", "", "test-secret-key-for-signing-tokens")
	require.NoError(t, err)

	t.Run("GenerateAndValidate", func(t *testing.T) {
		access, refresh, err := tokenService.GenerateTokens(42, models.UserRoleUser)
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)

		claims, err := tokenService.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, models.UserRoleUser, claims.Role)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("RefreshIssuesNewPair", func(t *testing.T) {
		_, refresh, err := tokenService.GenerateTokens(7, models.UserRoleAdmin)
		require.NoError(t, err)

		newAccess, newRefresh, err := tokenService.RefreshToken(refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEqual(t, refresh, newRefresh)

		claims, err := tokenService.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, models.UserRoleAdmin, claims.Role)
	})

	t.Run("RefreshRejectsAccessToken", func(t *testing.T) {
		access, _, err := tokenService.GenerateTokens(7, models.UserRoleUser)
		require.NoError(t, err)

		_, _, err = tokenService.RefreshToken(access)
		require.Error(t, err)
	})

	t.Run("ValidateRejectsGarbage", func(t *testing.T) {
		_, err := tokenService.ValidateToken("not.a.token")
		require.Error(t, err)
	})

	t.Run("RequiresSecretWithoutRSA", func(t *testing.T) {
		_, err := services.NewTokenService(1*time.Hour, 24*time.Hour, "i", "a", false, "", "", "")
		require.Error(t, err)
	})
}

func TestQRService(t *testing.T) {
	qrService := services.NewQRService("https://faqbnb.com/")
	publicID := uuid.New()

	t.Run("ItemURLTrimsTrailingSlash", func(t *testing.T) {
		assert.Equal(t, "https://faqbnb.com/item/"+publicID.String(), qrService.ItemURL(publicID))
	})

	t.Run("GeneratePNG", func(t *testing.T) {
		png, err := qrService.GeneratePNG(publicID, 256)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(png, []byte{0x89, 0x50, 0x4E, 0x47}))
	})

	t.Run("GeneratePNGDefaultsSize", func(t *testing.T) {
		png, err := qrService.GeneratePNG(publicID, 0)
		require.NoError(t, err)
		assert.NotEmpty(t, png)
	})
}

func TestPDFService(t *testing.T) {
	pdfService := services.NewPDFService()
	qrService := services.NewQRService("https://faqbnb.com")

	makeEntries := func(names ...string) []services.QRSheetEntry {
		entries := make([]services.QRSheetEntry, 0, len(names))
		for _, name := range names {
			png, err := qrService.GeneratePNG(uuid.New(), 256)
			require.NoError(t, err)
			entries = append(entries, services.QRSheetEntry{ItemName: name, PNG: png})
		}
		return entries
	}

	t.Run("GenerateQRSheet", func(t *testing.T) {
		pdf, err := pdfService.GenerateQRSheet("Beach House", makeEntries("Lock", "Thermostat", "Dishwasher"), 3)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	})

	t.Run("ColumnsOutOfRangeFallBack", func(t *testing.T) {
		pdf, err := pdfService.GenerateQRSheet("Odd Layout", makeEntries("Lock"), 9)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	})
}

func TestCaptchaService(t *testing.T) {
	captchaService, err := services.NewCaptchaServiceRotate(2*time.Minute, 15, 300)
	require.NoError(t, err)

	t.Run("GenerateChallenge", func(t *testing.T) {
		challenge, err := captchaService.GenerateRotate(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, challenge.ID)
		assert.NotEmpty(t, challenge.MasterImageBase64)
		assert.NotEmpty(t, challenge.ThumbImageBase64)
	})

	t.Run("UnknownChallengeFails", func(t *testing.T) {
		assert.False(t, captchaService.VerifyRotate(context.Background(), "no-such-challenge", 90))
	})

	t.Run("ChallengeIsSingleUse", func(t *testing.T) {
		challenge, err := captchaService.GenerateRotate(context.Background())
		require.NoError(t, err)

		// Whatever the first answer was, the challenge is burned
		captchaService.VerifyRotate(context.Background(), challenge.ID, 123)
		assert.False(t, captchaService.VerifyRotate(context.Background(), challenge.ID, 123))
	})
}

func TestNotificationService(t *testing.T) {
	notificationService := services.NewNotificationService(services.NewMockEmailProvider())

	t.Run("SendsThroughProvider", func(t *testing.T) {
		err := notificationService.SendEmail("guest@example.com", "Welcome", "Hello there")
		require.NoError(t, err)
	})

	t.Run("RejectsInvalidAddress", func(t *testing.T) {
		err := notificationService.SendEmail("not-an-email", "Welcome", "Hello there")
		require.Error(t, err)
	})
}
