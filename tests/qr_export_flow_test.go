// Package tests contains integration tests for QR code and PDF sheet export
package tests

import (
	"bytes"
	"context"
	"testing"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	businessflow "github.com/faqbnb/faqbnb-api/business_flow"
	"github.com/faqbnb/faqbnb-api/repository"
	testingutil "github.com/faqbnb/faqbnb-api/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func newQRExportFlow(testDB *testingutil.TestDB) businessflow.QRExportFlow {
	return businessflow.NewQRExportFlow(
		repository.NewPropertyRepository(testDB.DB),
		repository.NewItemRepository(testDB.DB),
		services.NewQRService("https://faqbnb.com"),
		services.NewPDFService(),
	)
}

func TestQRExportFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newQRExportFlow(testDB)

		account, _, err := fixtures.CreateTestAccount("QR Exports")
		require.NoError(t, err)
		property, err := fixtures.CreateTestProperty(account.ID, "Printable Place")
		require.NoError(t, err)
		item, err := fixtures.CreateTestItem(property.ID, "Washing Machine")
		require.NoError(t, err)
		second, err := fixtures.CreateTestItem(property.ID, "Dryer")
		require.NoError(t, err)

		t.Run("ItemPNG", func(t *testing.T) {
			png, err := flow.ItemPNG(context.Background(), account.ID, item.PublicID, 256)
			require.NoError(t, err)
			require.NotEmpty(t, png)
			assert.True(t, bytes.HasPrefix(png, pngMagic))
		})

		t.Run("ItemPNGForeignItem", func(t *testing.T) {
			otherAccount, _, err := fixtures.CreateTestAccount("QR Outsider")
			require.NoError(t, err)

			_, err = flow.ItemPNG(context.Background(), otherAccount.ID, item.PublicID, 256)
			require.Error(t, err)
			assert.True(t, businessflow.IsItemNotFound(err))
		})

		t.Run("PropertySheetAllItems", func(t *testing.T) {
			filename, pdf, err := flow.PropertySheet(context.Background(), account.ID, property.UUID, &dto.QRSheetRequest{})
			require.NoError(t, err)
			assert.Contains(t, filename, ".pdf")
			require.NotEmpty(t, pdf)
			assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
		})

		t.Run("PropertySheetSelectedItems", func(t *testing.T) {
			_, pdf, err := flow.PropertySheet(context.Background(), account.ID, property.UUID, &dto.QRSheetRequest{
				ItemIDs: []string{second.PublicID.String()},
				Columns: 2,
				SizePx:  256,
			})
			require.NoError(t, err)
			require.NotEmpty(t, pdf)
			assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
		})

		t.Run("PropertySheetUnknownProperty", func(t *testing.T) {
			_, _, err := flow.PropertySheet(context.Background(), account.ID, uuid.New(), &dto.QRSheetRequest{})
			require.Error(t, err)
			assert.True(t, businessflow.IsPropertyNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
