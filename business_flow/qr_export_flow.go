// Package businessflow contains the core business logic and use cases for the access and property workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/faqbnb/faqbnb-api/app/dto"
	"github.com/faqbnb/faqbnb-api/app/services"
	"github.com/faqbnb/faqbnb-api/repository"
	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/google/uuid"
)

const defaultQRSizePx = 256

// QRExportFlow renders printable QR sheets for a property's items
type QRExportFlow interface {
	PropertySheet(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.QRSheetRequest) (string, []byte, error)
	ItemPNG(ctx context.Context, accountID uint, publicID uuid.UUID, sizePx int) ([]byte, error)
}

// QRExportFlowImpl implements the QR export business flow
type QRExportFlowImpl struct {
	propertyRepo repository.PropertyRepository
	itemRepo     repository.ItemRepository
	qrSvc        services.QRService
	pdfSvc       services.PDFService
}

// NewQRExportFlow creates a new QR export flow instance
func NewQRExportFlow(
	propertyRepo repository.PropertyRepository,
	itemRepo repository.ItemRepository,
	qrSvc services.QRService,
	pdfSvc services.PDFService,
) QRExportFlow {
	return &QRExportFlowImpl{
		propertyRepo: propertyRepo,
		itemRepo:     itemRepo,
		qrSvc:        qrSvc,
		pdfSvc:       pdfSvc,
	}
}

// PropertySheet renders an A4 PDF of QR codes for the property's items.
// With req.ItemIDs set, only the named items go on the sheet; unknown or
// foreign UUIDs are skipped rather than erroring the whole sheet.
func (s *QRExportFlowImpl) PropertySheet(ctx context.Context, accountID uint, propertyUUID uuid.UUID, req *dto.QRSheetRequest) (string, []byte, error) {
	property, err := s.propertyRepo.ByUUID(ctx, propertyUUID)
	if err != nil {
		return "", nil, NewBusinessError("PROPERTY_FETCH_FAILED", "Failed to fetch property", err)
	}
	if property == nil || property.AccountID != accountID {
		return "", nil, NewBusinessError("PROPERTY_NOT_FOUND", "Property not found", ErrPropertyNotFound)
	}

	items, err := s.itemRepo.ListByProperty(ctx, property.ID)
	if err != nil {
		return "", nil, NewBusinessError("QR_EXPORT_FAILED", "Failed to fetch items", err)
	}

	if len(req.ItemIDs) > 0 {
		wanted := make(map[uuid.UUID]bool, len(req.ItemIDs))
		for _, raw := range req.ItemIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				continue
			}
			wanted[id] = true
		}
		filtered := items[:0]
		for _, item := range items {
			if wanted[item.PublicID] {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	sizePx := req.SizePx
	if sizePx == 0 {
		sizePx = defaultQRSizePx
	}

	entries := make([]services.QRSheetEntry, 0, len(items))
	for _, item := range items {
		png, err := s.qrSvc.GeneratePNG(item.PublicID, sizePx)
		if err != nil {
			return "", nil, NewBusinessError("QR_EXPORT_FAILED", "Failed to render QR code", err)
		}
		entries = append(entries, services.QRSheetEntry{
			ItemName: item.Name,
			PNG:      png,
		})
	}

	sheet, err := s.pdfSvc.GenerateQRSheet(property.Name, entries, req.Columns)
	if err != nil {
		return "", nil, NewBusinessError("QR_EXPORT_FAILED", "Failed to render QR sheet", err)
	}

	filename := fmt.Sprintf("qr_sheet_%s_%s.pdf", property.UUID.String(), utils.UTCNow().Format("20060102"))
	return filename, sheet, nil
}

// ItemPNG renders a single item's QR code for the account that owns it
func (s *QRExportFlowImpl) ItemPNG(ctx context.Context, accountID uint, publicID uuid.UUID, sizePx int) ([]byte, error) {
	item, err := s.itemRepo.ByPublicID(ctx, publicID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if item == nil {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	property, err := s.propertyRepo.ByID(ctx, item.PropertyID)
	if err != nil {
		return nil, NewBusinessError("ITEM_FETCH_FAILED", "Failed to fetch item", err)
	}
	if property == nil || property.AccountID != accountID {
		return nil, NewBusinessError("ITEM_NOT_FOUND", "Item not found", ErrItemNotFound)
	}

	if sizePx == 0 {
		sizePx = defaultQRSizePx
	}

	return s.qrSvc.GeneratePNG(item.PublicID, sizePx)
}
