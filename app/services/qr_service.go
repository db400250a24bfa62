// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// QRService renders item QR codes. Each code encodes the public item URL
// built from the configured site base URL and the item's public ID.
type QRService interface {
	ItemURL(publicID uuid.UUID) string
	GeneratePNG(publicID uuid.UUID, sizePx int) ([]byte, error)
}

// QRServiceImpl implements QRService
type QRServiceImpl struct {
	baseURL string
}

// NewQRService creates a new QR service. baseURL is the public site root,
// e.g. "https://faqbnb.com".
func NewQRService(baseURL string) QRService {
	return &QRServiceImpl{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *QRServiceImpl) ItemURL(publicID uuid.UUID) string {
	return fmt.Sprintf("%s/item/%s", s.baseURL, publicID)
}

// GeneratePNG renders the QR code as a PNG image. Medium error correction
// keeps codes scannable after typical print wear.
func (s *QRServiceImpl) GeneratePNG(publicID uuid.UUID, sizePx int) ([]byte, error) {
	if sizePx <= 0 {
		sizePx = 256
	}

	png, err := qrcode.Encode(s.ItemURL(publicID), qrcode.Medium, sizePx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return png, nil
}
