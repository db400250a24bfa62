// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// QRSheetEntry is one printable cell on a QR sheet
type QRSheetEntry struct {
	ItemName string
	PNG      []byte
}

// PDFService lays out printable QR sheets. Sheets are A4 portrait with a
// fixed grid; each cell holds one item's QR code and its name underneath.
type PDFService interface {
	GenerateQRSheet(title string, entries []QRSheetEntry, columns int) ([]byte, error)
}

// PDFServiceImpl implements PDFService
type PDFServiceImpl struct{}

// NewPDFService creates a new PDF service
func NewPDFService() PDFService {
	return &PDFServiceImpl{}
}

const (
	pageMarginMM  = 15.0
	cellPadMM     = 4.0
	labelHeightMM = 8.0
	a4WidthMM     = 210.0
	a4HeightMM    = 297.0
)

// GenerateQRSheet renders the entries into an A4 grid and returns the PDF
// bytes. columns outside 1..4 falls back to 3.
func (s *PDFServiceImpl) GenerateQRSheet(title string, entries []QRSheetEntry, columns int) ([]byte, error) {
	if columns < 1 || columns > 4 {
		columns = 3
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(false, pageMarginMM)

	usableWidth := a4WidthMM - 2*pageMarginMM
	cellSize := usableWidth / float64(columns)
	qrSize := cellSize - 2*cellPadMM
	cellHeight := qrSize + labelHeightMM + 2*cellPadMM

	headerHeight := 14.0
	rowsPerPage := int((a4HeightMM - 2*pageMarginMM - headerHeight) / cellHeight)
	if rowsPerPage < 1 {
		rowsPerPage = 1
	}
	perPage := rowsPerPage * columns

	for i, entry := range entries {
		posOnPage := i % perPage
		if posOnPage == 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 14)
			pdf.SetXY(pageMarginMM, pageMarginMM)
			pdf.CellFormat(usableWidth, 8, title, "", 1, "C", false, 0, "")
		}

		row := posOnPage / columns
		col := posOnPage % columns
		x := pageMarginMM + float64(col)*cellSize
		y := pageMarginMM + headerHeight + float64(row)*cellHeight

		imgName := fmt.Sprintf("qr-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(entry.PNG))
		pdf.ImageOptions(imgName, x+cellPadMM, y+cellPadMM, qrSize, qrSize, false, opts, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(x+cellPadMM, y+cellPadMM+qrSize+1)
		pdf.CellFormat(qrSize, 5, truncateLabel(entry.ItemName, 40), "", 0, "C", false, 0, "")
	}

	if len(entries) == 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(pageMarginMM, pageMarginMM)
		pdf.CellFormat(usableWidth, 8, title, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render QR sheet: %w", err)
	}

	return buf.Bytes(), nil
}

func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
