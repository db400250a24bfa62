// Package dto contains Data Transfer Objects for API request and response structures
package dto

// QRSheetRequest selects what goes on a printable QR sheet. With no item
// UUIDs given, every item of the property is included.
type QRSheetRequest struct {
	ItemIDs []string `json:"item_ids,omitempty" validate:"omitempty,dive,uuid"`
	Columns int      `json:"columns" validate:"omitempty,min=1,max=4"`
	SizePx  int      `json:"size_px" validate:"omitempty,min=128,max=1024"`
}
