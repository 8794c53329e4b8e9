package models

import (
	"strings"
	"time"
)

// Color is one garment color as 0–255 RGB channels.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// ClothingItem is one physical garment in the wardrobe.
//
// ID is server-assigned and stays 0 until the item has been written to the
// remote side at least once; purely local items carry a locally assigned
// rowid instead. ImageURI points wherever the image was last resolved from:
// a remote https asset, a file:// URI or a plain filesystem path.
type ClothingItem struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Season       string     `json:"season"`
	Color        Color      `json:"color"`
	Material     string     `json:"material"`
	Brand        string     `json:"brand,omitempty"`
	PurchaseDate *time.Time `json:"purchaseDate,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	Favorite     bool       `json:"favorite"`
	ImageURI     string     `json:"imageUri,omitempty"`
}

// HasRemoteImage reports whether the item's image already lives on the
// server, in which case it is never re-uploaded during an exchange.
func (i *ClothingItem) HasRemoteImage() bool {
	return strings.HasPrefix(i.ImageURI, "https://")
}
