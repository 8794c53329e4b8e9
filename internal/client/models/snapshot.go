package models

// Snapshot is the full wardrobe state as carried by the exchange call:
// every clothing item plus every outfit with its member ids.
type Snapshot struct {
	Items   []ClothingItem `json:"items"`
	Outfits []Outfit       `json:"outfits"`
}
