package models

// Outfit is a named collection of clothing items. ItemIDs lists the
// associated clothing item ids; the order is not significant.
type Outfit struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	ItemIDs []int64 `json:"itemIds"`
}

// OutfitOverview is one row of an outfit search: the outfit plus how many
// items it currently contains. Outfits with zero items are included.
type OutfitOverview struct {
	ID        int64
	Name      string
	ItemCount int64
}
