package models

import "github.com/shopspring/decimal"

// PlayerProjection is the immutable projection data loaded at startup.
type PlayerProjection struct {
	Name            string          `json:"name"`
	Position        Position        `json:"position"`
	ProjectedPoints float64         `json:"projected_points"`
	BaselineAAV     decimal.Decimal `json:"baseline_aav"`
	Tier            int             `json:"tier"`
}

// KeeperEntry is one pre-draft keeper assignment from the keepers CSV.
type KeeperEntry struct {
	Name  string          `json:"player"`
	Team  string          `json:"team"`
	Price decimal.Decimal `json:"price"`
}

// PlayerState is a player's projection plus live draft status and the
// precomputed value metrics refreshed on every aggregate recompute.
type PlayerState struct {
	Projection PlayerProjection `json:"projection"`

	Drafted   bool             `json:"drafted"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	DraftedBy string           `json:"drafted_by,omitempty"`
	// Keeper marks a pre-draft assignment; the price was set before the
	// auction, so it never feeds overpay detection.
	Keeper bool `json:"is_keeper,omitempty"`

	// ADP is the market-consensus auction value, when an ADP sheet is loaded.
	ADP *decimal.Decimal `json:"adp_value,omitempty"`

	// VORP is projected points over the position's replacement level, never negative.
	VORP float64 `json:"vorp"`
	// VONA is projected points over the next-best undrafted player at the
	// position. Zero with an empty VONANext means the player is last available.
	VONA     float64 `json:"vona"`
	VONANext string  `json:"vona_next,omitempty"`
}
