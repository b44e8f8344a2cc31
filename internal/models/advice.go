package models

import "github.com/shopspring/decimal"

type Action string

const (
	Buy          Action = "BUY"
	Pass         Action = "PASS"
	PriceEnforce Action = "PRICE_ENFORCE"
)

// PositionDemand summarizes rival appetite for one position.
type PositionDemand struct {
	TeamsNeeding     int     `json:"teams_needing"`
	PlayersRemaining int     `json:"players_remaining"`
	ScarcityRatio    float64 `json:"scarcity_ratio"`
	BiddingWarRisk   bool    `json:"bidding_war_risk"`
}

// Advice is the structured recommendation for one nomination at one bid.
type Advice struct {
	Action    Action          `json:"action"`
	MaxBid    decimal.Decimal `json:"max_bid"`
	FMV       decimal.Decimal `json:"fmv"`
	Inflation float64         `json:"inflation"`

	Scarcity float64 `json:"scarcity_multiplier"`
	Need     float64 `json:"need_multiplier"`
	Strategy float64 `json:"strategy_multiplier"`

	VORP     float64 `json:"vorp"`
	VONA     float64 `json:"vona"`
	VONANext string  `json:"vona_next,omitempty"`

	// ADPValue and ADPVsFMV compare the engine's adjusted FMV against market
	// consensus, when ADP data is loaded.
	ADPValue *decimal.Decimal `json:"adp_value,omitempty"`
	ADPVsFMV string           `json:"adp_vs_fmv,omitempty"`

	Demand    *PositionDemand `json:"demand,omitempty"`
	Reasoning string          `json:"reasoning"`
	// Source is "engine" for pure valuations or "advisor" when an external
	// advisor's answer was merged in.
	Source string `json:"source"`
}
