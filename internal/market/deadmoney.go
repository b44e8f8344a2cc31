package market

import (
	"math"

	"github.com/shopspring/decimal"

	"draftroom/internal/models"
)

// OverpayThreshold flags a sale at more than 30% above fair value at the
// time of sale.
const OverpayThreshold = 0.30

// MarketShiftThreshold flags an inflation move larger than this across a
// single update.
const MarketShiftThreshold = 0.005

// OverpayAlert marks a sale as dead money: the price exceeded fair value at
// sale time by more than the threshold.
type OverpayAlert struct {
	PlayerName string          `json:"player_name"`
	Position   models.Position `json:"position"`
	Team       string          `json:"team"`
	Price      decimal.Decimal `json:"draft_price"`
	FMVAtSale  decimal.Decimal `json:"fmv_at_sale"`
	Overpay    decimal.Decimal `json:"overpay_amount"`
	OverpayPct float64         `json:"overpay_pct"`
}

// CheckOverpay evaluates one newly drafted player against the inflation
// factor that held before the sale was applied. Returns nil for an ordinary
// sale.
func CheckOverpay(ps models.PlayerState, preSaleInflation float64) *OverpayAlert {
	if !ps.Drafted || ps.Price == nil {
		return nil
	}
	fmvAtSale := ps.Projection.BaselineAAV.Mul(decimal.NewFromFloat(preSaleInflation))
	if !fmvAtSale.IsPositive() {
		return nil
	}
	overpay := ps.Price.Sub(fmvAtSale)
	pct, _ := overpay.Div(fmvAtSale).Float64()
	if pct <= OverpayThreshold {
		return nil
	}

	team := ps.DraftedBy
	if team == "" {
		team = "Unknown"
	}
	return &OverpayAlert{
		PlayerName: ps.Projection.Name,
		Position:   ps.Projection.Position,
		Team:       team,
		Price:      *ps.Price,
		FMVAtSale:  fmvAtSale.Round(1),
		Overpay:    overpay.Round(1),
		OverpayPct: math.Round(pct*1000) / 10,
	}
}

// ShiftAlert reports a material inflation move after a batch of sales.
type ShiftAlert struct {
	Pre    float64 `json:"pre_inflation"`
	Post   float64 `json:"new_inflation"`
	Change float64 `json:"change"`
	Up     bool    `json:"up"`
}

func CheckMarketShift(pre, post float64) *ShiftAlert {
	change := post - pre
	if math.Abs(change) <= MarketShiftThreshold {
		return nil
	}
	return &ShiftAlert{Pre: pre, Post: post, Change: change, Up: change > 0}
}
