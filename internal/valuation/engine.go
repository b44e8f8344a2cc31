// Package valuation turns a draft-store snapshot into a buy/pass/enforce
// recommendation. Everything here is pure: the engine reads the store and
// never mutates it, so advice is always available without I/O.
package valuation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"draftroom/internal/draft"
	"draftroom/internal/models"
)

// Overbid thresholds, relative to adjusted fair value.
var (
	passLine    = decimal.NewFromFloat(1.15) // beyond this, let a rival overpay
	enforceLine = decimal.NewFromFloat(1.10) // price-enforce ceiling
)

// DemandSource supplies rival positional demand for bidding-war warnings.
type DemandSource interface {
	Demand(pos models.Position, remainingAtPos int) models.PositionDemand
}

type Engine struct {
	Strategy StrategyProfile
	// Demand is optional; without it advice simply omits opponent context.
	Demand DemandSource
}

// Advise evaluates a nomination at the given bid. A zero or negative bid
// means no auction is running yet and the result is a pure valuation.
func (e *Engine) Advise(store *draft.Store, name string, bid decimal.Decimal) models.Advice {
	inflation := store.Inflation()

	player, ok := store.Player(name)
	if !ok {
		return models.Advice{
			Action:    models.Pass,
			MaxBid:    decimal.Zero,
			FMV:       decimal.Zero,
			Inflation: inflation,
			Scarcity:  1.0,
			Need:      1.0,
			Strategy:  1.0,
			Reasoning: fmt.Sprintf("%q not found in projections. PASS recommended.", name),
			Source:    "engine",
		}
	}

	pos := player.Projection.Position
	team := store.MyTeam()

	fmv := player.Projection.BaselineAAV.Mul(decimal.NewFromFloat(inflation))
	scarcity := scarcityMultiplier(store, pos, player.Projection.Tier)
	need, needNote := needMultiplier(&team, pos)
	strat := e.Strategy.multiplier(pos, player.Projection.Tier)
	budgetMax := team.MaxBid()

	adv := models.Advice{
		Inflation: inflation,
		Scarcity:  scarcity,
		Need:      need,
		Strategy:  strat,
		VORP:      player.VORP,
		VONA:      player.VONA,
		VONANext:  player.VONANext,
		Source:    "engine",
	}

	if need == 0 {
		// Show the undiscounted value so the pass is explainable.
		adv.Action = models.Pass
		adv.MaxBid = decimal.Zero
		adv.FMV = fmv.Mul(decimal.NewFromFloat(scarcity)).Round(1)
		adv.Reasoning = fmt.Sprintf(
			"No open roster slot for %s. All %s-eligible spots are filled. PASS — cannot roster this player.",
			pos, pos)
		return adv
	}

	adjusted := fmv.Mul(decimal.NewFromFloat(scarcity * need * strat)).Round(1)
	adv.FMV = adjusted
	effectiveMax := decimal.Min(adjusted.Floor(), budgetMax)
	if effectiveMax.IsNegative() {
		effectiveMax = decimal.Zero
	}
	flexOnly := need > 0 && need < 1
	enforceFlex := flexOnly && e.Strategy.FlexOnly == FlexOnlyEnforce

	var b strings.Builder
	switch {
	case bid.LessThanOrEqual(decimal.Zero):
		if player.VORP > 0 {
			adv.Action = models.Buy
		} else {
			adv.Action = models.Pass
		}
		adv.MaxBid = effectiveMax
		fmt.Fprintf(&b, "FMV: $%s (base $%s, scarcity x%.2f, need x%.1f). VORP: %.1f. Budget max: $%s.",
			adjusted, fmv.Round(1), scarcity, need, player.VORP, budgetMax)

	case bid.GreaterThan(adjusted.Mul(passLine)):
		adv.Action = models.Pass
		adv.MaxBid = decimal.Zero
		overpay := 100.0
		if adjusted.IsPositive() {
			r, _ := bid.Div(adjusted).Float64()
			overpay = (r - 1) * 100
		}
		fmt.Fprintf(&b, "Current bid $%s exceeds adjusted FMV $%s by %.0f%%. Let someone else overpay.",
			bid, adjusted, overpay)

	case bid.GreaterThan(adjusted):
		adv.Action = models.PriceEnforce
		adv.MaxBid = decimal.Min(adjusted.Mul(enforceLine).Floor(), budgetMax)
		fmt.Fprintf(&b, "Bid $%s is above FMV $%s but close. Push the price to make the winner overpay. Don't exceed $%s.",
			bid, adjusted, adv.MaxBid)

	case player.VORP > 0:
		if enforceFlex {
			adv.Action = models.PriceEnforce
			adv.MaxBid = effectiveMax
			fmt.Fprintf(&b, "Only flex-eligible slots open for %s. Price-enforce to drain budgets; cap $%s.",
				pos, adv.MaxBid)
		} else {
			adv.Action = models.Buy
			adv.MaxBid = effectiveMax
			fmt.Fprintf(&b, "$%s is at or below adjusted FMV $%s (base $%s, scarcity x%.2f, need x%.1f). VORP: %.1f. BUY up to $%s.",
				bid, adjusted, fmv.Round(1), scarcity, need, player.VORP, effectiveMax)
		}

	default:
		adv.Action = models.Pass
		adv.MaxBid = decimal.Zero
		fmt.Fprintf(&b, "Low VORP (%.1f). Not worth pursuing at any price.", player.VORP)
	}

	if needNote != "" {
		fmt.Fprintf(&b, " [%s]", needNote)
	}
	if strat != 1.0 {
		fmt.Fprintf(&b, " [Strategy x%.2f]", strat)
	}
	if player.ADP != nil {
		adv.ADPValue = player.ADP
		if note := compareADP(adjusted, *player.ADP); note != "" {
			adv.ADPVsFMV = note
			fmt.Fprintf(&b, " [%s]", note)
		}
	}
	if player.VONANext != "" {
		fmt.Fprintf(&b, " VONA: %.1f pts over %s at %s.", player.VONA, player.VONANext, pos)
	} else if player.VONA > 0 {
		fmt.Fprintf(&b, " VONA: %.1f (last available at %s).", player.VONA, pos)
	}

	if e.Demand != nil {
		remaining := len(store.RemainingPlayers(pos))
		demand := e.Demand.Demand(pos, remaining)
		adv.Demand = &demand
		if demand.BiddingWarRisk {
			fmt.Fprintf(&b, " Bidding war likely: %d teams need %s with %d left.",
				demand.TeamsNeeding, pos, demand.PlayersRemaining)
		}
	}

	adv.Reasoning = b.String()
	return adv
}

// compareADP contrasts adjusted FMV against the market-consensus auction
// value. A gap means the room will likely price the player off consensus,
// not off this engine's number.
func compareADP(fmv, adp decimal.Decimal) string {
	if !adp.IsPositive() {
		return ""
	}
	diff := fmv.Sub(adp)
	switch {
	case diff.Abs().LessThan(decimal.NewFromInt(2)):
		return fmt.Sprintf("ADP confirms FMV (ADP $%s)", adp.Round(0))
	case diff.IsPositive():
		return fmt.Sprintf("FMV $%s > ADP $%s — you value higher than market", fmv.Round(0), adp.Round(0))
	default:
		return fmt.Sprintf("FMV $%s < ADP $%s — market will likely bid higher", fmv.Round(0), adp.Round(0))
	}
}

// scarcityMultiplier steps up as a (position, tier) group gets mostly
// drafted. Coarse steps on purpose; small tiers are noisy.
func scarcityMultiplier(store *draft.Store, pos models.Position, tier int) float64 {
	drafted, total := store.GroupCounts(pos, tier)
	if total == 0 {
		return 1.0
	}
	pct := float64(drafted) / float64(total)
	switch {
	case pct >= 0.85:
		return 1.30
	case pct >= 0.70:
		return 1.15
	case pct >= 0.50:
		return 1.05
	default:
		return 1.0
	}
}

// needMultiplier reflects whether the team can actually use the position:
// 0.0 no slot at all, 0.5 only flex/bench remain, 1.0 dedicated open,
// 1.2 exactly one dedicated slot left (urgency).
func needMultiplier(team *models.TeamState, pos models.Position) (float64, string) {
	open := team.OpenSlotIndexesFor(pos)
	if len(open) == 0 {
		return 0.0, ""
	}

	dedicated := 0
	for _, i := range open {
		if team.Slots[i].Descriptor.BaseType == string(pos) {
			dedicated++
		}
	}
	if dedicated == 0 {
		return 0.5, fmt.Sprintf("Only flex/bench slots open for %s — value discounted 50%%.", pos)
	}
	if dedicated == 1 {
		return 1.2, fmt.Sprintf("Last dedicated %s slot — slight urgency premium.", pos)
	}
	return 1.0, ""
}
