package valuation

import "draftroom/internal/models"

// FlexOnlyPolicy selects how to treat a nomination when only flexible or
// bench slots remain open for the position. This is a product decision, so
// it lives on the strategy profile instead of being hard-coded.
type FlexOnlyPolicy string

const (
	// FlexOnlyDiscount halves the player's value and otherwise follows the
	// normal decision table.
	FlexOnlyDiscount FlexOnlyPolicy = "discount"
	// FlexOnlyEnforce additionally flips modest overbids into PRICE_ENFORCE
	// to drain a rival's budget on a position we don't urgently need.
	FlexOnlyEnforce FlexOnlyPolicy = "enforce"
)

// StrategyProfile weights the valuation by position and tier. Neutral weights
// of 1.0 apply wherever a key is absent.
type StrategyProfile struct {
	Name            string
	Label           string
	PositionWeights map[models.Position]float64
	TierWeights     map[int]float64
	FlexOnly        FlexOnlyPolicy
}

func (p StrategyProfile) multiplier(pos models.Position, tier int) float64 {
	w := 1.0
	if pw, ok := p.PositionWeights[pos]; ok {
		w *= pw
	}
	if tw, ok := p.TierWeights[tier]; ok {
		w *= tw
	}
	return w
}

// Profiles is the built-in strategy catalog. The active profile is chosen by
// name in config; unknown names fall back to balanced.
var Profiles = map[string]StrategyProfile{
	"balanced": {
		Name:  "balanced",
		Label: "Balanced",
	},
	"studs_and_steals": {
		Name:        "studs_and_steals",
		Label:       "Studs & Steals",
		TierWeights: map[int]float64{1: 1.15, 2: 1.05, 3: 0.92, 4: 0.85, 5: 0.80},
	},
	"rb_heavy": {
		Name:            "rb_heavy",
		Label:           "RB Heavy",
		PositionWeights: map[models.Position]float64{models.RB: 1.3, models.QB: 0.9, models.WR: 0.95, models.TE: 0.9},
	},
	"wr_heavy": {
		Name:            "wr_heavy",
		Label:           "WR Heavy",
		PositionWeights: map[models.Position]float64{models.WR: 1.3, models.QB: 0.9, models.RB: 0.95, models.TE: 0.9},
	},
	"elite_te": {
		Name:            "elite_te",
		Label:           "Elite TE",
		PositionWeights: map[models.Position]float64{models.TE: 1.35, models.QB: 0.95, models.RB: 0.95, models.WR: 0.95},
		TierWeights:     map[int]float64{1: 1.2, 2: 1.1},
	},
}

// Profile returns the named profile with the flex-only policy applied,
// falling back to balanced for unknown names.
func Profile(name string, policy FlexOnlyPolicy) StrategyProfile {
	p, ok := Profiles[name]
	if !ok {
		p = Profiles["balanced"]
	}
	if policy == "" {
		policy = FlexOnlyDiscount
	}
	p.FlexOnly = policy
	return p
}
