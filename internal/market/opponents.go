// Package market derives opponent and market context from the same state the
// valuation engine reads: positional demand, bidding-war risk, spending
// power, and overpay detection.
package market

import (
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"draftroom/internal/models"
)

// Starter positions counted toward demand; bench and IR stashes are not need.
var ignoredSlots = map[string]bool{"BENCH": true, "BN": true, "IR": true, "": true}

// OpponentTracker keeps per-team positional fill counts and budgets from the
// roster payloads that ride along with draft updates.
type OpponentTracker struct {
	mu sync.RWMutex

	// Slots and eligibility of a standard roster in this league, used to
	// derive how many slots accept a given position.
	slots []models.SlotDescriptor

	rosters map[string]map[models.Position]int
	budgets map[string]decimal.Decimal
	sizes   map[string]int
	names   map[string]string
	// SlotMap normalizes raw roster-entry position strings ("SUPER_FLEX",
	// "BN") before counting.
	slotMap map[string]string
}

type Threat struct {
	TeamID        string          `json:"team_id"`
	Name          string          `json:"name"`
	Budget        decimal.Decimal `json:"budget"`
	RosterFilled  int             `json:"roster_filled"`
	RosterEmpty   int             `json:"roster_empty"`
	SpendingPower decimal.Decimal `json:"spending_power"`
}

func NewOpponentTracker(slots []models.SlotDescriptor, slotMap map[string]string) *OpponentTracker {
	return &OpponentTracker{
		slots:   slots,
		rosters: map[string]map[models.Position]int{},
		budgets: map[string]decimal.Decimal{},
		sizes:   map[string]int{},
		names:   map[string]string{},
		slotMap: slotMap,
	}
}

// Update ingests the per-team roster composition from one draft update.
// myAliases are the caller's own team names (lowercased); the own team is
// never tracked as an opponent.
func (t *OpponentTracker) Update(rosters map[string][]models.RosterEntry, teams []models.TeamInfo, myAliases []string) {
	if len(rosters) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	info := map[string]models.TeamInfo{}
	for _, team := range teams {
		if !team.TeamID.Empty() {
			info[string(team.TeamID)] = team
		}
	}

	for teamID, entries := range rosters {
		team, known := info[teamID]
		name := "Team #" + teamID
		if known && team.Name != "" {
			name = team.Name
		}
		if isOwnTeam(name, myAliases) {
			continue
		}

		counts := map[models.Position]int{}
		for _, e := range entries {
			raw := strings.ToUpper(strings.TrimSpace(e.Position))
			if mapped, ok := t.slotMap[raw]; ok {
				raw = mapped
			}
			if ignoredSlots[raw] {
				continue
			}
			pos, err := models.ParsePosition(raw)
			if err != nil {
				continue
			}
			counts[pos]++
		}

		t.rosters[teamID] = counts
		t.names[teamID] = name
		if known {
			if team.RemainingBudget != nil {
				t.budgets[teamID] = *team.RemainingBudget
			}
			if team.RosterSize != nil {
				t.sizes[teamID] = *team.RosterSize
			}
		}
	}
}

// Demand reports how many rivals still need the position against remaining
// supply. The bidding-war flag trips when needers cover at least 75% of the
// remaining players.
func (t *OpponentTracker) Demand(pos models.Position, remainingAtPos int) models.PositionDemand {
	t.mu.RLock()
	defer t.mu.RUnlock()

	maxSlots := 0
	for _, s := range t.slots {
		if s.Bench() {
			continue
		}
		if s.Accepts(pos) {
			maxSlots++
		}
	}

	needing := 0
	for _, counts := range t.rosters {
		if counts[pos] < maxSlots {
			needing++
		}
	}

	denom := remainingAtPos
	if denom < 1 {
		denom = 1
	}
	return models.PositionDemand{
		TeamsNeeding:     needing,
		PlayersRemaining: remainingAtPos,
		ScarcityRatio:    float64(needing) / float64(denom),
		BiddingWarRisk:   needing > 0 && float64(needing) >= float64(remainingAtPos)*0.75,
	}
}

// ThreatLevels ranks opponents by spending power: budget minus $1 per
// remaining roster hole.
func (t *OpponentTracker) ThreatLevels() []Threat {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Threat, 0, len(t.budgets))
	for teamID, budget := range t.budgets {
		filled := 0
		for _, n := range t.rosters[teamID] {
			filled += n
		}
		empty := 0
		if size := t.sizes[teamID]; size > filled {
			empty = size - filled
		}
		power := budget.Sub(decimal.NewFromInt(int64(empty)))
		if power.IsNegative() {
			power = decimal.Zero
		}
		out = append(out, Threat{
			TeamID:        teamID,
			Name:          t.names[teamID],
			Budget:        budget,
			RosterFilled:  filled,
			RosterEmpty:   empty,
			SpendingPower: power,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SpendingPower.Equal(out[j].SpendingPower) {
			return out[i].SpendingPower.GreaterThan(out[j].SpendingPower)
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// Summary is the opponent view for the dashboard.
type OpponentSummary struct {
	TeamCount int                                `json:"team_count"`
	Rosters   map[string]map[models.Position]int `json:"team_rosters"`
	Budgets   map[string]decimal.Decimal         `json:"team_budgets"`
	Names     map[string]string                  `json:"team_names"`
	Threats   []Threat                           `json:"threat_levels"`
}

func (t *OpponentTracker) Summary() OpponentSummary {
	t.mu.RLock()
	rosters := make(map[string]map[models.Position]int, len(t.rosters))
	for k, v := range t.rosters {
		inner := make(map[models.Position]int, len(v))
		for p, n := range v {
			inner[p] = n
		}
		rosters[k] = inner
	}
	budgets := make(map[string]decimal.Decimal, len(t.budgets))
	for k, v := range t.budgets {
		budgets[k] = v
	}
	names := make(map[string]string, len(t.names))
	for k, v := range t.names {
		names[k] = v
	}
	t.mu.RUnlock()

	return OpponentSummary{
		TeamCount: len(rosters),
		Rosters:   rosters,
		Budgets:   budgets,
		Names:     names,
		Threats:   t.ThreatLevels(),
	}
}

func isOwnTeam(name string, aliases []string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, a := range aliases {
		if a == lower {
			return true
		}
	}
	return false
}
