package models

import "github.com/shopspring/decimal"

// RosterSlot is a labeled capacity unit holding at most one player name.
type RosterSlot struct {
	Descriptor SlotDescriptor `json:"descriptor"`
	Occupant   string         `json:"occupant,omitempty"`
}

type Acquisition struct {
	Name     string          `json:"name"`
	Position Position        `json:"position"`
	Price    decimal.Decimal `json:"price"`
}

// TeamState tracks the caller's own team: budget, roster slots, and the
// ordered acquisition history.
type TeamState struct {
	Name        string          `json:"name"`
	Budget      decimal.Decimal `json:"budget"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	Slots       []RosterSlot    `json:"slots"`
	Acquired    []Acquisition   `json:"acquired"`
}

func (t *TeamState) OpenSlotCount() int {
	n := 0
	for _, s := range t.Slots {
		if s.Occupant == "" {
			n++
		}
	}
	return n
}

// MaxBid is the budget minus $1 reserved for every other still-empty slot,
// so every remaining slot can always be filled.
func (t *TeamState) MaxBid() decimal.Decimal {
	empty := t.OpenSlotCount()
	if empty <= 1 {
		return t.Budget
	}
	return t.Budget.Sub(decimal.NewFromInt(int64(empty - 1)))
}

// OpenSlotIndexesFor returns the indexes of empty slots that accept the position.
func (t *TeamState) OpenSlotIndexesFor(p Position) []int {
	var out []int
	for i, s := range t.Slots {
		if s.Occupant == "" && s.Descriptor.Accepts(p) {
			out = append(out, i)
		}
	}
	return out
}

// CanRoster reports whether any open slot accepts the position.
func (t *TeamState) CanRoster(p Position) bool {
	return len(t.OpenSlotIndexesFor(p)) > 0
}

// PositionalNeed returns, for every position any slot accepts, the number of
// open slots that can take it.
func (t *TeamState) PositionalNeed() map[Position]int {
	need := map[Position]int{}
	for _, s := range t.Slots {
		for _, p := range s.Descriptor.Eligible {
			if _, ok := need[p]; !ok {
				need[p] = 0
			}
		}
	}
	for p := range need {
		need[p] = len(t.OpenSlotIndexesFor(p))
	}
	return need
}
