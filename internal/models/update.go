package models

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexID is a team or player identifier that sources send as either a JSON
// number or a string. It always normalizes to its string form.
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) Empty() bool {
	switch strings.ToLower(string(f)) {
	case "", "null", "undefined", "none":
		return true
	}
	return false
}

type Nomination struct {
	PlayerID         FlexID `json:"playerId,omitempty"`
	PlayerName       string `json:"playerName"`
	NominatingTeamID FlexID `json:"nominatingTeamId,omitempty"`
}

type TeamInfo struct {
	TeamID          FlexID           `json:"teamId,omitempty"`
	Name            string           `json:"name"`
	Abbrev          string           `json:"abbrev,omitempty"`
	TotalBudget     *decimal.Decimal `json:"totalBudget,omitempty"`
	RemainingBudget *decimal.Decimal `json:"remainingBudget,omitempty"`
	RosterSize      *int             `json:"rosterSize,omitempty"`
}

type SaleEntry struct {
	PlayerID   FlexID          `json:"playerId,omitempty"`
	PlayerName string          `json:"playerName"`
	TeamID     FlexID          `json:"teamId,omitempty"`
	BidAmount  decimal.Decimal `json:"bidAmount"`
	Keeper     bool            `json:"keeper,omitempty"`
}

type RosterEntry struct {
	PlayerID   FlexID `json:"playerId,omitempty"`
	PlayerName string `json:"playerName"`
	Position   string `json:"position,omitempty"`
}

// DraftUpdate is the cumulative snapshot the external scraper resubmits on
// every poll. The typed fields are the ones the engine consumes; anything else
// the scraper sends is preserved in Extra for forward compatibility.
type DraftUpdate struct {
	Timestamp  int64                    `json:"timestamp,omitempty"`
	Nomination *Nomination              `json:"currentNomination,omitempty"`
	CurrentBid *decimal.Decimal         `json:"currentBid,omitempty"`
	Teams      []TeamInfo               `json:"teams,omitempty"`
	DraftLog   []SaleEntry              `json:"draftLog,omitempty"`
	Rosters    map[string][]RosterEntry `json:"rosters,omitempty"`
	Source     string                   `json:"source,omitempty"`
	Platform   string                   `json:"platform,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var draftUpdateKnownKeys = map[string]bool{
	"timestamp": true, "currentNomination": true, "currentBid": true,
	"teams": true, "draftLog": true, "rosters": true,
	"source": true, "platform": true,
}

func (u *DraftUpdate) UnmarshalJSON(b []byte) error {
	type alias DraftUpdate
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k := range raw {
		if draftUpdateKnownKeys[k] {
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		a.Extra = raw
	}
	*u = DraftUpdate(a)
	return nil
}

func (u DraftUpdate) MarshalJSON() ([]byte, error) {
	type alias DraftUpdate
	b, err := json.Marshal(alias(u))
	if err != nil {
		return nil, err
	}
	if len(u.Extra) == 0 {
		return b, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range u.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// Bid returns the active bid or zero when no bid is present.
func (u DraftUpdate) Bid() decimal.Decimal {
	if u.CurrentBid == nil {
		return decimal.Zero
	}
	return *u.CurrentBid
}
