package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFlexIDToleratesNumbersAndStrings(t *testing.T) {
	tests := []struct {
		in    string
		want  FlexID
		empty bool
	}{
		{`"7"`, "7", false},
		{`7`, "7", false},
		{`"team-a"`, "team-a", false},
		{`null`, "", true},
		{`"null"`, "null", true},
		{`"undefined"`, "undefined", true},
	}
	for _, tt := range tests {
		var f FlexID
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if f != tt.want {
			t.Fatalf("unmarshal %s = %q, want %q", tt.in, f, tt.want)
		}
		if f.Empty() != tt.empty {
			t.Fatalf("%q Empty() = %v", f, f.Empty())
		}
	}
}

func TestDraftUpdatePreservesUnknownKeys(t *testing.T) {
	raw := `{
		"timestamp": 123,
		"currentBid": 17,
		"draftLog": [{"playerName": "Rex Runner", "teamId": 2, "bidAmount": 17}],
		"scraperVersion": "1.4.2",
		"debug": {"poll": 9}
	}`
	var u DraftUpdate
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !u.Bid().Equal(decimal.NewFromInt(17)) {
		t.Fatalf("bid = %s", u.Bid())
	}
	if len(u.DraftLog) != 1 || u.DraftLog[0].TeamID != "2" {
		t.Fatalf("draft log = %+v", u.DraftLog)
	}
	if len(u.Extra) != 2 {
		t.Fatalf("extra keys = %v", u.Extra)
	}

	// Round trip keeps the unknown keys for the recovery log.
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round map[string]json.RawMessage
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if _, ok := round["scraperVersion"]; !ok {
		t.Fatalf("scraperVersion dropped: %s", out)
	}
}

func TestBidDefaultsToZero(t *testing.T) {
	var u DraftUpdate
	if !u.Bid().IsZero() {
		t.Fatalf("bid = %s, want 0", u.Bid())
	}
}
