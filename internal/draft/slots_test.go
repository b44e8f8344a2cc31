package draft

import (
	"testing"

	"draftroom/internal/models"
)

func TestBuildSlotsLabelsDuplicates(t *testing.T) {
	slots, err := BuildSlots("QB, RB,RB ,FLEX,BENCH", map[string][]string{
		"FLEX":  {"RB", "WR", "TE"},
		"BENCH": {"QB", "RB", "WR", "TE"},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	labels := make([]string, len(slots))
	for i, s := range slots {
		labels[i] = s.Label
	}
	want := []string{"QB", "RB1", "RB2", "FLEX", "BENCH"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}

	// A bare position slot accepts only itself.
	if !slots[0].Dedicated() || !slots[0].Accepts(models.QB) || slots[0].Accepts(models.RB) {
		t.Fatalf("QB slot eligibility = %+v", slots[0])
	}
	if !slots[3].Accepts(models.TE) || slots[3].Accepts(models.QB) {
		t.Fatalf("FLEX eligibility = %+v", slots[3])
	}
	if !slots[4].Bench() || slots[0].Bench() {
		t.Fatalf("bench detection wrong")
	}
}

func TestBuildSlotsErrors(t *testing.T) {
	if _, err := BuildSlots("", nil); err == nil {
		t.Fatalf("empty slot list accepted")
	}
	if _, err := BuildSlots("QB,XX", nil); err == nil {
		t.Fatalf("unknown position accepted")
	}
	if _, err := BuildSlots("FLEX", map[string][]string{"FLEX": {"RB", "??"}}); err == nil {
		t.Fatalf("bad eligibility accepted")
	}
}
