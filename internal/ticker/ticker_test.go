package ticker

import (
	"fmt"
	"testing"
)

func TestPushAndRecent(t *testing.T) {
	b := NewBuffer(10)
	e := b.Push(PlayerSold, "Rex Runner sold", WithPlayer("Rex Runner"), WithTeam("Sharks"))
	if e.Player != "Rex Runner" || e.Team != "Sharks" || e.Type != PlayerSold {
		t.Fatalf("event = %+v", e)
	}
	b.Push(MarketShift, "inflation moved")

	recent := b.Recent(5)
	if len(recent) != 2 {
		t.Fatalf("recent = %d, want 2", len(recent))
	}
	// Newest first.
	if recent[0].Type != MarketShift || recent[1].Type != PlayerSold {
		t.Fatalf("order wrong: %v, %v", recent[0].Type, recent[1].Type)
	}
	if recent[0].ID == recent[1].ID {
		t.Fatalf("event IDs not unique")
	}
}

func TestRingDropsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Push(Nomination, fmt.Sprintf("event %d", i))
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
	recent := b.Recent(0)
	if len(recent) != 3 {
		t.Fatalf("recent = %d, want 3", len(recent))
	}
	if recent[0].Message != "event 4" || recent[2].Message != "event 2" {
		t.Fatalf("wrong window: %q .. %q", recent[0].Message, recent[2].Message)
	}
}

func TestDefaultCapacity(t *testing.T) {
	b := NewBuffer(0)
	for i := 0; i < 60; i++ {
		b.Push(BudgetAlert, "x")
	}
	if b.Len() != 50 {
		t.Fatalf("len = %d, want 50", b.Len())
	}
}
