package models

import (
	"fmt"
	"strings"
)

// Position is the closed set of player positions across supported sports.
type Position string

const (
	// Football.
	QB  Position = "QB"
	RB  Position = "RB"
	WR  Position = "WR"
	TE  Position = "TE"
	K   Position = "K"
	DEF Position = "DEF"
	// Basketball.
	PG Position = "PG"
	SG Position = "SG"
	SF Position = "SF"
	PF Position = "PF"
	C  Position = "C"
)

var validPositions = map[Position]bool{
	QB: true, RB: true, WR: true, TE: true, K: true, DEF: true,
	PG: true, SG: true, SF: true, PF: true, C: true,
}

func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToUpper(strings.TrimSpace(s)))
	if !validPositions[p] {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// SlotDescriptor describes one roster capacity unit: a label unique within the
// roster, the base slot type it was built from, and the positions it accepts.
// Built once at roster construction; no string parsing at decision time.
type SlotDescriptor struct {
	Label    string
	BaseType string
	Eligible []Position
}

func (s SlotDescriptor) Accepts(p Position) bool {
	for _, e := range s.Eligible {
		if e == p {
			return true
		}
	}
	return false
}

// Dedicated reports whether the slot accepts exactly one position.
func (s SlotDescriptor) Dedicated() bool {
	return len(s.Eligible) == 1
}

func (s SlotDescriptor) Bench() bool {
	return s.BaseType == "BENCH"
}
