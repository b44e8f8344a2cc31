package draft

import (
	"fmt"
	"strings"

	"draftroom/internal/models"
)

// BuildSlots turns a comma-separated slot type list ("QB,RB,RB,FLEX,BENCH")
// and an eligibility table into labeled slot descriptors. Duplicate types get
// numbered labels (RB1, RB2); singletons keep the bare type as label. All
// eligibility is resolved here once, so nothing downstream parses slot labels.
func BuildSlots(slotsCSV string, eligibility map[string][]string) ([]models.SlotDescriptor, error) {
	raw := strings.Split(slotsCSV, ",")
	var types []string
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			types = append(types, s)
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("roster slots: empty slot list %q", slotsCSV)
	}

	counts := map[string]int{}
	for _, t := range types {
		counts[t]++
	}

	seen := map[string]int{}
	out := make([]models.SlotDescriptor, 0, len(types))
	for _, t := range types {
		seen[t]++
		label := t
		if counts[t] > 1 {
			label = fmt.Sprintf("%s%d", t, seen[t])
		}

		eligRaw, ok := eligibility[t]
		if !ok {
			// A bare position slot accepts only itself.
			eligRaw = []string{t}
		}
		elig := make([]models.Position, 0, len(eligRaw))
		for _, e := range eligRaw {
			p, err := models.ParsePosition(e)
			if err != nil {
				return nil, fmt.Errorf("roster slot %s: %w", t, err)
			}
			elig = append(elig, p)
		}
		out = append(out, models.SlotDescriptor{Label: label, BaseType: t, Eligible: elig})
	}
	return out, nil
}
