package projections

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"draftroom/internal/models"
)

// LoadKeepers reads pre-draft keeper assignments (PlayerName, Team, Price).
// Rows with a bad price, a blank name or team, or a duplicated player are
// skipped with a warning; the returned entries still have to clear name
// resolution against the loaded pool.
func LoadKeepers(path string, logger *zap.Logger) ([]models.KeeperEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keepers: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read keepers header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, c := range []string{"PlayerName", "Team", "Price"} {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("keepers %s: missing column %q", path, c)
		}
	}

	var out []models.KeeperEntry
	seen := map[string]bool{}
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		get := func(name string) string {
			i := col[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		name, team := get("PlayerName"), get("Team")
		if name == "" || team == "" {
			continue
		}
		price, err := decimal.NewFromString(get("Price"))
		if err != nil {
			if logger != nil {
				logger.Warn("keeper row has invalid price", zap.String("name", name))
			}
			continue
		}
		lower := strings.ToLower(name)
		if seen[lower] {
			if logger != nil {
				logger.Warn("duplicate keeper row skipped", zap.String("name", name))
			}
			continue
		}
		seen[lower] = true
		out = append(out, models.KeeperEntry{Name: name, Team: team, Price: price})
	}
	return out, nil
}
