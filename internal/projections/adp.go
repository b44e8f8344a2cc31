package projections

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"draftroom/internal/namematch"
)

// LoadADP reads market-consensus auction values, keyed by normalized player
// name. Accepted value columns are AuctionValue or ADPValue; rows with a bad
// value are skipped. ADP is an enrichment, so callers treat errors as
// non-fatal.
func LoadADP(path string) (map[string]decimal.Decimal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open adp: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read adp header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	nameIdx, ok := col["PlayerName"]
	if !ok {
		return nil, fmt.Errorf("adp %s: missing column %q", path, "PlayerName")
	}
	valueIdx, ok := col["AuctionValue"]
	if !ok {
		if valueIdx, ok = col["ADPValue"]; !ok {
			return nil, fmt.Errorf("adp %s: missing column %q or %q", path, "AuctionValue", "ADPValue")
		}
	}

	out := map[string]decimal.Decimal{}
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if nameIdx >= len(row) || valueIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		if name == "" {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSpace(row[valueIdx]))
		if err != nil {
			continue
		}
		out[namematch.Normalize(name)] = v
	}
	return out, nil
}
