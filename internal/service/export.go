package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"draftroom/internal/draft"
	"draftroom/internal/models"
)

// SaleRecord is one completed sale in the export view.
type SaleRecord struct {
	Player   string          `json:"player"`
	Position models.Position `json:"position"`
	Team     string          `json:"team"`
	Price    decimal.Decimal `json:"price"`
	// Baseline is the pre-draft AAV, for post-mortem value analysis.
	Baseline decimal.Decimal `json:"baseline_aav"`
	VORP     float64         `json:"vorp"`
	Tier     int             `json:"tier"`
	Keeper   bool            `json:"is_keeper,omitempty"`
}

// Export is the full end-of-draft (or mid-draft) results dump.
type Export struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Sales       []SaleRecord           `json:"sales"`
	Summary     draft.Summary          `json:"summary"`
	Inflation   []draft.InflationPoint `json:"inflation_history"`
}

func (s *DraftService) ExportResults() Export {
	drafted := s.Store.DraftedPlayers()
	sales := make([]SaleRecord, 0, len(drafted))
	for _, ps := range drafted {
		price := decimal.Zero
		if ps.Price != nil {
			price = *ps.Price
		}
		sales = append(sales, SaleRecord{
			Player:   ps.Projection.Name,
			Position: ps.Projection.Position,
			Team:     ps.DraftedBy,
			Price:    price,
			Baseline: ps.Projection.BaselineAAV,
			VORP:     ps.VORP,
			Tier:     ps.Projection.Tier,
			Keeper:   ps.Keeper,
		})
	}
	return Export{
		GeneratedAt: time.Now(),
		Sales:       sales,
		Summary:     s.Store.Summary(),
		Inflation:   s.Store.InflationHistory(),
	}
}

// WriteExport dumps the current results to path atomically (write temp,
// rename). The cron job calls this on a schedule so a crash never loses the
// running record.
func (s *DraftService) WriteExport(path string) error {
	data, err := json.MarshalIndent(s.ExportResults(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return os.Rename(tmp, path)
}
