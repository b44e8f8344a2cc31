package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8000" {
		t.Fatalf("http addr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Valuation.FuzzyThreshold != 82 {
		t.Fatalf("fuzzy threshold = %d, want 82", cfg.Valuation.FuzzyThreshold)
	}
	if cfg.Valuation.Strategy != "balanced" || cfg.Valuation.FlexOnlyPolicy != "discount" {
		t.Fatalf("valuation defaults = %+v", cfg.Valuation)
	}
	if cfg.Projections.ADPCsv != "" || cfg.Projections.KeepersCsv != "" {
		t.Fatalf("optional sheets enabled by default: %+v", cfg.Projections)
	}
	if cfg.League.Budget != 200 || cfg.League.Size != 10 {
		t.Fatalf("league defaults = %+v", cfg.League)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DR_VALUATION_FUZZY_THRESHOLD", "90")
	t.Setenv("DR_SERVER_HTTP_ADDR", ":9100")
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Valuation.FuzzyThreshold != 90 {
		t.Fatalf("fuzzy threshold = %d, want 90", cfg.Valuation.FuzzyThreshold)
	}
	if cfg.Server.HTTPAddr != ":9100" {
		t.Fatalf("http addr = %q", cfg.Server.HTTPAddr)
	}
}
