package projections

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"draftroom/internal/models"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sheetA = `PlayerName,Position,ProjectedPoints,BaselineAAV,Tier
Alpha Quarter,QB,400,40,1
Rex Runner,RB,300,50,1
`

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, "a.csv", sheetA)
	rows, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Name != "Alpha Quarter" || rows[0].Position != models.QB {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if rows[0].ProjectedPoints != 400 || !rows[0].BaselineAAV.Equal(decimal.NewFromInt(40)) || rows[0].Tier != 1 {
		t.Fatalf("row 0 values = %+v", rows[0])
	}
}

func TestLoadCSVErrors(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("missing file accepted")
	}
	noCol := writeCSV(t, "nocol.csv", "PlayerName,Position\nA,QB\n")
	if _, err := LoadCSV(noCol); err == nil {
		t.Fatalf("missing columns accepted")
	}
	badRow := writeCSV(t, "bad.csv", "PlayerName,Position,ProjectedPoints,BaselineAAV,Tier\nA,QB,notanumber,5,1\n")
	if _, err := LoadCSV(badRow); err == nil {
		t.Fatalf("bad row accepted")
	}
	empty := writeCSV(t, "empty.csv", "PlayerName,Position,ProjectedPoints,BaselineAAV,Tier\n")
	if _, err := LoadCSV(empty); err == nil {
		t.Fatalf("headers-only sheet accepted")
	}
}

func TestLoadMergedWeightedAverage(t *testing.T) {
	a := writeCSV(t, "a.csv", `PlayerName,Position,ProjectedPoints,BaselineAAV,Tier
Alpha Quarter,QB,400,40,1
`)
	b := writeCSV(t, "b.csv", `PlayerName,Position,ProjectedPoints,BaselineAAV,Tier
Alpha Quarter,QB,300,20,1
Solo Player,RB,200,10,2
`)

	merged, err := LoadMerged([]string{a, b}, []float64{3, 1}, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged = %d, want 2", len(merged))
	}

	var alpha, solo *models.PlayerProjection
	for i := range merged {
		switch merged[i].Name {
		case "Alpha Quarter":
			alpha = &merged[i]
		case "Solo Player":
			solo = &merged[i]
		}
	}
	if alpha == nil || solo == nil {
		t.Fatalf("players missing: %+v", merged)
	}
	// (400*3 + 300*1) / 4 = 375.
	if alpha.ProjectedPoints != 375 {
		t.Fatalf("alpha points = %v, want 375", alpha.ProjectedPoints)
	}
	// (40*3 + 20*1) / 4 = 35.
	if !alpha.BaselineAAV.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("alpha AAV = %s, want 35", alpha.BaselineAAV)
	}
	// Present in one sheet only: that sheet's values pass through.
	if solo.ProjectedPoints != 200 || !solo.BaselineAAV.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("solo = %+v", solo)
	}
}

func TestLoadMergedSkipsMissingSheets(t *testing.T) {
	a := writeCSV(t, "a.csv", sheetA)
	merged, err := LoadMerged([]string{a, filepath.Join(t.TempDir(), "gone.csv")}, nil, nil)
	if err != nil {
		t.Fatalf("merge with missing sheet: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged = %d, want 2", len(merged))
	}

	if _, err := LoadMerged([]string{filepath.Join(t.TempDir(), "gone.csv")}, nil, nil); err == nil {
		t.Fatalf("zero loadable sheets accepted")
	}
}
