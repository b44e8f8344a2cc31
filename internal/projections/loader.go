// Package projections loads player projection sheets. A draft cannot start
// without one, so load errors here are fatal at startup.
package projections

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"draftroom/internal/models"
	"draftroom/internal/namematch"
)

// Required CSV header columns.
var requiredColumns = []string{"PlayerName", "Position", "ProjectedPoints", "BaselineAAV", "Tier"}

// LoadCSV reads a single projection sheet.
func LoadCSV(path string) ([]models.PlayerProjection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open projections: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read projections header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("projections %s: missing column %q", path, c)
		}
	}

	var out []models.PlayerProjection
	lineNo := 1
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		lineNo++
		proj, err := parseRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("projections %s line %d: %w", path, lineNo, err)
		}
		out = append(out, proj)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("projections %s: no rows", path)
	}
	return out, nil
}

func parseRow(row []string, col map[string]int) (models.PlayerProjection, error) {
	get := func(name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	pos, err := models.ParsePosition(get("Position"))
	if err != nil {
		return models.PlayerProjection{}, err
	}
	points, err := strconv.ParseFloat(get("ProjectedPoints"), 64)
	if err != nil {
		return models.PlayerProjection{}, fmt.Errorf("bad ProjectedPoints: %w", err)
	}
	aav, err := decimal.NewFromString(get("BaselineAAV"))
	if err != nil {
		return models.PlayerProjection{}, fmt.Errorf("bad BaselineAAV: %w", err)
	}
	tier, err := strconv.Atoi(get("Tier"))
	if err != nil {
		return models.PlayerProjection{}, fmt.Errorf("bad Tier: %w", err)
	}

	name := get("PlayerName")
	if name == "" {
		return models.PlayerProjection{}, fmt.Errorf("empty PlayerName")
	}
	return models.PlayerProjection{
		Name:            name,
		Position:        pos,
		ProjectedPoints: points,
		BaselineAAV:     aav,
		Tier:            tier,
	}, nil
}

// LoadMerged loads several sheets and produces weighted-average projections,
// matching players across sheets by normalized name. A player missing from
// some sheets uses only the sheets that carry them.
func LoadMerged(paths []string, weights []float64, logger *zap.Logger) ([]models.PlayerProjection, error) {
	if len(weights) == 0 {
		weights = make([]float64, len(paths))
		for i := range weights {
			weights[i] = 1.0
		}
	}
	if len(weights) != len(paths) {
		return nil, fmt.Errorf("projections: %d paths but %d weights", len(paths), len(weights))
	}

	type source struct {
		proj   models.PlayerProjection
		weight float64
	}
	byKey := map[string][]source{}
	var order []string
	loaded := 0

	for i, path := range paths {
		rows, err := LoadCSV(path)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping projection sheet", zap.String("path", path), zap.Error(err))
			}
			continue
		}
		loaded++
		for _, p := range rows {
			key := namematch.Normalize(p.Name)
			if _, seen := byKey[key]; !seen {
				order = append(order, key)
			}
			byKey[key] = append(byKey[key], source{proj: p, weight: weights[i]})
		}
	}
	if loaded == 0 {
		return nil, fmt.Errorf("projections: no loadable sheets in %v", paths)
	}

	merged := make([]models.PlayerProjection, 0, len(order))
	for _, key := range order {
		sources := byKey[key]
		var totalW, points float64
		aav := decimal.Zero
		best := sources[0]
		for _, s := range sources {
			totalW += s.weight
			points += s.proj.ProjectedPoints * s.weight
			aav = aav.Add(s.proj.BaselineAAV.Mul(decimal.NewFromFloat(s.weight)))
			if s.weight > best.weight {
				best = s
			}
		}
		p := best.proj
		p.ProjectedPoints = points / totalW
		p.BaselineAAV = aav.Div(decimal.NewFromFloat(totalW)).Round(1)
		merged = append(merged, p)
	}
	return merged, nil
}
