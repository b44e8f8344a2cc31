package service

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"draftroom/internal/draft"
	"draftroom/internal/eventlog"
	"draftroom/internal/models"
	"draftroom/internal/ticker"
	"draftroom/internal/valuation"
)

func testStore(t *testing.T) *draft.Store {
	t.Helper()
	slots, err := draft.BuildSlots("QB,RB,RB,FLEX,BENCH", map[string][]string{
		"FLEX":  {"RB", "WR", "TE"},
		"BENCH": {"QB", "RB", "WR", "TE"},
	})
	if err != nil {
		t.Fatalf("build slots: %v", err)
	}
	s := draft.NewStore(draft.Config{
		TeamName:   "My Team",
		LeagueSize: 2,
		Budget:     decimal.NewFromInt(200),
		Slots:      slots,
		Baselines:  map[models.Position]int{models.QB: 2, models.RB: 2},
	}, nil)
	pool := []models.PlayerProjection{
		{Name: "Alpha Quarter", Position: models.QB, ProjectedPoints: 400, BaselineAAV: decimal.NewFromInt(40), Tier: 1},
		{Name: "Bravo Quarter", Position: models.QB, ProjectedPoints: 350, BaselineAAV: decimal.NewFromInt(20), Tier: 1},
		{Name: "Rex Runner", Position: models.RB, ProjectedPoints: 300, BaselineAAV: decimal.NewFromInt(50), Tier: 1},
		{Name: "Sam Runner", Position: models.RB, ProjectedPoints: 250, BaselineAAV: decimal.NewFromInt(30), Tier: 1},
	}
	if err := s.LoadPool(pool); err != nil {
		t.Fatalf("load pool: %v", err)
	}
	return s
}

func testService(t *testing.T, logPath string) *DraftService {
	t.Helper()
	log, err := eventlog.Open(logPath, nil)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	store := testStore(t)
	return &DraftService{
		Store:      store,
		Log:        log,
		Engine:     &valuation.Engine{Strategy: valuation.Profile("balanced", "")},
		Ticker:     ticker.NewBuffer(10),
		MyAliases:  []string{"my team"},
		RosterSize: 5,
	}
}

func saleUpdate(name string, price int64, teamID string) models.DraftUpdate {
	return models.DraftUpdate{
		Teams: []models.TeamInfo{
			{TeamID: "1", Name: "My Team"},
			{TeamID: "2", Name: "Rivals"},
		},
		DraftLog: []models.SaleEntry{
			{PlayerName: name, TeamID: models.FlexID(teamID), BidAmount: decimal.NewFromInt(price)},
		},
	}
}

func TestIngestAppendsAndTicks(t *testing.T) {
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))

	out, err := svc.Ingest(saleUpdate("Rex Runner", 55, "2"))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(out.Result.NewlyDrafted) != 1 {
		t.Fatalf("newly drafted = %d", len(out.Result.NewlyDrafted))
	}
	if svc.Log.Seq() != 1 {
		t.Fatalf("log seq = %d, want 1", svc.Log.Seq())
	}
	if svc.Ticker.Len() == 0 {
		t.Fatalf("no ticker events after sale")
	}
}

func TestKeeperSaleSkipsOverpayAlert(t *testing.T) {
	// A regular sale far over FMV trips the dead-money alert.
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	u := saleUpdate("Rex Runner", 200, "2")
	if _, err := svc.Ingest(u); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !hasEventType(svc.Ticker.Recent(0), ticker.DeadMoney) {
		t.Fatalf("no dead-money alert for a plain overpay")
	}

	// The same price on a keeper entry does not; it was fixed pre-draft.
	svc = testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	u = saleUpdate("Rex Runner", 200, "2")
	u.DraftLog[0].Keeper = true
	if _, err := svc.Ingest(u); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if hasEventType(svc.Ticker.Recent(0), ticker.DeadMoney) {
		t.Fatalf("keeper sale raised a dead-money alert")
	}
	if !hasEventType(svc.Ticker.Recent(0), ticker.PlayerSold) {
		t.Fatalf("keeper sale missing from ticker")
	}
}

func hasEventType(events []ticker.Event, typ ticker.EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestIngestReturnsNominationAdvice(t *testing.T) {
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	bid := decimal.NewFromInt(5)
	u := models.DraftUpdate{
		Nomination: &models.Nomination{PlayerName: "Alpha Quarter"},
		CurrentBid: &bid,
	}
	out, err := svc.Ingest(u)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if out.Advice == nil {
		t.Fatalf("no advice for nomination")
	}
	if out.Advice.Action != models.Buy {
		t.Fatalf("action = %s, want BUY", out.Advice.Action)
	}
}

func TestReplayRebuildsState(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "log.jsonl")

	live := testService(t, logPath)
	if _, err := live.Ingest(saleUpdate("Rex Runner", 55, "2")); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := live.Ingest(saleUpdate("Alpha Quarter", 38, "1")); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := live.Manual("Sam Runner 25 2"); err != nil {
		t.Fatalf("manual: %v", err)
	}
	if _, err := live.Manual("budget 150"); err != nil {
		t.Fatalf("manual budget: %v", err)
	}
	liveSummary := live.Store.Summary()
	live.Log.Close()

	// Fresh process: new store, same log.
	recovered := testService(t, logPath)
	applied, err := recovered.Replay()
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if applied != 4 {
		t.Fatalf("applied = %d, want 4", applied)
	}

	got := recovered.Store.Summary()
	if got.Drafted != liveSummary.Drafted {
		t.Fatalf("drafted = %d, want %d", got.Drafted, liveSummary.Drafted)
	}
	if !got.MyTeam.Budget.Equal(liveSummary.MyTeam.Budget) {
		t.Fatalf("budget = %s, want %s", got.MyTeam.Budget, liveSummary.MyTeam.Budget)
	}
	if got.Inflation != liveSummary.Inflation {
		t.Fatalf("inflation = %v, want %v", got.Inflation, liveSummary.Inflation)
	}
	ps, _ := recovered.Store.Player("Alpha Quarter")
	if !ps.Drafted || ps.DraftedBy != "My Team" {
		t.Fatalf("my acquisition lost in replay: %+v", ps)
	}
	// Replay must not grow the log.
	if recovered.Log.Seq() != 4 {
		t.Fatalf("log seq after replay = %d, want 4", recovered.Log.Seq())
	}
}

func TestManualSold(t *testing.T) {
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	res, err := svc.Manual("Rex Runner 42")
	if err != nil {
		t.Fatalf("manual: %v", err)
	}
	if res.Action != "sold" {
		t.Fatalf("action = %q", res.Action)
	}
	ps, _ := svc.Store.Player("Rex Runner")
	if !ps.Drafted || !ps.Price.Equal(decimal.NewFromInt(42)) || ps.DraftedBy != "Unknown Team" {
		t.Fatalf("sale state: %+v", ps)
	}
	if svc.Log.Seq() != 1 {
		t.Fatalf("mutating command not logged")
	}
}

func TestManualUndoAndBudget(t *testing.T) {
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	if _, err := svc.Manual("Rex Runner 42 Rivals"); err != nil {
		t.Fatalf("sold: %v", err)
	}
	res, err := svc.Manual("undo Rex Runner")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.Action != "undo" {
		t.Fatalf("action = %q", res.Action)
	}
	ps, _ := svc.Store.Player("Rex Runner")
	if ps.Drafted {
		t.Fatalf("player still drafted after undo")
	}

	res, err = svc.Manual("budget 150")
	if err != nil {
		t.Fatalf("budget: %v", err)
	}
	if res.Action != "budget" {
		t.Fatalf("action = %q", res.Action)
	}
	if !svc.Store.MyTeam().Budget.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("budget = %s", svc.Store.MyTeam().Budget)
	}
}

func TestManualNominationIsNotLogged(t *testing.T) {
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	res, err := svc.Manual("nom Alpha Quarter 10")
	if err != nil {
		t.Fatalf("nom: %v", err)
	}
	if res.Action != "nominate" || res.Advice == nil {
		t.Fatalf("result = %+v", res)
	}
	if svc.Log.Seq() != 0 {
		t.Fatalf("valuation-only command was logged")
	}
}

func TestManualErrors(t *testing.T) {
	svc := testService(t, filepath.Join(t.TempDir(), "log.jsonl"))
	if _, err := svc.Manual(""); err == nil {
		t.Fatalf("empty command accepted")
	}
	if _, err := svc.Manual("Totally Unknown 10"); err == nil {
		t.Fatalf("unknown player accepted")
	}
	if _, err := svc.Manual("undo Rex Runner"); err == nil {
		t.Fatalf("undo of undrafted player accepted")
	}
	// Failed commands must not be logged.
	if svc.Log.Seq() != 0 {
		t.Fatalf("failed commands were logged")
	}
}
