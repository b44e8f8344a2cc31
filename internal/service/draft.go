// Package service coordinates the draft store, recovery log, market models,
// and ticker behind the operations the HTTP surface exposes. Every mutation
// completes fully (ingest, recompute, durable append) before it returns.
package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"draftroom/internal/advisor"
	"draftroom/internal/draft"
	"draftroom/internal/eventlog"
	"draftroom/internal/market"
	"draftroom/internal/models"
	"draftroom/internal/ticker"
	"draftroom/internal/valuation"
)

type DraftService struct {
	Store   *draft.Store
	Log     *eventlog.Log
	Engine  *valuation.Engine
	Advisor *advisor.Advisor
	Tracker *market.OpponentTracker
	Ticker  *ticker.Buffer
	Logger  *zap.Logger

	// MyAliases are the lowercased own-team names, for opponent filtering.
	MyAliases []string
	// RosterSize drives low-budget alerts for rival teams.
	RosterSize int

	// Broadcast, when set, pushes a dashboard snapshot after each mutation.
	Broadcast func(snapshot any)
}

// IngestOutcome summarizes what one scraper update changed.
type IngestOutcome struct {
	Result draft.ApplyResult
	// Advice is set when the update carries an active nomination.
	Advice *models.Advice
}

// Ingest applies one cumulative scraper snapshot: idempotent state update,
// market models, ticker events, then the durable log append.
func (s *DraftService) Ingest(u models.DraftUpdate) (IngestOutcome, error) {
	res := s.Store.ApplyUpdate(u)

	if s.Tracker != nil && len(u.Rosters) > 0 {
		s.Tracker.Update(u.Rosters, u.Teams, s.MyAliases)
	}

	s.recordTickerEvents(u, res)

	if err := s.Log.Append(eventlog.KindDraftUpdate, u); err != nil {
		return IngestOutcome{}, fmt.Errorf("persist update: %w", err)
	}

	out := IngestOutcome{Result: res}
	if u.Nomination != nil && u.Nomination.PlayerName != "" {
		adv := s.Engine.Advise(s.Store, u.Nomination.PlayerName, u.Bid())
		out.Advice = &adv
		if s.Advisor != nil {
			s.Advisor.Precompute(u.Nomination.PlayerName, u.Bid())
		}
	}

	s.broadcast()
	return out, nil
}

// Advice runs the pure engine for a player at an optional hypothetical bid.
func (s *DraftService) Advice(player string, bid decimal.Decimal) models.Advice {
	return s.Engine.Advise(s.Store, player, bid)
}

// Replay reconstructs state from the recovery log against a freshly loaded
// pool. Nothing is re-appended; malformed or unappliable records are skipped.
func (s *DraftService) Replay() (int, error) {
	records, err := s.Log.Replay()
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, rec := range records {
		switch rec.Kind {
		case eventlog.KindDraftUpdate:
			var u models.DraftUpdate
			if err := json.Unmarshal(rec.Payload, &u); err != nil {
				if s.Logger != nil {
					s.Logger.Warn("skip replay record", zap.Int64("seq", rec.Seq), zap.Error(err))
				}
				continue
			}
			s.Store.ApplyUpdate(u)
			if s.Tracker != nil && len(u.Rosters) > 0 {
				s.Tracker.Update(u.Rosters, u.Teams, s.MyAliases)
			}
			applied++
		case eventlog.KindManual:
			var payload manualPayload
			if err := json.Unmarshal(rec.Payload, &payload); err != nil {
				if s.Logger != nil {
					s.Logger.Warn("skip replay record", zap.Int64("seq", rec.Seq), zap.Error(err))
				}
				continue
			}
			// Valuation-only commands are not replayed.
			if cmd := strings.TrimSpace(payload.Command); cmd != "" && !strings.HasPrefix(strings.ToLower(cmd), "nom ") {
				if _, err := s.applyManual(cmd, false); err != nil && s.Logger != nil {
					s.Logger.Warn("manual replay failed", zap.Int64("seq", rec.Seq),
						zap.String("command", cmd), zap.Error(err))
				}
				applied++
			}
		}
	}
	return applied, nil
}

func (s *DraftService) recordTickerEvents(u models.DraftUpdate, res draft.ApplyResult) {
	if s.Ticker == nil {
		return
	}
	inflation := s.Store.Inflation()
	for _, ps := range res.NewlyDrafted {
		team := ps.DraftedBy
		if team == "" {
			team = "Unknown"
		}
		fmv := ps.Projection.BaselineAAV.Mul(decimal.NewFromFloat(inflation)).Round(1)
		s.Ticker.Push(ticker.PlayerSold,
			fmt.Sprintf("%s sold to %s for $%s (FMV $%s)", ps.Projection.Name, team, ps.Price, fmv),
			ticker.WithPlayer(ps.Projection.Name), ticker.WithTeam(team))

		// Keeper prices were fixed before the auction; they are not overpays.
		if ps.Keeper {
			continue
		}
		if alert := market.CheckOverpay(ps, res.PreInflation); alert != nil {
			s.Ticker.Push(ticker.DeadMoney,
				fmt.Sprintf("OVERPAY: %s paid $%s for %s (FMV $%s, +%.1f%%)",
					alert.Team, alert.Price, alert.PlayerName, alert.FMVAtSale, alert.OverpayPct),
				ticker.WithPlayer(alert.PlayerName), ticker.WithTeam(alert.Team),
				ticker.WithDetails(alert))
		}
	}

	if len(res.NewlyDrafted) > 0 {
		if shift := market.CheckMarketShift(res.PreInflation, res.PostInflation); shift != nil {
			dir := "down"
			if shift.Up {
				dir = "up"
			}
			s.Ticker.Push(ticker.MarketShift,
				fmt.Sprintf("MARKET SHIFT: inflation moved %s to %.3fx", dir, shift.Post),
				ticker.WithDetails(shift))
		}
	}

	for _, t := range u.Teams {
		if t.RemainingBudget == nil || t.RosterSize == nil {
			continue
		}
		empty := s.RosterSize - *t.RosterSize
		if empty <= 0 {
			continue
		}
		if t.RemainingBudget.LessThanOrEqual(decimal.NewFromInt(int64(empty + 2))) {
			s.Ticker.Push(ticker.BudgetAlert,
				fmt.Sprintf("BUDGET ALERT: %s has $%s for %d slots", t.Name, t.RemainingBudget, empty),
				ticker.WithTeam(t.Name))
		}
	}
}

func (s *DraftService) broadcast() {
	if s.Broadcast == nil {
		return
	}
	s.Broadcast(s.Snapshot())
}

// Snapshot is the full dashboard view pushed over the websocket after each
// mutation.
type Snapshot struct {
	TS        time.Time              `json:"ts"`
	Summary   draft.Summary          `json:"summary"`
	Opponents market.OpponentSummary `json:"opponents"`
	Ticker    []ticker.Event         `json:"ticker"`
}

func (s *DraftService) Snapshot() Snapshot {
	snap := Snapshot{TS: time.Now(), Summary: s.Store.Summary()}
	if s.Tracker != nil {
		snap.Opponents = s.Tracker.Summary()
	}
	if s.Ticker != nil {
		snap.Ticker = s.Ticker.Recent(10)
	}
	return snap
}
