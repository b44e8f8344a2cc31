package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"draftroom/internal/eventlog"
	"draftroom/internal/models"
	"draftroom/internal/ticker"
)

// The manual channel mirrors the console corrections an operator types when
// the scraper lags: "Name Price [TeamId]", "budget N", "undo Name",
// "nom Name [Bid]".
var (
	undoRe   = regexp.MustCompile(`(?i)^undo\s+(.+)$`)
	budgetRe = regexp.MustCompile(`(?i)^budget\s+(\d+)$`)
	nomRe    = regexp.MustCompile(`(?i)^nom\s+(.+?)(?:\s+(\d+))?\s*$`)
	soldRe   = regexp.MustCompile(`^(.+?)\s+(\d+)(?:\s+(\S+))?\s*$`)
)

type manualPayload struct {
	Command string `json:"command"`
}

// ManualResult is what one manual command produced.
type ManualResult struct {
	Action  string         `json:"action"`
	Message string         `json:"message"`
	Advice  *models.Advice `json:"advice,omitempty"`
}

// Manual parses and applies one operator command. Mutating commands that
// succeed are appended to the recovery log; "nom" is valuation-only and
// leaves no record.
func (s *DraftService) Manual(cmd string) (ManualResult, error) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ManualResult{}, fmt.Errorf("empty command")
	}

	res, err := s.applyManual(cmd, true)
	if err != nil {
		return res, err
	}
	if res.Action != "nominate" {
		if err := s.Log.Append(eventlog.KindManual, manualPayload{Command: cmd}); err != nil {
			return res, fmt.Errorf("persist command: %w", err)
		}
		s.broadcast()
	}
	return res, nil
}

func (s *DraftService) applyManual(cmd string, live bool) (ManualResult, error) {
	if m := undoRe.FindStringSubmatch(cmd); m != nil {
		ps, err := s.Store.Undo(strings.TrimSpace(m[1]))
		if err != nil {
			return ManualResult{}, err
		}
		if live && s.Ticker != nil {
			s.Ticker.Push(ticker.Undo,
				fmt.Sprintf("UNDO: %s returned to the available pool", ps.Projection.Name),
				ticker.WithPlayer(ps.Projection.Name))
		}
		return ManualResult{
			Action:  "undo",
			Message: fmt.Sprintf("%s is available again", ps.Projection.Name),
		}, nil
	}

	if m := budgetRe.FindStringSubmatch(cmd); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return ManualResult{}, fmt.Errorf("invalid budget %q", m[1])
		}
		old := s.Store.SetBudget(decimal.NewFromInt(n))
		return ManualResult{
			Action:  "budget",
			Message: fmt.Sprintf("budget set to $%d (was $%s)", n, old),
		}, nil
	}

	if m := nomRe.FindStringSubmatch(cmd); m != nil {
		name := strings.TrimSpace(m[1])
		bid := decimal.Zero
		if m[2] != "" {
			n, _ := strconv.ParseInt(m[2], 10, 64)
			bid = decimal.NewFromInt(n)
		}
		adv := s.Engine.Advise(s.Store, name, bid)
		if live && s.Ticker != nil {
			s.Ticker.Push(ticker.Nomination,
				fmt.Sprintf("Nominated: %s at $%s (%s)", name, bid, adv.Action),
				ticker.WithPlayer(name))
		}
		return ManualResult{
			Action:  "nominate",
			Message: fmt.Sprintf("%s: %s up to $%s", name, adv.Action, adv.MaxBid),
			Advice:  &adv,
		}, nil
	}

	if m := soldRe.FindStringSubmatch(cmd); m != nil {
		name := strings.TrimSpace(m[1])
		price, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return ManualResult{}, fmt.Errorf("invalid price %q", m[2])
		}
		team := strings.TrimSpace(m[3])
		ps, err := s.Store.MarkSold(name, decimal.NewFromInt(price), team)
		if err != nil {
			return ManualResult{}, err
		}
		if live && s.Ticker != nil {
			s.Ticker.Push(ticker.PlayerSold,
				fmt.Sprintf("%s sold to %s for $%d (manual)", ps.Projection.Name, ps.DraftedBy, price),
				ticker.WithPlayer(ps.Projection.Name), ticker.WithTeam(ps.DraftedBy))
		}
		if s.Logger != nil && live {
			s.Logger.Info("manual sale recorded",
				zap.String("player", ps.Projection.Name),
				zap.String("team", ps.DraftedBy),
				zap.Int64("price", price))
		}
		return ManualResult{
			Action:  "sold",
			Message: fmt.Sprintf("%s to %s for $%d", ps.Projection.Name, ps.DraftedBy, price),
		}, nil
	}

	return ManualResult{}, fmt.Errorf("unrecognized command %q", cmd)
}
