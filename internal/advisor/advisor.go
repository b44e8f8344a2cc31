// Package advisor consults an external AI provider for second-opinion draft
// advice. The provider is strictly best-effort: calls run off the mutation
// path against a snapshot, time out hard, and always fall back to the
// engine's own recommendation.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"draftroom/internal/draft"
	"draftroom/internal/models"
	"draftroom/internal/valuation"
)

// ErrRateLimited must be returned by providers on quota errors so the
// advisor can open its cooldown window.
var ErrRateLimited = errors.New("advisor: rate limited")

// Suggestion is the provider's parsed reply.
type Suggestion struct {
	Action    string `json:"action"`
	MaxBid    int64  `json:"max_bid"`
	Reasoning string `json:"reasoning"`
}

// Provider is a pluggable external advice source.
type Provider interface {
	Name() string
	Suggest(ctx context.Context, prompt string) (Suggestion, error)
}

type cacheKey struct {
	player string
	bucket int64
}

type cacheEntry struct {
	advice models.Advice
	at     time.Time
}

type Config struct {
	Timeout time.Duration
	TTL     time.Duration
	// Cooldown is how long the provider is skipped entirely after Trips
	// consecutive rate-limit failures.
	Cooldown time.Duration
	Trips    int
}

type Advisor struct {
	provider Provider
	engine   *valuation.Engine
	store    *draft.Store
	logger   *zap.Logger
	cfg      Config

	mu            sync.Mutex
	cache         map[cacheKey]cacheEntry
	inflight      map[cacheKey]struct{}
	rlFailures    int
	cooldownUntil time.Time

	now func() time.Time
}

func New(provider Provider, engine *valuation.Engine, store *draft.Store, cfg Config, logger *zap.Logger) *Advisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if cfg.Trips <= 0 {
		cfg.Trips = 3
	}
	return &Advisor{
		provider: provider,
		engine:   engine,
		store:    store,
		logger:   logger,
		cfg:      cfg,
		cache:    map[cacheKey]cacheEntry{},
		inflight: map[cacheKey]struct{}{},
		now:      time.Now,
	}
}

// Advise returns advisor-enhanced advice when a fresh provider answer is
// available or obtainable within the timeout, and engine advice otherwise.
// Concurrent calls for the same (player, bid bucket) are collapsed: only one
// provider call runs, later callers get the engine fallback immediately.
func (a *Advisor) Advise(ctx context.Context, name string, bid decimal.Decimal) models.Advice {
	engineAdvice := a.engine.Advise(a.store, name, bid)
	if a.provider == nil {
		return engineAdvice
	}

	key := a.key(name, bid)

	a.mu.Lock()
	if entry, ok := a.cache[key]; ok && a.now().Sub(entry.at) < a.cfg.TTL {
		a.mu.Unlock()
		return entry.advice
	}
	if a.now().Before(a.cooldownUntil) {
		a.mu.Unlock()
		return engineAdvice
	}
	if _, busy := a.inflight[key]; busy {
		a.mu.Unlock()
		return engineAdvice
	}
	a.inflight[key] = struct{}{}
	a.mu.Unlock()

	advice := a.consult(ctx, key, name, bid, engineAdvice)

	a.mu.Lock()
	delete(a.inflight, key)
	a.cache[key] = cacheEntry{advice: advice, at: a.now()}
	a.mu.Unlock()
	return advice
}

// Precompute warms the cache without blocking the caller.
func (a *Advisor) Precompute(name string, bid decimal.Decimal) {
	if a.provider == nil {
		return
	}
	go a.Advise(context.Background(), name, bid)
}

func (a *Advisor) consult(ctx context.Context, key cacheKey, name string, bid decimal.Decimal, engineAdvice models.Advice) models.Advice {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	prompt := a.buildPrompt(name, bid, engineAdvice)
	suggestion, err := a.provider.Suggest(cctx, prompt)
	if err != nil {
		a.noteFailure(err)
		if a.logger != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("advisor call failed, using engine advice",
				zap.String("provider", a.provider.Name()),
				zap.String("player", name),
				zap.Error(err))
		}
		return engineAdvice
	}

	a.mu.Lock()
	a.rlFailures = 0
	a.mu.Unlock()

	merged := engineAdvice
	switch models.Action(suggestion.Action) {
	case models.Buy, models.Pass, models.PriceEnforce:
		merged.Action = models.Action(suggestion.Action)
	}
	if suggestion.MaxBid > 0 {
		// The engine's budget cap still binds whatever the provider says.
		proposed := decimal.NewFromInt(suggestion.MaxBid)
		myTeam := a.store.MyTeam()
		budgetMax := myTeam.MaxBid()
		merged.MaxBid = decimal.Min(proposed, budgetMax)
	}
	if suggestion.Reasoning != "" {
		merged.Reasoning = suggestion.Reasoning
	}
	merged.Source = "advisor"
	return merged
}

func (a *Advisor) noteFailure(err error) {
	if !errors.Is(err, ErrRateLimited) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rlFailures++
	if a.rlFailures >= a.cfg.Trips {
		a.cooldownUntil = a.now().Add(a.cfg.Cooldown)
		a.rlFailures = 0
		if a.logger != nil {
			a.logger.Warn("advisor in cooldown after repeated rate limits",
				zap.Time("until", a.cooldownUntil))
		}
	}
}

// key buckets bids into $2 increments so tiny bid moves reuse the cache.
func (a *Advisor) key(name string, bid decimal.Decimal) cacheKey {
	bucket := bid.IntPart() / 2 * 2
	return cacheKey{player: strings.ToLower(strings.TrimSpace(name)), bucket: bucket}
}

func (a *Advisor) buildPrompt(name string, bid decimal.Decimal, engineAdvice models.Advice) string {
	summary := a.store.Summary()
	team := summary.MyTeam

	var needs []string
	for _, s := range team.Slots {
		if s.Occupant == "" {
			needs = append(needs, s.Descriptor.Label)
		}
	}
	needsStr := "FULL"
	if len(needs) > 0 {
		needsStr = strings.Join(needs, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert fantasy auction draft advisor. Respond with only JSON.\n\n")
	fmt.Fprintf(&b, "CURRENT SITUATION:\n")
	fmt.Fprintf(&b, "- Player nominated: %s\n- Current bid: $%s\n", name, bid)
	fmt.Fprintf(&b, "- Engine FMV: $%s (inflation-adjusted)\n- Engine VORP: %.1f\n", engineAdvice.FMV, engineAdvice.VORP)
	fmt.Fprintf(&b, "- Scarcity multiplier: %.2fx\n- Engine recommendation: %s\n\n", engineAdvice.Scarcity, engineAdvice.Action)
	fmt.Fprintf(&b, "MY TEAM:\n- Budget remaining: $%s of $%s\n- Unfilled slots: %s\n- Max affordable bid: $%s\n\n",
		team.Budget, team.TotalBudget, needsStr, team.MaxBid())
	fmt.Fprintf(&b, "ROOM STATE:\n- Inflation factor: %.3f\n- Players remaining: %d of %d\n\n",
		summary.Inflation, summary.Remaining, summary.TotalPlayers)
	fmt.Fprintf(&b, `Respond with ONLY valid JSON: {"action": "BUY"|"PASS"|"PRICE_ENFORCE", "max_bid": <integer>, "reasoning": "<1-2 sentences>"}`)
	return b.String()
}
