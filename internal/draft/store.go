// Package draft holds the authoritative in-memory model of the auction:
// player pool, per-player draft status, team budgets, and the derived
// aggregates every valuation depends on. The store is the sole mutator of
// draft truth; reads hand out copies.
package draft

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"draftroom/internal/models"
	"draftroom/internal/namematch"
)

var (
	ErrUnknownPlayer  = errors.New("player not found in projections")
	ErrAlreadyDrafted = errors.New("player already drafted")
	ErrNotDrafted     = errors.New("player is not drafted")
	ErrEmptyPool      = errors.New("player pool is empty")
)

type Config struct {
	// TeamName may carry comma-separated aliases; the first is the display name.
	TeamName   string
	LeagueSize int
	Budget     decimal.Decimal
	Slots      []models.SlotDescriptor
	// Baselines is the replacement-level rank per position.
	Baselines map[models.Position]int
	// FuzzyThreshold for the name resolver; zero means the default.
	FuzzyThreshold int
}

type InflationPoint struct {
	TS     time.Time `json:"ts"`
	Factor float64   `json:"factor"`
}

// ApplyResult reports what one cumulative update actually changed.
type ApplyResult struct {
	NewlyDrafted  []models.PlayerState
	SkippedNames  []string
	PreInflation  float64
	PostInflation float64
}

// Summary is the JSON-serializable dashboard view of the whole draft.
type Summary struct {
	TotalPlayers  int                        `json:"total_players"`
	Drafted       int                        `json:"drafted"`
	Remaining     int                        `json:"remaining"`
	Inflation     float64                    `json:"inflation_factor"`
	RemainingCash decimal.Decimal            `json:"total_remaining_cash"`
	RemainingAAV  decimal.Decimal            `json:"total_remaining_aav"`
	MyTeam        models.TeamState           `json:"my_team"`
	Need          map[models.Position]int    `json:"positional_need"`
	TeamBudgets   map[string]decimal.Decimal `json:"team_budgets"`
	DraftLogLen   int                        `json:"draft_log_length"`
}

// Store is safe for one writer and many concurrent readers.
type Store struct {
	mu       sync.RWMutex
	cfg      Config
	aliases  []string
	logger   *zap.Logger
	resolver *namematch.Resolver

	players     map[string]*models.PlayerState
	replacement map[models.Position]float64
	teamBudgets map[string]decimal.Decimal
	myTeam      models.TeamState

	remainingAAV  decimal.Decimal
	remainingCash decimal.Decimal
	inflation     float64
	history       []InflationPoint
	draftLogLen   int
}

func NewStore(cfg Config, logger *zap.Logger) *Store {
	var aliases []string
	for _, a := range strings.Split(cfg.TeamName, ",") {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, strings.ToLower(a))
		}
	}
	display := cfg.TeamName
	if i := strings.Index(display, ","); i >= 0 {
		display = strings.TrimSpace(display[:i])
	}

	slots := make([]models.RosterSlot, len(cfg.Slots))
	for i, d := range cfg.Slots {
		slots[i] = models.RosterSlot{Descriptor: d}
	}

	return &Store{
		cfg:         cfg,
		aliases:     aliases,
		logger:      logger,
		resolver:    namematch.NewResolver(cfg.FuzzyThreshold),
		players:     map[string]*models.PlayerState{},
		replacement: map[models.Position]float64{},
		teamBudgets: map[string]decimal.Decimal{},
		myTeam: models.TeamState{
			Name:        display,
			Budget:      cfg.Budget,
			TotalBudget: cfg.Budget,
			Slots:       slots,
		},
		inflation: 1.0,
	}
}

// LoadPool performs the one-time bulk load of projections, computes
// replacement levels and initial VORP, and builds the name resolver index.
func (s *Store) LoadPool(projections []models.PlayerProjection) error {
	if len(projections) == 0 {
		return ErrEmptyPool
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = make(map[string]*models.PlayerState, len(projections))
	display := make(map[string]string, len(projections))
	for _, p := range projections {
		key := namematch.Normalize(p.Name)
		s.players[key] = &models.PlayerState{Projection: p}
		display[key] = p.Name
	}

	s.computeReplacementLevelsLocked()
	s.computeVORPLocked()
	s.recomputeAggregatesLocked()
	s.resolver.BuildIndex(display)

	if s.logger != nil {
		s.logger.Info("player pool loaded",
			zap.Int("players", len(s.players)),
			zap.Int("positions", len(s.replacement)))
	}
	return nil
}

// Resolver exposes identity resolution for callers outside the store.
func (s *Store) Resolver() *namematch.Resolver {
	return s.resolver
}

// SetADP attaches market-consensus auction values, keyed by normalized name,
// to the loaded pool. Returns how many players matched.
func (s *Store) SetADP(values map[string]decimal.Decimal) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := 0
	for key, v := range values {
		ps, ok := s.players[key]
		if !ok || !v.IsPositive() {
			continue
		}
		adp := v
		ps.ADP = &adp
		matched++
	}
	return matched
}

// ApplyKeepers marks pre-draft keeper assignments as drafted before any live
// updates arrive. Unknown and already-drafted players are skipped with a
// warning; aggregates recompute once at the end.
func (s *Store) ApplyKeepers(entries []models.KeeperEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, k := range entries {
		key, ok := s.resolveKeyLocked(k.Name)
		if !ok {
			if s.logger != nil {
				s.logger.Warn("keeper not found in projections", zap.String("name", k.Name))
			}
			continue
		}
		ps := s.players[key]
		if ps.Drafted {
			if s.logger != nil {
				s.logger.Warn("keeper already drafted", zap.String("name", ps.Projection.Name))
			}
			continue
		}
		price := k.Price
		ps.Drafted = true
		ps.Price = &price
		ps.DraftedBy = k.Team
		ps.Keeper = true

		if b, ok := s.teamBudgets[k.Team]; ok {
			s.teamBudgets[k.Team] = b.Sub(price)
		} else {
			s.teamBudgets[k.Team] = s.cfg.Budget.Sub(price)
		}
		if s.isMyTeamLocked(k.Team) {
			s.assignToRosterLocked(ps, price)
		}
		applied++
		if s.logger != nil {
			s.logger.Info("keeper applied",
				zap.String("player", ps.Projection.Name),
				zap.String("team", k.Team),
				zap.String("price", price.String()))
		}
	}
	if applied > 0 {
		s.recomputeAggregatesLocked()
	}
	return applied
}

// ApplyUpdate idempotently ingests a cumulative scraper snapshot: team
// budgets replace wholesale, each not-yet-seen sale is applied, and every
// aggregate is recomputed. Re-applying the same snapshot is a no-op.
func (s *Store) ApplyUpdate(u models.DraftUpdate) ApplyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := ApplyResult{PreInflation: s.inflation}

	newBudgets := map[string]decimal.Decimal{}
	for _, t := range u.Teams {
		name := budgetKey(t)
		if name == "" || t.RemainingBudget == nil {
			continue
		}
		newBudgets[name] = *t.RemainingBudget
	}
	if len(newBudgets) > 0 {
		// The scraper always sends the full team list; replace, don't merge.
		s.teamBudgets = newBudgets
	}

	prev := map[string]bool{}
	for k, ps := range s.players {
		if ps.Drafted {
			prev[k] = true
		}
	}

	for _, sale := range u.DraftLog {
		key, ok := s.resolveKeyLocked(sale.PlayerName)
		if !ok {
			res.SkippedNames = append(res.SkippedNames, sale.PlayerName)
			if s.logger != nil {
				s.logger.Warn("sale entry references unknown player",
					zap.String("name", sale.PlayerName))
			}
			continue
		}
		ps := s.players[key]
		if ps.Drafted {
			continue // already applied on an earlier poll
		}
		price := sale.BidAmount
		ps.Drafted = true
		ps.Price = &price
		ps.Keeper = sale.Keeper
		team := resolveTeamName(sale.TeamID, u.Teams)
		ps.DraftedBy = team
		if s.isMyTeamLocked(team) {
			s.assignToRosterLocked(ps, price)
		}
	}

	for _, t := range u.Teams {
		if s.isMyTeamLocked(t.Name) && t.RemainingBudget != nil {
			s.myTeam.Budget = *t.RemainingBudget
		}
	}

	s.draftLogLen = len(u.DraftLog)
	s.recomputeAggregatesLocked()
	res.PostInflation = s.inflation

	for k, ps := range s.players {
		if ps.Drafted && !prev[k] {
			res.NewlyDrafted = append(res.NewlyDrafted, *ps)
		}
	}
	sort.Slice(res.NewlyDrafted, func(i, j int) bool {
		return res.NewlyDrafted[i].Projection.Name < res.NewlyDrafted[j].Projection.Name
	})
	return res
}

// MarkSold records a sale from the manual correction channel.
func (s *Store) MarkSold(name string, price decimal.Decimal, team string) (models.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.resolveKeyLocked(name)
	if !ok {
		return models.PlayerState{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
	ps := s.players[key]
	if ps.Drafted {
		return *ps, fmt.Errorf("%w: %s for %s", ErrAlreadyDrafted, ps.Projection.Name, ps.Price)
	}
	if team == "" {
		team = "Unknown Team"
	}
	ps.Drafted = true
	ps.Price = &price
	ps.DraftedBy = team
	if s.isMyTeamLocked(team) {
		s.assignToRosterLocked(ps, price)
	}
	s.recomputeAggregatesLocked()
	return *ps, nil
}

// Undo reverses a mistaken sale: the player returns to the available pool,
// any roster slot they held is vacated, and a my-team price is refunded.
func (s *Store) Undo(name string) (models.PlayerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.resolveKeyLocked(name)
	if !ok {
		return models.PlayerState{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, name)
	}
	ps := s.players[key]
	if !ps.Drafted {
		return *ps, fmt.Errorf("%w: %s", ErrNotDrafted, ps.Projection.Name)
	}

	displayLower := strings.ToLower(ps.Projection.Name)
	for i := range s.myTeam.Slots {
		if strings.ToLower(s.myTeam.Slots[i].Occupant) == displayLower {
			s.myTeam.Slots[i].Occupant = ""
		}
	}
	kept := s.myTeam.Acquired[:0]
	for _, a := range s.myTeam.Acquired {
		if strings.ToLower(a.Name) == displayLower {
			s.myTeam.Budget = s.myTeam.Budget.Add(a.Price)
			continue
		}
		kept = append(kept, a)
	}
	s.myTeam.Acquired = kept

	ps.Drafted = false
	ps.Price = nil
	ps.DraftedBy = ""
	ps.Keeper = false
	s.recomputeAggregatesLocked()
	return *ps, nil
}

// SetBudget overrides the own-team budget directly (manual correction).
func (s *Store) SetBudget(b decimal.Decimal) (old decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old = s.myTeam.Budget
	s.myTeam.Budget = b
	for key := range s.teamBudgets {
		if s.isMyTeamLocked(key) {
			s.teamBudgets[key] = b
		}
	}
	s.recomputeAggregatesLocked()
	return old
}

// Reset returns to the post-load, pre-draft baseline. Projections survive.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ps := range s.players {
		ps.Drafted = false
		ps.Price = nil
		ps.DraftedBy = ""
		ps.Keeper = false
	}
	s.teamBudgets = map[string]decimal.Decimal{}
	s.myTeam.Budget = s.myTeam.TotalBudget
	for i := range s.myTeam.Slots {
		s.myTeam.Slots[i].Occupant = ""
	}
	s.myTeam.Acquired = nil
	s.history = nil
	s.draftLogLen = 0
	s.recomputeAggregatesLocked()
}

// ----------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------

// Player resolves a free-text name and returns a copy of the player's state.
func (s *Store) Player(name string) (models.PlayerState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.resolveKeyLocked(name)
	if !ok {
		return models.PlayerState{}, false
	}
	return *s.players[key], true
}

// RemainingPlayers returns undrafted players sorted by VORP descending,
// optionally filtered by position (empty means all).
func (s *Store) RemainingPlayers(pos models.Position) []models.PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remainingLocked(pos)
}

// DraftedPlayers returns drafted players sorted by sale price descending.
func (s *Store) DraftedPlayers() []models.PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.PlayerState
	for _, ps := range s.players {
		if ps.Drafted {
			out = append(out, *ps)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := decimal.Zero, decimal.Zero
		if out[i].Price != nil {
			pi = *out[i].Price
		}
		if out[j].Price != nil {
			pj = *out[j].Price
		}
		if !pi.Equal(pj) {
			return pi.GreaterThan(pj)
		}
		return out[i].Projection.Name < out[j].Projection.Name
	})
	return out
}

// GroupCounts returns (drafted, total) for a (position, tier) scarcity group.
func (s *Store) GroupCounts(pos models.Position, tier int) (drafted, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ps := range s.players {
		if ps.Projection.Position != pos || ps.Projection.Tier != tier {
			continue
		}
		total++
		if ps.Drafted {
			drafted++
		}
	}
	return drafted, total
}

func (s *Store) Inflation() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflation
}

func (s *Store) InflationHistory() []InflationPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InflationPoint, len(s.history))
	copy(out, s.history)
	return out
}

// MyTeam returns a deep copy of the own-team state.
func (s *Store) MyTeam() models.TeamState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.myTeamCopyLocked()
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	drafted := 0
	for _, ps := range s.players {
		if ps.Drafted {
			drafted++
		}
	}
	budgets := make(map[string]decimal.Decimal, len(s.teamBudgets))
	for k, v := range s.teamBudgets {
		budgets[k] = v
	}
	team := s.myTeamCopyLocked()
	return Summary{
		TotalPlayers:  len(s.players),
		Drafted:       drafted,
		Remaining:     len(s.players) - drafted,
		Inflation:     s.inflation,
		RemainingCash: s.remainingCash,
		RemainingAAV:  s.remainingAAV,
		MyTeam:        team,
		Need:          team.PositionalNeed(),
		TeamBudgets:   budgets,
		DraftLogLen:   s.draftLogLen,
	}
}

// ReplacementLevel returns the replacement-level projected points for a position.
func (s *Store) ReplacementLevel(pos models.Position) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replacement[pos]
}

// ----------------------------------------------------------------------
// Internals (callers hold s.mu)
// ----------------------------------------------------------------------

func (s *Store) resolveKeyLocked(name string) (string, bool) {
	key := namematch.Normalize(name)
	if _, ok := s.players[key]; ok {
		return key, true
	}
	resolved, ok := s.resolver.Resolve(name)
	if !ok {
		return "", false
	}
	if _, present := s.players[resolved]; !present {
		return "", false
	}
	return resolved, true
}

func (s *Store) isMyTeamLocked(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, a := range s.aliases {
		if a == lower {
			return true
		}
	}
	return false
}

// assignToRosterLocked slots a newly acquired player: dedicated position slot
// first, then any non-bench flexible slot, bench last.
func (s *Store) assignToRosterLocked(ps *models.PlayerState, price decimal.Decimal) {
	pos := ps.Projection.Position
	open := s.myTeam.OpenSlotIndexesFor(pos)
	if len(open) == 0 {
		if s.logger != nil {
			s.logger.Warn("no open roster slot for acquisition",
				zap.String("player", ps.Projection.Name),
				zap.String("position", string(pos)))
		}
		return
	}

	best := -1
	for _, i := range open {
		if s.myTeam.Slots[i].Descriptor.BaseType == string(pos) {
			best = i
			break
		}
	}
	if best < 0 {
		for _, i := range open {
			if !s.myTeam.Slots[i].Descriptor.Bench() {
				best = i
				break
			}
		}
	}
	if best < 0 {
		best = open[0]
	}

	s.myTeam.Slots[best].Occupant = ps.Projection.Name
	s.myTeam.Acquired = append(s.myTeam.Acquired, models.Acquisition{
		Name:     ps.Projection.Name,
		Position: pos,
		Price:    price,
	})
	s.myTeam.Budget = s.myTeam.Budget.Sub(price)
}

func (s *Store) computeReplacementLevelsLocked() {
	byPos := map[models.Position][]float64{}
	for _, ps := range s.players {
		p := ps.Projection.Position
		byPos[p] = append(byPos[p], ps.Projection.ProjectedPoints)
	}
	s.replacement = make(map[models.Position]float64, len(byPos))
	for pos, points := range byPos {
		sort.Sort(sort.Reverse(sort.Float64Slice(points)))
		rank := s.cfg.Baselines[pos]
		if rank < 1 {
			rank = 1
		}
		idx := rank - 1
		if idx > len(points)-1 {
			idx = len(points) - 1
		}
		s.replacement[pos] = points[idx]
	}
}

func (s *Store) computeVORPLocked() {
	for _, ps := range s.players {
		repl := s.replacement[ps.Projection.Position]
		vorp := ps.Projection.ProjectedPoints - repl
		if vorp < 0 {
			vorp = 0
		}
		ps.VORP = vorp
	}
}

// recomputeAggregatesLocked runs after every mutation: remaining market
// value, remaining cash, inflation, and per-player VONA must move together.
func (s *Store) recomputeAggregatesLocked() {
	aav := decimal.Zero
	for _, ps := range s.players {
		if !ps.Drafted {
			aav = aav.Add(ps.Projection.BaselineAAV)
		}
	}
	s.remainingAAV = aav

	if len(s.teamBudgets) > 0 {
		cash := decimal.Zero
		for _, b := range s.teamBudgets {
			cash = cash.Add(b)
		}
		s.remainingCash = cash
	} else {
		s.remainingCash = s.cfg.Budget.Mul(decimal.NewFromInt(int64(s.cfg.LeagueSize)))
	}

	if s.remainingAAV.IsPositive() {
		s.inflation, _ = s.remainingCash.Div(s.remainingAAV).Float64()
	} else {
		// Nothing left to price; 1.0 signals no scarcity left to measure.
		s.inflation = 1.0
	}
	s.history = append(s.history, InflationPoint{TS: time.Now(), Factor: s.inflation})

	s.computeVONALocked()
}

// computeVONALocked refreshes value-over-next-available for every player.
// VONA depends on the live ranking of remaining players at the position, so
// it is recomputed whenever the remaining set changes.
func (s *Store) computeVONALocked() {
	byPos := map[models.Position][]*models.PlayerState{}
	for _, ps := range s.players {
		if !ps.Drafted {
			p := ps.Projection.Position
			byPos[p] = append(byPos[p], ps)
		}
	}
	for _, group := range byPos {
		sort.Slice(group, func(i, j int) bool {
			if group[i].VORP != group[j].VORP {
				return group[i].VORP > group[j].VORP
			}
			return group[i].Projection.Name < group[j].Projection.Name
		})
		for i, ps := range group {
			if i+1 < len(group) {
				next := group[i+1]
				vona := ps.Projection.ProjectedPoints - next.Projection.ProjectedPoints
				if vona < 0 {
					vona = 0
				}
				ps.VONA = vona
				ps.VONANext = next.Projection.Name
			} else {
				// Last available at the position: VONA is their own VORP.
				ps.VONA = ps.VORP
				ps.VONANext = ""
			}
		}
	}
	for _, ps := range s.players {
		if ps.Drafted {
			ps.VONA = 0
			ps.VONANext = ""
		}
	}
}

func (s *Store) remainingLocked(pos models.Position) []models.PlayerState {
	var out []models.PlayerState
	for _, ps := range s.players {
		if ps.Drafted {
			continue
		}
		if pos != "" && ps.Projection.Position != pos {
			continue
		}
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VORP != out[j].VORP {
			return out[i].VORP > out[j].VORP
		}
		return out[i].Projection.Name < out[j].Projection.Name
	})
	return out
}

func (s *Store) myTeamCopyLocked() models.TeamState {
	team := s.myTeam
	team.Slots = make([]models.RosterSlot, len(s.myTeam.Slots))
	copy(team.Slots, s.myTeam.Slots)
	team.Acquired = make([]models.Acquisition, len(s.myTeam.Acquired))
	copy(team.Acquired, s.myTeam.Acquired)
	return team
}

func budgetKey(t models.TeamInfo) string {
	name := strings.TrimSpace(t.Name)
	switch strings.ToLower(name) {
	case "", "unknown", "null", "undefined", "none":
		if t.TeamID.Empty() {
			return ""
		}
		return string(t.TeamID)
	}
	return name
}

func resolveTeamName(id models.FlexID, teams []models.TeamInfo) string {
	if id.Empty() {
		return ""
	}
	for _, t := range teams {
		if t.TeamID == id {
			return t.Name
		}
	}
	return string(id)
}
