package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"draftroom/internal/advisor"
	"draftroom/internal/client/gemini"
	"draftroom/internal/config"
	cronrunner "draftroom/internal/cron"
	"draftroom/internal/draft"
	"draftroom/internal/eventlog"
	"draftroom/internal/handler"
	"draftroom/internal/logger"
	"draftroom/internal/market"
	"draftroom/internal/models"
	"draftroom/internal/projections"
	"draftroom/internal/service"
	"draftroom/internal/ticker"
	"draftroom/internal/valuation"

	"github.com/shopspring/decimal"
)

func main() {
	cfgPath := os.Getenv("DR_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("DR_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var pool []models.PlayerProjection
	if len(cfg.Projections.CSVPaths) > 0 {
		pool, err = projections.LoadMerged(cfg.Projections.CSVPaths, cfg.Projections.Weights, logger)
	} else {
		pool, err = projections.LoadCSV(cfg.Projections.CSVPath)
	}
	if err != nil {
		logger.Fatal("projections load failed", zap.Error(err))
	}

	slots, err := draft.BuildSlots(cfg.Roster.Slots, cfg.Roster.Eligibility)
	if err != nil {
		logger.Fatal("roster config invalid", zap.Error(err))
	}

	baselines := map[models.Position]int{}
	for raw, rank := range cfg.Valuation.Baselines {
		pos, err := models.ParsePosition(raw)
		if err != nil {
			logger.Fatal("baseline config invalid", zap.String("position", raw), zap.Error(err))
		}
		baselines[pos] = rank
	}

	store := draft.NewStore(draft.Config{
		TeamName:       cfg.League.MyTeamName,
		LeagueSize:     cfg.League.Size,
		Budget:         decimal.NewFromInt(cfg.League.Budget),
		Slots:          slots,
		Baselines:      baselines,
		FuzzyThreshold: cfg.Valuation.FuzzyThreshold,
	}, logger)
	if err := store.LoadPool(pool); err != nil {
		logger.Fatal("pool load failed", zap.Error(err))
	}

	if cfg.Projections.ADPCsv != "" {
		if adp, err := projections.LoadADP(cfg.Projections.ADPCsv); err != nil {
			logger.Warn("adp load failed", zap.Error(err))
		} else {
			logger.Info("adp values attached", zap.Int("matched", store.SetADP(adp)))
		}
	}

	// Keepers apply after the pool loads and before event replay, so replayed
	// sales see keeper-adjusted budgets.
	if cfg.Projections.KeepersCsv != "" {
		if keepers, err := projections.LoadKeepers(cfg.Projections.KeepersCsv, logger); err != nil {
			logger.Warn("keepers load failed", zap.Error(err))
		} else if n := store.ApplyKeepers(keepers); n > 0 {
			logger.Info("keepers applied", zap.Int("count", n))
		}
	}

	log, err := eventlog.Open(cfg.EventLog.Path, logger)
	if err != nil {
		logger.Fatal("event log open failed", zap.Error(err))
	}
	defer log.Close()

	profile := valuation.Profile(cfg.Valuation.Strategy, valuation.FlexOnlyPolicy(cfg.Valuation.FlexOnlyPolicy))
	logger.Info("strategy selected", zap.String("profile", profile.Name), zap.String("label", profile.Label))

	tracker := market.NewOpponentTracker(slots, map[string]string{
		"SUPER_FLEX": "SUPERFLEX",
		"BN":         "BENCH",
		"W/R/T":      "FLEX",
	})
	engine := &valuation.Engine{Strategy: profile, Demand: tracker}
	feed := ticker.NewBuffer(50)
	hub := handler.NewHub(logger)

	var aliases []string
	for _, a := range strings.Split(cfg.League.MyTeamName, ",") {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, strings.ToLower(a))
		}
	}

	svc := &service.DraftService{
		Store:      store,
		Log:        log,
		Engine:     engine,
		Tracker:    tracker,
		Ticker:     feed,
		Logger:     logger,
		MyAliases:  aliases,
		RosterSize: len(slots),
		Broadcast:  hub.Broadcast,
	}

	var aiAdvisor *advisor.Advisor
	if cfg.Advisor.Enabled {
		client := gemini.NewClient(
			&http.Client{Timeout: cfg.Advisor.Timeout},
			cfg.Advisor.BaseURL, cfg.Advisor.APIKey, cfg.Advisor.Model)
		aiAdvisor = advisor.New(&advisor.GeminiProvider{Client: client}, engine, store, advisor.Config{
			Timeout:  cfg.Advisor.Timeout,
			TTL:      cfg.Advisor.CacheTTL,
			Cooldown: cfg.Advisor.Cooldown,
			Trips:    cfg.Advisor.RateLimitTrips,
		}, logger)
		svc.Advisor = aiAdvisor
		logger.Info("external advisor enabled", zap.String("model", cfg.Advisor.Model))
	}

	if applied, err := svc.Replay(); err != nil {
		logger.Fatal("event log replay failed", zap.Error(err))
	} else if applied > 0 {
		s := store.Summary()
		logger.Info("state recovered from event log",
			zap.Int("events", applied),
			zap.Int("drafted", s.Drafted),
			zap.String("my_budget", s.MyTeam.Budget.String()))
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	(&handler.HealthHandler{Store: store}).Register(router)
	(&handler.UpdateHandler{Svc: svc}).Register(router)
	(&handler.AdviceHandler{Svc: svc, Advisor: aiAdvisor}).Register(router)
	(&handler.ManualHandler{Svc: svc}).Register(router)
	(&handler.StateHandler{Svc: svc, Ticker: feed}).Register(router)
	(&handler.ExportHandler{Svc: svc}).Register(router)
	hub.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		runner := cronrunner.New(logger, ctx)
		if _, err := runner.AddExportJob(cfg.Cron.ExportSpec, svc, cfg.Cron.ExportPath); err != nil {
			logger.Warn("cron register export failed", zap.Error(err))
		}
		if _, err := runner.AddHeartbeat("0 * * * * *", svc); err != nil {
			logger.Warn("cron register heartbeat failed", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
