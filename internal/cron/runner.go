// Package cronrunner schedules the background jobs that run alongside a live
// draft: periodic results export and a state heartbeat.
package cronrunner

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"draftroom/internal/service"
)

type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

// AddExportJob periodically dumps the running draft results to path, so a
// crash mid-draft never loses the record.
func (r *Runner) AddExportJob(spec string, svc *service.DraftService, path string) (cron.EntryID, error) {
	return r.Add(spec, func(ctx context.Context) {
		if ctx.Err() != nil {
			return
		}
		if err := svc.WriteExport(path); err != nil {
			if r.logger != nil {
				r.logger.Warn("periodic export failed", zap.String("path", path), zap.Error(err))
			}
			return
		}
		if r.logger != nil {
			r.logger.Debug("draft results exported", zap.String("path", path))
		}
	})
}

// AddHeartbeat logs a one-line draft status on a schedule, useful when the
// overlay is down and the operator is watching logs.
func (r *Runner) AddHeartbeat(spec string, svc *service.DraftService) (cron.EntryID, error) {
	return r.Add(spec, func(ctx context.Context) {
		if ctx.Err() != nil || r.logger == nil {
			return
		}
		s := svc.Store.Summary()
		r.logger.Info("draft heartbeat",
			zap.Int("drafted", s.Drafted),
			zap.Int("remaining", s.Remaining),
			zap.Float64("inflation", s.Inflation),
			zap.String("my_budget", s.MyTeam.Budget.String()))
	})
}

func (r *Runner) Start() {
	if r.logger != nil {
		r.logger.Info("cron started")
	}
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	if r.logger != nil {
		r.logger.Info("cron stopped")
	}
}
