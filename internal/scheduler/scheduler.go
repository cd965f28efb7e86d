// Package scheduler owns the process's long-lived background loops: the
// replication auto-sync and the workflow session reaper.
package scheduler

import (
	"context"
	"time"

	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/replication"
	"github.com/smallbiznis/dukon/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Engine   *replication.Engine
	Sessions *workflow.Manager
}

type Scheduler struct {
	cfg      config.Config
	log      *zap.Logger
	engine   *replication.Engine
	sessions *workflow.Manager
}

func New(p Params) *Scheduler {
	return &Scheduler{
		cfg:      p.Cfg,
		log:      p.Log.Named("scheduler"),
		engine:   p.Engine,
		sessions: p.Sessions,
	}
}

// RunForever blocks until ctx is cancelled. Auto-sync is disabled when the
// configured interval is zero; the session reaper always runs.
func (s *Scheduler) RunForever(ctx context.Context) {
	if s.cfg.SyncInterval > 0 {
		go s.engine.AutoSync(ctx, s.cfg.SyncInterval)
	} else {
		s.log.Info("auto sync disabled")
	}

	reapEvery := s.cfg.SessionTTL
	if reapEvery <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(reapEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sessions.Reap()
		}
	}
}

func start(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(start),
)
