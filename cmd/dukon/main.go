package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dukon/internal/backup"
	"github.com/smallbiznis/dukon/internal/catalog"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/logger"
	"github.com/smallbiznis/dukon/internal/notify"
	"github.com/smallbiznis/dukon/internal/observability/metrics"
	"github.com/smallbiznis/dukon/internal/order"
	"github.com/smallbiznis/dukon/internal/replication"
	"github.com/smallbiznis/dukon/internal/scheduler"
	"github.com/smallbiznis/dukon/internal/server"
	"github.com/smallbiznis/dukon/internal/store"
	"github.com/smallbiznis/dukon/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(NewBotStore),

		// Functional domains
		catalog.Module,
		order.Module,
		notify.Module,
		workflow.Module,
		replication.Module,
		backup.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// NewBotStore opens the bot-side store root. The web root is written only by
// the web frontend and the replication engine, never through the repository.
func NewBotStore(cfg config.Config, log *zap.Logger) (*store.Store, error) {
	return store.New(cfg.BotRoot, log)
}
