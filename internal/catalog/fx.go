package catalog

import (
	"github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/catalog/repository"
	"github.com/smallbiznis/dukon/internal/catalog/service"
	"github.com/smallbiznis/dukon/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("catalog",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(seedAdmins),
	fx.Invoke(seedCategories),
)

// seedAdmins writes the environment-supplied admin ids the first time the bot
// root has no admin list. An existing list always wins over the seed.
func seedAdmins(repo domain.Repository, cfg config.Config, log *zap.Logger) {
	if len(repo.Admins()) > 0 || len(cfg.AdminSeeds) == 0 {
		return
	}
	for _, id := range cfg.AdminSeeds {
		repo.AddAdmin(id)
	}
	log.Named("catalog").Info("seeded admin list", zap.Int("count", len(cfg.AdminSeeds)))
}

// seedCategories forces the first categories read so the default set is
// materialized before anything else touches the store.
func seedCategories(repo domain.Repository) {
	repo.Categories()
}
