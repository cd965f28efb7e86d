// Package metrics exposes the application's prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

const (
	SyncDirectionWebToBot = "web_to_bot"
	SyncDirectionBotToWeb = "bot_to_web"
)

// Metrics captures catalog, replication, and backup health signals.
type Metrics struct {
	ordersCreated  prometheus.Counter
	ordersRejected prometheus.Counter
	productsAdded  prometheus.Counter
	notifyFailures prometheus.Counter

	syncRuns    *prometheus.CounterVec
	syncErrors  *prometheus.CounterVec
	filesCopied *prometheus.CounterVec
	backups     prometheus.Counter
}

// New registers the instruments on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dukon_orders_created_total",
			Help: "Orders accepted by the order transaction.",
		}),
		ordersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dukon_orders_rejected_total",
			Help: "Order attempts rejected because the product was missing or sold out.",
		}),
		productsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dukon_products_added_total",
			Help: "Products materialized by the entry workflow.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dukon_notify_failures_total",
			Help: "Notification deliveries that failed, per recipient.",
		}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dukon_sync_runs_total",
			Help: "Directional replication passes executed.",
		}, []string{"direction"}),
		syncErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dukon_sync_errors_total",
			Help: "Directional replication passes that reported an error.",
		}, []string{"direction"}),
		filesCopied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dukon_sync_files_copied_total",
			Help: "Collection files copied between store roots.",
		}, []string{"direction"}),
		backups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dukon_backups_total",
			Help: "Point-in-time backups created.",
		}),
	}
	reg.MustRegister(
		m.ordersCreated,
		m.ordersRejected,
		m.productsAdded,
		m.notifyFailures,
		m.syncRuns,
		m.syncErrors,
		m.filesCopied,
		m.backups,
	)
	return m
}

func (m *Metrics) IncOrderCreated()  { m.ordersCreated.Inc() }
func (m *Metrics) IncOrderRejected() { m.ordersRejected.Inc() }
func (m *Metrics) IncProductAdded()  { m.productsAdded.Inc() }
func (m *Metrics) IncNotifyFailure() { m.notifyFailures.Inc() }

func (m *Metrics) IncSyncRun(direction string) { m.syncRuns.WithLabelValues(direction).Inc() }
func (m *Metrics) IncSyncError(direction string) {
	m.syncErrors.WithLabelValues(direction).Inc()
}
func (m *Metrics) AddFilesCopied(direction string, n int) {
	m.filesCopied.WithLabelValues(direction).Add(float64(n))
}
func (m *Metrics) IncBackup() { m.backups.Inc() }

func provideRegisterer() prometheus.Registerer { return prometheus.DefaultRegisterer }

var Module = fx.Module("metrics",
	fx.Provide(provideRegisterer),
	fx.Provide(New),
)
