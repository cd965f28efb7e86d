package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/config"
	"github.com/smallbiznis/dukon/internal/notify"
	"github.com/smallbiznis/dukon/internal/observability/metrics"
	"github.com/smallbiznis/dukon/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     catalogdomain.Repository
	Notifier notify.Notifier
	Settings *config.SettingsHolder
	GenID    *snowflake.Node
	Clock    clock.Clock
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	repo     catalogdomain.Repository
	notifier notify.Notifier
	settings *config.SettingsHolder
	genID    *snowflake.Node
	clock    clock.Clock
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("order.service"),
		repo:     p.Repo,
		notifier: p.Notifier,
		settings: p.Settings,
		genID:    p.GenID,
		clock:    p.Clock,
		metrics:  p.Metrics,
	}
}

// CreateOrder appends the order and decrements stock as two independent
// saves. A crash between them leaves an order without its decrement; that
// window is accepted and not retried.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (catalogdomain.Order, error) {
	product, ok := s.repo.FindProduct(req.ProductID)
	if !ok || product.Quantity <= 0 {
		if s.metrics != nil {
			s.metrics.IncOrderRejected()
		}
		return catalogdomain.Order{}, domain.ErrProductUnavailable
	}

	order := catalogdomain.Order{
		ID:          s.genID.Generate().Int64(),
		ProductID:   req.ProductID,
		UserName:    req.UserName,
		RequesterID: req.RequesterID,
		Reason:      req.Reason,
		CreatedAt:   s.clock.Now(),
		Status:      catalogdomain.OrderPending,
	}

	orders := s.repo.Orders()
	s.repo.SaveOrders(append(orders, order))

	remaining := s.decrementStock(req.ProductID)

	s.log.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("product_id", req.ProductID),
		zap.Int64("requester_id", req.RequesterID),
		zap.Int("remaining", remaining),
	)
	if s.metrics != nil {
		s.metrics.IncOrderCreated()
	}

	s.notifyAdmins(ctx, order, product.Name, remaining)

	return order, nil
}

func (s *Service) decrementStock(productID int64) int {
	products := s.repo.Products()
	remaining := 0
	for i := range products {
		if products[i].ID == productID {
			products[i].Quantity--
			if products[i].Quantity < 0 {
				products[i].Quantity = 0
			}
			remaining = products[i].Quantity
			break
		}
	}
	s.repo.SaveProducts(products)
	return remaining
}

// notifyAdmins fans the new-order message out to every admin, then a separate
// low-stock warning when the remaining quantity is at or below the threshold.
// Per-recipient failures are logged and skipped, never propagated.
func (s *Service) notifyAdmins(ctx context.Context, order catalogdomain.Order, productName string, remaining int) {
	settings := s.settings.Get()
	if !settings.NotifyNewOrder {
		return
	}

	admins := s.repo.Admins()
	text := fmt.Sprintf(
		"Yangi buyurtma!\n\nBuyurtma ID: #%d\nMahsulot: %s\nFoydalanuvchi: %s\nSabab: %s\nQolgan miqdor: %d dona",
		order.ID, productName, order.UserName, order.Reason, remaining,
	)
	for _, admin := range admins {
		if err := s.notifier.Send(ctx, admin, text); err != nil {
			s.log.Warn("order notification failed",
				zap.Int64("recipient_id", admin),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.IncNotifyFailure()
			}
		}
	}

	if remaining > domain.LowStockThreshold || !settings.NotifyLowStock {
		return
	}
	warn := fmt.Sprintf("Diqqat! %s mahsuloti kamayib bormoqda!\nQolgan miqdor: %d dona", productName, remaining)
	for _, admin := range admins {
		if err := s.notifier.Send(ctx, admin, warn); err != nil {
			s.log.Warn("low stock notification failed",
				zap.Int64("recipient_id", admin),
				zap.Error(err),
			)
			if s.metrics != nil {
				s.metrics.IncNotifyFailure()
			}
		}
	}
}
