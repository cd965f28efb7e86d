package service

import (
	"github.com/smallbiznis/dukon/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) Categories() []domain.Category {
	return s.repo.Categories()
}

func (s *Service) CategoryProducts(categoryID int64) ([]domain.Product, error) {
	if _, ok := s.repo.FindCategory(categoryID); !ok {
		return nil, domain.ErrNotFound
	}
	var out []domain.Product
	for _, p := range s.repo.Products() {
		if p.CategoryID == categoryID && p.Quantity > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) ProductDetail(id int64) (domain.ProductView, error) {
	product, ok := s.repo.FindProduct(id)
	if !ok {
		return domain.ProductView{}, domain.ErrNotFound
	}
	view := domain.ProductView{Product: product, CategoryName: domain.UnknownCategoryName}
	if category, ok := s.repo.FindCategory(product.CategoryID); ok {
		view.CategoryName = category.Name
	}
	return view, nil
}

func (s *Service) OrdersFor(requesterID int64) []domain.OrderView {
	orders := s.repo.Orders()
	products := s.repo.Products()

	var mine []domain.Order
	for _, o := range orders {
		if o.RequesterID == requesterID {
			mine = append(mine, o)
		}
	}
	if len(mine) > 10 {
		mine = mine[len(mine)-10:]
	}

	out := make([]domain.OrderView, 0, len(mine))
	for i := len(mine) - 1; i >= 0; i-- {
		o := mine[i]
		name := domain.UnknownProductName
		for _, p := range products {
			if p.ID == o.ProductID {
				name = p.Name
				break
			}
		}
		out = append(out, domain.OrderView{
			ID:          o.ID,
			ProductName: name,
			Reason:      o.Reason,
			CreatedAt:   o.CreatedAt,
			Status:      o.Status,
		})
	}
	return out
}

func (s *Service) Stats() domain.Stats {
	products := s.repo.Products()
	orders := s.repo.Orders()

	stats := domain.Stats{
		TotalProducts: len(products),
		Categories:    len(s.repo.Categories()),
		TotalOrders:   len(orders),
	}
	for _, p := range products {
		if p.Quantity > 0 {
			stats.AvailableProducts++
		}
	}
	for _, o := range orders {
		if o.Status == domain.OrderPending {
			stats.PendingOrders++
		}
	}
	return stats
}

// DeleteProduct removes the product by exact id. Orders referencing it are
// left in place; readers resolve the dangling reference to an unknown name.
func (s *Service) DeleteProduct(actorID, productID int64) (domain.Product, error) {
	if !s.repo.IsAdmin(actorID) {
		return domain.Product{}, domain.ErrNotAdmin
	}
	deleted, err := s.repo.DeleteProduct(productID)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product deleted",
		zap.Int64("product_id", productID),
		zap.Int64("actor_id", actorID),
	)
	return deleted, nil
}

func (s *Service) PromoteAdmin(actorID, newAdminID int64) error {
	if !s.repo.IsAdmin(actorID) {
		return domain.ErrNotAdmin
	}
	if !s.repo.AddAdmin(newAdminID) {
		return domain.ErrAlreadyAdmin
	}
	s.log.Info("admin promoted",
		zap.Int64("admin_id", newAdminID),
		zap.Int64("actor_id", actorID),
	)
	return nil
}
