package repository

import (
	"github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store *store.Store
	Clock clock.Clock
	Log   *zap.Logger
}

type repo struct {
	store *store.Store
	clock clock.Clock
	log   *zap.Logger
}

func Provide(p Params) domain.Repository {
	return &repo{
		store: p.Store,
		clock: p.Clock,
		log:   p.Log.Named("catalog.repository"),
	}
}

func (r *repo) Products() []domain.Product {
	return store.Load(r.store, domain.ProductsFile, []domain.Product{})
}

func (r *repo) SaveProducts(products []domain.Product) {
	store.Save(r.store, domain.ProductsFile, products)
}

func (r *repo) FindProduct(id int64) (domain.Product, bool) {
	for _, p := range r.Products() {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (r *repo) AddProduct(product domain.Product) {
	products := r.Products()
	products = append(products, product)
	r.SaveProducts(products)
}

func (r *repo) DeleteProduct(id int64) (domain.Product, error) {
	products := r.Products()
	for i, p := range products {
		if p.ID == id {
			r.SaveProducts(append(products[:i], products[i+1:]...))
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

// Categories seeds and persists the fixed default set the first time the
// collection is empty. Re-running against a non-empty collection is a no-op.
func (r *repo) Categories() []domain.Category {
	categories := store.Load(r.store, domain.CategoriesFile, []domain.Category{})
	if len(categories) == 0 {
		categories = domain.DefaultCategories(r.clock.Now())
		r.SaveCategories(categories)
		r.log.Info("seeded default categories", zap.Int("count", len(categories)))
	}
	return categories
}

func (r *repo) SaveCategories(categories []domain.Category) {
	store.Save(r.store, domain.CategoriesFile, categories)
}

func (r *repo) FindCategory(id int64) (domain.Category, bool) {
	for _, c := range r.Categories() {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Category{}, false
}

func (r *repo) Orders() []domain.Order {
	return store.Load(r.store, domain.OrdersFile, []domain.Order{})
}

func (r *repo) SaveOrders(orders []domain.Order) {
	store.Save(r.store, domain.OrdersFile, orders)
}

func (r *repo) Settings() domain.Settings {
	return store.Load(r.store, domain.SettingsFile, domain.DefaultSettings())
}

func (r *repo) SaveSettings(settings domain.Settings) {
	store.Save(r.store, domain.SettingsFile, settings)
}

func (r *repo) Admins() []int64 {
	return store.Load(r.store, domain.AdminsFile, []int64{})
}

func (r *repo) IsAdmin(id int64) bool {
	for _, admin := range r.Admins() {
		if admin == id {
			return true
		}
	}
	return false
}

// AddAdmin appends id to the admin list, preventing duplicates. It reports
// whether the list changed.
func (r *repo) AddAdmin(id int64) bool {
	admins := r.Admins()
	for _, admin := range admins {
		if admin == id {
			return false
		}
	}
	store.Save(r.store, domain.AdminsFile, append(admins, id))
	return true
}
