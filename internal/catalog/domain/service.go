package domain

import "time"

// Service exposes the read views and admin operations over the catalog.
type Service interface {
	Categories() []Category
	// CategoryProducts lists in-stock products for one category.
	CategoryProducts(categoryID int64) ([]Product, error)
	ProductDetail(id int64) (ProductView, error)
	// OrdersFor returns the requester's orders, newest first, capped at 10.
	OrdersFor(requesterID int64) []OrderView
	Stats() Stats

	DeleteProduct(actorID, productID int64) (Product, error)
	PromoteAdmin(actorID, newAdminID int64) error
}

// ProductView resolves the advisory category reference; a dangling categoryId
// degrades to CategoryName "Kategoriyasiz", never an error.
type ProductView struct {
	Product
	CategoryName string `json:"categoryName"`
}

// OrderView resolves the product reference; a deleted product renders as
// "Noma'lum mahsulot".
type OrderView struct {
	ID          int64       `json:"id"`
	ProductName string      `json:"productName"`
	Reason      string      `json:"reason"`
	CreatedAt   time.Time   `json:"createdAt"`
	Status      OrderStatus `json:"status"`
}

type Stats struct {
	TotalProducts     int `json:"totalProducts"`
	AvailableProducts int `json:"availableProducts"`
	Categories        int `json:"categories"`
	TotalOrders       int `json:"totalOrders"`
	PendingOrders     int `json:"pendingOrders"`
}

const (
	UnknownCategoryName = "Kategoriyasiz"
	UnknownProductName  = "Noma'lum mahsulot"
)
