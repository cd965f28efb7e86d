package domain

// Repository gives typed access to the bot root's collections. All reads fail
// open to defaults and all writes are best effort, per the store contract.
type Repository interface {
	Products() []Product
	SaveProducts(products []Product)
	FindProduct(id int64) (Product, bool)
	AddProduct(product Product)
	DeleteProduct(id int64) (Product, error)

	Categories() []Category
	SaveCategories(categories []Category)
	FindCategory(id int64) (Category, bool)

	Orders() []Order
	SaveOrders(orders []Order)

	Settings() Settings
	SaveSettings(settings Settings)

	Admins() []int64
	IsAdmin(id int64) bool
	AddAdmin(id int64) bool
}
