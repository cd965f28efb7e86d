package domain

import (
	"errors"
	"time"
)

// Collection file names shared by both store roots. The web frontend reads
// and writes the same files, so the names and key casing are a wire contract.
const (
	ProductsFile   = "products.json"
	CategoriesFile = "categories.json"
	OrdersFile     = "orders.json"
	SettingsFile   = "settings.json"
	AdminsFile     = "admin_ids.json"
)

// SyncFiles are the collections replicated between the two roots. The admin
// list exists only under the bot root and is never replicated.
var SyncFiles = []string{ProductsFile, CategoriesFile, OrdersFile, SettingsFile}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CategoryID  int64     `json:"categoryId"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order references the product that existed at creation time. The product may
// be deleted later; readers tolerate the dangling reference.
type Order struct {
	ID        int64       `json:"id"`
	ProductID int64       `json:"productId"`
	UserName  string      `json:"userName"`
	// RequesterID is the external-messaging user id; the key name is fixed
	// by the shared file format.
	RequesterID int64       `json:"telegramId"`
	Reason      string      `json:"reason"`
	CreatedAt   time.Time   `json:"createdAt"`
	Status      OrderStatus `json:"status"`
}

// Settings is the singleton settings.json record.
type Settings struct {
	BotToken       string `json:"bot_token"`
	NotifyNewOrder bool   `json:"notify_new_order"`
	NotifyLowStock bool   `json:"notify_low_stock"`
	WelcomeMessage string `json:"welcome_message"`
	ContactInfo    string `json:"contact_info"`
}

func DefaultSettings() Settings {
	return Settings{
		NotifyNewOrder: true,
		NotifyLowStock: true,
		WelcomeMessage: "Assalomu alaykum! Mahsulotlar katalogiga xush kelibsiz!",
		ContactInfo:    "Bog'lanish: +998 90 123 45 67",
	}
}

// DefaultCategories is the fixed built-in set materialized the first time the
// categories collection is read empty.
func DefaultCategories(now time.Time) []Category {
	return []Category{
		{ID: 1, Name: "Elektronika", Description: "Elektronik mahsulotlar", Icon: "💻", CreatedAt: now},
		{ID: 2, Name: "Kiyimlar", Description: "Kiyim-kechak", Icon: "👕", CreatedAt: now},
		{ID: 3, Name: "Oziq-ovqat", Description: "Oziq-ovqat mahsulotlari", Icon: "🍕", CreatedAt: now},
		{ID: 4, Name: "Kitoblar", Description: "Kitoblar va nashrlar", Icon: "📚", CreatedAt: now},
	}
}

var (
	ErrNotFound     = errors.New("not_found")
	ErrNotAdmin     = errors.New("not_admin")
	ErrAlreadyAdmin = errors.New("already_admin")
)
