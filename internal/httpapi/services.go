package httpapi

//go:generate mockgen -destination=mock_services_test.go -package=httpapi . OrderService,AccountService,CatalogService,ContactService,AdminService

import (
	"context"

	"github.com/safar/medstore/internal/admin"
	"github.com/safar/medstore/internal/auth"
	"github.com/safar/medstore/internal/catalog"
	"github.com/safar/medstore/internal/models"
	"github.com/safar/medstore/internal/ordering"
	"github.com/safar/medstore/internal/store"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, identity string, medicineID int64, quantity string) (*ordering.Confirmation, error)
	History(ctx context.Context, identity, cursor string, limit int) (*store.CursorPage[models.Order], error)
}

type AccountService interface {
	Signup(ctx context.Context, req auth.SignupRequest) (*models.User, error)
	Login(ctx context.Context, login, password string) (*models.User, error)
}

type CatalogService interface {
	ListMedicines(ctx context.Context) ([]models.Medicine, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	AddCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	AddMedicine(ctx context.Context, m catalog.NewMedicine) (*models.Medicine, error)
	UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error
	UpdateStock(ctx context.Context, id int64, stock *int) error
	Invalidate(ctx context.Context)
}

type ContactService interface {
	Submit(ctx context.Context, name, email, message string) (*models.ContactMessage, error)
	List(ctx context.Context, page, pageSize int) (*store.OffsetPage[models.ContactMessage], error)
}

type AdminService interface {
	Dashboard(ctx context.Context) (*admin.Dashboard, error)
	Orders(ctx context.Context, page, pageSize int) (*store.OffsetPage[models.Order], error)
	Order(ctx context.Context, id int64) (*models.Order, error)
	MarkDelivered(ctx context.Context, id int64) error
}

type Services struct {
	Orders   OrderService
	Accounts AccountService
	Catalog  CatalogService
	Contact  ContactService
	Admin    AdminService
}
