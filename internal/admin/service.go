package admin

import (
	"context"
	"database/sql"

	"github.com/safar/medstore/internal/models"
	"github.com/safar/medstore/internal/store"
)

type Dashboard struct {
	Users     int64 `json:"users"`
	Medicines int64 `json:"medicines"`
	Orders    int64 `json:"orders"`
	Messages  int64 `json:"messages"`
}

// Service backs the admin panel's read views and order status changes.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)

	if d.Users, err = store.CountUsers(ctx, s.db); err != nil {
		return nil, err
	}
	if d.Medicines, err = store.CountMedicines(ctx, s.db); err != nil {
		return nil, err
	}
	if d.Orders, err = store.CountOrders(ctx, s.db); err != nil {
		return nil, err
	}
	if d.Messages, err = store.CountContactMessages(ctx, s.db); err != nil {
		return nil, err
	}

	return &d, nil
}

func (s *Service) Orders(ctx context.Context, page, pageSize int) (*store.OffsetPage[models.Order], error) {
	return store.ListRecentOrders(ctx, s.db, page, pageSize)
}

func (s *Service) Order(ctx context.Context, id int64) (*models.Order, error) {
	return store.GetOrder(ctx, s.db, id)
}

func (s *Service) MarkDelivered(ctx context.Context, id int64) error {
	return store.MarkOrderDelivered(ctx, s.db, id)
}
