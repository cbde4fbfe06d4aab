// Package catalog serves the medicine and category listings through a
// read-through cache and applies the admin panel's catalog edits.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/safar/medstore/internal/models"
	"github.com/safar/medstore/internal/store"
	"github.com/shopspring/decimal"
)

const (
	keyPrefix     = "catalog:"
	medicinesKey  = keyPrefix + "medicines"
	categoriesKey = keyPrefix + "categories"
)

var ErrInvalidInput = errors.New("invalid catalog input")

type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type Service struct {
	db    *sql.DB
	cache Cache
}

func NewService(db *sql.DB, cache Cache) *Service {
	return &Service{db: db, cache: cache}
}

type NewMedicine struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       *int
	CategoryID  *int64
}

func (s *Service) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	return readThrough(ctx, s, medicinesKey, func() ([]models.Medicine, error) {
		return store.ListMedicines(ctx, s.db)
	})
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return readThrough(ctx, s, categoriesKey, func() ([]models.Category, error) {
		return store.ListCategories(ctx, s.db)
	})
}

func (s *Service) GetMedicine(ctx context.Context, id int64) (*models.Medicine, error) {
	return store.GetMedicine(ctx, s.db, id)
}

func (s *Service) AddCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}

	category, err := store.CreateCategory(ctx, s.db, name)
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := store.DeleteCategory(ctx, s.db, id); err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

func (s *Service) AddMedicine(ctx context.Context, m NewMedicine) (*models.Medicine, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, fmt.Errorf("%w: medicine name is required", ErrInvalidInput)
	}
	if m.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if m.Stock != nil && *m.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}

	medicine, err := store.CreateMedicine(ctx, s.db, store.CreateMedicineParams{
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		CategoryID:  m.CategoryID,
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx)
	return medicine, nil
}

// UpdatePrice changes the live price only; past order items keep theirs.
func (s *Service) UpdatePrice(ctx context.Context, id int64, price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if err := store.UpdateMedicinePrice(ctx, s.db, id, price); err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

func (s *Service) UpdateStock(ctx context.Context, id int64, stock *int) error {
	if stock != nil && *stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	if err := store.UpdateMedicineStock(ctx, s.db, id, stock); err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

// Invalidate drops every cached catalog listing. Cache failures are logged,
// never returned: the database stays authoritative.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, keyPrefix); err != nil {
		log.Printf("Catalog cache invalidation failed: %v", err)
	}
}

func readThrough[T any](ctx context.Context, s *Service, key string, load func() ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var cached []T
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, items); err != nil {
			log.Printf("Catalog cache write failed for %s: %v", key, err)
		}
	}

	return items, nil
}
