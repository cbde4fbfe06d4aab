// Package ordering places single-item medicine orders against stock.
//
// A placement validates the caller and the medicine, then creates the order,
// its line item, the derived total and the stock decrement in one
// transaction. Either all four writes commit or none do.
package ordering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/safar/medstore/internal/database"
	"github.com/safar/medstore/internal/models"
	"github.com/safar/medstore/internal/store"
	"github.com/shopspring/decimal"
)

type Confirmation struct {
	OrderID        int64           `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	MedicineID     int64           `json:"medicine_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Total          decimal.Decimal `json:"total"`
	RemainingStock *int            `json:"remaining_stock,omitempty"`
}

type Service struct {
	db     *sql.DB
	txOpts database.TxOptions
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, txOpts: database.DefaultTxOptions()}
}

// ParseQuantity reads a requested unit count. Missing or unparsable input
// means 1, and anything below 1 is raised to 1. No upper bound is applied.
func ParseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		return 1
	}
	return qty
}

// PlaceOrder buys quantity units of one medicine for the user the verified
// identity (an email) resolves to.
func (s *Service) PlaceOrder(ctx context.Context, identity string, medicineID int64, quantity string) (*Confirmation, error) {
	if identity == "" {
		return nil, ErrNotAuthenticated
	}

	qty := ParseQuantity(quantity)

	user, err := store.GetUserByEmail(ctx, s.db, identity)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, placementFailed(0, medicineID, err)
	}

	medicine, err := store.GetMedicine(ctx, s.db, medicineID)
	if err != nil {
		if errors.Is(err, database.ErrMedicineNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, placementFailed(user.ID, medicineID, err)
	}

	if medicine.TracksStock() && *medicine.Stock < qty {
		return nil, ErrInsufficientStock
	}

	var conf *Confirmation
	err = database.WithRetry(ctx, s.db, s.txOpts, func(tx *sql.Tx) error {
		c, err := placeInTx(ctx, tx, user.ID, medicineID, qty)
		if err != nil {
			return err
		}
		conf = c
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, database.ErrMedicineNotFound):
			return nil, ErrMedicineNotFound
		case errors.Is(err, database.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		}
		return nil, placementFailed(user.ID, medicineID, err)
	}

	log.Printf("Order %s placed: user=%d medicine=%d qty=%d total=%s",
		conf.OrderNumber, user.ID, medicineID, qty, conf.Total)

	return conf, nil
}

func placeInTx(ctx context.Context, tx *sql.Tx, userID, medicineID int64, qty int) (*Confirmation, error) {
	// Re-read under a row lock; the pre-check above may be stale by now.
	medicine, err := store.LockMedicine(ctx, tx, medicineID)
	if err != nil {
		return nil, err
	}
	if medicine.TracksStock() && *medicine.Stock < qty {
		return nil, database.ErrInsufficientStock
	}

	order, err := store.InsertOrder(ctx, tx, userID, models.OrderStatusPlaced)
	if err != nil {
		return nil, err
	}

	item, err := store.InsertOrderItem(ctx, tx, order.ID, medicine.ID, qty, medicine.Price)
	if err != nil {
		return nil, err
	}

	total, err := store.RecomputeOrderTotal(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}

	conf := &Confirmation{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		MedicineID:  medicine.ID,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Total:       total,
	}

	if medicine.TracksStock() {
		remaining, err := store.DecrementStock(ctx, tx, medicine.ID, qty)
		if err != nil {
			return nil, err
		}
		conf.RemainingStock = &remaining
	}

	return conf, nil
}

// placementFailed logs the cause and hides it behind ErrPlacementFailed.
// userID is 0 when the user could not be loaded.
func placementFailed(userID, medicineID int64, cause error) error {
	log.Printf("Order placement failed: user=%d medicine=%d: %v", userID, medicineID, cause)
	return fmt.Errorf("%w: %v", ErrPlacementFailed, cause)
}

// History lists the identity's own orders, most recent first.
func (s *Service) History(ctx context.Context, identity, cursor string, limit int) (*store.CursorPage[models.Order], error) {
	if identity == "" {
		return nil, ErrNotAuthenticated
	}

	user, err := store.GetUserByEmail(ctx, s.db, identity)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	return store.ListOrdersCursor(ctx, s.db, user.ID, cursor, limit)
}
