package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/medstore/internal/database"
	"github.com/safar/medstore/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, order_number, status, total_amount, created_at, updated_at`

func generateOrderNumber() string {
	return "ORD-" + uuid.NewString()
}

// InsertOrder creates an empty order (total 0) owned by userID.
func InsertOrder(ctx context.Context, tx *sql.Tx, userID int64, status string) (*models.Order, error) {
	query := `
		INSERT INTO orders (user_id, order_number, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, 0, NOW(), NOW())
		RETURNING ` + orderColumns

	order, err := scanOrder(tx.QueryRowContext(ctx, query, userID, generateOrderNumber(), status))
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

func InsertOrderItem(ctx context.Context, tx *sql.Tx, orderID, medicineID int64, quantity int, unitPrice decimal.Decimal) (*models.OrderItem, error) {
	item := &models.OrderItem{}

	err := tx.QueryRowContext(ctx,
		`INSERT INTO order_items (order_id, medicine_id, quantity, unit_price, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, order_id, medicine_id, quantity, unit_price, created_at`,
		orderID, medicineID, quantity, unitPrice).Scan(
		&item.ID,
		&item.OrderID,
		&item.MedicineID,
		&item.Quantity,
		&item.UnitPrice,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}

	return item, nil
}

// RecomputeOrderTotal derives total_amount from the order's items and stores it.
func RecomputeOrderTotal(ctx context.Context, tx *sql.Tx, orderID int64) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := tx.QueryRowContext(ctx,
		`UPDATE orders
		 SET total_amount = (
		         SELECT COALESCE(SUM(unit_price * quantity), 0)
		         FROM order_items
		         WHERE order_id = $1
		     ),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING total_amount`,
		orderID).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, database.ErrOrderNotFound
		}
		return decimal.Zero, fmt.Errorf("recompute order total: %w", err)
	}

	return total, nil
}

func GetOrder(ctx context.Context, db DBTX, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := ListOrderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func ListOrderItems(ctx context.Context, db DBTX, orderID int64) ([]models.OrderItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, medicine_id, quantity, unit_price, created_at
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MedicineID,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// ListRecentOrders pages through all orders, most recent first, with items.
func ListRecentOrders(ctx context.Context, db DBTX, page, pageSize int) (*OffsetPage[models.Order], error) {
	page, pageSize = NormalizePage(page, pageSize)

	total, err := CountOrders(ctx, db)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	orders, err := queryOrders(ctx, db, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := ListOrderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return newOffsetPage(orders, total, page, pageSize), nil
}

// ListOrdersCursor pages through one user's orders, most recent first.
func ListOrdersCursor(ctx context.Context, db DBTX, userID int64, cursor string, limit int) (*CursorPage[models.Order], error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	orders, err := queryOrders(ctx, db, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage[models.Order]{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// MarkOrderDelivered moves a placed order to delivered; any other current
// status is rejected.
func MarkOrderDelivered(ctx context.Context, db DBTX, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		models.OrderStatusDelivered, id, models.OrderStatusPlaced)
	if err != nil {
		return fmt.Errorf("mark order delivered: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check order exists: %w", err)
		}
		if !exists {
			return database.ErrOrderNotFound
		}
		return database.ErrInvalidTransition
	}

	return nil
}

func CountOrders(ctx context.Context, db DBTX) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return total, nil
}

func queryOrders(ctx context.Context, db DBTX, query string, args ...any) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return order, nil
}
