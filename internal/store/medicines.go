package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/medstore/internal/database"
	"github.com/safar/medstore/internal/models"
	"github.com/shopspring/decimal"
)

type CreateMedicineParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       *int
	CategoryID  *int64
}

const medicineColumns = `id, name, description, price, stock, category_id, created_at, updated_at`

func CreateMedicine(ctx context.Context, db DBTX, p CreateMedicineParams) (*models.Medicine, error) {
	var description sql.NullString
	if p.Description != "" {
		description = sql.NullString{String: p.Description, Valid: true}
	}

	query := `
		INSERT INTO medicines (name, description, price, stock, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + medicineColumns

	medicine, err := scanMedicine(db.QueryRowContext(ctx, query,
		p.Name, description, p.Price, nullInt(p.Stock), nullInt64(p.CategoryID)))
	if err != nil {
		return nil, fmt.Errorf("create medicine: %w", err)
	}

	return medicine, nil
}

func GetMedicine(ctx context.Context, db DBTX, id int64) (*models.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`

	medicine, err := scanMedicine(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}

	return medicine, nil
}

// LockMedicine reads the medicine row under FOR UPDATE so concurrent
// placements against it are serialized until tx ends.
func LockMedicine(ctx context.Context, tx *sql.Tx, id int64) (*models.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1 FOR UPDATE`

	medicine, err := scanMedicine(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("lock medicine: %w", err)
	}

	return medicine, nil
}

// DecrementStock is a check-and-set: it only succeeds while stock >= quantity,
// so the stock can never go negative whatever the isolation level.
func DecrementStock(ctx context.Context, tx *sql.Tx, medicineID int64, quantity int) (int, error) {
	var remaining int
	err := tx.QueryRowContext(ctx,
		`UPDATE medicines
		 SET stock = GREATEST(stock - $1, 0),
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock IS NOT NULL
		   AND stock >= $1
		 RETURNING stock`,
		quantity, medicineID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, database.ErrInsufficientStock
		}
		return 0, fmt.Errorf("decrement stock: %w", err)
	}

	return remaining, nil
}

func UpdateMedicinePrice(ctx context.Context, db DBTX, id int64, price decimal.Decimal) error {
	return updateMedicine(ctx, db, id, "price = $1", price)
}

// UpdateMedicineStock sets the stock; a nil stock stops tracking it.
func UpdateMedicineStock(ctx context.Context, db DBTX, id int64, stock *int) error {
	return updateMedicine(ctx, db, id, "stock = $1", nullInt(stock))
}

func updateMedicine(ctx context.Context, db DBTX, id int64, set string, value any) error {
	result, err := db.ExecContext(ctx,
		`UPDATE medicines SET `+set+`, updated_at = NOW() WHERE id = $2`,
		value, id)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrMedicineNotFound
	}

	return nil
}

func ListMedicines(ctx context.Context, db DBTX) ([]models.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines ORDER BY name, id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()

	var medicines []models.Medicine
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		medicines = append(medicines, *medicine)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return medicines, nil
}

func CountMedicines(ctx context.Context, db DBTX) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM medicines`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return total, nil
}

func scanMedicine(row rowScanner) (*models.Medicine, error) {
	medicine := &models.Medicine{}
	var (
		description sql.NullString
		stock       sql.NullInt64
		categoryID  sql.NullInt64
	)

	err := row.Scan(
		&medicine.ID,
		&medicine.Name,
		&description,
		&medicine.Price,
		&stock,
		&categoryID,
		&medicine.CreatedAt,
		&medicine.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		medicine.Description = &description.String
	}
	if stock.Valid {
		s := int(stock.Int64)
		medicine.Stock = &s
	}
	if categoryID.Valid {
		medicine.CategoryID = &categoryID.Int64
	}

	return medicine, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
