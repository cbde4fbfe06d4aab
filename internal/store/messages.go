package store

import (
	"context"
	"fmt"

	"github.com/safar/medstore/internal/models"
)

func CreateContactMessage(ctx context.Context, db DBTX, name, email, message string) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{}

	err := db.QueryRowContext(ctx,
		`INSERT INTO contact_messages (name, email, message, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, name, email, message, created_at`,
		name, email, message).Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}

	return msg, nil
}

func ListContactMessages(ctx context.Context, db DBTX, page, pageSize int) (*OffsetPage[models.ContactMessage], error) {
	page, pageSize = NormalizePage(page, pageSize)

	total, err := CountContactMessages(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, message, created_at
		 FROM contact_messages
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var messages []models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(messages, total, page, pageSize), nil
}

func CountContactMessages(ctx context.Context, db DBTX) (int64, error) {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return total, nil
}
