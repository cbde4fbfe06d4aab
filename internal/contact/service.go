package contact

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/safar/medstore/internal/models"
	"github.com/safar/medstore/internal/store"
)

var ErrMissingFields = errors.New("name, email and message are required")

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Submit(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	name, email, message = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(message)
	if name == "" || email == "" || message == "" {
		return nil, ErrMissingFields
	}
	return store.CreateContactMessage(ctx, s.db, name, email, message)
}

func (s *Service) List(ctx context.Context, page, pageSize int) (*store.OffsetPage[models.ContactMessage], error) {
	return store.ListContactMessages(ctx, s.db, page, pageSize)
}
