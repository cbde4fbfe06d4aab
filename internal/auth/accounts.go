package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/safar/medstore/internal/database"
	"github.com/safar/medstore/internal/models"
	"github.com/safar/medstore/internal/store"
)

var (
	ErrMissingFields      = errors.New("please fill all fields")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username/mobile or password")
)

type SignupRequest struct {
	Username string
	Mobile   string
	Email    string
	Password string
	Confirm  string
}

type Accounts struct {
	db *sql.DB
}

func NewAccounts(db *sql.DB) *Accounts {
	return &Accounts{db: db}
}

func (a *Accounts) Signup(ctx context.Context, req SignupRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)

	if req.Username == "" || req.Email == "" || req.Password == "" || req.Confirm == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.Confirm {
		return nil, ErrPasswordMismatch
	}

	digest, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := store.CreateUser(ctx, a.db, store.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: digest,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	log.Printf("User %d signed up: %s", user.ID, user.Username)
	return user, nil
}

// Login accepts a username, mobile number or email as login.
func (a *Accounts) Login(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := store.GetUserByLogin(ctx, a.db, login)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// AdminCredentials guards the admin panel with a single configured account.
type AdminCredentials struct {
	Username string
	Password string
}

func (c AdminCredentials) Check(username, password string) bool {
	if c.Username == "" || c.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK
}
