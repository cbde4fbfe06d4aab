package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/safar/medstore/internal/auth"
	"github.com/safar/medstore/internal/contact"
	"github.com/safar/medstore/internal/ordering"
	"github.com/safar/medstore/internal/store"
)

func (s *Server) home(c *gin.Context) {
	medicines, err := s.svc.Catalog.ListMedicines(c)
	if err != nil {
		log.Printf("List medicines: %v", err)
		respondError(c, http.StatusInternalServerError, "catalog unavailable", "")
		return
	}

	categories, err := s.svc.Catalog.ListCategories(c)
	if err != nil {
		log.Printf("List categories: %v", err)
		respondError(c, http.StatusInternalServerError, "catalog unavailable", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"medicines": medicines, "categories": categories})
}

type signupReq struct {
	Username string `json:"username" form:"username"`
	Mobile   string `json:"mobile" form:"mobile"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Confirm  string `json:"confirm" form:"confirm"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", "")
		return
	}

	_, err := s.svc.Accounts.Signup(c, auth.SignupRequest{
		Username: req.Username,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.Confirm,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrPasswordMismatch):
			respondError(c, http.StatusBadRequest, err.Error(), "/signup/")
		case errors.Is(err, auth.ErrUserExists):
			respondError(c, http.StatusConflict, "User already exists.", "/signup/")
		default:
			log.Printf("Signup: %v", err)
			respondError(c, http.StatusInternalServerError, "signup failed", "/signup/")
		}
		return
	}

	respondRedirect(c, http.StatusCreated, "Account created successfully! You can now login.", "/login/")
}

type loginReq struct {
	Login    string `json:"username_or_mobile" form:"username_or_mobile" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, auth.ErrInvalidCredentials.Error(), "/login/")
		return
	}

	user, err := s.svc.Accounts.Login(c, req.Login, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error(), "/login/")
			return
		}
		log.Printf("Login: %v", err)
		respondError(c, http.StatusInternalServerError, "login failed", "/login/")
		return
	}

	token, err := s.sessions.Issue(user.Email, auth.RoleCustomer)
	if err != nil {
		log.Printf("Issue session: %v", err)
		respondError(c, http.StatusInternalServerError, "login failed", "/login/")
		return
	}

	s.setSessionCookie(c, sessionCookie, token)
	respondRedirect(c, http.StatusOK, "Welcome "+user.Username+"! Logged in successfully.", "/")
}

func (s *Server) logout(c *gin.Context) {
	clearSessionCookie(c, sessionCookie)
	respondRedirect(c, http.StatusOK, "You have been logged out.", "/")
}

type contactReq struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Message string `json:"message" form:"message" binding:"required"`
}

func (s *Server) contact(c *gin.Context) {
	var req contactReq
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, contact.ErrMissingFields.Error(), "/contact/")
		return
	}

	if _, err := s.svc.Contact.Submit(c, req.Name, req.Email, req.Message); err != nil {
		if errors.Is(err, contact.ErrMissingFields) {
			respondError(c, http.StatusBadRequest, err.Error(), "/contact/")
			return
		}
		log.Printf("Contact submit: %v", err)
		respondError(c, http.StatusInternalServerError, "message not sent", "/contact/")
		return
	}

	respondRedirect(c, http.StatusCreated, "Thanks! Your message has been sent.", "/contact/")
}

// createOrder hands only a verified session identity to the placement
// service; an absent or invalid session arrives as "".
func (s *Server) createOrder(c *gin.Context) {
	medicineID, ok := parseID(c, "med_id")
	if !ok {
		return
	}

	conf, err := s.svc.Orders.PlaceOrder(c, c.GetString(ctxIdentity), medicineID, orderQuantity(c))
	if err != nil {
		status, message, redirect := placementError(err)
		respondError(c, status, message, redirect)
		return
	}

	s.svc.Catalog.Invalidate(c)

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Order placed successfully.",
		"redirect":     "/orders/",
		"confirmation": conf,
	})
}

type orderForm struct {
	Quantity string `form:"quantity"`
}

// orderQuantity returns the raw requested quantity from a JSON body, a form
// body or the query string. Coercion is left to ordering.ParseQuantity.
func orderQuantity(c *gin.Context) string {
	if c.ContentType() == binding.MIMEJSON {
		var req struct {
			Quantity any `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			switch v := req.Quantity.(type) {
			case string:
				return v
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		return c.Query("quantity")
	}

	var req orderForm
	if err := c.ShouldBind(&req); err == nil && req.Quantity != "" {
		return req.Quantity
	}
	return c.Query("quantity")
}

func placementError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ordering.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Please login to place an order.", "/login/"
	case errors.Is(err, ordering.ErrUserNotFound):
		return http.StatusUnauthorized, "Your session is no longer valid. Please login again.", "/login/"
	case errors.Is(err, ordering.ErrMedicineNotFound):
		return http.StatusNotFound, "That medicine is no longer available.", "/"
	case errors.Is(err, ordering.ErrInsufficientStock):
		return http.StatusConflict, "Not enough stock for the requested quantity.", "/"
	default:
		return http.StatusInternalServerError, "We could not place your order. Please try again.", "/"
	}
}

func (s *Server) orderHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	page, err := s.svc.Orders.History(c, c.GetString(ctxIdentity), c.Query("cursor"), limit)
	if err != nil {
		if errors.Is(err, ordering.ErrNotAuthenticated) || errors.Is(err, ordering.ErrUserNotFound) {
			status, message, redirect := placementError(err)
			respondError(c, status, message, redirect)
			return
		}
		if errors.Is(err, store.ErrInvalidCursor) {
			respondError(c, http.StatusBadRequest, "invalid cursor", "")
			return
		}
		log.Printf("Order history: %v", err)
		respondError(c, http.StatusInternalServerError, "could not list orders", "")
		return
	}

	c.JSON(http.StatusOK, page)
}
