package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/safar/medstore/internal/auth"
	"github.com/safar/medstore/internal/catalog"
	"github.com/safar/medstore/internal/database"
	"github.com/shopspring/decimal"
)

type adminLoginReq struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (s *Server) adminLogin(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBind(&req); err != nil || !s.admins.Check(req.Username, req.Password) {
		respondError(c, http.StatusUnauthorized, "Invalid admin credentials.", "/admin-panel/login/")
		return
	}

	token, err := s.sessions.Issue(req.Username, auth.RoleAdmin)
	if err != nil {
		log.Printf("Issue admin session: %v", err)
		respondError(c, http.StatusInternalServerError, "login failed", "/admin-panel/login/")
		return
	}

	s.setSessionCookie(c, adminCookie, token)
	respondRedirect(c, http.StatusOK, "Welcome to the admin panel.", "/admin-panel/dashboard/")
}

func (s *Server) adminLogout(c *gin.Context) {
	clearSessionCookie(c, adminCookie)
	respondRedirect(c, http.StatusOK, "Logged out of the admin panel.", "/admin-panel/login/")
}

func (s *Server) adminDashboard(c *gin.Context) {
	d, err := s.svc.Admin.Dashboard(c)
	if err != nil {
		log.Printf("Admin dashboard: %v", err)
		respondError(c, http.StatusInternalServerError, "dashboard unavailable", "")
		return
	}
	c.JSON(http.StatusOK, d)
}

type addCategoryReq struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func (s *Server) adminAddCategory(c *gin.Context) {
	var req addCategoryReq
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "category name is required", "")
		return
	}

	category, err := s.svc.Catalog.AddCategory(c, req.Name)
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) adminDeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Catalog.DeleteCategory(c, id); err != nil {
		s.catalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addMedicineReq struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *int64           `json:"category_id"`
}

func (s *Server) adminAddMedicine(c *gin.Context) {
	var req addMedicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", "")
		return
	}

	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}

	medicine, err := s.svc.Catalog.AddMedicine(c, catalog.NewMedicine{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		s.catalogError(c, err)
		return
	}
	c.JSON(http.StatusCreated, medicine)
}

// updateMedicineReq changes price and/or stock. UntrackStock clears the stock
// so the medicine is sold without a stock check.
type updateMedicineReq struct {
	Price        *decimal.Decimal `json:"price"`
	Stock        *int             `json:"stock"`
	UntrackStock bool             `json:"untrack_stock"`
}

func (s *Server) adminUpdateMedicine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateMedicineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Price == nil && req.Stock == nil && !req.UntrackStock {
		respondError(c, http.StatusBadRequest, "nothing to update", "")
		return
	}

	if req.Price != nil {
		if err := s.svc.Catalog.UpdatePrice(c, id, *req.Price); err != nil {
			s.catalogError(c, err)
			return
		}
	}
	if req.Stock != nil || req.UntrackStock {
		if err := s.svc.Catalog.UpdateStock(c, id, req.Stock); err != nil {
			s.catalogError(c, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, database.ErrMedicineNotFound), errors.Is(err, database.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, err.Error(), "")
	case database.IsUniqueViolation(err):
		respondError(c, http.StatusConflict, "already exists", "")
	default:
		log.Printf("Catalog update: %v", err)
		respondError(c, http.StatusInternalServerError, "catalog update failed", "")
	}
}

func (s *Server) adminMessages(c *gin.Context) {
	page, pageSize := pageParams(c)

	messages, err := s.svc.Contact.List(c, page, pageSize)
	if err != nil {
		log.Printf("Admin messages: %v", err)
		respondError(c, http.StatusInternalServerError, "messages unavailable", "")
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *Server) adminOrders(c *gin.Context) {
	page, pageSize := pageParams(c)

	orders, err := s.svc.Admin.Orders(c, page, pageSize)
	if err != nil {
		log.Printf("Admin orders: %v", err)
		respondError(c, http.StatusInternalServerError, "orders unavailable", "")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) adminOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := s.svc.Admin.Order(c, id)
	if err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, err.Error(), "/admin-panel/orders/")
			return
		}
		log.Printf("Admin order %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "order unavailable", "")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) adminDeliverOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := s.svc.Admin.MarkDelivered(c, id); err != nil {
		switch {
		case errors.Is(err, database.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, err.Error(), "/admin-panel/orders/")
		case errors.Is(err, database.ErrInvalidTransition):
			respondError(c, http.StatusConflict, "only placed orders can be delivered", "/admin-panel/orders/")
		default:
			log.Printf("Deliver order %d: %v", id, err)
			respondError(c, http.StatusInternalServerError, "could not update order", "")
		}
		return
	}

	respondRedirect(c, http.StatusOK, "Order marked as delivered.", "/admin-panel/orders/")
}
