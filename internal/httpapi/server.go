package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safar/medstore/internal/auth"
)

const (
	sessionCookie = "medstore_session"
	adminCookie   = "medstore_admin"

	ctxIdentity = "identity"
	ctxAdmin    = "admin"
)

type Server struct {
	engine   *gin.Engine
	svc      Services
	sessions *auth.Sessions
	admins   auth.AdminCredentials
}

func NewServer(svc Services, sessions *auth.Sessions, admins auth.AdminCredentials) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, svc: svc, sessions: sessions, admins: admins}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	r := s.engine
	r.Use(s.loadSessions)

	r.GET("/", s.home)
	r.POST("/signup/", s.signup)
	r.POST("/login/", s.login)
	r.POST("/logout/", s.logout)
	r.POST("/contact/", s.contact)
	r.POST("/order/:med_id/", s.createOrder)
	r.GET("/orders/", s.orderHistory)

	panel := r.Group("/admin-panel")
	panel.POST("/login/", s.adminLogin)
	panel.POST("/logout/", s.adminLogout)

	gated := panel.Group("", s.requireAdmin)
	{
		gated.GET("/dashboard/", s.adminDashboard)
		gated.POST("/add-category/", s.adminAddCategory)
		gated.DELETE("/categories/:id/", s.adminDeleteCategory)
		gated.POST("/add-medicine/", s.adminAddMedicine)
		gated.PATCH("/medicines/:id/", s.adminUpdateMedicine)
		gated.GET("/messages/", s.adminMessages)
		gated.GET("/orders/", s.adminOrders)
		gated.GET("/orders/:id/", s.adminOrder)
		gated.POST("/orders/:id/deliver/", s.adminDeliverOrder)
	}
}

func respondError(c *gin.Context, status int, message, redirect string) {
	body := gin.H{"error": message}
	if redirect != "" {
		body["redirect"] = redirect
	}
	c.JSON(status, body)
}

func respondRedirect(c *gin.Context, status int, message, redirect string) {
	c.JSON(status, gin.H{"message": message, "redirect": redirect})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name, "")
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	return page, pageSize
}
