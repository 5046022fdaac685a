package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PATCH(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Admin manages user accounts.
type Admin interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*store.User, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
	UpdateUser(ctx context.Context, id string, u store.UserUpdate) (*store.User, error)
	AdjustPoints(ctx context.Context, id string, delta int64) (int64, error)
	DeleteUser(ctx context.Context, id string) error
	Me(ctx context.Context, uid string) (*store.User, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Admin

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler registers the user management routes. The router is
// expected to run the auth middleware already.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}

	adminOnly := auth.RequireRole(auth.RoleAdmin)
	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleAgent)

	r.POST("/users", adminOnly, h.createHandler)
	r.GET("/users", staff, h.listHandler)
	r.GET("/users/:id", staff, h.getHandler)
	r.PATCH("/users/:id", adminOnly, h.updateHandler)
	r.DELETE("/users/:id", adminOnly, h.deleteHandler)
	r.POST("/users/:id/points", staff, h.pointsHandler)
}

// NewMeHTTPHandler registers the route that returns the caller's own user.
func NewMeHTTPHandler(opts HTTPOptions) {
	h := &httpHandler{opts}
	opts.Router.GET("", h.meHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CreateUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	user, err := h.Service.CreateUser(c, request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *httpHandler) listHandler(c *gin.Context) {
	users, err := h.Service.ListUsers(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *httpHandler) getHandler(c *gin.Context) {
	user, err := h.Service.GetUser(c, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *httpHandler) updateHandler(c *gin.Context) {
	var request store.UserUpdate
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	user, err := h.Service.UpdateUser(c, c.Param("id"), request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *httpHandler) deleteHandler(c *gin.Context) {
	if err := h.Service.DeleteUser(c, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) pointsHandler(c *gin.Context) {
	var request PointsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	balance, err := h.Service.AdjustPoints(c, c.Param("id"), request.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": balance})
}

func (h *httpHandler) meHandler(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		c.Abort()
		return
	}

	user, err := h.Service.Me(c, identity.UID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": ErrEmailTaken.Error()})
	case errors.Is(err, store.ErrInsufficientPoints):
		c.JSON(http.StatusConflict, gin.H{"error": "balance would go below zero"})
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrNegativeStart),
		errors.Is(err, ErrNothingToDo):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("admin request %s failed: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
