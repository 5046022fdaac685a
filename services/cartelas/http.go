package cartelas

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/bingo"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Cartelas interface {
	List(ctx context.Context) ([]*store.Cartela, error)
	Get(ctx context.Context, number int) (*store.Cartela, error)
	Search(ctx context.Context, n int) ([]*store.Cartela, error)
	Generate(count int) ([]store.Cartela, error)
	Create(ctx context.Context, req CartelaRequest) (*store.Cartela, error)
	Update(ctx context.Context, number int, req CartelaRequest) (*store.Cartela, error)
	Delete(ctx context.Context, number int) error
	Export(ctx context.Context) (string, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Cartelas

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	adminOnly := auth.RequireRole(auth.RoleAdmin)

	r.GET("", h.listHandler)
	r.GET("/search", h.searchHandler)
	r.GET("/export", h.exportHandler)
	r.GET("/:number", h.getHandler)
	r.POST("/generate", adminOnly, h.generateHandler)
	r.POST("", adminOnly, h.createHandler)
	r.PUT("/:number", adminOnly, h.updateHandler)
	r.DELETE("/:number", adminOnly, h.deleteHandler)
}

type httpHandler struct {
	HTTPOptions
}

func numberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidNumber.Error()})
		c.Abort()
		return 0, false
	}
	return n, true
}

func (h *httpHandler) listHandler(c *gin.Context) {
	cartelas, err := h.Service.List(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartelas": cartelas})
}

func (h *httpHandler) getHandler(c *gin.Context) {
	number, ok := numberParam(c)
	if !ok {
		return
	}
	cartela, err := h.Service.Get(c, number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartela": cartela})
}

func (h *httpHandler) searchHandler(c *gin.Context) {
	n, err := strconv.Atoi(c.Query("contains"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contains must be a number"})
		c.Abort()
		return
	}
	cartelas, err := h.Service.Search(c, n)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartelas": cartelas})
}

func (h *httpHandler) generateHandler(c *gin.Context) {
	request := GenerateRequest{Count: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
	}
	cartelas, err := h.Service.Generate(request.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartelas": cartelas})
}

func (h *httpHandler) createHandler(c *gin.Context) {
	var request CartelaRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	cartela, err := h.Service.Create(c, request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cartela": cartela})
}

func (h *httpHandler) updateHandler(c *gin.Context) {
	number, ok := numberParam(c)
	if !ok {
		return
	}
	var request CartelaRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	cartela, err := h.Service.Update(c, number, request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartela": cartela})
}

func (h *httpHandler) deleteHandler(c *gin.Context) {
	number, ok := numberParam(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c, number); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) exportHandler(c *gin.Context) {
	text, err := h.Service.Export(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bingo_cards.txt"`)
	c.String(http.StatusOK, text)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
	case errors.Is(err, store.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "card number already taken"})
	case errors.Is(err, ErrInvalidCard), errors.Is(err, ErrInvalidNumber),
		errors.Is(err, ErrInvalidCount), errors.Is(err, bingo.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("cartela request %s failed: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
