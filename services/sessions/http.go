package sessions

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nvbf/bingo-hall/pkg/accounting"
	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Sessions interface {
	Quote(bet decimal.Decimal, cards int, p accounting.Pricing) (Quote, error)
	Enter(ctx context.Context, who auth.Identity, req EnterRequest) (*store.GameSession, error)
	List(ctx context.Context, who auth.Identity) ([]*store.GameSession, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Sessions

	// The router instance to configure the HTTP routes.
	Router Router

	// EntryLimit throttles game entry. Nil disables throttling.
	EntryLimit gin.HandlerFunc
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}

	enter := []gin.HandlerFunc{h.enterHandler}
	if opts.EntryLimit != nil {
		enter = append([]gin.HandlerFunc{opts.EntryLimit}, enter...)
	}

	r.GET("/quote", h.quoteHandler)
	r.POST("", enter...)
	r.GET("", h.listHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) quoteHandler(c *gin.Context) {
	bet, err := decimal.NewFromString(c.Query("bet"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bet must be a number"})
		c.Abort()
		return
	}
	count, err := strconv.Atoi(c.Query("count"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a number"})
		c.Abort()
		return
	}
	percent := 0
	if p := c.Query("percent"); p != "" {
		if percent, err = strconv.Atoi(p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "percent must be a number"})
			c.Abort()
			return
		}
	}

	price := accounting.Pricing{Mode: c.Query("pricing"), Percentage: percent}
	if r := c.Query("rate"); r != "" {
		if price.Rate, err = decimal.NewFromString(r); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate must be a number"})
			c.Abort()
			return
		}
	}

	quote, err := h.Service.Quote(bet, count, price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *httpHandler) enterHandler(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		c.Abort()
		return
	}

	var request EnterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	session, err := h.Service.Enter(c, identity, request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *httpHandler) listHandler(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		c.Abort()
		return
	}
	sessions, err := h.Service.List(c, identity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInsufficientPoints):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough points"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
	case errors.Is(err, accounting.ErrNoCards), errors.Is(err, accounting.ErrInvalidBet),
		errors.Is(err, accounting.ErrInvalidPercentage), errors.Is(err, accounting.ErrInvalidCommission),
		errors.Is(err, accounting.ErrUnknownPricing), errors.Is(err, ErrDuplicateCard),
		errors.Is(err, ErrInvalidSpeed), errors.Is(err, ErrInvalidGameType),
		errors.Is(err, ErrInvalidBonus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("session request %s failed: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
