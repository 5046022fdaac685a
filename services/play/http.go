package play

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Rounds is the registry of live rounds.
type Rounds interface {
	Create(ctx context.Context, who auth.Identity, req CreateRoundRequest) (*Round, error)
	Get(who auth.Identity, id string) (*Round, error)
	ByCode(code string) (*Round, error)
	End(ctx context.Context, who auth.Identity, id string) (*store.Game, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Rounds

	// The router instance to configure the HTTP routes.
	Router Router

	// AllowedOrigins limits which pages may open the watch websocket.
	// Empty allows any origin.
	AllowedOrigins []string
}

type SpeedRequest struct {
	DelayMS int `json:"delayMs" binding:"required"`
}

// NewHTTPHandler registers the round control routes. The router must run
// the auth middleware.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{HTTPOptions: opts}
	r.POST("/rounds", h.createHandler)
	r.GET("/rounds/:id", h.getHandler)
	r.POST("/rounds/:id/start", h.startHandler)
	r.POST("/rounds/:id/pause", h.pauseHandler)
	r.POST("/rounds/:id/reset", h.resetHandler)
	r.POST("/rounds/:id/draw", h.drawHandler)
	r.POST("/rounds/:id/speed", h.speedHandler)
	r.GET("/rounds/:id/check/:card", h.checkHandler)
	r.DELETE("/rounds/:id", h.endHandler)
}

// NewWatchHandler registers the unauthenticated websocket route used by
// display screens.
func NewWatchHandler(opts HTTPOptions) {
	h := &httpHandler{HTTPOptions: opts, upgrader: newUpgrader(opts.AllowedOrigins)}
	opts.Router.GET("/:code", h.watchHandler)
}

type httpHandler struct {
	HTTPOptions
	upgrader upgrader
}

func (h *httpHandler) round(c *gin.Context) (*Round, bool) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		c.Abort()
		return nil, false
	}
	round, err := h.Service.Get(identity, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return round, true
}

func (h *httpHandler) createHandler(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		c.Abort()
		return
	}
	var request CreateRoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	round, err := h.Service.Create(c, identity, request)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"round": round.Snapshot()})
}

func (h *httpHandler) getHandler(c *gin.Context) {
	round, ok := h.round(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round.Snapshot()})
}

func (h *httpHandler) startHandler(c *gin.Context) {
	h.control(c, (*Round).Start)
}

func (h *httpHandler) pauseHandler(c *gin.Context) {
	h.control(c, (*Round).Pause)
}

func (h *httpHandler) resetHandler(c *gin.Context) {
	h.control(c, (*Round).Reset)
}

func (h *httpHandler) control(c *gin.Context, action func(*Round) error) {
	round, ok := h.round(c)
	if !ok {
		return
	}
	if err := action(round); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round.Snapshot()})
}

func (h *httpHandler) drawHandler(c *gin.Context) {
	round, ok := h.round(c)
	if !ok {
		return
	}
	draw, err := round.DrawNext()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draw": draw, "announcement": Announce(draw.Number)})
}

func (h *httpHandler) speedHandler(c *gin.Context) {
	round, ok := h.round(c)
	if !ok {
		return
	}
	var request SpeedRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	if err := round.SetDelay(time.Duration(request.DelayMS) * time.Millisecond); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"delayMs": request.DelayMS})
}

func (h *httpHandler) checkHandler(c *gin.Context) {
	round, ok := h.round(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("card"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card number"})
		c.Abort()
		return
	}
	result, err := round.Check(number)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *httpHandler) endHandler(c *gin.Context) {
	identity, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		c.Abort()
		return
	}
	game, err := h.Service.End(c, identity, c.Param("id"))
	if err != nil && game == nil {
		writeError(c, err)
		return
	}
	if err != nil {
		c.JSON(http.StatusAccepted, gin.H{"game": game, "saved": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": game, "saved": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRoundNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session or card not found"})
	case errors.Is(err, ErrCardNotInRound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotYourRound):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRoundFinished), errors.Is(err, ErrRoundClosed), errors.Is(err, ErrRoundExists),
		errors.Is(err, ErrSessionPlayed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidDelay), errors.Is(err, ErrBadOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("play request %s failed: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
	c.Abort()
}
