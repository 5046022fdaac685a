package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	"github.com/nvbf/bingo-hall/repos/drawlog"
	resend "github.com/nvbf/bingo-hall/repos/resend"
	"github.com/nvbf/bingo-hall/repos/store"

	auth "github.com/nvbf/bingo-hall/pkg/auth"
	"github.com/nvbf/bingo-hall/pkg/bingo"
	"github.com/nvbf/bingo-hall/pkg/config"
	"github.com/nvbf/bingo-hall/pkg/logger"
	"github.com/nvbf/bingo-hall/pkg/ratelimit"

	admin "github.com/nvbf/bingo-hall/services/admin"
	cartelas "github.com/nvbf/bingo-hall/services/cartelas"
	play "github.com/nvbf/bingo-hall/services/play"
	sessions "github.com/nvbf/bingo-hall/services/sessions"
	stats "github.com/nvbf/bingo-hall/services/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Setup(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credentialsOption := option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))

	firestoreClient, err := firestore.NewClient(ctx, cfg.ProjectID, credentialsOption)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, credentialsOption)
	if err != nil {
		log.Fatalf("error initializing app: %v\n", err)
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("error getting Auth client: %v\n", err)
	}

	db := store.NewStore(firestoreClient)

	var publisher drawlog.Publisher = drawlog.Noop{}
	if cfg.RedisAddr != "" {
		redisPublisher, rdb, err := drawlog.Connect(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.DrawLogQueue)
		if err != nil {
			logger.Warnf("draw log disabled, redis at %s unreachable: %v", cfg.RedisAddr, err)
		} else {
			defer rdb.Close()
			publisher = redisPublisher
		}
	}

	resendService := resend.NewService(cfg.ResendKey, cfg.MailFrom)
	if !resendService.Enabled() {
		logger.Warnf("RESEND_KEY not set, new users will not get their credentials by mail")
	}

	adminService := admin.NewAdminService(authClient, db, resendService, cfg.LoginURL)
	cartelaService := cartelas.NewCartelaService(db, bingo.CryptoSource())
	sessionService := sessions.NewSessionService(db, cfg.EntryCost, cfg.DefaultDrawDelay)
	statsService := stats.NewStatsService(db, cfg.Location())
	manager := play.NewManager(db, publisher, bingo.CryptoSource(), cfg.DefaultDrawDelay)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSHosts
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.Default()
	if len(cfg.CORSHosts) > 0 {
		router.Use(cors.New(corsConfig))
	}

	authMiddleware := auth.AuthMiddleware(authClient, db.RoleOf)

	adminRouter := router.Group("/admin/v1")
	adminRouter.Use(authMiddleware)

	meRouter := router.Group("/me/v1")
	meRouter.Use(authMiddleware)

	cartelasRouter := router.Group("/cartelas/v1")
	cartelasRouter.Use(authMiddleware)

	sessionsRouter := router.Group("/sessions/v1")
	sessionsRouter.Use(authMiddleware)

	playRouter := router.Group("/play/v1")
	playRouter.Use(authMiddleware)

	statsRouter := router.Group("/stats/v1")
	statsRouter.Use(authMiddleware)

	watchRouter := router.Group("/watch/v1")

	admin.NewHTTPHandler(admin.HTTPOptions{
		Service: adminService,
		Router:  adminRouter,
	})

	admin.NewMeHTTPHandler(admin.HTTPOptions{
		Service: adminService,
		Router:  meRouter,
	})

	cartelas.NewHTTPHandler(cartelas.HTTPOptions{
		Service: cartelaService,
		Router:  cartelasRouter,
	})

	sessions.NewHTTPHandler(sessions.HTTPOptions{
		Service:    sessionService,
		Router:     sessionsRouter,
		EntryLimit: ratelimit.PerMinute(cfg.SessionsPerMinute).Middleware(auth.UserKey),
	})

	play.NewHTTPHandler(play.HTTPOptions{
		Service: manager,
		Router:  playRouter,
	})

	play.NewWatchHandler(play.HTTPOptions{
		Service:        manager,
		Router:         watchRouter,
		AllowedOrigins: cfg.CORSHosts,
	})

	stats.NewHTTPHandler(stats.HTTPOptions{
		Service: statsService,
		Router:  statsRouter,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	manager.Close(shutdownCtx)
}
