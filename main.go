package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotspotportal/config"
	"hotspotportal/gateway"
	"hotspotportal/handler"
	"hotspotportal/middleware"
	"hotspotportal/model"
	"hotspotportal/repository"
	"hotspotportal/services"
	"hotspotportal/usecase"
	"hotspotportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var requiredEnvVars = []string{
	"MONGO_URI",
	"MONGO_DB",
	"REDIS_URL",
	"JWT_SECRET_KEY",
	"ROUTER_ADDRESS",
	"ROUTER_USERNAME",
	"ROUTER_PASSWORD",
}

func loadEnv() {
	if err := godotenv.Load(); err != nil && !utils.IsTestEnv() {
		log.Printf("No .env file loaded: %v", err)
	}

	missing := utils.MissingEnv(requiredEnvVars)
	for _, envVar := range missing {
		log.Printf("%s: not set", envVar)
	}
	if len(missing) > 0 && !utils.IsTestEnv() {
		log.Fatalf("Required environment variables are not set: %v", missing)
	}
}

type routeDeps struct {
	handler   *handler.Handler
	tokens    middleware.TokenParser
	blacklist middleware.RevocationChecker
	server    config.ServerConfig
}

func setupRouter(deps routeDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Logger(),
		middleware.RequestTracingMiddleware(),
		middleware.EnhancedRecoveryMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(deps.server.AllowedOrigins),
		middleware.RequestSizeLimiter(deps.server.MaxBodyBytes),
	)

	h := deps.handler
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		public.GET("/health", h.Health)
		public.POST("/auth/login", h.Login)
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(deps.tokens, deps.blacklist))
	{
		protected.POST("/auth/logout", h.Logout)

		accounts := protected.Group("/accounts")
		{
			accounts.GET("/:id/presence", h.AccountPresence)
			accounts.GET("/:id/quota", h.AccountQuota)
			accounts.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateAccount)
			accounts.POST("/verify", middleware.RequireRole(model.RoleAdmin), h.VerifyIdentity)
		}

		admin := protected.Group("")
		admin.Use(middleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/dashboard/presence", h.DashboardPresence)
			admin.DELETE("/sessions/:sessionId", h.KickSession)
		}
	}

	return router
}

func newNotifier(cfg config.RedisConfig, publisher services.Publisher) services.Notifier {
	if cfg.AlertSink == "log" {
		log.Println("Alerts are written to the log only")
		return services.LogNotifier{}
	}
	return services.NewRedisNotifier(publisher, cfg.AlertChannel)
}

func main() {
	loadEnv()
	utils.InitValidator()

	dbCfg := config.LoadDatabaseConfig()
	redisCfg := config.LoadRedisConfig()
	routerCfg := config.LoadRouterConfig()
	jwtCfg := config.LoadJWTConfig()
	lockoutCfg := config.LoadLockoutConfig()
	presenceCfg := config.LoadPresenceConfig()
	serverCfg := config.LoadServerConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := repository.NewMongoClient(ctx, dbCfg)
	if err != nil {
		log.Fatalf("MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(dbCfg.DatabaseName)
	if err := repository.EnsureIndexes(ctx, db, dbCfg); err != nil {
		log.Fatalf("Failed to set up indexes: %v", err)
	}

	redisOpts, err := redis.ParseURL(redisCfg.URL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis unavailable, token revocation and alerts degraded: %v", err)
	}
	cancel()

	routerGateway := gateway.New(routerCfg)
	accountRepo := repository.GetAccountRepo(mongoClient, dbCfg)
	attemptRepo := repository.GetLoginAttemptRepo(mongoClient, dbCfg)

	notifier := newNotifier(redisCfg, redisClient)
	resolver := services.NewIdentityResolver(routerGateway)
	tokens := services.NewTokenService(jwtCfg)
	blacklist := services.NewTokenBlacklist(redisClient)

	accountService := &usecase.AccountService{
		Accounts:   accountRepo,
		Resolver:   resolver,
		Identities: routerGateway,
	}

	h := &handler.Handler{
		Accounts:         accountRepo,
		Lockout:          services.NewLockoutGuard(attemptRepo, notifier, lockoutCfg),
		Tokens:           tokens,
		Blacklist:        blacklist,
		Gateway:          routerGateway,
		Presence:         services.NewSessionAggregator(routerGateway, presenceCfg),
		Quota:            services.NewDeviceQuotaEvaluator(resolver, routerGateway, routerGateway),
		Resolver:         resolver,
		Creator:          accountService,
		Store:            repository.MongoHealth{Client: mongoClient},
		DashboardTimeout: presenceCfg.DashboardTimeout,
	}

	router := setupRouter(routeDeps{
		handler:   h,
		tokens:    tokens,
		blacklist: blacklist,
		server:    serverCfg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverCfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server shutdown complete")
}
