package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/retail-ledger/internal/cache"
	"github.com/nimasrn/retail-ledger/internal/config"
	"github.com/nimasrn/retail-ledger/internal/handlers"
	"github.com/nimasrn/retail-ledger/internal/repository"
	"github.com/nimasrn/retail-ledger/internal/seed"
	"github.com/nimasrn/retail-ledger/internal/services"
	xhttp "github.com/nimasrn/retail-ledger/pkg/http"
	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/nimasrn/retail-ledger/pkg/persist"
	"github.com/nimasrn/retail-ledger/pkg/prom"
	"github.com/nimasrn/retail-ledger/pkg/redis"
	"github.com/nimasrn/retail-ledger/pkg/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 30))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	storeDebug := config.Get().StoreDebug
	if config.Get().AppEnv == "dev" {
		storeDebug = true
	}
	db, err := store.Open(store.Config{
		Path:       config.Get().StorePath,
		MirrorPath: config.Get().StoreMirrorPath,
		Debug:      storeDebug,
	})
	if err != nil {
		logger.Error("failed opening the database image", "error", err)
		return
	}

	if err := db.Migrate(config.Get().MigrationsDir); err != nil {
		logger.Error("failed running migrations", "error", err)
		return
	}

	flusher := persist.New(db)

	// The KPI cache is optional; without redis every read hits sqlite,
	// which is fine for a single device.
	var kpiCache services.KPICache
	var invalidator services.StatsInvalidator
	if config.Get().RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Error("failed connecting to redis", "error", err)
			return
		}
		statsCache := cache.NewStatsCache(redisAdap, time.Duration(config.Get().StatsCacheTTLSeconds)*time.Second)
		kpiCache = statsCache
		invalidator = statsCache
	}

	if config.Get().PromAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed creating metrics", "error", err)
			return
		}
		go prom.ListenAndServe(config.Get().PromAddr, "/metrics")
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	borrowerRepo := repository.NewBorrowerRepository(db)
	statsRepo := repository.NewStatisticsRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)

	// services
	productService := services.NewProductService(productRepo, flusher)
	orderService := services.NewOrderService(orderRepo, productRepo, flusher, invalidator)
	borrowerService := services.NewBorrowerService(borrowerRepo, orderRepo, flusher, invalidator)
	statisticsService := services.NewStatisticsService(statsRepo, kpiCache)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, flusher, invalidator)
	seeder := seed.New(db)

	// v1 handlers
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService, borrowerService)
	borrowerHandler := handlers.NewBorrowerHandler(borrowerService)
	statisticsHandler := handlers.NewStatisticsHandler(statisticsService)
	adminHandler := handlers.NewAdminHandler(maintenanceService, db, seeder)
	healthHandler := handlers.NewHealthHandler()

	g := s.Router.Group("/api/v1")
	handlers.RegisterProductRoutes(g, productHandler)
	handlers.RegisterOrderRoutes(g, orderHandler)
	handlers.RegisterBorrowerRoutes(g, borrowerHandler)
	handlers.RegisterStatisticsRoutes(g, statisticsHandler)
	handlers.RegisterAdminRoutes(g, adminHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	logger.Info("starting retail ledger", "version", version, "commit", commit, "built", date)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
	flusher.Close()
	if err := db.Close(); err != nil {
		logger.Error("error closing the database image", "error", err)
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
