package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/api"
	"github.com/sabordaterra/loja/internal/cache"
	"github.com/sabordaterra/loja/internal/config"
	"github.com/sabordaterra/loja/internal/database"
	"github.com/sabordaterra/loja/internal/limiter"
	"github.com/sabordaterra/loja/internal/logger"
	"github.com/sabordaterra/loja/internal/notify"
	"github.com/sabordaterra/loja/internal/repo"
	"github.com/sabordaterra/loja/internal/router"
	"github.com/sabordaterra/loja/internal/service"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %v", err)
	}

	return cfg, lg, nil
}

// initDatabase 初始化数据库连接并执行迁移。
// 迁移在HTTP服务器启动前完成，保证处理请求时表结构就绪。
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	lg.Sugar().Infow("using migrations directory", "path", cfg.Migrations.Dir)
	if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %v", err)
	}

	return db, nil
}

// initCache 初始化缓存实例。
// Redis不可用时降级为内存缓存，只影响多实例部署下的共享性。
func initCache(cfg *config.Config, lg *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		lg.Sugar().Infow("cache disabled")
		return cache.NewNullCache()
	}

	switch cfg.Cache.Type {
	case "redis":
		redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		redisCache, err := cache.NewRedisCache(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			lg.Sugar().Warnw("failed to connect to Redis, falling back to memory cache", "error", err)
			return cache.NewMemoryCache()
		}
		lg.Sugar().Infow("cache enabled", "type", "redis", "addr", redisAddr, "ttl", cfg.Cache.TTL)
		return redisCache
	default:
		lg.Sugar().Infow("cache enabled", "type", "memory", "ttl", cfg.Cache.TTL)
		return cache.NewMemoryCache()
	}
}

// initNotifier 初始化事件通知，未启用MQ时回落到日志输出
func initNotifier(cfg *config.Config, lg *zap.Logger) notify.Sink {
	if !cfg.MQ.Enabled {
		lg.Sugar().Infow("mq disabled, using log sink for notifications")
		return notify.NewLogSink(lg)
	}

	sink, err := notify.NewAMQPSink(cfg.MQ.URL, cfg.MQ.Exchange, lg)
	if err != nil {
		lg.Sugar().Warnw("failed to connect to rabbitmq, using log sink", "error", err)
		return notify.NewLogSink(lg)
	}
	lg.Sugar().Infow("mq notifications enabled", "exchange", cfg.MQ.Exchange)
	return sink
}

// initCheckoutLimiter 初始化结算提交的限流器。
// Redis缓存可用时共享配额，否则退化为单实例的内存令牌桶。
func initCheckoutLimiter(cacheInstance cache.Cache, lg *zap.Logger) limiter.Limiter {
	limiterCfg := &limiter.Config{
		Rate:   10,
		Burst:  10,
		Window: time.Minute,
	}

	if rc, ok := cacheInstance.(*cache.RedisCache); ok {
		return limiter.NewRedisTokenBucket(rc.Client(), limiterCfg)
	}
	lg.Sugar().Infow("using in-memory checkout limiter")
	return limiter.NewMemoryTokenBucket(limiterCfg)
}

// initDependencies 组装依赖注入链：仓储 → 服务 → API处理器
func initDependencies(cfg *config.Config, db *database.DB, cacheInstance cache.Cache, sink notify.Sink, lg *zap.Logger) *router.Dependencies {
	// 仓储层
	userRepo := repo.NewUserRepository(db.DB)
	loyaltyRepo := repo.NewLoyaltyRepository(db.DB)
	orderRepo := repo.NewOrderRepository(db.DB)
	settingsRepo := repo.NewSettingsRepository(db.DB)
	cartStore := repo.NewCartStore(cacheInstance, 7*24*time.Hour)

	baseProductRepo := repo.NewProductRepository(db.DB)
	var productRepo repo.ProductRepository = baseProductRepo
	if cfg.Cache.Enabled {
		productRepo = repo.NewCachedProductRepository(baseProductRepo, cacheInstance, cfg.Cache.TTL)
	}

	// 服务层
	jwtService := service.NewJWTService(cfg, lg)
	userService := service.NewUserService(userRepo, loyaltyRepo, lg)
	productService := service.NewProductService(productRepo, lg)
	settingsService := service.NewSettingsService(settingsRepo, cacheInstance, cfg.Cache.TTL, lg)
	cartService := service.NewCartService(productRepo, cartStore, sink, lg)
	loyaltyService := service.NewLoyaltyService(loyaltyRepo, settingsService, lg)
	orderService := service.NewOrderService(orderRepo, lg)
	paymentService := service.NewPaymentService(cfg, lg)
	checkoutService := service.NewCheckoutService(cartStore, orderRepo, loyaltyRepo, settingsService, paymentService, sink, lg)

	return &router.Dependencies{
		UserHandler:     api.NewUserHandler(userService, jwtService, lg),
		ProductHandler:  api.NewProductHandler(productService, lg),
		CartHandler:     api.NewCartHandler(cartService, lg),
		LoyaltyHandler:  api.NewLoyaltyHandler(loyaltyService, lg),
		OrderHandler:    api.NewOrderHandler(orderService, lg),
		CheckoutHandler: api.NewCheckoutHandler(checkoutService, lg),
		SettingsHandler: api.NewSettingsHandler(settingsService, lg),
		JWTService:      jwtService,
		Cache:           cacheInstance,
		CheckoutLimiter: initCheckoutLimiter(cacheInstance, lg),
	}
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Sugar().Infow("server starting", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			lg.Sugar().Fatalw("server error", "err", err)
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("server shutdown error", "err", err)
	}
	lg.Sugar().Infow("server exited")
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}

	db, err := initDatabase(cfg, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to initialize database", "err", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Sugar().Errorw("failed to close database connection", "err", err)
		}
	}()

	cacheInstance := initCache(cfg, lg)
	sink := initNotifier(cfg, lg)
	defer func() {
		if err := sink.Close(); err != nil {
			lg.Sugar().Errorw("failed to close notification sink", "err", err)
		}
	}()

	deps := initDependencies(cfg, db, cacheInstance, sink, lg)
	handler := router.Setup(cfg, deps, lg)
	startServer(cfg, handler, lg)
}
