package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/novrain/SL-651/internal/api"
	cfgpkg "github.com/novrain/SL-651/internal/config"
	"github.com/novrain/SL-651/internal/health"
	"github.com/novrain/SL-651/internal/httpserver"
	"github.com/novrain/SL-651/internal/logging"
	"github.com/novrain/SL-651/internal/metrics"
	"github.com/novrain/SL-651/internal/packet"
	"github.com/novrain/SL-651/internal/schemawatch"
	redisstore "github.com/novrain/SL-651/internal/storage/redis"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml/toml/json)")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)
	log := zap.L()

	// 3) 指标注册与处理器
	promReg := metrics.NewRegistry()
	codecMetrics := metrics.NewCodecMetrics(promReg)

	// 4) 非内联要素的数据源
	ds, err := buildSource(cfg.Resolver, log)
	if err != nil {
		log.Fatal("data source init error", zap.Error(err))
	}
	defer ds.close()

	// 5) 模板登记表
	factory := packet.NewFactory(packet.WithLogger(log), packet.WithExtensions(cfg.Schema.Extensions...))
	registry := schemawatch.NewRegistry(factory, ds.source, codecMetrics, log)
	if cfg.Schema.Dir != "" {
		if _, err := registry.LoadDirectory(cfg.Schema.Dir); err != nil {
			log.Warn("schema directory not loaded", zap.String("dir", cfg.Schema.Dir), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schema.Watch {
		watcher, err := schemawatch.NewWatcher(registry, cfg.Schema.Dir, cfg.Schema.Debounce, log)
		if err != nil {
			log.Fatal("schema watcher init error", zap.Error(err))
		}
		defer func() { _ = watcher.Close() }()
		go func() {
			if err := watcher.Run(ctx); err != nil {
				log.Error("schema watcher error", zap.Error(err))
			}
		}()
	}

	// 6) 健康检查
	checks := health.NewAggregator(health.NewSchemaChecker(registry))
	if ds.client != nil {
		checks.AddChecker(health.NewRedisChecker(ds.client, ds.breaker))
	}

	// 7) HTTP 控制台
	httpOpts := []httpserver.Option{httpserver.WithReadiness(checks.Ready), httpserver.WithLogger(log)}
	if cfg.Metrics.Enable {
		httpOpts = append(httpOpts, httpserver.WithMetrics(cfg.Metrics.Path, metrics.Handler(promReg)))
	}
	httpSrv := httpserver.New(cfg.HTTP, httpOpts...)
	health.RegisterHTTPRoutes(httpSrv.Engine(), checks)
	api.RegisterConsoleRoutes(httpSrv.Engine(), registry, codecMetrics, cfg.Console, log)

	go func() {
		log.Info("http server starting", zap.String("addr", cfg.HTTP.Addr), zap.String("env", cfg.App.Env))
		if err := httpSrv.Start(); err != nil {
			log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	// 信号处理，优雅关闭
	<-ctx.Done()
	log.Info("shutting down")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
		os.Exit(1)
	}
}

// dataSource 非内联要素的数据源及其附属资源
type dataSource struct {
	source  packet.DataSource
	client  *redisstore.Client
	breaker *redisstore.Breaker
	close   func()
}

func buildSource(cfg cfgpkg.ResolverConfig, log *zap.Logger) (*dataSource, error) {
	switch cfg.Kind {
	case cfgpkg.ResolverStatic:
		log.Info("static data source", zap.Int("keys", len(cfg.Static)))
		return &dataSource{source: packet.MapSource(cfg.Static), close: func() {}}, nil
	case cfgpkg.ResolverRedis:
		client, err := redisstore.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		log.Info("redis data source", zap.String("addr", cfg.Redis.Addr), zap.String("prefix", cfg.Redis.KeyPrefix))
		src := redisstore.NewSource(client, cfg.Redis.KeyPrefix).WithTimeout(cfg.Redis.ReadTimeout)
		ds := &dataSource{source: src, client: client, close: func() { _ = client.Close() }}
		if cfg.Redis.BreakerThreshold > 0 {
			ds.breaker = redisstore.NewBreaker(cfg.Redis.BreakerThreshold, cfg.Redis.BreakerCooldown)
			ds.breaker.OnStateChange(func(from, to redisstore.BreakerState) {
				log.Warn("redis breaker state changed", zap.Stringer("from", from), zap.Stringer("to", to))
			})
			src.WithBreaker(ds.breaker)
		}
		return ds, nil
	default:
		return &dataSource{close: func() {}}, nil
	}
}
