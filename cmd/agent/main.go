package main

import (
	"context"
	"errors"
	"log"
	netHttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"horizonx-machine/internal/adapters/http"
	"horizonx-machine/internal/adapters/http/request"
	"horizonx-machine/internal/adapters/http/response"
	"horizonx-machine/internal/adapters/http/validator"
	"horizonx-machine/internal/adapters/postgres"
	"horizonx-machine/internal/adapters/redis"
	"horizonx-machine/internal/adapters/ws"
	"horizonx-machine/internal/application/usage"
	"horizonx-machine/internal/config"
	"horizonx-machine/internal/core/auth"
	"horizonx-machine/internal/domain"
	"horizonx-machine/internal/event"
	"horizonx-machine/internal/gpu"
	"horizonx-machine/internal/logger"
	"horizonx-machine/internal/machine"
	"horizonx-machine/internal/metrics"
	"horizonx-machine/internal/monitor"
	"horizonx-machine/internal/snapshot"
	"horizonx-machine/internal/system"
	"horizonx-machine/internal/workers"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("FATAL: JWT_SECRET is missing in .env or system vars!")
	}

	if cfg.AdminPasswordHash == "" {
		appLog.Warn("ADMIN_PASSWORD_HASH is empty, every login will be rejected")
	}

	appLog.Info("horizonx machine agent: starting...", "machine_id", cfg.MachineID)

	runtimeCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Monitor
	mon := monitor.New(snapshot.NewProvider(appLog), appLog, monitor.WithPruneExited(cfg.PruneExited))
	for _, pid := range cfg.TrackPIDs {
		if err := mon.Track(runtimeCtx, pid); err != nil {
			appLog.Warn("failed to track configured pid", "pid", pid, "error", err)
		}
	}

	nvidia, err := gpu.InitNvidia(runtimeCtx, cfg.NvidiaSMIPath, gpu.ExecRunner, appLog)
	if err != nil {
		appLog.Debug("nvidia: not available", "error", err)
	}

	mach := machine.New(mon, system.NewReader(appLog), nvidia, appLog)
	defer mach.Close()

	// Storage
	var stream domain.UsageStream
	redisClient, err := redis.Init(runtimeCtx, &redis.ClientOptions{
		Address:  cfg.RedisAddress,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		appLog.Error("failed to init redis, usage history disabled", "error", err)
	} else {
		appLog.Info("redis connected")
		stream = redis.NewRegistry(redisClient, cfg.StreamMaxLen)
	}
	defer redisClient.Close()

	var repo domain.UsageRepository
	dbPool, err := postgres.InitDB(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Error("failed to init DB, usage persistence disabled", "error", err)
	} else {
		repo = postgres.NewUsageRepository(dbPool)
		defer dbPool.Close()
	}

	// Events
	bus := event.New(appLog)

	exporter := metrics.NewExporter()
	bus.Subscribe(domain.EventUsageReported, exporter.Handle)

	hub := ws.NewHub(runtimeCtx, appLog)
	go hub.Run()
	ws.RegisterSubscribers(bus, hub, cfg.MachineID)

	// Services
	usageService := usage.NewService(cfg.MachineID, repo, stream, bus, appLog)
	collector := metrics.NewCollector(mach, cfg.MachineID, nil, appLog)
	if err := collector.Prime(runtimeCtx); err != nil {
		appLog.Warn("failed to take system cpu baseline", "error", err)
	}
	authService := auth.NewService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.MachineID.String(), cfg.JWTExpiry, nil)

	// HTTP
	decoder, writer, valid := request.NewJSONDecoder(), response.NewJSONWriter(), validator.New()

	router := http.NewRouter(cfg, &http.RouterDeps{
		Auth: http.NewAuthHandler(authService, decoder, writer, valid),
		Machine: http.NewMachineHandler(http.MachineHandlerDeps{
			Service:   mach,
			Usage:     collector,
			Stream:    stream,
			Bus:       bus,
			MachineID: cfg.MachineID,
		}, decoder, writer, valid),
		Ws:      ws.NewHandler(hub, authService, appLog, cfg.AllowedOrigins).Serve,
		Metrics: exporter.Handler(),

		AuthService: authService,
	})

	srv := http.NewServer(router, cfg.Address)

	// Workers
	scheduler := workers.NewScheduler(cfg.TimeZone, nil, appLog)
	manager := workers.NewManager(appLog, scheduler, &workers.ManagerServices{
		Collector: collector,
		Usage:     usageService,
	}, workers.ManagerSettings{
		PollInterval:  cfg.PollInterval,
		FlushInterval: cfg.MetricsFlushPeriod,
		Retention:     cfg.MetricsRetention,
		CleanupHour:   cfg.CleanupHour,
	})

	g, gCtx := errgroup.WithContext(runtimeCtx)

	g.Go(func() error {
		manager.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		appLog.Info("http: starting server", "address", cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, netHttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		hub.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http: server shutdown error", "error", err)
		}

		if err := usageService.Flush(shutdownCtx); err != nil {
			appLog.Error("failed to flush usage reports on shutdown", "error", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("agent failed unexpectedly", "error", err)
	}

	appLog.Info("agent stopped gracefully.")
}
