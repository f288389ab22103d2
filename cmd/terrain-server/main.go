package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/terrain-noise/internal/api"
	"github.com/annel0/terrain-noise/internal/app"
	"github.com/annel0/terrain-noise/internal/config"
	"github.com/annel0/terrain-noise/internal/logging"
	"github.com/annel0/terrain-noise/internal/observability"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "YAML config (или ENV TERRAIN_CONFIG)")
	maxConcurrent := flag.Int("max-concurrent", 4, "Предел одновременных генераций")
	flag.Parse()

	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	level := logging.ParseLevel(cfg.Logging.Level)
	logging.SetDefaultLevel(level, logging.DEBUG)
	logging.Configure(level, cfg.Logging.ToFile, cfg.Logging.LogsDir)
	defer logging.CloseAll()

	warnings, err := cfg.Generator.Validate()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	for _, w := range warnings {
		logging.Warn("%s", w)
	}

	logging.Info("🗺️  Запуск сервера тайлов: seed=%d omega=%v storage=%s runs=%s",
		cfg.Generator.Seed, cfg.Generator.Omega, cfg.Storage.Backend, cfg.Runs.Backend)

	ctx := context.Background()
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			logging.Error("OpenTelemetry не инициализирован: %v", err)
		} else {
			defer shutdown(ctx)
		}
	}

	a, err := app.Build(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации сервиса: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Error("Ошибка закрытия компонентов: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := api.NewRestServer(api.Config{
		Port:          fmt.Sprintf(":%d", cfg.Server.GetRESTPort()),
		Service:       a.Service,
		Defaults:      cfg.Generator,
		Registry:      a.Registry,
		MaxConcurrent: *maxConcurrent,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		if err := a.Warmup(ctx); err != nil {
			logging.Warn("Прогрев не удался: %v", err)
		}
	}()

	logging.Info("✅ REST API: http://localhost:%d/api/tiles/0/0", cfg.Server.GetRESTPort())
	logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetRESTPort())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case err := <-errCh:
		logging.Error("❌ REST API: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	logging.Info("👋 Сервер успешно остановлен")
}
