package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/app"
	"github.com/vladislavdragonenkov/ordersync/internal/config"
	"github.com/vladislavdragonenkov/ordersync/internal/version"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warnf("неизвестный уровень логирования %q, используем info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./ordersync.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("не удалось загрузить конфигурацию")
	}
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.Server.HTTPAddr,
		"metrics_addr": cfg.Server.MetricsAddr,
		"grpc_addr":    cfg.Server.GRPCAddr,
		"storage":      cfg.Storage.Driver,
		"kafka":        cfg.KafkaEnabled(),
		"version":      version.GetVersion(),
	}).Info("запускаем Order API")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("Order API остановлен")
}
