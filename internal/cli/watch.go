package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ordersync/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ordersync/internal/metrics"
	"github.com/vladislavdragonenkov/ordersync/internal/store"
)

// WatchOptions хранит флаги `orderctl watch`.
type WatchOptions struct {
	Interval    time.Duration
	Events      bool
	MetricsAddr string
}

// NewWatchCommand создаёт `orderctl watch`, который периодически перезагружает список
// и печатает каждый снимок состояния store.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the order list",
		Long: `Reload the order list periodically and print every state change.

With --events the list is also reloaded on each order event from Kafka
(kafka.brokers must be configured). Overlapping reloads are coalesced:
only the latest one updates the list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 5*time.Second, "reload interval")
	cmd.Flags().BoolVar(&opts.Events, "events", false, "reload on order events from kafka")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve store metrics on this address")

	return cmd
}

func runWatch(cmd *cobra.Command, rootOpts *RootOptions, opts *WatchOptions) error {
	if opts.Interval <= 0 {
		return NewExitError(ExitCommandError, "interval must be positive")
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger := log.WithField("component", "watch")

	var storeOpts []store.Option
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		storeOpts = append(storeOpts, store.WithMetrics(metrics.NewStoreMetricsWithRegisterer(reg)))
		srv := serveMetrics(opts.MetricsAddr, reg, logger)
		defer func() { _ = srv.Close() }()
	}

	orders := rootOpts.newStore(storeOpts...)
	defer orders.Close()

	triggers := make(chan struct{}, 1)
	if opts.Events {
		cfg := rootOpts.Config
		if !cfg.KafkaEnabled() {
			return NewExitError(ExitCommandError, "--events requires kafka.brokers")
		}
		consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{cfg.Kafka.Topic}, eventTrigger(triggers, logger))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start event consumer", err)
		}
		_ = consumer.Start(ctx)
		defer func() {
			cancel()
			if err := consumer.Stop(); err != nil {
				logger.WithError(err).Warn("failed to stop event consumer")
			}
		}()
	}

	w := &watcher{
		orders:   orders,
		printer:  rootOpts.printer(cmd),
		interval: opts.Interval,
		triggers: triggers,
	}
	return w.run(ctx)
}

// eventTrigger будит watcher на каждое событие заказа. Сигналы схлопываются.
func eventTrigger(triggers chan<- struct{}, logger *log.Entry) kafka.MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		event, err := kafka.ParseOrderEvent(message)
		if err != nil {
			return err
		}
		logger.WithFields(log.Fields{
			"event_type": event.EventType,
			"order_id":   event.OrderID,
		}).Debug("order event received")

		select {
		case triggers <- struct{}{}:
		default:
		}
		return nil
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *log.Entry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()
	return srv
}

// watcher запускает перезагрузки списка и печатает снимки store.
type watcher struct {
	orders   *store.OrderStore
	printer  *printer
	interval time.Duration
	triggers <-chan struct{}
}

func (w *watcher) run(ctx context.Context) error {
	updates, unsubscribe := w.orders.Subscribe()
	defer unsubscribe()

	var wg sync.WaitGroup
	defer wg.Wait()
	// Каждая перезагрузка в своей горутине: новая вытесняет предыдущую.
	reload := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.orders.LoadOrders(ctx)
		}()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	reload()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			reload()
		case <-w.triggers:
			reload()
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			if err := w.printer.state(state); err != nil {
				return err
			}
		}
	}
}
