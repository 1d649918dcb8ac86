package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kilianp07/powerplan/api/productionplan"
	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/dispatch/logging"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	"github.com/kilianp07/powerplan/infra/monitoring"
	"github.com/kilianp07/powerplan/infra/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Service wires the plan manager to its HTTP API and observability stack.
type Service struct {
	Manager *dispatch.PlanManager
	cfg     *config.Config
	store   logging.LogStore
	sink    coremetrics.MetricsSink
	bus     *eventbus.Bus
	client  *mqtt.PahoClient
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, err
	}
	store, err := logging.Open(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("plan log store: %w", err)
	}

	svc := &Service{cfg: cfg, store: store, sink: sink, bus: eventbus.New(), log: logg}
	var publisher mqtt.Client
	if cfg.Dispatch.PublishSetpoints {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		publisher = client
	}

	ackTimeout := time.Duration(cfg.Dispatch.AckTimeoutSeconds) * time.Second
	manager, err := dispatch.NewPlanManager(
		dispatch.NewMeritOrderDispatcher(cfg.Dispatch),
		publisher,
		ackTimeout,
		sink,
		svc.bus,
		logger.New("productionplan"),
	)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("plan manager: %w", err)
	}
	manager.SetLogStore(store)
	svc.Manager = manager
	return svc, nil
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	apiLog := logger.New("api")
	plan := productionplan.NewHandler(s.Manager, s.cfg.Dispatch.Places(), apiLog)
	mux := http.NewServeMux()
	mux.Handle("/productionplan", plan)
	mux.Handle("/api/powerplant/productionplan", plan)
	mux.Handle("/productionplan/logs", productionplan.NewLogHandler(s.store, s.cfg.Server.LogsToken))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Run serves the API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("serving production plans on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close waits for pending setpoints and releases resources held by the
// service.
func (s *Service) Close() error {
	var err error
	if s.Manager != nil {
		err = s.Manager.Close()
	} else if s.store != nil {
		err = s.store.Close()
	}
	if s.client != nil {
		s.client.Disconnect()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return err
}
