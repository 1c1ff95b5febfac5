// Package metrics exposes viewer state as Prometheus collectors.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "ifcview"

// Metrics holds the viewer collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	SelectionSize prometheus.Gauge
	Undoable      prometheus.Gauge
	Redoable      prometheus.Gauge
	Entities      prometheus.Gauge
	Nodes         prometheus.Gauge
	Sessions      prometheus.Gauge
	Commands      *prometheus.CounterVec // label: outcome
	Events        *prometheus.CounterVec // label: event
	Packets       *prometheus.CounterVec // label: result
	LoadDuration  prometheus.Histogram
	TickDuration  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reg:           prometheus.NewRegistry(),
		SelectionSize: gauge("selection_size", "Number of selected entities."),
		Undoable:      gauge("history_undoable", "Commands that can be undone."),
		Redoable:      gauge("history_redoable", "Commands that can be redone."),
		Entities:      gauge("model_entities", "Entities in the loaded model."),
		Nodes:         gauge("scene_nodes", "Product nodes indexed in the scene."),
		Sessions:      gauge("control_sessions", "Connected control sessions."),
		Commands:      counter("commands_total", "Command lifecycle transitions by outcome.", "outcome"),
		Events:        counter("events_total", "Viewer notifications dispatched by type.", "event"),
		Packets:       counter("control_packets_total", "Control packets dispatched by result.", "result"),
		LoadDuration:  histogram("model_load_seconds", "Time spent loading a model.", 0.001),
		TickDuration:  histogram("tick_seconds", "Duration of one loop tick.", 0.0001),
	}
	m.reg.MustRegister(
		m.SelectionSize, m.Undoable, m.Redoable, m.Entities, m.Nodes, m.Sessions,
		m.Commands, m.Events, m.Packets, m.LoadDuration, m.TickDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

func counter(name, help, label string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, []string{label})
}

func histogram(name, help string, start float64) prometheus.Histogram {
	return prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.ExponentialBuckets(start, 4, 8),
	})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Serve runs the /metrics endpoint until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
