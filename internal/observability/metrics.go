package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SceneCollector bundles the frame-loop metrics: smoothed FPS, the DRS
// pixel ratio, low-fidelity state and asset outcomes.
type SceneCollector struct {
	gatherer prometheus.Gatherer

	FPS         prometheus.Gauge
	PixelRatio  prometheus.Gauge
	LowFidelity prometheus.Gauge

	RatioChanges        prometheus.Counter
	FidelityTransitions *prometheus.CounterVec
	AssetLoads          *prometheus.CounterVec
	Focus               *prometheus.CounterVec
}

// NewSceneCollector registers the scene metrics against reg, defaulting to
// the global registry when nil. Collectors already registered under the
// same name are reused.
func NewSceneCollector(reg prometheus.Registerer) (*SceneCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fps, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scene_fps_smoothed",
		Help: "Exponentially smoothed frames per second.",
	}), "scene_fps_smoothed")
	if err != nil {
		return nil, err
	}
	ratio, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scene_pixel_ratio",
		Help: "Current dynamic-resolution pixel ratio.",
	}), "scene_pixel_ratio")
	if err != nil {
		return nil, err
	}
	low, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scene_low_fidelity",
		Help: "1 while low-fidelity mode is active.",
	}), "scene_low_fidelity")
	if err != nil {
		return nil, err
	}
	changes, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scene_pixel_ratio_changes_total",
		Help: "Number of applied pixel ratio changes.",
	}), "scene_pixel_ratio_changes_total")
	if err != nil {
		return nil, err
	}
	transitions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scene_fidelity_transitions_total",
		Help: "Low-fidelity mode transitions, labeled by direction.",
	}, []string{"mode"}), "scene_fidelity_transitions_total")
	if err != nil {
		return nil, err
	}
	assets, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scene_asset_loads_total",
		Help: "Asset loads, labeled by outcome.",
	}, []string{"outcome"}), "scene_asset_loads_total")
	if err != nil {
		return nil, err
	}
	focus, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scene_focus_total",
		Help: "Camera focus requests, labeled by target.",
	}, []string{"target"}), "scene_focus_total")
	if err != nil {
		return nil, err
	}

	return &SceneCollector{
		gatherer:            gatherer,
		FPS:                 fps,
		PixelRatio:          ratio,
		LowFidelity:         low,
		RatioChanges:        changes,
		FidelityTransitions: transitions,
		AssetLoads:          assets,
		Focus:               focus,
	}, nil
}

// ObserveFrame records the smoothed FPS and the governor's outcome for
// one tick.
func (c *SceneCollector) ObserveFrame(fps, ratio float64, resized, toggled, low bool) {
	if c == nil {
		return
	}
	c.FPS.Set(fps)
	c.PixelRatio.Set(ratio)
	if resized {
		c.RatioChanges.Inc()
	}
	if low {
		c.LowFidelity.Set(1)
	} else {
		c.LowFidelity.Set(0)
	}
	if toggled {
		mode := "restore"
		if low {
			mode = "lower"
		}
		c.FidelityTransitions.WithLabelValues(mode).Inc()
	}
}

// ObserveAsset counts one finished asset load.
func (c *SceneCollector) ObserveAsset(ok bool) {
	if c == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	c.AssetLoads.WithLabelValues(outcome).Inc()
}

// ObserveFocus counts a focus request.
func (c *SceneCollector) ObserveFocus(target string) {
	if c == nil {
		return
	}
	c.Focus.WithLabelValues(target).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SceneCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve runs a /metrics endpoint on addr until ctx is done.
func (c *SceneCollector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
