package measure

import "github.com/sevki/carbonara/internal/logger"

// Engine selects a power source and runs measured workloads. An engine
// supports one measurement in flight at a time; distinct engines are
// independent of each other.
type Engine struct {
	cfg         Config
	counterPath string
	supplyRoot  string
}

// Option overrides an engine default, mainly for tests and unusual
// sysfs layouts.
type Option func(*Engine)

// WithCounterPath points the RAPL reader at an alternate counter file.
func WithCounterPath(path string) Option {
	return func(e *Engine) { e.counterPath = path }
}

// WithSupplyRoot points ACPI discovery at an alternate registry.
func WithSupplyRoot(root string) Option {
	return func(e *Engine) { e.supplyRoot = root }
}

// New validates cfg and builds an engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:         cfg,
		counterPath: DefaultRAPLPath,
		supplyRoot:  DefaultSupplyRoot,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Measure runs workload exactly once under the configured source. An
// explicitly requested source that cannot be constructed fails
// verbatim. Auto probes RAPL, then ACPI, then falls back to the TDP
// estimate, which cannot fail; skipped probes surface at debug level
// only, never to the caller.
func (e *Engine) Measure(workload Workload) (*Measurement, error) {
	switch e.cfg.Source {
	case SourceRAPL:
		rapl, err := newRAPLReader(e.counterPath)
		if err != nil {
			return nil, err
		}
		return rapl.measure(workload)

	case SourceACPI:
		acpi, err := newACPIReader(e.supplyRoot)
		if err != nil {
			return nil, err
		}
		return acpi.measure(e.cfg, workload)

	case SourceTDP:
		return newTDPEstimator(e.cfg.TDPWatts).measure(workload), nil

	default: // SourceAuto
		rapl, err := newRAPLReader(e.counterPath)
		if err == nil {
			return rapl.measure(workload)
		}
		logger.Debug().Err(err).Msg("RAPL unavailable, trying ACPI")

		acpi, err := newACPIReader(e.supplyRoot)
		if err == nil {
			return acpi.measure(e.cfg, workload)
		}
		logger.Debug().Err(err).Msg("ACPI unavailable, falling back to TDP estimate")

		return newTDPEstimator(e.cfg.TDPWatts).measure(workload), nil
	}
}
