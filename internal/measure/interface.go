// Package measure runs a workload while sampling whichever power
// source the host exposes, and reduces the samples to one energy
// summary.
package measure

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sevki/carbonara/internal/errors"
	"github.com/sevki/carbonara/internal/units"
)

// Source is a requested measurement strategy. SourceAuto is only ever
// a request: once it resolves, the result reports the concrete Method
// that actually ran.
type Source int

const (
	SourceAuto Source = iota
	SourceRAPL
	SourceACPI
	SourceTDP
)

// ParseSource maps the user-facing strategy names to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "auto":
		return SourceAuto, nil
	case "rapl":
		return SourceRAPL, nil
	case "acpi":
		return SourceACPI, nil
	case "tdp":
		return SourceTDP, nil
	default:
		return SourceAuto, errors.WithData(errors.ErrInvalidArgument, "unknown power source: "+s)
	}
}

func (s Source) String() string {
	switch s {
	case SourceAuto:
		return "auto"
	case SourceRAPL:
		return "rapl"
	case SourceACPI:
		return "acpi"
	case SourceTDP:
		return "tdp"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Method is the concrete strategy a measurement was taken with. Unlike
// Source it cannot represent auto, so a result can never claim it.
type Method int

const (
	MethodRAPL Method = iota
	MethodACPI
	MethodTDP
)

func (m Method) String() string {
	switch m {
	case MethodRAPL:
		return "RAPL"
	case MethodACPI:
		return "ACPI"
	case MethodTDP:
		return "TDP Estimate"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// MarshalJSON encodes the method by name.
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// Workload is the unit of work being measured. It runs exactly once
// per measurement, synchronously; whether it succeeded is the caller's
// concern, the engine only needs it to terminate.
type Workload func()

// Config is an immutable measurement configuration.
type Config struct {
	// Duration bounds the sampling window for strategies that poll.
	// The RAPL reader ignores it: its window is the workload runtime.
	Duration time.Duration

	// SampleInterval is the polling period for the ACPI sampler.
	SampleInterval time.Duration

	// Source is the requested strategy.
	Source Source

	// TDPWatts is the assumed draw for the TDP estimate.
	TDPWatts float64
}

// DefaultConfig mirrors the CLI defaults.
func DefaultConfig() Config {
	return Config{
		Duration:       time.Second,
		SampleInterval: 100 * time.Millisecond,
		Source:         SourceAuto,
		TDPWatts:       DefaultTDPWatts,
	}
}

// Validate rejects configurations no strategy could run with.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return errors.WithMessage(ErrInvalidConfig, "duration must be positive")
	}
	if c.SampleInterval <= 0 {
		return errors.WithMessage(ErrInvalidConfig, "sample interval must be positive")
	}
	if c.TDPWatts <= 0 {
		return errors.WithMessage(ErrInvalidConfig, "tdp watts must be positive")
	}

	return nil
}

// Measurement is the result of one measured run. It is assembled once,
// after the run, and never mutated.
type Measurement struct {
	EnergyJoules      float64       `json:"energy_joules"`
	AveragePowerWatts float64       `json:"average_power_watts"`
	PeakPowerWatts    float64       `json:"peak_power_watts"`
	Duration          time.Duration `json:"duration_ns"`
	Method            Method        `json:"measurement_method"`
}

// CO2e returns the grams of CO2-equivalent emissions attributable to
// the consumed energy. gramsPerKWh is the grid emissions factor; a
// negative value selects the documented global-average default.
func (m *Measurement) CO2e(gramsPerKWh float64) float64 {
	if gramsPerKWh < 0 {
		gramsPerKWh = units.DefaultCO2ePerKWh
	}

	return units.KWhToCO2e(units.JoulesToKWh(m.EnergyJoules), gramsPerKWh)
}

func (m *Measurement) String() string {
	return fmt.Sprintf("Total energy: %.2f J\nAverage power: %.2f W\nPeak power: %.2f W\nDuration: %s\nMethod: %s",
		m.EnergyJoules, m.AveragePowerWatts, m.PeakPowerWatts, m.Duration, m.Method)
}
