// Package report renders a finished measurement for humans, machines,
// and spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sevki/carbonara/internal/errors"
	"github.com/sevki/carbonara/internal/measure"
	"github.com/sevki/carbonara/internal/units"
)

// ErrUnknownFormat rejects a format name outside the supported set.
const ErrUnknownFormat = errors.ErrorCode("unknown_report_format")

func init() {
	errors.Register(ErrUnknownFormat, "Unknown report format")
}

// Format selects an output encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHuman, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", errors.WithData(ErrUnknownFormat, s)
	}
}

// Render encodes m in the requested format. gramsPerKWh feeds the CO2e
// figure; pass a negative value for the global-average default. The
// JSON encoding is the bare measurement and carries no CO2e line.
func Render(m *measure.Measurement, format Format, gramsPerKWh float64) (string, error) {
	switch format {
	case FormatHuman:
		return renderHuman(m, gramsPerKWh), nil
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return "", errors.Wrap(errors.ErrInternal, err)
		}
		return string(data), nil
	case FormatCSV:
		return renderCSV(m, gramsPerKWh), nil
	default:
		return "", errors.WithData(ErrUnknownFormat, string(format))
	}
}

func renderHuman(m *measure.Measurement, gramsPerKWh float64) string {
	return fmt.Sprintf(
		"Energy Measurement Results:\n"+
			"Energy consumed: %.6f kWh  (%.2f joules)\n"+
			"Average power: %.2f watts\n"+
			"Peak power: %.2f watts\n"+
			"Duration: %.2f seconds\n"+
			"CO2e: %.4f grams\n"+
			"Measurement method: %s",
		units.JoulesToKWh(m.EnergyJoules),
		m.EnergyJoules,
		m.AveragePowerWatts,
		m.PeakPowerWatts,
		m.Duration.Seconds(),
		m.CO2e(gramsPerKWh),
		m.Method,
	)
}

func renderCSV(m *measure.Measurement, gramsPerKWh float64) string {
	return fmt.Sprintf(
		"energy_joules,energy_kwh,power_watts,peak_power_watts,duration_seconds,co2e_grams,measurement_method\n"+
			"%g,%g,%g,%g,%g,%g,%s",
		m.EnergyJoules,
		units.JoulesToKWh(m.EnergyJoules),
		m.AveragePowerWatts,
		m.PeakPowerWatts,
		m.Duration.Seconds(),
		m.CO2e(gramsPerKWh),
		m.Method,
	)
}
