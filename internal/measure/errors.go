package measure

import "github.com/sevki/carbonara/internal/errors"

const (
	// ErrRAPLUnavailable covers both an absent powercap counter and one
	// the process lacks permission to read.
	ErrRAPLUnavailable = errors.ErrorCode("rapl_unavailable")

	// ErrACPIUnavailable means the power-supply registry is missing or
	// exposes no battery or AC adapter devices.
	ErrACPIUnavailable = errors.ErrorCode("acpi_unavailable")

	// ErrReadFailed is an I/O failure on a source that was available at
	// construction. Not retried.
	ErrReadFailed = errors.ErrorCode("measurement_read_failed")

	// ErrInvalidReading means a value was present but unparseable, or
	// semantically impossible.
	ErrInvalidReading = errors.ErrorCode("invalid_reading")

	// ErrInvalidConfig rejects a configuration at engine construction.
	ErrInvalidConfig = errors.ErrorCode("invalid_measurement_config")
)

func init() {
	errors.Register(ErrRAPLUnavailable, "RAPL energy counter unavailable")
	errors.Register(ErrACPIUnavailable, "ACPI power supply telemetry unavailable")
	errors.Register(ErrReadFailed, "Failed to read power measurement")
	errors.Register(ErrInvalidReading, "Invalid power reading")
	errors.Register(ErrInvalidConfig, "Invalid measurement configuration")
}
