// Package units holds the energy and emissions conversions used when
// presenting a measurement.
package units

const (
	// JoulesPerKWh is the number of joules in one kilowatt-hour.
	JoulesPerKWh = 3_600_000.0

	// DefaultCO2ePerKWh is the global-average grid emissions factor in
	// grams CO2e per kWh.
	DefaultCO2ePerKWh = 436.0

	// kwhPerGigabyte is the estimated energy cost of transferring one
	// gigabyte of data.
	kwhPerGigabyte = 0.0028125
)

// JoulesToKWh converts joules to kilowatt-hours.
func JoulesToKWh(joules float64) float64 {
	return joules / JoulesPerKWh
}

// KWhToJoules converts kilowatt-hours to joules.
func KWhToJoules(kwh float64) float64 {
	return kwh * JoulesPerKWh
}

// KWhToCO2e converts an energy in kWh to grams of CO2-equivalent
// emissions, given a grid factor in gCO2e/kWh.
func KWhToCO2e(kwh, gramsPerKWh float64) float64 {
	return kwh * gramsPerKWh
}

// GigabytesToKWh estimates the energy consumed transferring the given
// amount of data in gigabytes.
func GigabytesToKWh(gigabytes float64) float64 {
	return gigabytes * kwhPerGigabyte
}

// MegabytesToKWh estimates the energy consumed transferring the given
// amount of data in megabytes.
func MegabytesToKWh(megabytes float64) float64 {
	return megabytes * kwhPerGigabyte / 1000
}

// TDPJoules estimates the energy of a thermal design power held for a
// number of seconds.
func TDPJoules(watts, seconds float64) float64 {
	return watts * seconds
}

// BenchmarksToKWh estimates energy in kWh from a benchmark runtime and
// its average power draw.
func BenchmarksToKWh(runtimeSeconds, averagePowerWatts float64) float64 {
	return runtimeSeconds * averagePowerWatts / JoulesPerKWh
}
