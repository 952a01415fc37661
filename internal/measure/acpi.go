package measure

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sevki/carbonara/internal/errors"
)

// DefaultSupplyRoot is the sysfs power-supply class directory.
const DefaultSupplyRoot = "/sys/class/power_supply"

// Device name prefixes retained during discovery. Anything else (USB
// ports, wireless charger pads) is ignored rather than rejected.
var supplyPrefixes = []string{"BAT", "AC"}

// supplyReading is one device's snapshot for a single sampling tick.
// Voltage and current default to zero when the attribute file is
// absent; power and energy stay nil so aggregation can tell "missing"
// from "zero".
type supplyReading struct {
	voltageMicro float64  // µV
	currentMicro float64  // µA
	powerMicro   *float64 // µW
	energyMicro  *float64 // µWh
}

// acpiReader sums instantaneous power across the battery and AC
// adapter devices found at construction.
type acpiReader struct {
	root     string
	supplies []string
	now      func() time.Time
	sleep    func(time.Duration)
}

func newACPIReader(root string) (*acpiReader, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.WithData(ErrACPIUnavailable, root)
	}

	var supplies []string
	for _, entry := range entries {
		// Entries are symlinks on a real sysfs; stat the target.
		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		for _, prefix := range supplyPrefixes {
			if strings.HasPrefix(entry.Name(), prefix) {
				supplies = append(supplies, entry.Name())
				break
			}
		}
	}
	if len(supplies) == 0 {
		return nil, errors.WithData(ErrACPIUnavailable, root)
	}

	return &acpiReader{
		root:     root,
		supplies: supplies,
		now:      time.Now,
		sleep:    time.Sleep,
	}, nil
}

// readAttr reads one numeric attribute file. A missing file is not an
// error; a present but unparseable one is.
func (a *acpiReader) readAttr(supply, attr string) (*float64, error) {
	data, err := os.ReadFile(filepath.Join(a.root, supply, attr))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(ErrReadFailed, err)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return nil, errors.WithData(ErrInvalidReading, supply+"/"+attr)
	}

	return &value, nil
}

// readPowerInfo snapshots every discovered supply.
func (a *acpiReader) readPowerInfo() ([]supplyReading, error) {
	readings := make([]supplyReading, 0, len(a.supplies))
	for _, supply := range a.supplies {
		voltage, err := a.readAttr(supply, "voltage_now")
		if err != nil {
			return nil, err
		}
		current, err := a.readAttr(supply, "current_now")
		if err != nil {
			return nil, err
		}
		power, err := a.readAttr(supply, "power_now")
		if err != nil {
			return nil, err
		}
		energy, err := a.readAttr(supply, "energy_now")
		if err != nil {
			return nil, err
		}

		reading := supplyReading{powerMicro: power, energyMicro: energy}
		if voltage != nil {
			reading.voltageMicro = *voltage
		}
		if current != nil {
			reading.currentMicro = *current
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

// calculatePower reduces one tick's readings to total system watts.
// Devices are summed, not averaged: the figure is whole-system draw.
// A device reporting power directly is taken at its word; otherwise
// power is derived from voltage and current.
func calculatePower(readings []supplyReading) float64 {
	var totalMicro float64
	for _, r := range readings {
		if r.powerMicro != nil {
			totalMicro += *r.powerMicro
		} else {
			totalMicro += r.voltageMicro * r.currentMicro / microjoulesPerJoule
		}
	}

	return totalMicro / microjoulesPerJoule
}

// sampleResult is the sampler goroutine's single handoff to the
// measuring caller.
type sampleResult struct {
	samples []float64
	peak    float64
}

// measure runs the workload while one sampler goroutine polls total
// power. The sampler is bounded by cfg.Duration, not by the workload:
// whichever finishes last determines the reported duration. The only
// shared state is the result channel, written once; ticks whose read
// fails are skipped.
//
// Total energy is average power times elapsed time, a deliberate
// re-derivation rather than an integral of the sample sequence.
func (a *acpiReader) measure(cfg Config, workload Workload) (*Measurement, error) {
	start := a.now()
	done := make(chan sampleResult, 1)

	go func() {
		var res sampleResult
		for a.now().Sub(start) < cfg.Duration {
			if readings, err := a.readPowerInfo(); err == nil {
				power := calculatePower(readings)
				res.samples = append(res.samples, power)
				if power > res.peak {
					res.peak = power
				}
			}
			a.sleep(cfg.SampleInterval)
		}
		done <- res
	}()

	workload()

	res := <-done
	elapsed := a.now().Sub(start)

	average := meanOf(res.samples)

	return &Measurement{
		EnergyJoules:      average * elapsed.Seconds(),
		AveragePowerWatts: average,
		PeakPowerWatts:    res.peak,
		Duration:          elapsed,
		Method:            MethodACPI,
	}, nil
}

// meanOf returns the arithmetic mean, 0 for an empty sample set.
func meanOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}

	return sum / float64(len(samples))
}
