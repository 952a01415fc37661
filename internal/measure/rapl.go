package measure

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sevki/carbonara/internal/errors"
)

// DefaultRAPLPath is the package-domain cumulative energy counter, in
// microjoules, exposed by the powercap framework.
const DefaultRAPLPath = "/sys/class/powercap/intel-rapl/intel-rapl:0/energy_uj"

const microjoulesPerJoule = 1e6

// raplReader measures energy with two snapshots of a monotonic
// cumulative counter, so it needs no sampler.
type raplReader struct {
	path string
	now  func() time.Time
}

// newRAPLReader validates that the counter exists and is readable.
// "not supported" and "permission denied" are deliberately the same
// failure at this layer.
func newRAPLReader(path string) (*raplReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithData(ErrRAPLUnavailable, path)
	}
	f.Close()

	return &raplReader{path: path, now: time.Now}, nil
}

// readCounter returns the current cumulative energy in microjoules.
func (r *raplReader) readCounter() (uint64, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, errors.Wrap(ErrReadFailed, err)
	}

	raw := strings.TrimSpace(string(data))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.WithData(ErrInvalidReading, raw)
	}

	return value, nil
}

// measure brackets the workload with counter snapshots. The configured
// sampling duration does not apply here: the counter is cumulative, so
// the window is exactly the workload's runtime.
//
// Two snapshots give no intra-run power curve; peak power is defined
// as equal to average power for this method.
func (r *raplReader) measure(workload Workload) (*Measurement, error) {
	start, err := r.readCounter()
	if err != nil {
		return nil, err
	}
	begin := r.now()

	workload()

	end, err := r.readCounter()
	if err != nil {
		return nil, err
	}
	elapsed := r.now().Sub(begin)

	if end < start {
		return nil, errors.WithMessage(ErrInvalidReading, "energy counter went backwards")
	}

	energy := float64(end-start) / microjoulesPerJoule
	var average float64
	if secs := elapsed.Seconds(); secs > 0 {
		average = energy / secs
	}

	return &Measurement{
		EnergyJoules:      energy,
		AveragePowerWatts: average,
		PeakPowerWatts:    average,
		Duration:          elapsed,
		Method:            MethodRAPL,
	}, nil
}
