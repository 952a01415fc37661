package measure

import "time"

// DefaultTDPWatts is the assumed whole-package draw when no real
// measurement source exists. 28 W suits a mid-range laptop part; tune
// it per host through Config.TDPWatts.
const DefaultTDPWatts = 28.0

// tdpEstimator charges a flat wattage for the workload's wall time.
// It does no I/O and never fails.
type tdpEstimator struct {
	watts float64
	now   func() time.Time
}

func newTDPEstimator(watts float64) *tdpEstimator {
	if watts <= 0 {
		watts = DefaultTDPWatts
	}

	return &tdpEstimator{watts: watts, now: time.Now}
}

// measure times the workload and multiplies through. A flat estimate
// has no power curve, so average and peak are both the constant.
func (t *tdpEstimator) measure(workload Workload) *Measurement {
	begin := t.now()
	workload()
	elapsed := t.now().Sub(begin)

	return &Measurement{
		EnergyJoules:      t.watts * elapsed.Seconds(),
		AveragePowerWatts: t.watts,
		PeakPowerWatts:    t.watts,
		Duration:          elapsed,
		Method:            MethodTDP,
	}
}
