package measure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevki/carbonara/internal/errors"
)

func newSupply(t *testing.T, root, name string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for attr, value := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, attr), []byte(value+"\n"), 0o644))
	}
}

func TestNewACPIReaderMissingRegistry(t *testing.T) {
	_, err := newACPIReader(filepath.Join(t.TempDir(), "power_supply"))
	require.Error(t, err)
	assert.Equal(t, ErrACPIUnavailable, errors.CodeOf(err))
}

func TestNewACPIReaderNoDevices(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "ucsi-source-psy-1", map[string]string{"voltage_now": "5000000"})

	_, err := newACPIReader(root)
	require.Error(t, err)
	assert.Equal(t, ErrACPIUnavailable, errors.CodeOf(err), "non-battery devices must not count as discovered")
}

func TestNewACPIReaderDiscovery(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "BAT0", map[string]string{"power_now": "10000000"})
	newSupply(t, root, "AC", map[string]string{})
	newSupply(t, root, "ucsi-source-psy-1", map[string]string{})

	reader, err := newACPIReader(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BAT0", "AC"}, reader.supplies)
}

func TestReadPowerInfo(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "BAT0", map[string]string{
		"voltage_now": "12000000",
		"current_now": "2000000",
		"energy_now":  "50000000",
	})

	reader, err := newACPIReader(root)
	require.NoError(t, err)

	readings, err := reader.readPowerInfo()
	require.NoError(t, err)
	require.Len(t, readings, 1)

	assert.InDelta(t, 12000000, readings[0].voltageMicro, 1e-9)
	assert.InDelta(t, 2000000, readings[0].currentMicro, 1e-9)
	assert.Nil(t, readings[0].powerMicro, "absent power_now must stay nil, not zero")
	require.NotNil(t, readings[0].energyMicro)
	assert.InDelta(t, 50000000, *readings[0].energyMicro, 1e-9)
}

func TestReadPowerInfoMissingAttrsDefaultToZero(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "AC", map[string]string{})

	reader, err := newACPIReader(root)
	require.NoError(t, err)

	readings, err := reader.readPowerInfo()
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Zero(t, readings[0].voltageMicro)
	assert.Zero(t, readings[0].currentMicro)
	assert.Nil(t, readings[0].powerMicro)
	assert.Nil(t, readings[0].energyMicro)
}

func TestReadPowerInfoUnparseableAttr(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "BAT0", map[string]string{"voltage_now": "garbage"})

	reader, err := newACPIReader(root)
	require.NoError(t, err)

	_, err = reader.readPowerInfo()
	require.Error(t, err)
	assert.Equal(t, ErrInvalidReading, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "BAT0/voltage_now")
}

func TestCalculatePower(t *testing.T) {
	power := func(microWatts float64) *float64 { return &microWatts }

	tests := []struct {
		name     string
		readings []supplyReading
		want     float64
	}{
		{
			name: "direct power reading preferred",
			readings: []supplyReading{
				{voltageMicro: 12000000, currentMicro: 2000000, powerMicro: power(10000000)},
			},
			want: 10,
		},
		{
			name: "derived from voltage and current",
			readings: []supplyReading{
				{voltageMicro: 12000000, currentMicro: 2000000},
			},
			want: 24,
		},
		{
			name: "devices are summed",
			readings: []supplyReading{
				{powerMicro: power(10000000)},
				{voltageMicro: 5000000, currentMicro: 1000000},
			},
			want: 15,
		},
		{
			name: "no readings",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, calculatePower(tt.readings), 1e-9)
		})
	}
}

func TestMeanOf(t *testing.T) {
	assert.InDelta(t, 15.0, meanOf([]float64{10, 20, 15}), 1e-9)
	assert.Zero(t, meanOf(nil))
}

// Synthetic run: the supply reports 10 W, then 20 W, then 15 W over a
// 300 ms window sampled every 100 ms.
func TestACPIMeasure(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "BAT0", map[string]string{"power_now": "10000000"})

	reader, err := newACPIReader(root)
	require.NoError(t, err)

	clock := newFakeClock()
	reader.now = clock.Now

	next := []string{"20000000", "15000000"}
	reader.sleep = func(d time.Duration) {
		if len(next) > 0 {
			newSupply(t, root, "BAT0", map[string]string{"power_now": next[0]})
			next = next[1:]
		}
		clock.Advance(d)
	}

	cfg := DefaultConfig()
	cfg.Duration = 300 * time.Millisecond
	cfg.SampleInterval = 100 * time.Millisecond

	ran := 0
	m, err := reader.measure(cfg, func() { ran++ })
	require.NoError(t, err)

	assert.Equal(t, 1, ran)
	assert.InDelta(t, 15.0, m.AveragePowerWatts, 1e-9)
	assert.InDelta(t, 20.0, m.PeakPowerWatts, 1e-9)
	assert.Equal(t, 300*time.Millisecond, m.Duration)
	assert.InDelta(t, m.AveragePowerWatts*m.Duration.Seconds(), m.EnergyJoules, 1e-9)
	assert.Equal(t, MethodACPI, m.Method)
}

// A workload faster than one sample interval can legitimately see zero
// samples once the window expires; average and energy are then zero.
func TestACPIMeasureNoSamples(t *testing.T) {
	root := t.TempDir()
	newSupply(t, root, "BAT0", map[string]string{"power_now": "garbage"})

	reader, err := newACPIReader(root)
	require.NoError(t, err)

	clock := newFakeClock()
	reader.now = clock.Now
	reader.sleep = func(d time.Duration) { clock.Advance(d) }

	cfg := DefaultConfig()
	cfg.Duration = 200 * time.Millisecond
	cfg.SampleInterval = 100 * time.Millisecond

	m, err := reader.measure(cfg, func() {})
	require.NoError(t, err, "failed ticks are skipped, not surfaced")
	assert.Zero(t, m.AveragePowerWatts)
	assert.Zero(t, m.EnergyJoules)
	assert.Zero(t, m.PeakPowerWatts)
}
