package logic

import (
	"math"
	"time"
)

// FallbackHour is the hour assumed when wall-clock time is unavailable.
// 3 AM is the coldest entry of the table, erring toward heating.
const FallbackHour = 3

// winterTempTable holds typical winter temperatures by hour for the
// deployment site, used when the sensor cannot be trusted.
var winterTempTable = [24]float64{
	-2.0, // 00:00
	-3.0, // 01:00
	-3.5, // 02:00
	-4.0, // 03:00 - coldest before dawn
	-3.5, // 04:00
	-3.0, // 05:00
	-2.0, // 06:00 - sunrise
	-1.0, // 07:00
	0.0,  // 08:00
	2.0,  // 09:00
	4.0,  // 10:00
	6.0,  // 11:00
	7.0,  // 12:00 - peak daytime
	8.0,  // 13:00
	7.0,  // 14:00
	6.0,  // 15:00
	4.0,  // 16:00
	2.0,  // 17:00 - sunset
	1.0,  // 18:00
	0.0,  // 19:00
	-1.0, // 20:00
	-1.5, // 21:00
	-2.0, // 22:00
	-2.0, // 23:00
}

// EnvironmentModel fuses raw temperature-sensor readings, a reliability
// flag, and a static time-of-day expected-temperature table into one
// effective temperature for control decisions. A cheap sensor can fail
// (disconnection, direct sun) without any other signal; the fallback
// guarantees the heater logic always has some plausible value instead of
// freezing the heater off indefinitely on a sensor fault.
type EnvironmentModel struct {
	minReasonable float64
	maxReasonable float64
	table         [24]float64

	temperature float64
	humidity    float64
	healthy     bool
	haveSample  bool
}

// NewEnvironmentModel creates a model with the given plausibility bounds.
// A nil table uses the built-in winter table.
func NewEnvironmentModel(minReasonable, maxReasonable float64, table *[24]float64) *EnvironmentModel {
	m := &EnvironmentModel{
		minReasonable: minReasonable,
		maxReasonable: maxReasonable,
		table:         winterTempTable,
		healthy:       true,
	}
	if table != nil {
		m.table = *table
	}
	return m
}

// Sample consumes one sensor reading. A reading with NaN on either channel,
// or flagged invalid by the driver, marks the sensor unhealthy. The return
// value reports health edges so the caller can log transitions exactly once.
func (m *EnvironmentModel) Sample(temp, humidity float64, valid bool) SensorTransition {
	ok := valid && !math.IsNaN(temp) && !math.IsNaN(humidity)

	if !ok {
		if m.healthy {
			m.healthy = false
			return SensorFailed
		}
		return SensorUnchanged
	}

	m.temperature = temp
	m.humidity = humidity
	m.haveSample = true
	if !m.healthy {
		m.healthy = true
		return SensorRecovered
	}
	return SensorUnchanged
}

// Healthy reports whether the last sample was usable.
func (m *EnvironmentModel) Healthy() bool {
	return m.healthy
}

// Raw returns the last accepted raw reading.
func (m *EnvironmentModel) Raw() (temp, humidity float64) {
	return m.temperature, m.humidity
}

// ExpectedTemperature returns the table entry for the current hour, or the
// coldest-hour entry when wall-clock time is not available.
func (m *EnvironmentModel) ExpectedTemperature(now time.Time, haveWallClock bool) float64 {
	if !haveWallClock {
		return m.table[FallbackHour]
	}
	return m.table[now.Hour()]
}

// EffectiveTemperature returns the value used for control decisions: the
// raw reading when the sensor is healthy and within plausible bounds, the
// time-of-day fallback otherwise.
func (m *EnvironmentModel) EffectiveTemperature(now time.Time, haveWallClock bool) float64 {
	if !m.healthy || !m.haveSample {
		return m.ExpectedTemperature(now, haveWallClock)
	}
	if m.temperature > m.maxReasonable || m.temperature < m.minReasonable {
		return m.ExpectedTemperature(now, haveWallClock)
	}
	return m.temperature
}

// UsingFallback reports whether EffectiveTemperature would ignore the raw
// reading right now.
func (m *EnvironmentModel) UsingFallback() bool {
	if !m.healthy || !m.haveSample {
		return true
	}
	return m.temperature > m.maxReasonable || m.temperature < m.minReasonable
}
