package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Mode          string           `json:"mode"`
	BootAttempts  int64            `json:"boot_attempts"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	Presence      PresenceJSON     `json:"presence"`
	Environment   EnvironmentJSON  `json:"environment"`
	Blanket       BlanketJSON      `json:"blanket"`
	Camera        CameraJSON       `json:"camera"`
	MQTT          MQTTStatus       `json:"mqtt"`
	LastCapture   *LastCaptureJSON `json:"last_capture,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// PresenceJSON is the JSON representation of occupancy state.
type PresenceJSON struct {
	Present    bool   `json:"present"`
	LastMotion string `json:"last_motion,omitempty"`
}

// EnvironmentJSON is the JSON representation of sensor fusion output.
type EnvironmentJSON struct {
	RawTemperatureC float64 `json:"raw_temperature_c"`
	RawHumidityPct  float64 `json:"raw_humidity_pct"`
	EffectiveTempC  float64 `json:"effective_temperature_c"`
	ExpectedTempC   float64 `json:"expected_temperature_c"`
	SensorHealthy   bool    `json:"sensor_healthy"`
	UsingFallback   bool    `json:"using_fallback"`
}

// BlanketJSON is the JSON representation of the relay state.
type BlanketJSON struct {
	On         bool   `json:"on"`
	Override   bool   `json:"override"`
	LastChange string `json:"last_change,omitempty"`
}

// CameraJSON reports camera availability.
type CameraJSON struct {
	Available bool `json:"available"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// LastCaptureJSON is the JSON representation of the most recent capture.
type LastCaptureJSON struct {
	Time         string   `json:"time"`
	Reason       string   `json:"reason"`
	Success      bool     `json:"success"`
	QualityScore *float64 `json:"quality_score,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs             int64   `json:"tick_ms"`
	SampleMs           int64   `json:"sample_ms"`
	HeartbeatMs        int64   `json:"heartbeat_ms"`
	Broker             string  `json:"broker"`
	HTTPPort           string  `json:"http_port"`
	DeviceID           string  `json:"device_id"`
	ColdThresholdC     float64 `json:"cold_threshold_c"`
	PresenceTimeoutSec int64   `json:"presence_timeout_seconds"`
	MinDwellSec        int64   `json:"min_dwell_seconds"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:          snap.Mode(),
		BootAttempts:  snap.BootAttempts,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Presence: PresenceJSON{
			Present: snap.Presence.Present,
		},
		Environment: EnvironmentJSON{
			RawTemperatureC: snap.Environment.RawTemperature,
			RawHumidityPct:  snap.Environment.RawHumidity,
			EffectiveTempC:  snap.Environment.EffectiveTemp,
			ExpectedTempC:   snap.Environment.ExpectedTemp,
			SensorHealthy:   snap.Environment.SensorHealthy,
			UsingFallback:   snap.Environment.UsingFallback,
		},
		Blanket: BlanketJSON{
			On:       snap.Blanket.On,
			Override: snap.Blanket.Override,
		},
		Camera: CameraJSON{Available: snap.CameraOK},
		MQTT:   MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			TickMs:             snap.Config.TickMs,
			SampleMs:           snap.Config.SampleMs,
			HeartbeatMs:        snap.Config.HeartbeatMs,
			Broker:             snap.Config.Broker,
			HTTPPort:           snap.Config.HTTPPort,
			DeviceID:           snap.Config.DeviceID,
			ColdThresholdC:     snap.Config.ColdThresholdC,
			PresenceTimeoutSec: int64(snap.Config.PresenceTimeout.Seconds()),
			MinDwellSec:        int64(snap.Config.MinDwell.Seconds()),
		},
	}

	if snap.Presence.HasMotion {
		inner.Presence.LastMotion = snap.Presence.LastMotion.UTC().Format(time.RFC3339)
	}
	if !snap.Blanket.LastChange.IsZero() {
		inner.Blanket.LastChange = snap.Blanket.LastChange.UTC().Format(time.RFC3339)
	}
	if !snap.LastCapture.Time.IsZero() {
		lc := &LastCaptureJSON{
			Time:    snap.LastCapture.Time.UTC().Format(time.RFC3339),
			Reason:  snap.LastCapture.Reason,
			Success: snap.LastCapture.Success,
		}
		if snap.LastCapture.Metrics != nil {
			score := snap.LastCapture.Metrics.QualityScore
			lc.QualityScore = &score
		}
		inner.LastCapture = lc
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
