// Command shelterd controls a heated cat shelter: it debounces the PIR
// motion sensor into presence, fuses the temperature sensor with a
// time-of-day fallback, drives the blanket relay with hysteresis, captures
// and uploads photos, and reports over MQTT and HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/patura/shelterd/internal/boot"
	"github.com/patura/shelterd/internal/camera"
	"github.com/patura/shelterd/internal/climate"
	"github.com/patura/shelterd/internal/config"
	"github.com/patura/shelterd/internal/gpio"
	"github.com/patura/shelterd/internal/mqtt"
	"github.com/patura/shelterd/internal/s3"
	"github.com/patura/shelterd/internal/shelter"
	"github.com/patura/shelterd/internal/status"
	"github.com/patura/shelterd/internal/store"
	"github.com/patura/shelterd/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/shelterd/config.yaml", "Configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config)")
	device := flag.String("device", "", "Device ID (overrides config)")
	statePath := flag.String("state", "", "State database path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if *device != "" {
		cfg.Device.ID = *device
	}
	if *statePath != "" {
		cfg.Device.StatePath = *statePath
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	setupLogging(cfg)

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Logging.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func run(cfg *config.Config) error {
	start := time.Now()

	// The boot counter must be bumped before anything that can crash.
	var kv store.Store
	sqlite, err := store.OpenSQLite(cfg.Device.StatePath)
	if err != nil {
		log.WithError(err).Warn("state store unavailable, crash-loop protection disabled for this boot")
		kv = store.NewMemStore()
	} else {
		kv = sqlite
	}
	defer kv.Close()

	rebooter := boot.SystemRebooter{}
	bootMgr := boot.NewManager(kv, rebooter, cfg.Boot.MaxAttempts,
		cfg.Boot.SuccessTimeout.D(), cfg.Boot.RecoveryInterval.D())
	bootMgr.OnBoot(start)
	log.WithField("attempt", bootMgr.Attempts()).
		WithField("safe_mode", bootMgr.SafeMode()).
		Info("boot")

	motion, err := gpio.NewRealMotionReader(cfg.Pins.Motion)
	if err != nil {
		return fmt.Errorf("init motion sensor: %w", err)
	}
	defer motion.Close()

	relay, err := gpio.NewRealRelay(cfg.Pins.Relay)
	if err != nil {
		return fmt.Errorf("init relay: %w", err)
	}
	defer relay.Close()

	var sensor climate.Sensor
	sensor, err = climate.NewRealSensor(cfg.Sensor.I2CBus)
	if err != nil {
		log.WithError(err).Warn("temperature sensor init failed, falling back to time-of-day table")
		sensor = downSensor{err}
	}
	defer sensor.Close()

	// Camera init is the known crash source; in safe mode it is skipped
	// entirely and a failed init reboots through the crash-loop counter.
	var cam camera.Camera
	if bootMgr.CameraAllowed() {
		real, err := camera.NewRealCamera(cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height)
		if err != nil {
			log.WithError(err).Error("camera init failed")
			bootMgr.OnCameraInitFailure()
		} else {
			cam = real
			defer real.Close()
		}
	} else {
		log.Warn("safe mode: camera disabled, heating and reporting only")
	}

	client, err := mqtt.NewRealClient(cfg.MQTT.Broker, cfg.Device.ID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	var uploads shelter.ObjectStore
	if cfg.S3Configured() {
		uploads = s3.NewClient(cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Folder,
			cfg.S3.AccessKey, cfg.S3.SecretKey)
	} else {
		log.Info("s3 not configured, photos are scored and dropped")
	}

	tracker := status.NewTracker(start, status.Config{
		TickMs:          cfg.Control.Tick.D().Milliseconds(),
		SampleMs:        cfg.Sensor.Interval.D().Milliseconds(),
		HeartbeatMs:     cfg.MQTT.Heartbeat.D().Milliseconds(),
		Broker:          cfg.MQTT.Broker,
		HTTPPort:        cfg.HTTP.Addr,
		DeviceID:        cfg.Device.ID,
		ColdThresholdC:  cfg.Control.ColdThreshold,
		PresenceTimeout: cfg.Control.PresenceTimeout.D(),
		MinDwell:        cfg.Control.MinDwell.D(),
	})
	tracker.SetBoot(bootMgr.SafeMode(), bootMgr.Attempts())
	tracker.SetCameraOK(cam != nil)

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishStatus(startup); err != nil {
		log.WithError(err).Warn("failed to publish startup event")
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("http server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.WithField("addr", cfg.HTTP.Addr).Info("http status server listening")
	}

	ctrl := shelter.New(shelter.Options{
		SampleInterval:   cfg.Sensor.Interval.D(),
		PresenceTimeout:  cfg.Control.PresenceTimeout.D(),
		ColdThreshold:    cfg.Control.ColdThreshold,
		MinDwell:         cfg.Control.MinDwell.D(),
		MinReasonable:    cfg.Control.MinReasonable,
		MaxReasonable:    cfg.Control.MaxReasonable,
		PeriodicInterval: cfg.Camera.PeriodicInterval.D(),
		MotionCooldown:   cfg.Camera.MotionCooldown.D(),
		Heartbeat:        cfg.MQTT.Heartbeat.D(),
	}, bootMgr, rebooter, motion, relay, sensor,
		shelter.NewPhotographer(cam, uploads, cfg.Device.ID),
		client, client, client.Commands(), tracker, start)

	log.WithField("broker", cfg.MQTT.Broker).
		WithField("tick", cfg.Control.Tick.D()).
		WithField("device", cfg.Device.ID).
		Info("started")

	ticker := time.NewTicker(cfg.Control.Tick.D())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return ctrl.Run(time.Now, ticker.C, sigCh)
}

// downSensor stands in for a sensor that failed to initialise. Every read
// errors, which keeps the controller on the fallback table.
type downSensor struct {
	err error
}

func (s downSensor) Read() (climate.Reading, error) {
	return climate.Reading{}, s.err
}

func (s downSensor) Close() error { return nil }
