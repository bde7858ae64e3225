// Package config loads the controller configuration from a YAML file.
// Every field has a default matching the deployed device, so an empty or
// missing file yields a runnable configuration (minus cloud credentials).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/patura/shelterd/internal/gpio"
	"github.com/patura/shelterd/internal/logic"
)

// Config represents the configuration file structure.
type Config struct {
	Device struct {
		ID        string `yaml:"id"`
		StatePath string `yaml:"state_path"` // SQLite file for the boot counter
	} `yaml:"device"`

	Pins struct {
		Motion int `yaml:"motion"`
		Relay  int `yaml:"relay"`
	} `yaml:"pins"`

	Sensor struct {
		I2CBus   string   `yaml:"i2c_bus"`
		Interval Duration `yaml:"interval"`
	} `yaml:"sensor"`

	Control struct {
		Tick            Duration `yaml:"tick"`
		PresenceTimeout Duration `yaml:"presence_timeout"`
		ColdThreshold   float64  `yaml:"cold_threshold"`
		MinDwell        Duration `yaml:"min_dwell"`
		MinReasonable   float64  `yaml:"min_reasonable"`
		MaxReasonable   float64  `yaml:"max_reasonable"`
	} `yaml:"control"`

	Camera struct {
		Device           string   `yaml:"device"`
		Width            uint32   `yaml:"width"`
		Height           uint32   `yaml:"height"`
		PeriodicInterval Duration `yaml:"periodic_interval"`
		MotionCooldown   Duration `yaml:"motion_cooldown"`
	} `yaml:"camera"`

	Boot struct {
		MaxAttempts      int64    `yaml:"max_attempts"`
		SuccessTimeout   Duration `yaml:"success_timeout"`
		RecoveryInterval Duration `yaml:"recovery_interval"`
	} `yaml:"boot"`

	MQTT struct {
		Broker    string   `yaml:"broker"`
		Heartbeat Duration `yaml:"heartbeat"`
	} `yaml:"mqtt"`

	S3 struct {
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Folder    string `yaml:"folder"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"s3"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}

	cfg.Device.ID = "shelter"
	cfg.Device.StatePath = "/var/lib/shelterd/state.db"

	cfg.Pins.Motion = gpio.PinMotion
	cfg.Pins.Relay = gpio.PinRelay

	cfg.Sensor.Interval = Duration(2 * time.Second)

	cfg.Control.Tick = Duration(500 * time.Millisecond)
	cfg.Control.PresenceTimeout = Duration(logic.DefaultPresenceTimeout)
	cfg.Control.ColdThreshold = logic.DefaultColdThreshold
	cfg.Control.MinDwell = Duration(logic.DefaultMinDwell)
	cfg.Control.MinReasonable = logic.DefaultMinReasonable
	cfg.Control.MaxReasonable = logic.DefaultMaxReasonable

	cfg.Camera.Device = "/dev/video0"
	cfg.Camera.Width = 1280
	cfg.Camera.Height = 720
	cfg.Camera.PeriodicInterval = Duration(logic.DefaultPeriodicInterval)
	cfg.Camera.MotionCooldown = Duration(logic.DefaultMotionCooldown)

	cfg.Boot.MaxAttempts = 3
	cfg.Boot.SuccessTimeout = Duration(5 * time.Minute)
	cfg.Boot.RecoveryInterval = Duration(time.Hour)

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.Heartbeat = Duration(time.Minute)

	cfg.S3.Region = "eu-west-1"

	cfg.HTTP.Addr = ":8080"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"

	return cfg
}

// Load reads the YAML file at path on top of the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides S3 credentials from the standard AWS variables, so
// they can be kept out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.S3.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.S3.SecretKey = v
	}
}

// Validate rejects values the control loop cannot work with.
func (c *Config) Validate() error {
	if c.Control.Tick <= 0 {
		return fmt.Errorf("control.tick must be positive")
	}
	if c.Sensor.Interval <= 0 {
		return fmt.Errorf("sensor.interval must be positive")
	}
	if c.Control.PresenceTimeout < 0 {
		return fmt.Errorf("control.presence_timeout must not be negative")
	}
	if c.Control.MinReasonable >= c.Control.MaxReasonable {
		return fmt.Errorf("control.min_reasonable must be below max_reasonable")
	}
	if c.Boot.MaxAttempts < 1 {
		return fmt.Errorf("boot.max_attempts must be at least 1")
	}
	if c.Device.ID == "" {
		return fmt.Errorf("device.id must not be empty")
	}
	return nil
}

// S3Configured reports whether photo upload credentials are present.
func (c *Config) S3Configured() bool {
	return c.S3.Bucket != "" && c.S3.AccessKey != "" && c.S3.SecretKey != ""
}
