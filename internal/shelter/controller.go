// Package shelter wires the pure control logic to the hardware and cloud
// collaborators and runs the main loop. All mutable control state lives
// here, owned by the single loop goroutine.
package shelter

import (
	"fmt"
	"os"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/patura/shelterd/internal/boot"
	"github.com/patura/shelterd/internal/climate"
	"github.com/patura/shelterd/internal/gpio"
	"github.com/patura/shelterd/internal/logic"
	"github.com/patura/shelterd/internal/mqtt"
	"github.com/patura/shelterd/internal/status"
)

// Options configures the controller.
type Options struct {
	SampleInterval  time.Duration // temperature sensor cadence
	PresenceTimeout time.Duration
	ColdThreshold   float64
	MinDwell        time.Duration
	MinReasonable   float64
	MaxReasonable   float64

	PeriodicInterval time.Duration // photo schedule
	MotionCooldown   time.Duration

	Heartbeat time.Duration // 0 disables
}

// Controller owns the control loop state and collaborators.
type Controller struct {
	opts Options

	boot     *boot.Manager
	rebooter boot.Rebooter

	motion gpio.MotionReader
	relay  gpio.Relay
	sensor climate.Sensor
	photo  *Photographer

	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	commands   <-chan mqtt.Command
	tracker    *status.Tracker

	presence *logic.PresenceTracker
	env      *logic.EnvironmentModel
	blanket  *logic.ActuatorController
	schedule *logic.ScheduleGate

	// warning pacers for faults that repeat every tick
	motionWarn *logic.DebounceGate
	relayWarn  *logic.DebounceGate

	lastSample    time.Time
	lastHeartbeat time.Time
}

// New creates a Controller. The schedule gate is seeded with start so the
// first motion edge can trigger a photo immediately.
func New(opts Options, bootMgr *boot.Manager, rebooter boot.Rebooter,
	motion gpio.MotionReader, relay gpio.Relay, sensor climate.Sensor,
	photo *Photographer, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus,
	commands <-chan mqtt.Command, tracker *status.Tracker, start time.Time) *Controller {

	return &Controller{
		opts:          opts,
		boot:          bootMgr,
		rebooter:      rebooter,
		motion:        motion,
		relay:         relay,
		sensor:        sensor,
		photo:         photo,
		publisher:     publisher,
		mqttStatus:    mqttStatus,
		commands:      commands,
		tracker:       tracker,
		presence:      logic.NewPresenceTracker(opts.PresenceTimeout),
		env:           logic.NewEnvironmentModel(opts.MinReasonable, opts.MaxReasonable, nil),
		blanket:       logic.NewActuatorController(opts.ColdThreshold, opts.MinDwell),
		schedule:      logic.NewScheduleGate(opts.PeriodicInterval, opts.MotionCooldown, start),
		motionWarn:    logic.NewDebounceGate(5*time.Second, 5*time.Minute, time.Minute, time.Hour),
		relayWarn:     logic.NewDebounceGate(5*time.Second, 5*time.Minute, time.Minute, time.Hour),
		lastHeartbeat: start,
	}
}

// Run executes the control loop until a signal arrives. Time and ticks are
// injected for tests.
func (c *Controller) Run(now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			c.shutdown(now(), s)
			return nil

		case cmd := <-c.commands:
			c.handleCommand(cmd, now())

		case <-tick:
			c.Tick(now())
		}
	}
}

// Tick runs one loop iteration: boot self-healing, presence, environment,
// blanket, photo schedule, status. Exported for tests.
func (c *Controller) Tick(now time.Time) {
	c.boot.OnTick(now)

	c.tickPresence(now)
	c.tickEnvironment(now)
	c.tickBlanket(now)
	c.tickSchedule(now)

	c.updateTracker(now)
	c.tickHeartbeat(now)
}

func (c *Controller) tickPresence(now time.Time) {
	raw, err := c.motion.Read()
	if err != nil {
		if c.motionWarn.CanAct(now) {
			c.motionWarn.MarkAct(now)
			log.WithError(err).Warn("motion read error")
		}
		return
	}
	if c.presence.Update(raw, now) {
		log.WithField("present", c.presence.Present()).Info("presence changed")
	}
}

func (c *Controller) tickEnvironment(now time.Time) {
	if !c.lastSample.IsZero() && now.Sub(c.lastSample) < c.opts.SampleInterval {
		return
	}
	c.lastSample = now

	reading, err := c.sensor.Read()
	if err != nil {
		log.WithError(err).Debug("sensor read error")
	}
	switch c.env.Sample(reading.Temperature, reading.Humidity, reading.Valid) {
	case logic.SensorFailed:
		log.Warn("temperature sensor faulted, using time-of-day fallback")
		c.publishEvent(mqtt.Event{Timestamp: now, Type: mqtt.EventSensorFailed})
	case logic.SensorRecovered:
		log.Info("temperature sensor recovered")
		c.publishEvent(mqtt.Event{Timestamp: now, Type: mqtt.EventSensorRecovered})
	}
}

func (c *Controller) tickBlanket(now time.Time) {
	effective := c.env.EffectiveTemperature(now, true)
	desired := c.blanket.Decide(c.presence.Present(), effective)

	switch c.blanket.Apply(desired, now) {
	case logic.ActuatorSwitched:
		c.driveRelay(now, effective)
	case logic.ActuatorSuppressed:
		log.WithField("remaining", c.blanket.DwellRemaining(now)).Debug("blanket change suppressed by dwell")
	}
}

// driveRelay pushes the controller's state to the physical relay and
// publishes the change.
func (c *Controller) driveRelay(now time.Time, effective float64) {
	on := c.blanket.On()
	if err := c.relay.SetState(on); err != nil {
		if c.relayWarn.CanAct(now) {
			c.relayWarn.MarkAct(now)
			log.WithError(err).Error("relay write failed")
		}
	}

	eventType := mqtt.EventBlanketOff
	if on {
		eventType = mqtt.EventBlanketOn
	}
	log.WithField("on", on).WithField("effective_temp", effective).Info("blanket switched")
	c.publishEvent(mqtt.Event{
		Timestamp: now,
		Type:      eventType,
		Detail:    detailTemp(effective),
	})
}

func (c *Controller) tickSchedule(now time.Time) {
	if !c.boot.CameraAllowed() || c.photo == nil || !c.photo.Available() {
		return
	}

	fire, reason := c.schedule.ShouldCapture(now, c.presence.Present())
	if !fire {
		return
	}

	ok, metrics := c.photo.CaptureAndUpload(now, string(reason))
	c.tracker.SetLastCapture(status.Capture{
		Time:    now,
		Reason:  string(reason),
		Success: ok,
		Metrics: metrics,
	})
	if ok {
		c.publishEvent(mqtt.Event{Timestamp: now, Type: mqtt.EventCapture, Detail: string(reason)})
	}
}

func (c *Controller) tickHeartbeat(now time.Time) {
	if c.opts.Heartbeat <= 0 || now.Sub(c.lastHeartbeat) < c.opts.Heartbeat {
		return
	}
	c.lastHeartbeat = now

	snap := c.tracker.Snapshot()
	log.WithField("uptime", snap.Uptime().Truncate(time.Second)).
		WithField("present", snap.Presence.Present).
		WithField("effective_temp", snap.Environment.EffectiveTemp).
		WithField("blanket", snap.Blanket.On).
		Info("status")
	event := mqtt.SystemEvent{
		Timestamp:  now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := c.publisher.PublishStatus(event); err != nil {
		log.WithError(err).Warn("heartbeat publish error")
	}
}

func (c *Controller) handleCommand(cmd mqtt.Command, now time.Time) {
	log.WithField("command", cmd.Action).WithField("arg", cmd.Arg).Info("command received")

	switch cmd.Action {
	case mqtt.CmdBlanket:
		c.handleBlanketCommand(cmd.Arg, now)

	case mqtt.CmdSnapshot:
		if !c.boot.CameraAllowed() || c.photo == nil || !c.photo.Available() {
			log.Warn("snapshot requested but camera unavailable")
			return
		}
		ok, metrics := c.photo.CaptureAndUpload(now, "snapshot")
		c.tracker.SetLastCapture(status.Capture{Time: now, Reason: "snapshot", Success: ok, Metrics: metrics})
		if ok {
			c.publishEvent(mqtt.Event{Timestamp: now, Type: mqtt.EventCapture, Detail: "snapshot"})
		}

	case mqtt.CmdReboot:
		c.rebooter.Reboot("operator request")

	case mqtt.CmdSafeMode:
		c.boot.EnterSafeMode(now)
		c.publishEvent(mqtt.Event{Timestamp: now, Type: mqtt.EventSafeMode, Detail: "operator request"})

	case mqtt.CmdReset:
		c.boot.ResetCounter()

	case mqtt.CmdLogLevel:
		level, err := log.ParseLevel(cmd.Arg)
		if err != nil {
			log.WithField("level", cmd.Arg).Warn("unknown log level")
			return
		}
		log.SetLevel(level)
		log.WithField("level", level).Info("log level changed")
	}
	c.updateTracker(now)
}

// handleBlanketCommand applies a manual override (or clears it): the
// forced state hits the relay in the same step, no dwell gating.
func (c *Controller) handleBlanketCommand(arg string, now time.Time) {
	switch arg {
	case "on", "off":
		if c.blanket.Force(arg == "on", now) == logic.ActuatorSwitched {
			c.driveRelay(now, c.env.EffectiveTemperature(now, true))
		}
		log.WithField("state", arg).Info("blanket override set")
	case "auto":
		c.blanket.ClearOverride()
		log.Info("blanket returned to automatic control")
	}
}

func (c *Controller) updateTracker(now time.Time) {
	lastMotion, hasMotion := c.presence.LastMotion()
	temp, humidity := c.env.Raw()

	// Safe mode can be entered mid-session by operator command.
	c.tracker.SetBoot(c.boot.SafeMode(), c.boot.Attempts())
	c.tracker.Update(
		status.Presence{
			Present:    c.presence.Present(),
			LastMotion: lastMotion,
			HasMotion:  hasMotion,
		},
		status.Environment{
			RawTemperature: temp,
			RawHumidity:    humidity,
			EffectiveTemp:  c.env.EffectiveTemperature(now, true),
			ExpectedTemp:   c.env.ExpectedTemperature(now, true),
			SensorHealthy:  c.env.Healthy(),
			UsingFallback:  c.env.UsingFallback(),
		},
		status.Blanket{
			On:         c.blanket.On(),
			Override:   c.blanket.Override(),
			LastChange: c.blanket.LastChange(),
		},
	)
	if c.mqttStatus != nil {
		c.tracker.SetMQTTConnected(c.mqttStatus.IsConnected())
	}
	if c.photo != nil {
		c.tracker.SetCameraOK(c.boot.CameraAllowed() && c.photo.Available())
	}
}

func (c *Controller) shutdown(now time.Time, s os.Signal) {
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	log.WithField("signal", signalName).Info("shutting down")

	c.updateTracker(now)
	snap := c.tracker.Snapshot()
	event := mqtt.SystemEvent{
		Timestamp:  now,
		Event:      "SHUTDOWN",
		Reason:     signalName,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
	}
	if err := c.publisher.PublishStatus(event); err != nil {
		log.WithError(err).Warn("failed to publish shutdown event")
	}
}

func (c *Controller) publishEvent(event mqtt.Event) {
	if err := c.publisher.PublishEvent(event); err != nil {
		log.WithError(err).Warn("publish error")
	}
}

func detailTemp(v float64) string {
	return fmt.Sprintf("effective %.1fC", v)
}
