// Package mqtt provides MQTT publishing and command reception with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventTopic returns the topic for shelter events.
func EventTopic(deviceID string) string {
	return "shelter/" + deviceID + "/events"
}

// StatusTopic returns the topic for status and lifecycle messages.
func StatusTopic(deviceID string) string {
	return "shelter/" + deviceID + "/status"
}

// CommandTopic returns the topic the controller listens on.
func CommandTopic(deviceID string) string {
	return "shelter/" + deviceID + "/commands"
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishEvent sends a shelter event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishEvent(event Event) error

	// PublishStatus sends a status/lifecycle message to the broker.
	PublishStatus(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers operator commands received from the broker.
type CommandSource interface {
	// Commands returns the channel carrying parsed commands. The channel
	// is buffered; commands arriving while it is full are dropped.
	Commands() <-chan Command
}

// EventType classifies shelter events.
type EventType string

const (
	EventBlanketOn       EventType = "BLANKET_ON"
	EventBlanketOff      EventType = "BLANKET_OFF"
	EventCapture         EventType = "CAPTURE"
	EventSensorFailed    EventType = "SENSOR_FAILED"
	EventSensorRecovered EventType = "SENSOR_RECOVERED"
	EventSafeMode        EventType = "SAFE_MODE"
)

// Event represents a shelter event.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Detail    string // free text, e.g. capture reason or temperature
}

// SystemEvent represents a status/lifecycle message (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure for events.
type Payload struct {
	Shelter ShelterPayload `json:"shelter"`
}

// ShelterPayload contains the event details.
type ShelterPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Detail    string `json:"detail,omitempty"`
}

// FormatPayload creates the JSON payload for a shelter event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		Shelter: ShelterPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Detail:    event.Detail,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for lifecycle events
// that don't carry a full status snapshot (e.g. the LWT).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// CommandAction enumerates operator commands.
type CommandAction string

const (
	CmdBlanket  CommandAction = "blanket" // arg: on|off|auto
	CmdSnapshot CommandAction = "snapshot"
	CmdReboot   CommandAction = "reboot"
	CmdSafeMode CommandAction = "safemode"
	CmdReset    CommandAction = "reset"    // clear the boot counter
	CmdLogLevel CommandAction = "loglevel" // arg: debug|info|warn|error
)

// Command is a parsed operator command.
type Command struct {
	Action CommandAction
	Arg    string
}

// ParseCommand parses a command payload. Commands are plain text, one per
// message: the verb, optionally followed by an argument.
func ParseCommand(payload []byte) (Command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(string(payload))))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	cmd := Command{Action: CommandAction(fields[0])}
	if len(fields) > 1 {
		cmd.Arg = fields[1]
	}

	switch cmd.Action {
	case CmdBlanket:
		if cmd.Arg != "on" && cmd.Arg != "off" && cmd.Arg != "auto" {
			return Command{}, fmt.Errorf("blanket wants on|off|auto, got %q", cmd.Arg)
		}
	case CmdLogLevel:
		if cmd.Arg == "" {
			return Command{}, fmt.Errorf("loglevel wants a level")
		}
	case CmdSnapshot, CmdReboot, CmdSafeMode, CmdReset:
		// no argument
	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}

	return cmd, nil
}
