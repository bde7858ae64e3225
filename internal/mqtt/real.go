package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/patura/shelterd/internal/logic"
)

const commandQueueSize = 16

// Reconnect pacing bounds.
const (
	reconnectMinDelay = 5 * time.Second
	reconnectMaxDelay = 2 * time.Minute
)

// RealClient publishes to an actual MQTT broker and receives commands.
type RealClient struct {
	client   paho.Client
	deviceID string

	mu     sync.Mutex
	buffer *ringBuffer // events queued while disconnected

	backoff  *logic.RetryBackoff
	done     chan struct{}
	commands chan Command
}

// NewRealClient creates a client connected to the given broker. The broker
// carries an OFFLINE last-will on the status topic so watchers can tell a
// crashed controller from a quiet one.
func NewRealClient(broker, deviceID string) (*RealClient, error) {
	c := &RealClient{
		deviceID: deviceID,
		buffer:   newRingBuffer(64),
		backoff:  logic.NewRetryBackoff(reconnectMinDelay, reconnectMaxDelay),
		done:     make(chan struct{}),
		commands: make(chan Command, commandQueueSize),
	}

	will, _ := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "connection lost",
	})

	// Reconnection is managed here rather than by paho so attempts are
	// paced by the shared backoff gate.
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("shelterd-"+deviceID).
		SetAutoReconnect(false).
		SetBinaryWill(StatusTopic(deviceID), will, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.WithError(err).Warn("mqtt connection lost")
			go c.reconnectLoop()
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// reconnectLoop retries the broker connection until it comes back or the
// client is closed. One loop runs per connection loss; paho only fires the
// lost handler for an established connection.
func (c *RealClient) reconnectLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-time.After(time.Second):
		}

		if c.client.IsConnected() {
			c.backoff.Reset()
			return
		}
		if !c.backoff.CanRetry(time.Now()) {
			continue
		}

		token := c.client.Connect()
		if token.WaitTimeout(10*time.Second) && token.Error() == nil {
			log.Info("mqtt reconnected")
			c.backoff.Reset()
			return
		}
		log.WithError(token.Error()).
			WithField("next_delay", c.backoff.CurrentDelay()).
			Warn("mqtt reconnect failed")
	}
}

// onConnect runs on every (re)connect: resubscribe to the command topic
// and replay events buffered while disconnected.
func (c *RealClient) onConnect(client paho.Client) {
	token := client.Subscribe(CommandTopic(c.deviceID), 1, c.onCommand)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.WithError(token.Error()).Error("command subscribe failed")
	}

	c.mu.Lock()
	queued := c.buffer.drainAll()
	c.mu.Unlock()

	for _, msg := range queued {
		client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
	if len(queued) > 0 {
		log.WithField("count", len(queued)).Info("replayed buffered mqtt events")
	}
}

// onCommand parses an incoming command message. Unparseable commands are
// logged and dropped; a full queue drops the command rather than blocking
// the paho callback goroutine.
func (c *RealClient) onCommand(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		log.WithError(err).WithField("payload", string(msg.Payload())).Warn("bad command")
		return
	}

	select {
	case c.commands <- cmd:
	default:
		log.WithField("command", cmd.Action).Warn("command queue full, dropping")
	}
}

// Commands returns the channel of parsed operator commands.
func (c *RealClient) Commands() <-chan Command {
	return c.commands
}

// PublishEvent sends a shelter event to the broker. While disconnected the
// event is buffered and replayed on reconnect.
func (c *RealClient) PublishEvent(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	topic := EventTopic(c.deviceID)
	if !c.client.IsConnected() {
		c.mu.Lock()
		c.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: 0})
		c.mu.Unlock()
		return nil
	}

	// QoS 0 (at-most-once), not retained
	token := c.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishStatus sends a status/lifecycle message to the broker.
func (c *RealClient) PublishStatus(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once): status snapshots and shutdown notices should
	// survive a flaky link.
	token := c.client.Publish(StatusTopic(c.deviceID), 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish status timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}

	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnected()
}

// Close stops any reconnect loop and disconnects from the broker.
func (c *RealClient) Close() error {
	close(c.done)
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
