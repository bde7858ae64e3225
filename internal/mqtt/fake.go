package mqtt

// FakeClient records published messages and lets tests inject commands.
type FakeClient struct {
	// Events contains all shelter events that were published.
	Events []Event

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all status/lifecycle events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for status events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishEvent.
	PublishError error

	// PublishStatusError, if set, will be returned by PublishStatus.
	PublishStatusError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	commands chan Command
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{commands: make(chan Command, 16)}
}

// PublishEvent records the shelter event.
func (f *FakeClient) PublishEvent(event Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Events = append(f.Events, event)

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishStatus records the status event.
func (f *FakeClient) PublishStatus(event SystemEvent) error {
	if f.PublishStatusError != nil {
		return f.PublishStatusError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Commands returns the injectable command channel.
func (f *FakeClient) Commands() <-chan Command {
	return f.commands
}

// Inject queues a command as if it arrived from the broker.
func (f *FakeClient) Inject(cmd Command) {
	f.commands <- cmd
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded events.
func (f *FakeClient) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishStatusError = nil
	f.Connected = false
}
