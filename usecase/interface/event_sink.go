package usecase

// Event names published by the polling service and its sinks
const (
	// EventUsageUpdate carries a *entity.UsageData payload
	EventUsageUpdate = "usage-update"

	// EventUsageError carries an ErrorPayload
	EventUsageError = "usage-error"

	// EventUsageNotification carries a NotificationPayload when a usage
	// threshold is crossed
	EventUsageNotification = "usage-notification"
)

// ErrorPayload is the payload of usage-error events
type ErrorPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NotificationPayload is the payload of usage-notification events
type NotificationPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// EventSink receives the events produced by a poll cycle. It is the seam
// between the polling core and whatever delivers events onward (tray UI, IPC
// bridge, log, test recorder); the polling service knows nothing about the
// delivery mechanism.
type EventSink interface {
	// Emit delivers one event. Implementations must not block for long;
	// the polling loop does not advance until Emit returns.
	Emit(event string, payload interface{})
}
