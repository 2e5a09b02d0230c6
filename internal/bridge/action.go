package bridge

import "github.com/embedhost/webbridge/internal/protocol"

// Action is the closed set of inputs the reducer accepts. The marker method
// keeps the set sealed to this package, so every reducer case is written out
// here and checked when the set grows.
type Action interface {
	isAction()
}

// ProgressChanged reports a new load progress value, last writer wins.
type ProgressChanged struct {
	Progress float64
}

// LoadFailed reports a navigation or transport failure. It resets progress
// and surfaces the message through the pending-error field.
type LoadFailed struct {
	Message string
}

// RequestReceived carries a decoded bridge request. Raw payloads that failed
// envelope decoding never become this action.
type RequestReceived struct {
	Request *protocol.Request
}

// RequestRejected reports an envelope that failed decoding but still carried
// a recoverable callback name. It rides the same queue as accepted requests,
// so its failure reply cannot overtake replies to earlier messages.
type RequestRejected struct {
	Callback string
}

// ErrorAcknowledged clears the pending error after the presentation layer
// has shown it.
type ErrorAcknowledged struct{}

// NavigationConsumed clears the pending navigation target after the host has
// acted on it.
type NavigationConsumed struct{}

// NotificationConsumed clears the pending notification after display.
type NotificationConsumed struct{}

func (ProgressChanged) isAction() {}
func (LoadFailed) isAction() {}
func (RequestReceived) isAction() {}
func (RequestRejected) isAction() {}
func (ErrorAcknowledged) isAction() {}
func (NavigationConsumed) isAction() {}
func (NotificationConsumed) isAction() {}
