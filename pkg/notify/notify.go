// Package notify is the fire-and-forget notification boundary of the
// report workflow. Generation and download paths emit success/error
// toasts through a Notifier; no acknowledgment is expected and a
// dropped notification is never an error.
package notify

import (
	"sync"

	"golang.org/x/time/rate"

	"github.com/auditforge/reportgen/pkg/core"
)

// Notifier is the toast sink consumed by the generator and the
// download path.
type Notifier interface {
	// Success reports a completed operation.
	Success(msg string)

	// Error reports a failed operation.
	Error(msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(msg string) {}
func (NopNotifier) Error(msg string)   {}

// LogNotifier forwards notifications to a logger.
type LogNotifier struct {
	logger core.Logger
}

// NewLogNotifier creates a notifier backed by the given logger.
// A nil logger falls back to the global default.
func NewLogNotifier(logger core.Logger) *LogNotifier {
	if logger == nil {
		logger = core.GetDefaultLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info("%s", msg)
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Error("%s", msg)
}

// Event is a captured notification.
type Event struct {
	Success bool
	Message string
}

// ChannelNotifier publishes notifications to a buffered channel; a
// full channel drops the event rather than blocking the workflow.
// UIs consume the channel to render toasts.
type ChannelNotifier struct {
	ch chan Event
}

// NewChannelNotifier creates a channel notifier with the given buffer.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChannelNotifier{ch: make(chan Event, buffer)}
}

// Events returns the receive side of the notification stream.
func (n *ChannelNotifier) Events() <-chan Event {
	return n.ch
}

func (n *ChannelNotifier) Success(msg string) {
	n.publish(Event{Success: true, Message: msg})
}

func (n *ChannelNotifier) Error(msg string) {
	n.publish(Event{Success: false, Message: msg})
}

func (n *ChannelNotifier) publish(e Event) {
	select {
	case n.ch <- e:
	default:
	}
}

// MultiNotifier fans out to several notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that forwards to all given sinks.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

func (n *MultiNotifier) Success(msg string) {
	for _, nn := range n.notifiers {
		nn.Success(msg)
	}
}

func (n *MultiNotifier) Error(msg string) {
	for _, nn := range n.notifiers {
		nn.Error(msg)
	}
}

// ThrottledNotifier rate-limits error toasts so duplicate-click bursts
// (repeated downloads of a missing report, a stuck retry loop) don't
// flood the surface. Success toasts pass through untouched.
type ThrottledNotifier struct {
	next Notifier

	mu      sync.Mutex
	limiter *rate.Limiter
	dropped int
}

// NewThrottledNotifier wraps next, allowing at most r error toasts per
// second with the given burst.
func NewThrottledNotifier(next Notifier, r rate.Limit, burst int) *ThrottledNotifier {
	return &ThrottledNotifier{
		next:    next,
		limiter: rate.NewLimiter(r, burst),
	}
}

func (n *ThrottledNotifier) Success(msg string) {
	n.next.Success(msg)
}

func (n *ThrottledNotifier) Error(msg string) {
	n.mu.Lock()
	ok := n.limiter.Allow()
	if !ok {
		n.dropped++
	}
	n.mu.Unlock()
	if ok {
		n.next.Error(msg)
	}
}

// Dropped returns how many error toasts were suppressed.
func (n *ThrottledNotifier) Dropped() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

var (
	_ Notifier = (*NopNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*ChannelNotifier)(nil)
	_ Notifier = (*MultiNotifier)(nil)
	_ Notifier = (*ThrottledNotifier)(nil)
)
