package bridge

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/embedhost/webbridge/internal/logging"
	"github.com/embedhost/webbridge/internal/protocol"
	"github.com/embedhost/webbridge/internal/security"
	"github.com/embedhost/webbridge/internal/shared/id"
)

// Sink delivers a synthesized call into the content surface. Delivery is
// fire-and-forget: failures are logged by the instance and never fed back
// into protocol state.
type Sink interface {
	Evaluate(ctx context.Context, script string) error
}

// Recorder observes bridge traffic for metrics. Implementations must be safe
// for concurrent use.
type Recorder interface {
	MessageReceived()
	ReplyDelivered()
	MessageDropped(reason string)
}

// Drop reasons passed to Recorder.MessageDropped.
const (
	DropUntrustedOrigin   = "untrusted_origin"
	DropMalformedEnvelope = "malformed_envelope"
	DropInvalidCallback   = "invalid_callback"
)

type nopRecorder struct{}

func (nopRecorder) MessageReceived()             {}
func (nopRecorder) ReplyDelivered()              {}
func (nopRecorder) MessageDropped(reason string) {}

// Instance owns the protocol state for one content surface. Actions are
// funneled through a single goroutine, so no two reductions interleave, and
// effects are dispatched in the order their actions were accepted.
type Instance struct {
	ID id.SurfaceID

	gate    *security.Gate
	reducer *Reducer
	sink    Sink
	log     *logging.Logger
	rec     Recorder

	mu       sync.RWMutex
	state    *State
	observer func(State)

	actions chan Action
	effects chan Effect

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures an Instance.
type Option func(*Instance)

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(i *Instance) { i.rec = rec }
}

// WithStateObserver registers a function called with a state copy after every
// reduction. It runs on the reduce goroutine and must return quickly; hand
// slow work to another goroutine.
func WithStateObserver(fn func(State)) Option {
	return func(i *Instance) { i.observer = fn }
}

// NewInstance creates and starts a bridge instance for one content surface.
// Each surface gets fully independent state; instances never share it.
func NewInstance(gate *security.Gate, reducer *Reducer, sink Sink, log *logging.Logger, opts ...Option) *Instance {
	ctx, cancel := context.WithCancel(context.Background())
	inst := &Instance{
		ID:      id.NewSurfaceID(),
		gate:    gate,
		reducer: reducer,
		sink:    sink,
		log:     log,
		rec:     nopRecorder{},
		state:   NewState(),
		actions: make(chan Action, 64),
		effects: make(chan Effect, 64),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(inst)
	}

	inst.wg.Add(2)
	go inst.reduceLoop()
	go inst.dispatchLoop()
	return inst
}

// HandleRaw processes one inbound raw message from the surface identified by
// origin. Untrusted origins are dropped before any decoding; their content is
// never parsed or logged. Malformed envelopes get a generic failure reply
// when a callback name can still be extracted.
func (i *Instance) HandleRaw(raw []byte, origin *url.URL) {
	i.rec.MessageReceived()

	if !i.gate.IsBridgeOriginTrusted(origin) {
		i.rec.MessageDropped(DropUntrustedOrigin)
		i.log.Warn("dropped message from untrusted origin",
			zap.String("surface", string(i.ID)),
			zap.String("origin", originLabel(origin)),
		)
		return
	}

	req, err := protocol.DecodeRequest(raw)
	if err != nil {
		i.rec.MessageDropped(DropMalformedEnvelope)
		i.log.Warn("dropped malformed envelope",
			zap.String("surface", string(i.ID)),
			zap.Error(err),
		)
		if cb := protocol.ExtractCallback(raw); cb != nil {
			i.Post(RequestRejected{Callback: *cb})
		}
		return
	}

	i.Post(RequestReceived{Request: req})
}

// Post enqueues an action. Actions posted after Close are dropped silently.
func (i *Instance) Post(action Action) {
	select {
	case i.actions <- action:
	case <-i.ctx.Done():
	}
}

// Snapshot returns a copy of the current protocol state.
func (i *Instance) Snapshot() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return *i.state
}

// Close tears the instance down. Effects still in flight are dropped; the
// surface's own teardown already invalidated the channel, so this is a silent
// no-op rather than an error.
func (i *Instance) Close() {
	i.closeOnce.Do(func() {
		i.cancel()
		i.wg.Wait()
	})
}

func (i *Instance) reduceLoop() {
	defer i.wg.Done()
	for {
		select {
		case action := <-i.actions:
			i.mu.Lock()
			effect := i.reducer.Reduce(i.state, action)
			snapshot := *i.state
			i.mu.Unlock()
			if i.observer != nil {
				i.observer(snapshot)
			}
			if effect == nil {
				continue
			}
			select {
			case i.effects <- *effect:
			case <-i.ctx.Done():
				return
			}
		case <-i.ctx.Done():
			return
		}
	}
}

func (i *Instance) dispatchLoop() {
	defer i.wg.Done()
	for {
		select {
		case effect := <-i.effects:
			i.deliver(effect)
		case <-i.ctx.Done():
			return
		}
	}
}

// deliver validates the callback name and hands the synthesized call to the
// sink. An invalid name drops the reply entirely; it is never repaired or
// partially executed.
func (i *Instance) deliver(effect Effect) {
	if !protocol.IsValidCallbackName(effect.Callback) {
		i.rec.MessageDropped(DropInvalidCallback)
		i.log.Warn("dropped reply to invalid callback name",
			zap.String("surface", string(i.ID)),
		)
		return
	}

	script := effect.Callback + "(" + effect.Body + ");"
	if err := i.sink.Evaluate(i.ctx, script); err != nil {
		i.log.Warn("reply delivery failed",
			zap.String("surface", string(i.ID)),
			zap.String("callback", effect.Callback),
			zap.Error(err),
		)
		return
	}
	i.rec.ReplyDelivered()
}

// originLabel renders scheme and host for audit logs without touching message
// content.
func originLabel(origin *url.URL) string {
	if origin == nil {
		return "<nil>"
	}
	return origin.Scheme + "://" + origin.Host
}
