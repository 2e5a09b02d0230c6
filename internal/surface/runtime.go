package surface

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dop251/goja"
)

// Runtime is an in-process content surface: a goja VM with hardened globals
// that can run page scripts and receive synthesized bridge replies. It
// implements the bridge sink contract through Evaluate.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex

	calls   []Call
	callsMu sync.Mutex

	// outbound receives raw bridge messages posted by surface scripts via
	// webbridge.postMessage.
	outbound   func(raw []byte)
	outboundMu sync.RWMutex
}

// New creates a hardened surface runtime.
func New(config Config) (*Runtime, error) {
	r := &Runtime{
		vm:     goja.New(),
		config: config,
	}
	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetOutbound installs the host-side receiver for messages the surface posts
// through webbridge.postMessage.
func (r *Runtime) SetOutbound(fn func(raw []byte)) {
	r.outboundMu.Lock()
	r.outbound = fn
	r.outboundMu.Unlock()
}

// Run executes a page script in the surface, subject to the configured
// timeout. Used to set up callbacks and to drive surface-side behavior.
func (r *Runtime) Run(ctx context.Context, script string) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runLocked(ctx, script)
}

// Evaluate delivers a synthesized callback invocation into the surface. The
// script is produced by the bridge dispatch path; an evaluation error means
// the reply was not observed, which the bridge treats as a silent drop.
func (r *Runtime) Evaluate(ctx context.Context, script string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.runLocked(ctx, script)
	return err
}

func (r *Runtime) runLocked(ctx context.Context, script string) (interface{}, error) {
	if r.vm == nil {
		return nil, errors.New("surface runtime is closed")
	}
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	stop := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()
	defer close(stop)

	val, err := r.vm.RunString(script)
	if err != nil {
		return nil, err
	}
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil, nil
	}
	return val.Export(), nil
}

// RegisterCallback defines a global function in the surface that records its
// invocations, so tests and embedding hosts can observe delivered replies.
func (r *Runtime) RegisterCallback(name string) {
	r.vm.Set(name, func(call goja.FunctionCall) goja.Value {
		arg := ""
		if len(call.Arguments) > 0 {
			if encoded, err := sonic.Marshal(call.Arguments[0].Export()); err == nil {
				arg = string(encoded)
			}
		}
		r.callsMu.Lock()
		r.calls = append(r.calls, Call{Callback: name, Argument: arg})
		r.callsMu.Unlock()
		return goja.Undefined()
	})
}

// Calls returns recorded callback invocations in delivery order.
func (r *Runtime) Calls() []Call {
	r.callsMu.Lock()
	defer r.callsMu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Console returns captured console output.
func (r *Runtime) Console() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	out := make([]LogEntry, len(r.console))
	copy(out, r.console)
	return out
}

// setupGlobals removes dangerous globals and installs the bridge entry point.
func (r *Runtime) setupGlobals() error {
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are inert: surface scripts cannot schedule host work.
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	// webbridge.postMessage(obj) is the surface -> host direction.
	webbridge := r.vm.NewObject()
	webbridge.Set("postMessage", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		raw, err := sonic.Marshal(call.Arguments[0].Export())
		if err != nil {
			return goja.Undefined()
		}
		r.outboundMu.RLock()
		fn := r.outbound
		r.outboundMu.RUnlock()
		if fn != nil {
			fn(raw)
		}
		return goja.Undefined()
	})
	r.vm.Set("webbridge", webbridge)

	return nil
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// Reset discards the VM and recorded state, keeping the configuration.
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = goja.New()
	r.consoleMu.Lock()
	r.console = nil
	r.consoleMu.Unlock()
	r.callsMu.Lock()
	r.calls = nil
	r.callsMu.Unlock()
	return r.setupGlobals()
}

// Close releases the VM.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vm = nil
	return nil
}
