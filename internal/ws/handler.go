package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/embedhost/webbridge/internal/bridge"
	"github.com/embedhost/webbridge/internal/logging"
	"github.com/embedhost/webbridge/internal/monitoring"
	"github.com/embedhost/webbridge/internal/navigation"
	"github.com/embedhost/webbridge/internal/security"
	"github.com/embedhost/webbridge/internal/shared/id"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The security gate judges the Origin header per message, so the
	// upgrade itself accepts everyone.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Frame is a server-to-client message.
type Frame struct {
	Type    string `json:"type"`
	Script  string `json:"script,omitempty"`
	Message string `json:"message,omitempty"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	HTML    string `json:"html,omitempty"`
	Surface string `json:"surface,omitempty"`
}

// Frame types sent to the client.
const (
	FrameHello = "hello"
	FrameEval  = "eval"
	FramePage  = "page"
	FrameToast = "toast"
	FrameError = "error"
)

// Handler terminates WebSocket connections and runs one bridge instance per
// connection.
type Handler struct {
	gate    *security.Gate
	reducer *bridge.Reducer
	loader  *navigation.Loader
	metrics *monitoring.Metrics
	log     *logging.Logger
	readLim int64
}

// NewHandler creates a WebSocket handler.
func NewHandler(gate *security.Gate, reducer *bridge.Reducer, loader *navigation.Loader, metrics *monitoring.Metrics, log *logging.Logger, maxMessageBytes int) *Handler {
	return &Handler{
		gate:    gate,
		reducer: reducer,
		loader:  loader,
		metrics: metrics,
		log:     log.Named("ws"),
		readLim: int64(maxMessageBytes),
	}
}

// socketSink writes synthesized callback scripts back over the socket.
// gorilla connections allow one concurrent writer, so all writes (sink and
// state consumer) go through the shared mutex.
type socketSink struct {
	mu   *sync.Mutex
	conn *websocket.Conn
}

func (s *socketSink) Evaluate(_ context.Context, script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Frame{Type: FrameEval, Script: script})
}

// HandleConnection upgrades the request and serves the bridge until the
// client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(h.readLim)
	origin := parseOrigin(c.Request.Header.Get("Origin"))
	connID := id.NewConnID()

	h.metrics.WSConnections.Inc()
	defer h.metrics.WSConnections.Dec()

	var writeMu sync.Mutex
	sink := &socketSink{mu: &writeMu, conn: conn}

	states := make(chan bridge.State, 16)
	inst := bridge.NewInstance(h.gate, h.reducer, sink, h.log,
		bridge.WithRecorder(h.metrics),
		bridge.WithStateObserver(func(s bridge.State) {
			select {
			case states <- s:
			default:
				// Consumer is behind; it will catch up from a later
				// snapshot, pending fields stay set until consumed.
			}
		}),
	)
	h.metrics.InstancesActive.Inc()

	done := make(chan struct{})
	go h.consumeStates(c, inst, sink, states, done)

	// Close order matters: the instance must stop (and with it the observer)
	// before the snapshot channel closes.
	defer func() {
		inst.Close()
		close(states)
		<-done
		h.metrics.InstancesActive.Dec()
	}()

	h.log.Info("bridge connection open",
		zap.String("conn", connID.String()),
		zap.String("surface", inst.ID.String()),
	)

	writeMu.Lock()
	err = conn.WriteJSON(Frame{Type: FrameHello, Surface: inst.ID.String()})
	writeMu.Unlock()
	if err != nil {
		return
	}

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("websocket read failed",
					zap.String("conn", connID.String()),
					zap.Error(err),
				)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		inst.HandleRaw(raw, origin)
	}
}

// consumeStates drains state snapshots and services the pending fields:
// navigation targets are loaded, notifications and errors forwarded to the
// client. Each field is cleared through its consumption action so a repeated
// snapshot cannot double-deliver.
func (h *Handler) consumeStates(c *gin.Context, inst *bridge.Instance, sink *socketSink, states <-chan bridge.State, done chan<- struct{}) {
	defer close(done)
	// Snapshots queued before a consumption action lands still show the
	// pending value; pointer identity tells a stale sighting from a new one.
	var seenNav, seenToast, seenErr *string
	for state := range states {
		if state.PendingNavigationTarget != nil && state.PendingNavigationTarget != seenNav {
			seenNav = state.PendingNavigationTarget
			target := *state.PendingNavigationTarget
			inst.Post(bridge.NavigationConsumed{})
			h.navigate(c, inst, sink, target)
		}
		if state.PendingNotification != nil && state.PendingNotification != seenToast {
			seenToast = state.PendingNotification
			text := *state.PendingNotification
			inst.Post(bridge.NotificationConsumed{})
			h.send(sink, Frame{Type: FrameToast, Message: text})
		}
		if state.PendingError != nil && state.PendingError != seenErr {
			seenErr = state.PendingError
			msg := *state.PendingError
			inst.Post(bridge.ErrorAcknowledged{})
			h.send(sink, Frame{Type: FrameError, Message: msg})
		}
	}
}

func (h *Handler) navigate(c *gin.Context, inst *bridge.Instance, sink *socketSink, target string) {
	page, err := h.loader.Load(c.Request.Context(), target, inst)
	if err != nil {
		switch {
		case errors.Is(err, navigation.ErrBlocked):
			h.metrics.RecordNavigation("blocked")
		default:
			h.metrics.RecordNavigation("failed")
		}
		// The loader already posted LoadFailed; the resulting
		// PendingError reaches the client through a later snapshot.
		return
	}
	h.metrics.RecordNavigation("ok")
	h.send(sink, Frame{Type: FramePage, URL: page.URL, Title: page.Title, HTML: page.HTML})
}

func (h *Handler) send(sink *socketSink, frame Frame) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if err := sink.conn.WriteJSON(frame); err != nil {
		h.log.Warn("websocket write failed", zap.String("frame", frame.Type), zap.Error(err))
	}
}

func parseOrigin(header string) *url.URL {
	if header == "" {
		return nil
	}
	u, err := url.Parse(header)
	if err != nil {
		return nil
	}
	return u
}
