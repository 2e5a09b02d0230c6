package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedhost/webbridge/internal/bridge"
	"github.com/embedhost/webbridge/internal/hostinfo"
	"github.com/embedhost/webbridge/internal/logging"
	"github.com/embedhost/webbridge/internal/monitoring"
	"github.com/embedhost/webbridge/internal/navigation"
	"github.com/embedhost/webbridge/internal/security"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = monitoring.NewMetrics()

func newTestServer(t *testing.T, policy security.Config) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gate := security.New(policy)
	log := logging.NewNop()
	reducer := bridge.NewReducer(hostinfo.Static{
		Name: "Ada", Model: "TestDevice", OS: "TestOS 1.0", Version: "2.3.4",
	})
	loader := navigation.NewLoader(gate, log)
	handler := NewHandler(gate, reducer, loader, testMetrics, log, 16384)

	router := gin.New()
	router.GET("/ws/bridge", handler.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/bridge"
}

func dial(t *testing.T, wsURL, origin string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

// readUntil drains frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) Frame {
	t.Helper()
	for {
		f := readFrame(t, conn)
		if f.Type == frameType {
			return f
		}
	}
}

func trustedPolicy() security.Config {
	return security.Config{
		NavigationHosts: []string{"apple.com"},
		TrustedOrigins:  []string{"apple.com"},
	}
}

func TestHelloFrame(t *testing.T) {
	wsURL := newTestServer(t, trustedPolicy())
	conn := dial(t, wsURL, "https://content.apple.com")

	hello := readFrame(t, conn)
	assert.Equal(t, FrameHello, hello.Type)
	assert.True(t, strings.HasPrefix(hello.Surface, "srf_"))
}

func TestGreetingRoundTrip(t *testing.T) {
	wsURL := newTestServer(t, trustedPolicy())
	conn := dial(t, wsURL, "https://content.apple.com")
	readFrame(t, conn) // hello

	msg := `{"type":"greeting","callback":"onGreet","data":{"text":"Hi"}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

	eval := readUntil(t, conn, FrameEval)
	assert.Equal(t, `onGreet({"data":{"text":"Hi"},"message":"greeting received","success":true});`, eval.Script)
}

func TestToastReachesClient(t *testing.T) {
	wsURL := newTestServer(t, trustedPolicy())
	conn := dial(t, wsURL, "https://content.apple.com")
	readFrame(t, conn) // hello

	msg := `{"type":"showToast","callback":"onToast","data":{"message":"saved"}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

	// Reply script and toast frame travel on different goroutines; accept
	// either order.
	var sawEval, sawToast bool
	for !sawEval || !sawToast {
		f := readFrame(t, conn)
		switch f.Type {
		case FrameEval:
			assert.Contains(t, f.Script, "toast queued")
			sawEval = true
		case FrameToast:
			assert.Equal(t, "saved", f.Message)
			sawToast = true
		}
	}
}

func TestUntrustedOriginGetsNoReply(t *testing.T) {
	wsURL := newTestServer(t, trustedPolicy())
	conn := dial(t, wsURL, "https://evil.com")
	readFrame(t, conn) // hello

	msg := `{"type":"greeting","callback":"onGreet","data":{"text":"Hi"}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var f Frame
	err := conn.ReadJSON(&f)
	require.Error(t, err, "expected silence, got frame %+v", f)
}

func TestNavigationDeliversPage(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Hello Page</title><script>alert(1)</script></head><body><p>hi</p></body></html>`))
	}))
	defer page.Close()

	policy := trustedPolicy()
	policy.NavigationHosts = []string{"127.0.0.1"}
	wsURL := newTestServer(t, policy)
	conn := dial(t, wsURL, "https://content.apple.com")
	readFrame(t, conn) // hello

	msg := `{"type":"openUrl","callback":"onOpen","data":{"url":"` + page.URL + `"}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

	frame := readUntil(t, conn, FramePage)
	assert.Equal(t, page.URL, frame.URL)
	assert.Equal(t, "Hello Page", frame.Title)
	assert.NotContains(t, frame.HTML, "<script")
	assert.Contains(t, frame.HTML, "hi")
}

func TestBlockedNavigationReportsError(t *testing.T) {
	wsURL := newTestServer(t, trustedPolicy())
	conn := dial(t, wsURL, "https://content.apple.com")
	readFrame(t, conn) // hello

	msg := `{"type":"openUrl","callback":"onOpen","data":{"url":"https://not-allowed.example/page"}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))

	frame := readUntil(t, conn, FrameError)
	assert.NotEmpty(t, frame.Message)
}
