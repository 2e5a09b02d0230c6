package bridge

import (
	"net/url"

	"github.com/embedhost/webbridge/internal/hostinfo"
	"github.com/embedhost/webbridge/internal/protocol"
)

// Effect describes one deferred send back into the content surface: the
// callback to invoke and the encoded reply body. The reducer only ever
// returns descriptors; delivery happens elsewhere, so transitions can be
// asserted without a live surface.
type Effect struct {
	Callback string
	Body     string
}

// Reducer maps actions onto state transitions plus at most one effect.
type Reducer struct {
	info hostinfo.Provider
}

// NewReducer creates a reducer backed by the given host-info provider.
func NewReducer(info hostinfo.Provider) *Reducer {
	return &Reducer{info: info}
}

// Reduce applies one action to the state and returns the resulting effect,
// or nil when the action produces none. It never blocks and never calls the
// sink. Payload-decode failures are recovered into success=false replies;
// nothing escapes as an error.
func (r *Reducer) Reduce(s *State, action Action) *Effect {
	switch a := action.(type) {
	case ProgressChanged:
		s.LoadProgress = clamp(a.Progress)
		return nil

	case LoadFailed:
		s.LoadProgress = 0
		msg := a.Message
		s.PendingError = &msg
		return nil

	case RequestReceived:
		return r.handleRequest(s, a.Request)

	case RequestRejected:
		cb := a.Callback
		return makeEffect(&cb, protocol.Response{
			Success: false,
			Message: "cannot process request",
		})

	case ErrorAcknowledged:
		s.PendingError = nil
		return nil

	case NavigationConsumed:
		s.PendingNavigationTarget = nil
		return nil

	case NotificationConsumed:
		s.PendingNotification = nil
		return nil
	}
	return nil
}

// handleRequest runs the per-type handler. State mutation and the reply are
// not mutually exclusive: openUrl and showToast do both for the same action.
func (r *Reducer) handleRequest(s *State, req *protocol.Request) *Effect {
	var resp protocol.Response

	switch req.Type {
	case protocol.TypeGreeting:
		if p, ok := req.GreetingPayload(); ok {
			resp = protocol.Response{
				Success: true,
				Message: "greeting received",
				Data:    protocol.GreetingData{Text: p.Text},
			}
		} else {
			resp = protocol.Response{Success: false, Message: "greeting payload missing text"}
		}

	case protocol.TypeGetUserInfo:
		resp = protocol.Response{
			Success: true,
			Message: "user info",
			Data: protocol.UserInfoData{
				Name:      r.info.UserName(),
				Device:    r.info.Device(),
				OSVersion: r.info.OSVersion(),
			},
		}

	case protocol.TypeGetAppVersion:
		resp = protocol.Response{
			Success: true,
			Message: "app version",
			Data: protocol.AppVersionData{
				AppVersion: r.info.AppVersion(),
				OSVersion:  r.info.OSVersion(),
				Device:     r.info.Device(),
			},
		}

	case protocol.TypeOpenURL:
		p, ok := req.OpenURLPayload()
		if !ok || !isNavigableURL(p.URL) {
			resp = protocol.Response{Success: false, Message: "invalid url"}
			break
		}
		target := p.URL
		s.PendingNavigationTarget = &target
		resp = protocol.Response{Success: true, Message: "url accepted"}

	case protocol.TypeShowToast:
		p, ok := req.ToastPayload()
		if !ok {
			resp = protocol.Response{Success: false, Message: "toast payload missing message"}
			break
		}
		text := p.Message
		s.PendingNotification = &text
		resp = protocol.Response{Success: true, Message: "toast queued"}

	default:
		// Decoding already rejected everything outside the closed set.
		resp = protocol.Response{Success: false, Message: "cannot process request"}
	}

	return makeEffect(req.Callback, resp)
}

// makeEffect encodes the reply for the request's callback. A request without
// a callback is fire-and-forget: its state mutation stands, but no reply is
// produced.
func makeEffect(callback *string, resp protocol.Response) *Effect {
	if callback == nil {
		return nil
	}
	body, err := protocol.EncodeResponse(resp)
	if err != nil {
		return nil
	}
	return &Effect{Callback: *callback, Body: body}
}

// isNavigableURL requires an absolute URL with a scheme and host. url.Parse
// alone accepts nearly any string as a relative path, which the navigation
// loader can never use.
func isNavigableURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
