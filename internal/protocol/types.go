package protocol

import "encoding/json"

// RequestType tags an inbound bridge message. The set is closed: decoding
// rejects anything else instead of falling through to a default.
type RequestType string

const (
	TypeGreeting      RequestType = "greeting"
	TypeGetUserInfo   RequestType = "getUserInfo"
	TypeGetAppVersion RequestType = "getAppVersion"
	TypeOpenURL       RequestType = "openUrl"
	TypeShowToast     RequestType = "showToast"
)

// knownTypes is the closed enumeration checked at decode time.
var knownTypes = map[RequestType]struct{}{
	TypeGreeting:      {},
	TypeGetUserInfo:   {},
	TypeGetAppVersion: {},
	TypeOpenURL:       {},
	TypeShowToast:     {},
}

// Request is the decoded inbound envelope. Callback and Payload are
// independently optional; Payload stays raw until a per-type accessor
// resolves it.
type Request struct {
	Type     RequestType
	Callback *string
	Payload  json.RawMessage
}

// Response is the outbound envelope. Message is always populated, even on
// success. Data is present only on specific success paths; EncodeResponse
// enforces that a failed response never carries data.
type Response struct {
	Success bool
	Message string
	Data    interface{}
}

// GreetingPayload is the typed payload of a greeting request.
type GreetingPayload struct {
	Text      string `json:"text"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

// OpenURLPayload is the typed payload of an openUrl request.
type OpenURLPayload struct {
	URL string `json:"url"`
}

// ToastPayload is the typed payload of a showToast request.
type ToastPayload struct {
	Message string `json:"message"`
}

// GreetingData is the reply data for greeting.
type GreetingData struct {
	Text string `json:"text"`
}

// UserInfoData is the reply data for getUserInfo.
type UserInfoData struct {
	Name      string `json:"name"`
	Device    string `json:"device"`
	OSVersion string `json:"osVersion"`
}

// AppVersionData is the reply data for getAppVersion.
type AppVersionData struct {
	AppVersion string `json:"appVersion"`
	OSVersion  string `json:"osVersion"`
	Device     string `json:"device"`
}
