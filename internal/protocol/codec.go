package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	// ErrNotObject indicates the raw message is not a JSON object.
	ErrNotObject = errors.New("envelope is not a JSON object")
	// ErrMissingType indicates the envelope has no type tag.
	ErrMissingType = errors.New("envelope missing type")
	// ErrUnknownType indicates the type tag is outside the closed set.
	ErrUnknownType = errors.New("unknown request type")
)

// encoder marshals with sorted map keys so encoded replies are byte-for-byte
// reproducible across runs.
var encoder = sonic.Config{SortMapKeys: true}.Froze()

// wireRequest mirrors the inbound JSON envelope.
type wireRequest struct {
	Type     *string         `json:"type"`
	Callback *string         `json:"callback"`
	Data     json.RawMessage `json:"data"`
}

// DecodeRequest parses the envelope only. The payload stays raw; resolving it
// to a typed structure is a separate, separately-failable step.
func DecodeRequest(raw []byte) (*Request, error) {
	var wire wireRequest
	if err := sonic.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if wire.Type == nil || *wire.Type == "" {
		return nil, ErrMissingType
	}
	typ := RequestType(*wire.Type)
	if _, ok := knownTypes[typ]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, *wire.Type)
	}

	req := &Request{Type: typ, Payload: wire.Data}
	if wire.Callback != nil && *wire.Callback != "" {
		req.Callback = wire.Callback
	}
	return req, nil
}

// ExtractCallback pulls the callback name out of a raw message that failed
// envelope decoding, so a generic failure reply can still be addressed.
// Returns nil when no usable name is present.
func ExtractCallback(raw []byte) *string {
	var wire struct {
		Callback *string `json:"callback"`
	}
	if err := sonic.Unmarshal(raw, &wire); err != nil {
		return nil
	}
	if wire.Callback == nil || *wire.Callback == "" {
		return nil
	}
	return wire.Callback
}

// EncodeResponse serializes a reply envelope with deterministic key ordering.
// A failed response never carries data, whatever the caller set.
func EncodeResponse(resp Response) (string, error) {
	envelope := map[string]interface{}{
		"success": resp.Success,
		"message": resp.Message,
	}
	if resp.Success && resp.Data != nil {
		data, err := normalize(resp.Data)
		if err != nil {
			return "", fmt.Errorf("encode response data: %w", err)
		}
		envelope["data"] = data
	}

	out, err := encoder.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("encode response: %w", err)
	}
	return string(out), nil
}

// normalize flattens typed data into a generic map so nested keys also come
// out sorted.
func normalize(data interface{}) (map[string]interface{}, error) {
	raw, err := sonic.Marshal(data)
	if err != nil {
		return nil, err
	}
	var generic map[string]interface{}
	if err := sonic.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// GreetingPayload resolves the payload of a greeting request. ok is false
// when the payload is absent, malformed, or missing text.
func (r *Request) GreetingPayload() (*GreetingPayload, bool) {
	p, ok := decodePayload[GreetingPayload](r.Payload)
	if !ok || p.Text == "" {
		return nil, false
	}
	return p, true
}

// OpenURLPayload resolves the payload of an openUrl request.
func (r *Request) OpenURLPayload() (*OpenURLPayload, bool) {
	return decodePayload[OpenURLPayload](r.Payload)
}

// ToastPayload resolves the payload of a showToast request. ok is false when
// the message is absent.
func (r *Request) ToastPayload() (*ToastPayload, bool) {
	p, ok := decodePayload[ToastPayload](r.Payload)
	if !ok || p.Message == "" {
		return nil, false
	}
	return p, true
}

// decodePayload resolves a raw payload into T. Shape mismatches report
// ok=false instead of surfacing an error; the caller picks the fallback.
func decodePayload[T any](raw json.RawMessage) (*T, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var p T
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}
