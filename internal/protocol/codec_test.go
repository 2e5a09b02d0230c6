package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	t.Run("full envelope", func(t *testing.T) {
		raw := []byte(`{"type":"greeting","callback":"cb","data":{"text":"Hello"}}`)
		req, err := DecodeRequest(raw)
		require.NoError(t, err)
		assert.Equal(t, TypeGreeting, req.Type)
		require.NotNil(t, req.Callback)
		assert.Equal(t, "cb", *req.Callback)
		assert.NotEmpty(t, req.Payload)
	})

	t.Run("callback and payload are independently optional", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"type":"getUserInfo"}`))
		require.NoError(t, err)
		assert.Nil(t, req.Callback)
		assert.Empty(t, req.Payload)
	})

	t.Run("unknown type fails decoding", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"type":"bogus","callback":"cb"}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("missing type fails decoding", func(t *testing.T) {
		_, err := DecodeRequest([]byte(`{"callback":"cb"}`))
		assert.ErrorIs(t, err, ErrMissingType)
	})

	t.Run("non-object fails decoding", func(t *testing.T) {
		for _, raw := range []string{`[1,2]`, `"hello"`, `42`, `{`} {
			_, err := DecodeRequest([]byte(raw))
			assert.Error(t, err, "raw=%s", raw)
		}
	})
}

func TestPayloadResolution(t *testing.T) {
	t.Run("greeting", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"type":"greeting","data":{"text":"Hi","timestamp":1700000000}}`))
		require.NoError(t, err)
		p, ok := req.GreetingPayload()
		require.True(t, ok)
		assert.Equal(t, "Hi", p.Text)
		require.NotNil(t, p.Timestamp)
		assert.Equal(t, int64(1700000000), *p.Timestamp)
	})

	t.Run("greeting without data", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"type":"greeting","callback":"cb"}`))
		require.NoError(t, err)
		_, ok := req.GreetingPayload()
		assert.False(t, ok)
	})

	t.Run("greeting with wrong shape", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"type":"greeting","data":{"text":123}}`))
		require.NoError(t, err)
		_, ok := req.GreetingPayload()
		assert.False(t, ok)
	})

	t.Run("toast requires message", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"type":"showToast","data":{}}`))
		require.NoError(t, err)
		_, ok := req.ToastPayload()
		assert.False(t, ok)
	})

	t.Run("openUrl", func(t *testing.T) {
		req, err := DecodeRequest([]byte(`{"type":"openUrl","data":{"url":"https://www.apple.com"}}`))
		require.NoError(t, err)
		p, ok := req.OpenURLPayload()
		require.True(t, ok)
		assert.Equal(t, "https://www.apple.com", p.URL)
	})
}

func TestExtractCallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{"undecodable envelope still yields callback", `{"type":"bogus","callback":"cb"}`, strPtr("cb")},
		{"no callback", `{"type":"bogus"}`, nil},
		{"empty callback", `{"type":"bogus","callback":""}`, nil},
		{"not json", `{{{`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCallback([]byte(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestEncodeResponse(t *testing.T) {
	t.Run("sorted keys", func(t *testing.T) {
		out, err := EncodeResponse(Response{
			Success: true,
			Message: "ok",
			Data:    GreetingData{Text: "Hello"},
		})
		require.NoError(t, err)
		assert.Equal(t, `{"data":{"text":"Hello"},"message":"ok","success":true}`, out)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		resp := Response{Success: true, Message: "ok", Data: UserInfoData{Name: "n", Device: "d", OSVersion: "v"}}
		first, err := EncodeResponse(resp)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := EncodeResponse(resp)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("failure never carries data", func(t *testing.T) {
		out, err := EncodeResponse(Response{
			Success: false,
			Message: "nope",
			Data:    GreetingData{Text: "leak"},
		})
		require.NoError(t, err)

		var generic map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &generic))
		assert.Equal(t, false, generic["success"])
		assert.NotEmpty(t, generic["message"])
		_, present := generic["data"]
		assert.False(t, present)
	})

	t.Run("round trip keeps data and success consistent", func(t *testing.T) {
		for _, resp := range []Response{
			{Success: true, Message: "ok", Data: GreetingData{Text: "x"}},
			{Success: true, Message: "ok"},
			{Success: false, Message: "bad"},
		} {
			out, err := EncodeResponse(resp)
			require.NoError(t, err)

			var generic map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(out), &generic))
			if generic["success"] == false {
				_, present := generic["data"]
				assert.False(t, present)
			}
		}
	})
}

func strPtr(s string) *string { return &s }
