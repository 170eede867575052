package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/auth"
)

// WithUser adds a signed-in user to the request context, bypassing the
// session cookie.
func WithUser(r *http.Request, userID, name string) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{ID: userID, Name: name})
}

// NewJSONRequest builds a request with body encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Envelope mirrors the JSON response envelope for decoding in tests.
type Envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeEnvelope decodes rec's body, failing the test on malformed JSON.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode response envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}
