package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithUser injects a signed-in user into the request context for testing
// authenticated handlers, bypassing the session middleware.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	})
}

// WithUserID is WithUser for tests that only have an ID on hand.
func WithUserID(r *http.Request, id primitive.ObjectID) *http.Request {
	return auth.WithUser(r, &auth.SessionUser{
		ID:    id.Hex(),
		Name:  "Test User",
		Email: "test@example.com",
	})
}

// NewJSONRequest creates an HTTP request with a JSON-encoded body.
func NewJSONRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON unmarshals a response body into dst, failing the calling
// test helper's assertions if the body is not valid JSON.
func DecodeJSON(t interface{ Fatalf(string, ...any) }, rec *httptest.ResponseRecorder, dst any) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
}

// AssertStatus checks the response status code.
func AssertStatus(t interface{ Errorf(string, ...any) }, rec *httptest.ResponseRecorder, expected int) {
	if rec.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", rec.Code, expected, rec.Body.String())
	}
}

// AssertMessage checks that the response body carries the expected
// {"message": ...} payload.
func AssertMessage(t interface{ Errorf(string, ...any) }, rec *httptest.ResponseRecorder, expected string) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Errorf("failed to parse message body %q: %v", rec.Body.String(), err)
		return
	}
	if !strings.Contains(body.Message, expected) {
		t.Errorf("message: got %q, want it to contain %q", body.Message, expected)
	}
}
