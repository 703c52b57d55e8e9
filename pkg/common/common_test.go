package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:443", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.8"}, "10.0.0.2:443", "203.0.113.8"},
		{"remote addr", nil, "192.0.2.1:5678", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestID(r))

	r.Header.Set(RequestIDHeader, "from-header")
	assert.Equal(t, "from-header", RequestID(r))

	var seen string
	middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
}

func TestParseJSONBody(t *testing.T) {
	type body struct {
		Username string `json:"username"`
	}

	t.Run("decodes", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice99"}`))
		var b body
		require.NoError(t, ParseJSONBody(httptest.NewRecorder(), r, &b, 1024))
		assert.Equal(t, "alice99", b.Username)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"a","admin":true}`))
		var b body
		assert.Error(t, ParseJSONBody(httptest.NewRecorder(), r, &b, 1024))
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"`+strings.Repeat("a", 64)+`"}`))
		var b body
		var tooLarge *http.MaxBytesError
		assert.ErrorAs(t, ParseJSONBody(httptest.NewRecorder(), r, &b, 16), &tooLarge)
	})
}

func TestResponders(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondMessage(rec, http.StatusCreated, "done")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"done"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	RespondText(rec, http.StatusOK, "Show Name@Naruto")
	assert.Equal(t, "Show Name@Naruto", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

	json := httptest.NewRequest(http.MethodPost, "/", nil)
	json.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.True(t, IsJSON(json))
	assert.False(t, IsJSON(httptest.NewRequest(http.MethodPost, "/", nil)))
}
