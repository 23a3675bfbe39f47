package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signinBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"email": "a@b.c", "password": "p"}`},
		{name: "malformed", body: `{"email":`, wantErr: "invalid JSON"},
		{name: "empty", body: ``, wantErr: ErrEmptyBody.Error()},
		{name: "trailing value", body: `{"email": "a@b.c"} {"email": "x"}`, wantErr: "unexpected data"},
		{name: "wrong type", body: `{"email": 7}`, wantErr: "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/signin", strings.NewReader(tt.body))
			var dest signinBody

			err := ParseJSON(req, &dest)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, signinBody{Email: "a@b.c", Password: "p"}, dest)
		})
	}
}

func TestParseJSONOrError(t *testing.T) {
	t.Run("malformed is 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chats", bytes.NewBufferString(`{invalid}`))
		var dest map[string]string

		assert.False(t, ParseJSONOrError(w, req, &dest))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid JSON")
	})

	t.Run("oversized is 413", func(t *testing.T) {
		body := `{"content": "` + strings.Repeat("x", MaxJSONBodyBytes) + `"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chats/1/messages", strings.NewReader(body))
		var dest map[string]string

		assert.False(t, ParseJSONOrError(w, req, &dest))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestParsePathInt64OrError(t *testing.T) {
	tests := []struct {
		name     string
		vars     map[string]string
		expectOK bool
		want     int64
	}{
		{name: "valid", vars: map[string]string{"id": "42"}, expectOK: true, want: 42},
		{name: "missing", vars: map[string]string{}, expectOK: false},
		{name: "not a number", vars: map[string]string{"id": "abc"}, expectOK: false},
		{name: "overflow", vars: map[string]string{"id": "99999999999999999999"}, expectOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/chats/x", nil), tt.vars)

			got, ok := ParsePathInt64OrError(w, req, "id")

			assert.Equal(t, tt.expectOK, ok)
			if tt.expectOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParseQueryInt64OrError(t *testing.T) {
	tests := []struct {
		url    string
		want   int64
		wantOK bool
	}{
		{"/messages?limit=10", 10, true},
		{"/messages", 50, true},
		{"/messages?limit=", 50, true},
		{"/messages?limit=-1", -1, true},
		{"/messages?limit=x", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := ParseQueryInt64OrError(w, httptest.NewRequest(http.MethodGet, tt.url, nil), "limit", 50)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
