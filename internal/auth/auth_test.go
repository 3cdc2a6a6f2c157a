package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"fitbitexport/internal/config"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestTokenRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_alice@example.com.json")
	expiry := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	token := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}
	require.NoError(t, saveToken(path, token, "ABC123"))

	loaded, userID, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "Bearer", loaded.TokenType)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, loaded.Expiry.Equal(expiry))
	assert.Equal(t, "ABC123", userID)
}

func TestLoadTokenMissingFile(t *testing.T) {
	_, _, err := loadToken(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantCode int
		wantAuth string
	}{
		{"valid", "/?code=abc&state=good", http.StatusOK, "abc"},
		{"missing code", "/favicon.ico", http.StatusNotFound, ""},
		{"state mismatch", "/?code=abc&state=evil", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan string, 1)
			handler := callbackHandler("good", ch)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantAuth != "" {
				select {
				case code := <-ch:
					assert.Equal(t, tt.wantAuth, code)
				default:
					t.Fatal("expected a code on the channel")
				}
			} else {
				assert.Empty(t, ch)
			}
		})
	}
}

func TestIntrospect(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"active", http.StatusOK, `{"active":true}`, true},
		{"inactive", http.StatusOK, `{"active":false}`, false},
		{"server error", http.StatusInternalServerError, ``, false},
		{"bad json", http.StatusOK, `nope`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "tok", r.PostForm.Get("token"))
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			a := NewAuthorizer(config.Account{Email: "alice@example.com"}, 8000, t.TempDir(), testLogger())
			a.introspectURL = srv.URL

			assert.Equal(t, tt.want, a.introspect(context.Background(), "tok"))
		})
	}
}

func TestAuthorizeUsesStoredActiveToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"active":true}`)
	}))
	defer srv.Close()

	dir := t.TempDir()
	a := NewAuthorizer(config.Account{Email: "alice@example.com"}, 8000, dir, testLogger())
	a.introspectURL = srv.URL

	token := &oauth2.Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, saveToken(a.tokenPath, token, "ABC123"))

	sess, err := a.Authorize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", sess.UserID)
	assert.NotNil(t, sess.Client)
}
