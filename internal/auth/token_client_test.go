package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/inboxpilot/inboxpilot-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/tokens/google/user-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-123","refresh_token":"rt-456","expires_at":1750000000}`))
	}))
	defer srv.Close()

	client := NewTokenServiceClient(srv.URL)
	tok, err := client.GetToken(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "at-123", tok.AccessToken)
	assert.Equal(t, "rt-456", tok.RefreshToken)
	assert.Equal(t, time.Unix(1750000000, 0), tok.Expiry)
}

func TestGetToken_NotConnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewTokenServiceClient(srv.URL)
	_, err := client.GetToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestGetToken_EmptyAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"","expires_at":0}`))
	}))
	defer srv.Close()

	client := NewTokenServiceClient(srv.URL)
	_, err := client.GetToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestGetToken_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	client := NewTokenServiceClient(srv.URL)
	_, err := client.GetToken(context.Background(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "500")
}

func TestGetToken_UserIDEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"access_token":"at","expires_at":0}`))
	}))
	defer srv.Close()

	client := NewTokenServiceClient(srv.URL)
	_, err := client.GetToken(context.Background(), "user/../1")
	require.NoError(t, err)
	assert.Contains(t, gotPath, "user%2F..%2F1")
}
