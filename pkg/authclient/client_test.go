package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokens_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		rc, err := r.Cookie("refreshToken")
		require.NoError(t, err)
		assert.Equal(t, "r-old", rc.Value)
		_ = json.NewEncoder(w).Encode(RefreshResponse{AccessToken: "a-new", RefreshToken: "r-new", AccessExp: 10, RefreshExp: 20})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).RefreshTokens(context.Background(), "r-old", "a-old")
	require.NoError(t, err)
	assert.Equal(t, "a-new", res.AccessToken)
	assert.EqualValues(t, 20, res.RefreshExp)
}

func TestRefreshTokens_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL+"/").RefreshTokens(context.Background(), "r", "a")
	require.Error(t, err)
}

func TestRefreshTokens_NotConfigured(t *testing.T) {
	_, err := NewClient("").RefreshTokens(context.Background(), "r", "a")
	require.Error(t, err)
}
