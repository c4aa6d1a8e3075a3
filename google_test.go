package sochx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleTokenInfoVerifier(t *testing.T) {
	ctx := context.Background()

	newEndpoint := func(t *testing.T, status int, payload any) *httptest.Server {
		t.Helper()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(payload)
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	t.Run("accepts a token with the right audience", func(t *testing.T) {
		srv := newEndpoint(t, http.StatusOK, map[string]string{
			"sub":   "google-sub-1",
			"email": "ada@example.com",
			"name":  "Ada Lovelace",
			"aud":   "our-client-id",
		})

		verifier := sochx.NewGoogleTokenInfoVerifier("our-client-id").WithEndpoint(srv.URL)

		profile, err := verifier.VerifyIDToken(ctx, "some-id-token")
		require.NoError(t, err)
		assert.Equal(t, "google-sub-1", profile.Subject)
		assert.Equal(t, "ada@example.com", profile.Email)
	})

	t.Run("rejects a token minted for another client", func(t *testing.T) {
		srv := newEndpoint(t, http.StatusOK, map[string]string{
			"sub": "google-sub-1",
			"aud": "someone-elses-client-id",
		})

		verifier := sochx.NewGoogleTokenInfoVerifier("our-client-id").WithEndpoint(srv.URL)

		_, err := verifier.VerifyIDToken(ctx, "some-id-token")
		assert.ErrorIs(t, err, sochx.ErrInvalidCredentials)
	})

	t.Run("rejects a token google does not recognize", func(t *testing.T) {
		srv := newEndpoint(t, http.StatusBadRequest, map[string]string{
			"error": "invalid_token",
		})

		verifier := sochx.NewGoogleTokenInfoVerifier("our-client-id").WithEndpoint(srv.URL)

		_, err := verifier.VerifyIDToken(ctx, "bogus")
		assert.ErrorIs(t, err, sochx.ErrInvalidCredentials)
	})

	t.Run("rejects an empty token without a network call", func(t *testing.T) {
		verifier := sochx.NewGoogleTokenInfoVerifier("our-client-id")

		_, err := verifier.VerifyIDToken(ctx, "")
		assert.ErrorIs(t, err, sochx.ErrInvalidCredentials)
	})
}
