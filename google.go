package sochx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goliatone/go-errors"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleProfile is the verified subset of a Google identity token.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Audience      string `json:"aud"`
}

// GoogleVerifier validates a Google-issued identity token and returns the
// profile it asserts.
type GoogleVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// GoogleTokenInfoVerifier verifies identity tokens against Google's tokeninfo
// endpoint and checks the audience matches our client id.
type GoogleTokenInfoVerifier struct {
	clientID string
	client   *http.Client
	endpoint string
}

var _ GoogleVerifier = (*GoogleTokenInfoVerifier)(nil)

func NewGoogleTokenInfoVerifier(clientID string) *GoogleTokenInfoVerifier {
	return &GoogleTokenInfoVerifier{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: googleTokenInfoURL,
	}
}

// WithEndpoint overrides the tokeninfo endpoint. Tests point it at a local
// server.
func (v *GoogleTokenInfoVerifier) WithEndpoint(endpoint string) *GoogleTokenInfoVerifier {
	if endpoint != "" {
		v.endpoint = endpoint
	}
	return v
}

func (v *GoogleTokenInfoVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	if idToken == "" {
		return nil, ErrInvalidCredentials
	}

	target := fmt.Sprintf("%s?id_token=%s", v.endpoint, url.QueryEscape(idToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build tokeninfo request")
	}

	res, err := v.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "tokeninfo request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		io.Copy(io.Discard, res.Body)
		return nil, ErrInvalidCredentials
	}

	profile := &GoogleProfile{}
	if err := json.NewDecoder(res.Body).Decode(profile); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to decode tokeninfo response")
	}

	if profile.Audience != v.clientID {
		return nil, ErrInvalidCredentials
	}

	return profile, nil
}
