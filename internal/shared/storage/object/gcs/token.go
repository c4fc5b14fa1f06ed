package gcs

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// sidecarTokenSource fetches access tokens from a local credential endpoint
// that answers GET with {"access_token", "token_type", "expires_in"}.
type sidecarTokenSource struct {
	url    string
	client *http.Client
	now    func() time.Time
}

type sidecarToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *sidecarTokenSource) Token() (*oauth2.Token, error) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	resp, err := s.client.Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("gcs: fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gcs: token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var payload sidecarToken
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("gcs: decode token: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("gcs: token endpoint returned empty access_token")
	}

	tok := &oauth2.Token{AccessToken: payload.AccessToken, TokenType: payload.TokenType}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if payload.ExpiresIn > 0 {
		tok.Expiry = now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return tok, nil
}
