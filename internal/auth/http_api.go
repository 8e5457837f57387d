package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-authgate/tokengate/internal/token"
)

// maxAPIResponseSize bounds the body read from the external API.
const maxAPIResponseSize = 1 << 20

// APIAuthRequest is the body POSTed to the external authentication API.
type APIAuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// APIAuthResponse is the body expected back.
type APIAuthResponse struct {
	Success  bool           `json:"success"`
	UserID   string         `json:"user_id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Claims   map[string]any `json:"claims"`
	Message  string         `json:"message"`
}

var errMissingUserID = errors.New("auth API response is missing user_id")

// HTTPAPIValidator delegates credential checks to an external HTTP API.
// A rejection by the API declines; transport failures and unexpected
// responses are faults. Request signing is the client's job (see
// internal/httpclient).
type HTTPAPIValidator struct {
	url    string
	client *http.Client
}

func NewHTTPAPIValidator(url string, client *http.Client) *HTTPAPIValidator {
	return &HTTPAPIValidator{url: url, client: client}
}

func (v *HTTPAPIValidator) Validate(ctx context.Context, in Credentials) (token.Claims, error) {
	body, err := json.Marshal(APIAuthRequest(in))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth API request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrNotApplicable
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("auth API returned status %d", resp.StatusCode)
	}

	var result APIAuthResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIResponseSize)).Decode(&result); err != nil {
		return nil, fmt.Errorf("invalid auth API response: %w", err)
	}
	if !result.Success {
		return nil, ErrNotApplicable
	}
	if result.UserID == "" {
		return nil, errMissingUserID
	}

	claims := make(token.Claims, len(result.Claims)+4)
	for k, val := range result.Claims {
		claims[k] = val
	}
	claims["sub"] = result.UserID
	claims["username"] = in.Username
	if result.Email != "" {
		claims["email"] = result.Email
	}
	if result.FullName != "" {
		claims["name"] = result.FullName
	}
	return claims, nil
}
