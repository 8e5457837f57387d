// Command tokengate-cli obtains a bearer token from a tokengate server with
// the client_credentials grant and prints the claims the server sees.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	retry "github.com/appleboy/go-httpretry"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

// Token requests are retried on network errors, 5xx and 429 responses.
// Credential errors are returned immediately.
const maxRetries = 3

var (
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 10 * time.Second
)

var (
	serverURL string
	username  string
	password  string
)

func initConfig() {
	_ = godotenv.Load()

	flag.StringVar(&serverURL, "server", getEnv("TOKENGATE_URL", "http://localhost:8080"), "tokengate base URL")
	flag.StringVar(&username, "username", os.Getenv("TOKENGATE_USERNAME"), "client username")
	flag.StringVar(&password, "password", os.Getenv("TOKENGATE_PASSWORD"), "client password")
	flag.Parse()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	initConfig()
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "username and password are required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}

	tok, err := requestToken(ctx, client, serverURL, username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token request failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("access_token: %s\n", tok.AccessToken)

	claims, err := fetchClaims(ctx, client, serverURL, tok)
	if err != nil {
		fmt.Fprintf(os.Stderr, "claims request failed: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(claims, "", "  ")
	fmt.Println(string(out))
}

func newRetryClient(httpClient *http.Client) (*retry.Client, error) {
	return retry.NewClient(
		retry.WithHTTPClient(httpClient),
		retry.WithMaxRetries(maxRetries),
		retry.WithInitialRetryDelay(initialRetryDelay),
		retry.WithMaxRetryDelay(maxRetryDelay),
		retry.WithNoLogging(),
	)
}

// requestToken performs the client_credentials grant. The server takes the
// Basic credentials verbatim, without form-encoding them first.
func requestToken(
	ctx context.Context,
	httpClient *http.Client,
	baseURL, user, pass string,
) (*oauth2.Token, error) {
	client, err := newRetryClient(httpClient)
	if err != nil {
		return nil, err
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	basic := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	resp, err := client.Post(ctx, strings.TrimRight(baseURL, "/")+"/oauth/token",
		retry.WithBody("application/x-www-form-urlencoded", strings.NewReader(form.Encode())),
		retry.WithHeader("Authorization", "Basic "+basic),
	)
	if err != nil {
		closeBody(resp)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok oauth2.Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("server returned no access_token")
	}
	return &tok, nil
}

// fetchClaims calls the protected /oauth/me resource with tok.
func fetchClaims(
	ctx context.Context,
	httpClient *http.Client,
	baseURL string,
	tok *oauth2.Token,
) (map[string]any, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	client, err := newRetryClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(ctx, strings.TrimRight(baseURL, "/")+"/oauth/me")
	if err != nil {
		closeBody(resp)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var claims map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// closeBody releases the last response kept by the retry client when it
// gives up.
func closeBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
