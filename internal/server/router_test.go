package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-authgate/tokengate/internal/auth"
	"github.com/go-authgate/tokengate/internal/exchange"
	"github.com/go-authgate/tokengate/internal/exchange/mocks"
	"github.com/go-authgate/tokengate/internal/metrics"
	"github.com/go-authgate/tokengate/internal/middleware"
	"github.com/go-authgate/tokengate/internal/models"
	"github.com/go-authgate/tokengate/internal/services"
	"github.com/go-authgate/tokengate/internal/store"
	"github.com/go-authgate/tokengate/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	router *gin.Engine
	codec  *token.Codec
	google *mocks.MockExchanger
}

func setupServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.New(store.DriverSQLite, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	hash, err := auth.HashPassword("s3cret:with:colons")
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(&models.User{
		ID:           uuid.NewString(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}))

	codec, err := token.NewCodec(testSecret)
	require.NoError(t, err)

	credentials := auth.NewCredentialChain()
	credentials.Register(auth.NewLocalCredentialValidator(s))
	identities := auth.NewIdentityChain()
	identities.Register(auth.NewLocalIdentityValidator(s))
	identities.Register(auth.NewEmailDomainValidator([]string{"partner.test"}))

	ctrl := gomock.NewController(t)
	google := mocks.NewMockExchanger(ctrl)
	google.EXPECT().Name().Return("google").AnyTimes()
	exchangers, err := exchange.NewRegistry(google)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	opts := Options{
		GrantService: services.NewGrantService(codec, credentials, identities, exchangers, nil, m),
		AuthService:  services.NewAuthService(codec, services.WithAuthMetrics(m)),
		Health:       s,
		Metrics:      reg,
	}
	if rateLimit > 0 {
		limiter, err := middleware.NewMemoryRateLimiter(rateLimit)
		require.NoError(t, err)
		opts.RateLimiter = limiter
	}

	return &testServer{router: NewRouter(opts), codec: codec, google: google}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func basic(userpass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(userpass))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestToken_ClientCredentials(t *testing.T) {
	ts := setupServer(t, 0)

	req := formRequest("/oauth/token", url.Values{"grant_type": {"client_credentials"}})
	req.Header.Set("Authorization", basic("alice:s3cret:with:colons"))
	w := ts.do(req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	body := decodeBody(t, w)
	assert.Equal(t, "bearer", body["token_type"])
	for _, key := range []string{"expires_in", "scope", "refresh_token"} {
		v, present := body[key]
		assert.True(t, present, key)
		assert.Nil(t, v, key)
	}

	claims, err := ts.codec.Decode(body["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "admin", claims["role"])
}

func TestToken_Errors(t *testing.T) {
	ts := setupServer(t, 0)

	tests := []struct {
		name       string
		req        func() *http.Request
		wantStatus int
		wantBody   string
	}{
		{
			name:       "empty body",
			req:        func() *http.Request { return jsonRequest("/oauth/token", "") },
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"grant_type":"no grant_type specified"}`,
		},
		{
			name:       "malformed json",
			req:        func() *http.Request { return jsonRequest("/oauth/token", "{") },
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"request":"malformed request body"}`,
		},
		{
			name: "unsupported authorization code",
			req: func() *http.Request {
				return jsonRequest("/oauth/token", `{"grant_type":"authorization_code","code":"x"}`)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"grant_type":"grant type not supported"}`,
		},
		{
			name: "unknown grant",
			req: func() *http.Request {
				return jsonRequest("/oauth/token", `{"grant_type":"password"}`)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"grant_type":"unknown grant type"}`,
		},
		{
			name: "missing authorization header",
			req: func() *http.Request {
				return jsonRequest("/oauth/token", `{"grant_type":"client_credentials"}`)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"authorization":"no authorization header set"}`,
		},
		{
			name: "legacy provider grant without code or token",
			req: func() *http.Request {
				return jsonRequest("/oauth/token", `{"grant_type":"google"}`)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"code":"no code or token specified"}`,
		},
		{
			name: "wrong password",
			req: func() *http.Request {
				req := jsonRequest("/oauth/token", `{"grant_type":"client_credentials"}`)
				req.Header.Set("Authorization", basic("alice:wrong"))
				return req
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"credentials":"invalid credentials"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(tt.req())

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestToken_ProviderCode(t *testing.T) {
	ts := setupServer(t, 0)
	ts.google.EXPECT().
		Exchange(gomock.Any(), "partner-code").
		Return(&auth.Identity{Provider: "google", Email: "Bob@Partner.test"}, nil)
	ts.google.EXPECT().
		Exchange(gomock.Any(), "alice-code").
		Return(&auth.Identity{Provider: "google", Email: "alice@example.com"}, nil)
	ts.google.EXPECT().
		Exchange(gomock.Any(), "stranger-code").
		Return(&auth.Identity{Provider: "google", Email: "eve@elsewhere.test"}, nil)

	w := ts.do(jsonRequest("/oauth/token", `{"grant_type":"google_authorization_code","code":"partner-code"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	claims, err := ts.codec.Decode(decodeBody(t, w)["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "bob@partner.test", claims["email"])

	w = ts.do(jsonRequest("/oauth/google", `{"code":"alice-code"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	claims, err = ts.codec.Decode(decodeBody(t, w)["access_token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["username"])

	w = ts.do(jsonRequest("/oauth/google", `{"code":"stranger-code"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"credentials":"invalid credentials"}`, w.Body.String())
}

func TestProviderEndpoint_Errors(t *testing.T) {
	ts := setupServer(t, 0)
	ts.google.EXPECT().Exchange(gomock.Any(), "expired").Return(nil, exchange.ErrExchangeFailed)

	w := ts.do(jsonRequest("/oauth/github", `{"code":"x"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"provider":"unknown provider"}`, w.Body.String())

	w = ts.do(jsonRequest("/oauth/google", `{}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"code":"no code specified"}`, w.Body.String())

	w = ts.do(jsonRequest("/oauth/google", `{"code":"expired"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeBody(t, w), "code")
}

func TestAuthorizationEndpoint(t *testing.T) {
	ts := setupServer(t, 0)

	w := ts.do(formRequest("/oauth/authorization", url.Values{
		"response_type": {"code"},
		"client_id":     {"app"},
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{
		"redirect_uri": "redirect_uri is required",
		"scope": "scope is required",
		"state": "state is required"
	}`, w.Body.String())

	w = ts.do(formRequest("/oauth/authorization", url.Values{
		"response_type": {"code"},
		"client_id":     {"app"},
		"redirect_uri":  {"https://app.test/cb"},
		"scope":         {"profile"},
		"state":         {"xyz"},
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"grant_type":"grant type not supported"}`, w.Body.String())
}

func TestMe(t *testing.T) {
	ts := setupServer(t, 0)
	jwt, err := ts.codec.Encode(token.Claims{"sub": "svc-1", "scopes": []any{"read"}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/oauth/me", nil)
	req.Header.Set("Authorization", "Bearer "+jwt)
	w := ts.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sub":"svc-1","scopes":["read"]}`, w.Body.String())

	w = ts.do(httptest.NewRequest(http.MethodGet, "/oauth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/oauth/me", nil)
	req.Header.Set("Authorization", "Bearer "+jwt+"x")
	w = ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"token":"invalid token"}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupServer(t, 0)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	req := formRequest("/oauth/token", url.Values{"grant_type": {"client_credentials"}})
	req.Header.Set("Authorization", basic("alice:s3cret:with:colons"))
	require.Equal(t, http.StatusOK, ts.do(req).Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tokengate_tokens_issued_total{grant_type="client_credentials"} 1`)
}

func TestToken_RateLimited(t *testing.T) {
	ts := setupServer(t, 2)

	for i := 0; i < 2; i++ {
		req := jsonRequest("/oauth/token", `{"grant_type":"password"}`)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		assert.Equal(t, http.StatusUnprocessableEntity, ts.do(req).Code)
	}

	req := jsonRequest("/oauth/token", `{"grant_type":"password"}`)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	w := ts.do(req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// The protected resource is not rate limited.
	req = httptest.NewRequest(http.MethodGet, "/oauth/me", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, http.StatusUnauthorized, ts.do(req).Code)
}
