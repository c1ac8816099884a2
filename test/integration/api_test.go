// Package integration provides end-to-end tests of the assembled application: the DI
// container, the API, the web UI and the configured secret store.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/blueprint-secrets/internal/app"
	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authDTO "github.com/allisson/blueprint-secrets/internal/auth/http/dto"
	authRepository "github.com/allisson/blueprint-secrets/internal/auth/repository"
	authService "github.com/allisson/blueprint-secrets/internal/auth/service"
	authUseCase "github.com/allisson/blueprint-secrets/internal/auth/usecase"
	"github.com/allisson/blueprint-secrets/internal/config"
	secretsDTO "github.com/allisson/blueprint-secrets/internal/secrets/http/dto"
	"github.com/allisson/blueprint-secrets/internal/testutil"
)

var csrfFieldPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

// integrationTestContext holds the running server and the provisioned clients.
type integrationTestContext struct {
	container     *app.Container
	server        *httptest.Server
	deployer      *authDomain.CreateClientOutput
	outsider      *authDomain.CreateClientOutput
	deployerToken string
	storeDriver   string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body any,
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	_ = resp.Body.Close()

	return resp, respBody
}

// issueToken exchanges client credentials for a bearer token through the API.
func (ctx *integrationTestContext) issueToken(t *testing.T, client *authDomain.CreateClientOutput) string {
	t.Helper()

	resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/token", authDTO.IssueTokenRequest{
		ClientID:     client.Client.ID.String(),
		ClientSecret: client.PlainSecret,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var token authDTO.IssueTokenResponse
	require.NoError(t, json.Unmarshal(body, &token))
	require.NotEmpty(t, token.Token)
	return token.Token
}

// provisionClient creates a client the way the create-client command does.
func provisionClient(t *testing.T, name string, groups ...string) *authDomain.CreateClientOutput {
	t.Helper()

	output, err := authUseCase.NewClientUseCase(authService.NewSecretService()).Create(
		context.Background(),
		&authDomain.CreateClientInput{Name: name, IsActive: true, Groups: groups},
	)
	require.NoError(t, err)
	return output
}

// setupIntegrationTest writes a clients file, configures storeDriver and starts the server.
func setupIntegrationTest(t *testing.T, storeDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	deployer := provisionClient(t, "deployer", "DEPLOYER")
	outsider := provisionClient(t, "outsider", "READERS")

	clientsFile := filepath.Join(t.TempDir(), "clients.yaml")
	data, err := authRepository.MarshalClientsFile(deployer.Client, outsider.Client)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(clientsFile, data, 0o600))

	cfg := &config.Config{
		ServerHost:           "127.0.0.1",
		LogLevel:             "error",
		StoreDriver:          storeDriver,
		SecretID:             "integration-" + storeDriver,
		SecretsWriteMode:     "replace",
		DBMaxOpenConnections: 5,
		DBMaxIdleConnections: 2,
		DBConnMaxLifetime:    time.Minute,
		AuthClientsFile:      clientsFile,
		AuthTokenExpiration:  time.Hour,
		AuthRequiredGroups:   []string{"DEPLOYER"},
		MetricsEnabled:       true,
		MetricsNamespace:     "integration",
	}

	switch storeDriver {
	case "postgres":
		testutil.TeardownDB(t, testutil.SetupPostgresDB(t))
		cfg.DBConnectionString = testutil.GetPostgresTestDSN()
	case "mysql":
		testutil.TeardownDB(t, testutil.SetupMySQLDB(t))
		cfg.DBConnectionString = testutil.GetMySQLTestDSN()
	}

	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")
	// SetupRouter switches gin to the configured mode.
	gin.SetMode(gin.TestMode)

	ctx := &integrationTestContext{
		container:   container,
		server:      httptest.NewServer(httpSrv.GetHandler()),
		deployer:    deployer,
		outsider:    outsider,
		storeDriver: storeDriver,
	}
	t.Cleanup(func() { teardownIntegrationTest(t, ctx) })

	ctx.deployerToken = ctx.issueToken(t, deployer)
	return ctx
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}
	if err := ctx.container.Shutdown(context.Background()); err != nil {
		t.Logf("Warning: container shutdown error: %v", err)
	}
}

// storeDrivers are exercised in turn. The SQL drivers are skipped when unreachable.
var storeDrivers = []string{"memory", "postgres", "mysql"}

func skipUnavailable(t *testing.T, storeDriver string) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	switch storeDriver {
	case "postgres":
		testutil.SkipIfNoPostgres(t)
	case "mysql":
		testutil.SkipIfNoMySQL(t)
	}
}

func TestIntegration_Health_BasicChecks(t *testing.T) {
	for _, storeDriver := range storeDrivers {
		t.Run(storeDriver, func(t *testing.T) {
			skipUnavailable(t, storeDriver)
			ctx := setupIntegrationTest(t, storeDriver)

			resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"healthy"}`, string(body))

			resp, body = ctx.makeRequest(t, http.MethodGet, "/ready", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(body), `"status":"ready"`)
		})
	}
}

func TestIntegration_Auth_CompleteFlow(t *testing.T) {
	for _, storeDriver := range storeDrivers {
		t.Run(storeDriver, func(t *testing.T) {
			skipUnavailable(t, storeDriver)
			ctx := setupIntegrationTest(t, storeDriver)

			t.Run("wrong secret", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/token", authDTO.IssueTokenRequest{
					ClientID:     ctx.deployer.Client.ID.String(),
					ClientSecret: "wrong",
				}, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("missing token", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("outside required groups", func(t *testing.T) {
				token := ctx.issueToken(t, ctx.outsider)
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, token)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("revoked token", func(t *testing.T) {
				token := ctx.issueToken(t, ctx.deployer)

				resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/token", nil, token)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, token)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		})
	}
}

func TestIntegration_Secrets_CompleteFlow(t *testing.T) {
	for _, storeDriver := range storeDrivers {
		t.Run(storeDriver, func(t *testing.T) {
			skipUnavailable(t, storeDriver)
			ctx := setupIntegrationTest(t, storeDriver)
			token := ctx.deployerToken

			resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, token)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)

			resp, body := ctx.makeRequest(t, http.MethodPut, "/v1/secrets", map[string]any{
				"secrets":     map[string]string{"API_KEY": "abc", "DB_PASSWORD": "s3cr3t"},
				"description": "integration",
			}, token)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			var written secretsDTO.SetSecretsResponse
			require.NoError(t, json.Unmarshal(body, &written))
			assert.Equal(t, map[string]string{"API_KEY": "abc", "DB_PASSWORD": "s3cr3t"}, written.Secrets)
			assert.NotEmpty(t, written.VersionID)
			assert.Empty(t, written.Warning)

			resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, token)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var read secretsDTO.GetSecretsResponse
			require.NoError(t, json.Unmarshal(body, &read))
			assert.Equal(t, []string{"API_KEY", "DB_PASSWORD"}, read.SecretKeys)
			assert.Equal(t, written.VersionID, read.VersionID)
			assert.False(t, read.CreatedDate.IsZero())

			resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/secrets/keys/API_KEY", nil, token)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var key secretsDTO.GetSecretKeyResponse
			require.NoError(t, json.Unmarshal(body, &key))
			assert.Equal(t, "abc", key.SecretValue)

			resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/secrets/keys/MISSING", nil, token)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			// A JSON-encoded string is accepted too and replaces the whole document.
			resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/secrets", map[string]any{
				"secrets": `{"ONLY":"one"}`,
			}, token)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, token)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var replaced secretsDTO.GetSecretsResponse
			require.NoError(t, json.Unmarshal(body, &replaced))
			assert.Equal(t, map[string]string{"ONLY": "one"}, replaced.Secrets)
			assert.Equal(t, []string{"ONLY"}, replaced.SecretKeys)
			assert.NotEqual(t, written.VersionID, replaced.VersionID)

			resp, _ = ctx.makeRequest(t, http.MethodPut, "/v1/secrets", map[string]any{
				"secrets": map[string]any{"NUMBER": 1},
			}, token)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestIntegration_WebUI_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := setupIntegrationTest(t, "memory")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar, Timeout: 10 * time.Second}

	csrfFrom := func(t *testing.T, body string) string {
		t.Helper()
		match := csrfFieldPattern.FindStringSubmatch(body)
		require.Len(t, match, 2, "page has no csrf token")
		return match[1]
	}
	get := func(t *testing.T, path string) (*http.Response, string) {
		t.Helper()
		resp, err := browser.Get(ctx.server.URL + path)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}
	post := func(t *testing.T, path string, form url.Values) (*http.Response, string) {
		t.Helper()
		resp, err := browser.PostForm(ctx.server.URL+path, form)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	apiResp, _ := ctx.makeRequest(t, http.MethodPut, "/v1/secrets", map[string]any{
		"secrets": map[string]string{"API_KEY": "abc"},
	}, ctx.deployerToken)
	require.Equal(t, http.StatusOK, apiResp.StatusCode)

	// Unauthenticated visits land on the login page.
	resp, body := get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", resp.Request.URL.Path)

	resp, body = post(t, "/login", url.Values{
		"csrf_token":    {csrfFrom(t, body)},
		"client_id":     {ctx.deployer.Client.ID.String()},
		"client_secret": {ctx.deployer.PlainSecret},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.Contains(t, body, "API_KEY")

	resp, body = get(t, "/edit")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="API_KEY"`)

	resp, body = post(t, "/edit", url.Values{
		"csrf_token": {csrfFrom(t, body)},
		"key":        {"API_KEY", "NEW_KEY"},
		"value":      {"abc", "new-value"},
		"is_new":     {"false", "true"},
		"to_delete":  {"true", "false"},
		"action":     {"save"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Secrets saved")

	apiResp, apiBody := ctx.makeRequest(t, http.MethodGet, "/v1/secrets", nil, ctx.deployerToken)
	require.Equal(t, http.StatusOK, apiResp.StatusCode)

	var read secretsDTO.GetSecretsResponse
	require.NoError(t, json.Unmarshal(apiBody, &read))
	assert.Equal(t, map[string]string{"NEW_KEY": "new-value"}, read.Secrets)

	resp, body = get(t, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "NEW_KEY")
	assert.NotContains(t, body, "API_KEY")

	resp, _ = post(t, "/logout", url.Values{"csrf_token": {csrfFrom(t, body)}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", resp.Request.URL.Path)
}
