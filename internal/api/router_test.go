package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/core/service"
	"github.com/censudex/clients-service/internal/core/validation"
	"github.com/censudex/clients-service/internal/infrastructure/db/memory"
	"github.com/censudex/clients-service/internal/infrastructure/security"
	"github.com/censudex/clients-service/internal/pkg/token"
)

const juan = `{
	"firstName":"Juan","lastName":"Pérez","email":"juan.perez@censudex.cl",
	"username":"juanperez","password":"Secret123!","birthDate":"1990-05-15",
	"address":"Av. Siempre Viva 742","phone":"+56 9 1234 5678"}`

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestRouter(t *testing.T, secret string, health map[string]ports.Pinger) http.Handler {
	t.Helper()
	repo := memory.NewClientRepository()
	v := validation.New(validation.Options{})
	svc := service.NewClientService(repo, security.NewBcryptCodec(4), v, zerolog.Nop())
	if health == nil {
		health = map[string]ports.Pinger{"storage": repo}
	}
	reg := prometheus.NewRegistry()
	return NewRouter(RouterDeps{
		Service:    svc,
		Validator:  v,
		Health:     health,
		JWTSecret:  secret,
		Logger:     zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestRouter_ClientLifecycle(t *testing.T) {
	h := newTestRouter(t, "", nil)

	code, body := do(t, h, http.MethodPost, "/api/clients", juan)
	require.Equal(t, http.StatusCreated, code, body)
	client := body["client"].(map[string]any)
	id := client["id"].(string)
	assert.Equal(t, "+56912345678", client["phone"])
	assert.Equal(t, "client", client["role"])
	assert.NotContains(t, client, "password")

	code, body = do(t, h, http.MethodPost, "/api/clients", strings.Replace(juan, `"juanperez"`, `"other"`, 1))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email already registered", body["error"])

	code, body = do(t, h, http.MethodGet, "/api/clients/"+id+"?includePassword=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body["client"].(map[string]any)["password"].(string), "$2a$"))

	code, _ = do(t, h, http.MethodPatch, "/api/clients/"+id+"/password", `{"password":"NewPass456@"}`)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodPost, "/api/clients/verify", `{"username":"juanperez","password":"Secret123!"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = do(t, h, http.MethodPost, "/api/clients/verify", `{"username":"juanperez","password":"NewPass456@"}`)
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodPatch, "/api/clients/"+id, `{"phone":"+56987654321"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "+56987654321", body["client"].(map[string]any)["phone"])
	assert.Equal(t, "juan.perez@censudex.cl", body["client"].(map[string]any)["email"])

	code, body = do(t, h, http.MethodGet, "/api/clients?name=JUAN", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])

	code, _ = do(t, h, http.MethodDelete, "/api/clients/"+id, "")
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodGet, "/api/clients/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "client not found", body["error"])

	code, _ = do(t, h, http.MethodDelete, "/api/clients/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(t, h, http.MethodGet, "/api/clients", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["count"])
}

func TestRouter_ValidationErrorsListEveryViolation(t *testing.T) {
	h := newTestRouter(t, "", nil)

	code, body := do(t, h, http.MethodPost, "/api/clients", `{"email":"x@gmail.com","password":"weak"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid input", body["error"])

	fields := map[string]bool{}
	for _, v := range body["violations"].([]any) {
		fields[v.(map[string]any)["field"].(string)] = true
	}
	for _, f := range []string{"firstName", "lastName", "email", "username", "password", "birthDate", "address", "phone"} {
		assert.True(t, fields[f], "missing violation for %s", f)
	}
}

func TestRouter_MalformedIDAndPayload(t *testing.T) {
	h := newTestRouter(t, "", nil)

	code, body := do(t, h, http.MethodGet, "/api/clients/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["violations"])

	code, body = do(t, h, http.MethodPost, "/api/clients", `{"firstName":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid payload", body["error"])
}

func TestRouter_BearerAuth(t *testing.T) {
	h := newTestRouter(t, "secret", nil)

	code, body := do(t, h, http.MethodGet, "/api/clients", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing authorization header", body["error"])

	signed, err := token.Issue("secret", "admin-id", "admin", "admin", time.Hour)
	require.NoError(t, err)
	code, _ = do(t, h, http.MethodGet, "/api/clients", "", "Authorization", "Bearer "+signed)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code, "probes stay public")
}

func TestRouter_RequestLogIncludesCaller(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	v := validation.New(validation.Options{})
	h := NewRouter(RouterDeps{
		Service:    service.NewClientService(memory.NewClientRepository(), security.NewBcryptCodec(4), v, zerolog.Nop()),
		Validator:  v,
		JWTSecret:  "secret",
		Logger:     zerolog.New(&buf),
		Registerer: reg,
		Gatherer:   reg,
	})

	signed, err := token.Issue("secret", "admin-id", "admin", "admin", time.Hour)
	require.NoError(t, err)
	code, _ := do(t, h, http.MethodGet, "/api/clients", "", "Authorization", "Bearer "+signed)
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, buf.String(), `"subject":"admin-id"`)
	assert.Contains(t, buf.String(), `"username":"admin"`)
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, "", nil)

	code, body := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"status": "ok", "service": "clients-service"}, body)

	code, body = do(t, h, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	degraded := newTestRouter(t, "", map[string]ports.Pinger{"redis": failingPinger{}})
	code, body = do(t, degraded, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	redis := body["dependencies"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "connection refused", redis["error"])
}

func TestRouter_HealthHidesErrorsWhenConfigured(t *testing.T) {
	reg := prometheus.NewRegistry()
	v := validation.New(validation.Options{})
	h := NewRouter(RouterDeps{
		Service:          service.NewClientService(memory.NewClientRepository(), security.NewBcryptCodec(4), v, zerolog.Nop()),
		Validator:        v,
		Health:           map[string]ports.Pinger{"postgres": failingPinger{}},
		HideHealthErrors: true,
		Logger:           zerolog.Nop(),
		Registerer:       reg,
		Gatherer:         reg,
	})

	code, body := do(t, h, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	pg := body["dependencies"].(map[string]any)["postgres"].(map[string]any)
	assert.Equal(t, map[string]any{"status": "unhealthy"}, pg)
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, "", nil)
	do(t, h, http.MethodGet, "/health", "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clients_http_requests_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(t, "", nil)
	code, body := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, body["error"])
}
