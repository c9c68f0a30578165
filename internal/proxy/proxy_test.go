package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"erp-bff/internal/audit"
	"erp-bff/internal/auth"
	"erp-bff/internal/domain/session"
	"erp-bff/internal/rbac"
	"erp-bff/internal/rbac/presets"
	apperrors "erp-bff/pkg/errors"
	"erp-bff/pkg/logger"
	"erp-bff/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method   string
	Path     string
	RawPath  string
	RawQuery string
	Header   http.Header
	Body     []byte
}

type fakeUpstream struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
	delay    time.Duration
	server   *httptest.Server
}

func newFakeUpstream(t *testing.T, status int, body string) *fakeUpstream {
	t.Helper()
	return newDelayedUpstream(t, status, body, 0)
}

// newDelayedUpstream answers after delay unless the caller gives up first.
func newDelayedUpstream(t *testing.T, status int, body string, delay time.Duration) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{status: status, body: body, delay: delay}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{
			Method: r.Method, Path: r.URL.Path, RawPath: r.URL.EscapedPath(), RawQuery: r.URL.RawQuery, Header: r.Header.Clone(), Body: payload,
		})
		f.mu.Unlock()

		if f.delay > 0 {
			select {
			case <-time.After(f.delay):
			case <-r.Context().Done():
				return
			}
		}

		if f.body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) calls() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

type testEnv struct {
	echo    *echo.Echo
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, baseURL string, timeout time.Duration, s *session.Session) *testEnv {
	t.Helper()
	m := metrics.New()
	log := logger.Discard()
	client := NewClient(map[Service]string{
		ServiceAsset:    baseURL,
		ServiceEmployee: baseURL,
		ServiceInvoice:  baseURL,
	}, timeout, m, log)
	h := NewHandler(client, audit.NewLogger(log), log)

	e := echo.New()
	g := e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s != nil {
				c.Set(auth.ContextKeySession, s)
			}
			return next(c)
		}
	})
	h.Register(g, Routes(rbac.MustNew(presets.ERP())))
	return &testEnv{echo: e, metrics: m}
}

func (env *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func sessionWith(subject string, roles ...string) *session.Session {
	return &session.Session{Subject: subject, Email: "u@example.com", Name: "U", Roles: roles, Token: "tok-" + subject}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.Body {
	t.Helper()
	var body apperrors.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandle_NoSessionNeverCallsUpstream(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `[]`)
	env := newTestEnv(t, up.server.URL, time.Second, nil)

	for _, target := range []string{"/api/assets", "/api/employees/3", "/api/invoices"} {
		rec := env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Equal(t, apperrors.KindUnauthorized, decodeError(t, rec).Error)
	}
	assert.Empty(t, up.calls())
}

func TestHandle_RoleGate(t *testing.T) {
	up := newFakeUpstream(t, http.StatusCreated, `{"id":1}`)

	tests := []struct {
		name   string
		roles  []string
		method string
		target string
		want   int
	}{
		{"employee cannot create asset", []string{"employee"}, http.MethodPost, "/api/assets", http.StatusForbidden},
		{"asset manager cannot delete asset", []string{"asset_manager"}, http.MethodDelete, "/api/assets/4", http.StatusForbidden},
		{"hr manager cannot touch invoices", []string{"hr_manager"}, http.MethodPut, "/api/invoices/4", http.StatusForbidden},
		{"admin is not implied by other roles", []string{"accountant"}, http.MethodDelete, "/api/invoices/4", http.StatusForbidden},
		{"no roles", nil, http.MethodPost, "/api/employees", http.StatusForbidden},
		{"asset manager creates asset", []string{"asset_manager"}, http.MethodPost, "/api/assets", http.StatusCreated},
		{"accountant updates invoice", []string{"accountant"}, http.MethodPut, "/api/invoices/4", http.StatusCreated},
		{"admin deletes employee", []string{"admin"}, http.MethodDelete, "/api/employees/4", http.StatusCreated},
		{"reads need only a session", nil, http.MethodGet, "/api/invoices/4", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(up.calls())
			env := newTestEnv(t, up.server.URL, time.Second, sessionWith("9", tt.roles...))

			rec := env.do(tt.method, tt.target, `{"name":"x"}`)
			assert.Equal(t, tt.want, rec.Code)

			if tt.want == http.StatusForbidden {
				assert.Equal(t, apperrors.KindForbidden, decodeError(t, rec).Error)
				assert.Len(t, up.calls(), before)
			} else {
				assert.Len(t, up.calls(), before+1)
			}
		})
	}
}

func TestHandle_ForwardsRequest(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `{"items":[{"id":1}],"total":1}`)
	env := newTestEnv(t, up.server.URL, time.Second, sessionWith("7", "employee"))

	rec := env.do(http.MethodGet, "/api/assets?status=in_use&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[{"id":1}],"total":1}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/api/assets?status=in_use&page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	calls := up.calls()
	require.Len(t, calls, 2)
	first := calls[0]
	assert.Equal(t, http.MethodGet, first.Method)
	assert.Equal(t, "/api/v1/assets", first.Path)
	assert.Equal(t, "status=in_use&page=2", first.RawQuery)
	assert.Equal(t, "Bearer tok-7", first.Header.Get("Authorization"))
	assert.Equal(t, "application/json", first.Header.Get("Content-Type"))
	assert.NotEmpty(t, first.Header.Get("X-Request-ID"))
	assert.NotEqual(t, first.Header.Get("X-Request-ID"), calls[1].Header.Get("X-Request-ID"))
}

func TestHandle_PathAndQueryMapping(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `[]`)
	env := newTestEnv(t, up.server.URL, time.Second, sessionWith("7", "admin"))

	env.do(http.MethodGet, "/api/assets/assigned?page=1&size=5&status=lost", "")
	env.do(http.MethodGet, "/api/assets/categories?page=3", "")
	env.do(http.MethodGet, "/api/assets/12/history", "")
	env.do(http.MethodPost, "/api/assets/12/return", `{"notes":"ok"}`)

	calls := up.calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "/api/v1/assets/assigned", calls[0].Path)
	assert.Equal(t, "page=1&size=5", calls[0].RawQuery)
	assert.Equal(t, "/api/v1/categories/", calls[1].Path)
	assert.Empty(t, calls[1].RawQuery)
	assert.Equal(t, "/api/v1/history/12", calls[2].Path)
	assert.Equal(t, "/api/v1/assignments/12/return", calls[3].Path)
	assert.JSONEq(t, `{"notes":"ok"}`, string(calls[3].Body))
}

func TestHandle_EscapedPathIDIsNotDoubleEncoded(t *testing.T) {
	up := newFakeUpstream(t, http.StatusOK, `{}`)
	env := newTestEnv(t, up.server.URL, time.Second, sessionWith("7", "admin"))

	env.do(http.MethodGet, "/api/employees/a%2Fb", "")
	env.do(http.MethodGet, "/api/employees/x%20y", "")
	env.do(http.MethodGet, "/api/employees/p%2541", "")

	calls := up.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "/api/v1/employees/a/b", calls[0].Path)
	assert.Equal(t, "/api/v1/employees/a%2Fb", calls[0].RawPath)
	assert.Equal(t, "/api/v1/employees/x y", calls[1].Path)
	assert.Equal(t, "/api/v1/employees/p%41", calls[2].Path)
}

func TestHandle_BodyTransforms(t *testing.T) {
	up := newFakeUpstream(t, http.StatusCreated, `{"ok":true}`)

	t.Run("assign stamps numeric subject", func(t *testing.T) {
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("42", "asset_manager"))
		rec := env.do(http.MethodPost, "/api/assets/9/assign", `{"employee_id":3,"assigned_by":999}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		calls := up.calls()
		last := calls[len(calls)-1]
		assert.Equal(t, "/api/v1/assignments/9/assign", last.Path)
		assert.JSONEq(t, `{"employee_id":3,"assigned_by":42}`, string(last.Body))
	})

	t.Run("assign keeps non-numeric subject as string", func(t *testing.T) {
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("svc-importer", "admin"))
		rec := env.do(http.MethodPost, "/api/assets/9/assign", `{"employee_id":3}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		calls := up.calls()
		assert.JSONEq(t, `{"employee_id":3,"assigned_by":"svc-importer"}`, string(calls[len(calls)-1].Body))
	})

	t.Run("maintenance takes asset id from path", func(t *testing.T) {
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "admin"))
		rec := env.do(http.MethodPost, "/api/assets/15/maintenance", `{"description":"fan","asset_id":1}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		calls := up.calls()
		last := calls[len(calls)-1]
		assert.Equal(t, "/api/v1/maintenance/15", last.Path)
		assert.JSONEq(t, `{"description":"fan","asset_id":15}`, string(last.Body))
	})

	t.Run("malformed body is rejected before the upstream", func(t *testing.T) {
		before := len(up.calls())
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "admin"))

		for _, body := range []string{`{"employee_id":`, `[1,2]`, `null`} {
			rec := env.do(http.MethodPost, "/api/assets/9/assign", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		}
		assert.Len(t, up.calls(), before)
	})
}

func TestHandle_RelaysUpstreamResponses(t *testing.T) {
	t.Run("non-2xx verbatim", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusNotFound, `{"detail":"Asset not found"}`)
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "employee"))

		rec := env.do(http.MethodGet, "/api/assets/404", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, `{"detail":"Asset not found"}`, rec.Body.String())
	})

	t.Run("validation error from upstream", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","name"]}]}`)
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "admin"))

		rec := env.do(http.MethodPost, "/api/invoices", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, `{"detail":[{"loc":["body","name"]}]}`, rec.Body.String())
	})

	t.Run("204 relayed empty", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusNoContent, "")
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "admin"))

		rec := env.do(http.MethodDelete, "/api/assets/3", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("status preserved on 2xx", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusCreated, `{"id":77}`)
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "hr_manager"))

		rec := env.do(http.MethodPost, "/api/employees", `{"full_name":"A"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id":77}`, rec.Body.String())
	})

	t.Run("malformed 2xx body", func(t *testing.T) {
		up := newFakeUpstream(t, http.StatusOK, `<html>oops</html>`)
		env := newTestEnv(t, up.server.URL, time.Second, sessionWith("1", "employee"))

		rec := env.do(http.MethodGet, "/api/invoices", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, apperrors.KindServiceUnavailable, decodeError(t, rec).Error)
	})
}

func TestHandle_TimeoutVersusUnavailable(t *testing.T) {
	t.Run("budget exhausted", func(t *testing.T) {
		up := newDelayedUpstream(t, http.StatusOK, `[]`, 2*time.Second)
		env := newTestEnv(t, up.server.URL, 50*time.Millisecond, sessionWith("1", "employee"))

		rec := env.do(http.MethodGet, "/api/employees", "")
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, apperrors.KindTimeout, body.Error)
		assert.Equal(t, "employee", body.Details)

		assert.Equal(t, float64(1), testutil.ToFloat64(
			env.metrics.UpstreamRequests.WithLabelValues("employee", http.MethodGet, metrics.OutcomeTimeout)))
	})

	t.Run("connection refused", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		base := closed.URL
		closed.Close()
		env := newTestEnv(t, base, time.Second, sessionWith("1", "employee"))

		rec := env.do(http.MethodGet, "/api/invoices", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, apperrors.KindServiceUnavailable, decodeError(t, rec).Error)

		assert.Equal(t, float64(1), testutil.ToFloat64(
			env.metrics.UpstreamRequests.WithLabelValues("invoice", http.MethodGet, metrics.OutcomeUnavailable)))
	})
}

func TestRoutes_AllowLists(t *testing.T) {
	routes := Routes(rbac.MustNew(presets.ERP()))

	byName := map[string]Route{}
	for _, rt := range routes {
		byName[rt.Name()] = rt
	}

	assert.Equal(t, []rbac.Role{presets.RoleAdmin, presets.RoleAssetManager}, byName["POST /assets/:id/assign"].Roles)
	assert.Equal(t, []rbac.Role{presets.RoleAdmin}, byName["DELETE /invoices/:id"].Roles)
	assert.Equal(t, []rbac.Role{presets.RoleAdmin, presets.RoleHRManager}, byName["POST /employees"].Roles)
	assert.False(t, byName["GET /assets/:id"].Mutating())

	for _, rt := range routes {
		if rt.Method != http.MethodGet {
			assert.NotEmpty(t, rt.Roles, rt.Name())
		}
	}
}
