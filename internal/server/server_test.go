package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/export"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/masarmall/leasing/internal/observability"
	"github.com/masarmall/leasing/internal/ratelimit"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/internal/scheduler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

type fakeScheduleService struct {
	scheduledomain.Service

	rendered scheduledomain.Rendered
	err      error
}

func (f *fakeScheduleService) GetByLease(_ context.Context, leaseID string) (scheduledomain.Rendered, error) {
	if f.err != nil {
		return scheduledomain.Rendered{}, f.err
	}
	out := f.rendered
	out.LeaseID = leaseID
	return out, nil
}

type fakeLeaseService struct {
	leasecontractdomain.Service

	mu        sync.Mutex
	submitted []string
	err       error
}

func (f *fakeLeaseService) Submit(_ context.Context, id string) (leasecontractdomain.LeaseContract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return leasecontractdomain.LeaseContract{}, f.err
	}
	f.submitted = append(f.submitted, id)
	return leasecontractdomain.LeaseContract{Tenant: "Acme", Status: leasecontractdomain.StatusRent}, nil
}

type fakeLineService struct{}

func (fakeLineService) Recompute(_ context.Context, lines []leaselinedomain.LeaseLine) leaselinedomain.LeaseDocument {
	return leaselinedomain.LeaseDocument{Lines: lines, TotalLineCount: len(lines), TotalAmount: decimal.NewFromInt(100)}
}

type fakeJobRunner struct {
	calls []string
}

func (f *fakeJobRunner) RunJob(_ context.Context, name string) (scheduler.JobResult, error) {
	f.calls = append(f.calls, name)
	if name != scheduler.JobLeaseInvoiceDue {
		return scheduler.JobResult{}, scheduler.ErrUnknownJob
	}
	return scheduler.JobResult{Job: name, Processed: 3}, nil
}

func newTestServer(t *testing.T, mutate func(*Server)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		engine:      NewEngine(EngineParams{Cfg: config.Config{}, ObsCfg: observability.Config{}}),
		log:         zap.NewNop(),
		lineSvc:     fakeLineService{},
		leaseSvc:    &fakeLeaseService{},
		scheduleSvc: &fakeScheduleService{rendered: scheduledomain.Rendered{Rows: []scheduledomain.Row{}, Empty: true, EmptyMessage: scheduledomain.EmptyScheduleMessage}},
		exporter:    export.New(export.Params{}),
		jobs:        &fakeJobRunner{},
	}
	if mutate != nil {
		mutate(s)
	}
	s.RegisterRoutes()
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetScheduleEmpty(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/v1/leases/42/schedule", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data scheduledomain.Rendered `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.Data.LeaseID)
	assert.True(t, resp.Data.Empty)
	assert.Equal(t, scheduledomain.EmptyScheduleMessage, resp.Data.EmptyMessage)
	assert.Empty(t, resp.Data.Rows)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*Server)
		method   string
		path     string
		body     string
		status   int
		errType  string
		errField string
	}{
		{
			name:     "invalid schedule id",
			mutate:   func(s *Server) { s.scheduleSvc = &fakeScheduleService{err: scheduledomain.ErrInvalidID} },
			method:   http.MethodGet,
			path:     "/v1/leases/abc/schedule",
			status:   http.StatusBadRequest,
			errType:  "validation_error",
			errField: "id",
		},
		{
			name:    "submit non draft",
			mutate:  func(s *Server) { s.leaseSvc = &fakeLeaseService{err: leasecontractdomain.ErrLeaseNotDraft} },
			method:  http.MethodPost,
			path:    "/v1/leases/7/submit",
			status:  http.StatusConflict,
			errType: "conflict",
		},
		{
			name:    "lease missing",
			mutate:  func(s *Server) { s.leaseSvc = &fakeLeaseService{err: leasecontractdomain.ErrNotFound} },
			method:  http.MethodPost,
			path:    "/v1/leases/7/submit",
			status:  http.StatusNotFound,
			errType: "not_found",
		},
		{
			name:     "bad json",
			method:   http.MethodPost,
			path:     "/v1/lease-lines/recompute",
			body:     "{",
			status:   http.StatusBadRequest,
			errType:  "validation_error",
			errField: "request",
		},
		{
			name:    "unknown job",
			method:  http.MethodPost,
			path:    "/v1/admin/jobs/nope/run",
			status:  http.StatusNotFound,
			errType: "not_found",
		},
		{
			name:    "jobs unavailable",
			mutate:  func(s *Server) { s.jobs = nil },
			method:  http.MethodPost,
			path:    "/v1/admin/jobs/lease_invoice_due/run",
			status:  http.StatusServiceUnavailable,
			errType: "service_unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, tc.mutate)
			rec := doRequest(s, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())

			payload := decodeError(t, rec)
			assert.Equal(t, tc.errType, payload.Type)
			if tc.errField != "" {
				require.NotEmpty(t, payload.Errors)
				assert.Equal(t, tc.errField, payload.Errors[0].Field)
			}
		})
	}
}

func TestSubmitLease(t *testing.T) {
	leases := &fakeLeaseService{}
	s := newTestServer(t, func(s *Server) { s.leaseSvc = leases })

	rec := doRequest(s, http.MethodPost, "/v1/leases/99/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"99"}, leases.submitted)
	assert.Contains(t, rec.Body.String(), `"status":"rent"`)
}

func TestRecomputeLeaseLines(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodPost, "/v1/lease-lines/recompute", `{"lines":[{"item_reference":"RENT","area":10,"rate":5}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_line_count":1`)
}

func TestExportSchedule(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/v1/leases/42/schedule.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentType(export.FormatXLSX), rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lease-42-schedule.xlsx")
	assert.NotZero(t, rec.Body.Len())

	rec = doRequest(s, http.MethodGet, "/v1/leases/42/schedule.pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestRunJob(t *testing.T) {
	jobs := &fakeJobRunner{}
	s := newTestServer(t, func(s *Server) { s.jobs = jobs })

	rec := doRequest(s, http.MethodPost, "/v1/admin/jobs/lease_invoice_due/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"processed":3`)
	assert.Equal(t, []string{scheduler.JobLeaseInvoiceDue}, jobs.calls)
}

func TestAPIRateLimit(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	limiter := ratelimit.NewAPILimiter(ratelimit.APILimiterParams{
		Lifecycle: lc,
		Config: config.Config{RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 0.001,
			Burst:             1,
		}},
		Log: zap.NewNop(),
	})
	lc.RequireStart()
	defer lc.RequireStop()

	s := newTestServer(t, func(s *Server) { s.apiLimiter = limiter })

	first := doRequest(s, http.MethodGet, "/v1/leases/1/schedule", "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(s, http.MethodGet, "/v1/leases/1/schedule", "")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, second).Type)

	health := doRequest(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestClassifyErrorForLog(t *testing.T) {
	errType, code := classifyErrorForLog(leasecontractdomain.ErrInvalidTenant)
	assert.Equal(t, "validation_error", errType)
	assert.Equal(t, "invalid_tenant", code)

	errType, code = classifyErrorForLog(assert.AnError)
	assert.Equal(t, "internal_error", errType)
	assert.Equal(t, "internal_error", code)
}
