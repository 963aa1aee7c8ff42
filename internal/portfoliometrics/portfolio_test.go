package portfoliometrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/golang/snappy"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/prometheus/prompb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type countStub struct {
	count int64
	err   error
}

func (s countStub) CountActive(context.Context, *gorm.DB) (int64, error)      { return s.count, s.err }
func (s countStub) CountRentedUnits(context.Context, *gorm.DB) (int64, error) { return s.count, s.err }

type sumStub struct {
	amount decimal.Decimal
	err    error
}

func (s sumStub) SumOutstanding(context.Context, *gorm.DB) (decimal.Decimal, error) {
	return s.amount, s.err
}

type pusherStub struct {
	mu    sync.Mutex
	calls int
}

func (p *pusherStub) Push(context.Context, *prometheus.Registry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return nil
}

func TestCollectSetsGauges(t *testing.T) {
	db := testutil.OpenDB(t)
	p := NewPortfolio(db, zap.NewNop(), countStub{count: 12}, countStub{count: 30}, sumStub{amount: decimal.RequireFromString("4500.50")}, nil, nil)

	require.NoError(t, p.Collect(context.Background()))

	assert.Equal(t, 12.0, promtest.ToFloat64(p.activeLeases))
	assert.Equal(t, 30.0, promtest.ToFloat64(p.rentedUnits))
	assert.Equal(t, 4500.5, promtest.ToFloat64(p.outstanding))
}

func TestCollectKeepsGaugeOnFailure(t *testing.T) {
	db := testutil.OpenDB(t)
	boom := errors.New("boom")
	p := NewPortfolio(db, zap.NewNop(), countStub{count: 3}, countStub{err: boom}, sumStub{amount: decimal.NewFromInt(10)}, nil, nil)
	p.rentedUnits.Set(7)

	err := p.Collect(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3.0, promtest.ToFloat64(p.activeLeases))
	assert.Equal(t, 7.0, promtest.ToFloat64(p.rentedUnits))
}

func TestTickPushes(t *testing.T) {
	db := testutil.OpenDB(t)
	pusher := &pusherStub{}
	p := NewPortfolio(db, zap.NewNop(), countStub{err: errors.New("down")}, nil, nil, pusher, nil)

	p.Tick(context.Background())
	assert.Equal(t, 1, pusher.calls)
}

func TestRemoteWritePusher(t *testing.T) {
	var (
		got     prompb.WriteRequest
		headers http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, got.Unmarshal(decoded))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	db := testutil.OpenDB(t)
	p := NewPortfolio(db, zap.NewNop(), countStub{count: 2}, countStub{count: 5}, sumStub{}, nil, prometheus.Labels{"env": "test"})
	require.NoError(t, p.Collect(context.Background()))

	pusher := NewRemoteWritePusher(srv.URL, "secret")
	require.NoError(t, pusher.Push(context.Background(), p.Registry()))

	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	require.Len(t, got.Timeseries, 3)

	values := map[string]float64{}
	for _, ts := range got.Timeseries {
		var name string
		for _, label := range ts.Labels {
			if label.Name == "__name__" {
				name = label.Value
			}
		}
		require.Len(t, ts.Samples, 1)
		values[name] = ts.Samples[0].Value
	}
	assert.Equal(t, 2.0, values["leasing_active_leases"])
	assert.Equal(t, 5.0, values["leasing_rented_units"])
	assert.Equal(t, 0.0, values["leasing_outstanding_rent_amount"])
}

func TestRemoteWritePusherRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPortfolio(testutil.OpenDB(t), zap.NewNop(), nil, nil, nil, nil, nil)
	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), p.Registry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPushgatewayPusher(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPortfolio(testutil.OpenDB(t), zap.NewNop(), nil, nil, nil, nil, nil)
	pusher := NewPushgatewayPusher(srv.URL, "leasing", map[string]string{"environment": "test"})
	require.NoError(t, pusher.Push(context.Background(), p.Registry()))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/leasing/environment/test", path)
}

func TestNewPusher(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.PortfolioMetricsConfig
		want any
	}{
		{name: "disabled", cfg: config.PortfolioMetricsConfig{Exporter: ExporterRemoteWrite, Endpoint: "http://x"}},
		{name: "missing endpoint", cfg: config.PortfolioMetricsConfig{Enabled: true, Exporter: ExporterRemoteWrite}},
		{name: "unknown exporter", cfg: config.PortfolioMetricsConfig{Enabled: true, Exporter: "statsd", Endpoint: "http://x"}},
		{name: "remote write", cfg: config.PortfolioMetricsConfig{Enabled: true, Exporter: ExporterRemoteWrite, Endpoint: "http://x/api/v1/write"}, want: &RemoteWritePusher{}},
		{name: "pushgateway", cfg: config.PortfolioMetricsConfig{Enabled: true, Exporter: ExporterPushgateway, Endpoint: "http://x"}, want: &PushgatewayPusher{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewPusher(config.Config{AppName: "leasing", PortfolioMetrics: tc.cfg}, zap.NewNop())
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tc.want, got)
		})
	}
}
