package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLeasingTracingConfigSampling(t *testing.T) {
	cases := []struct {
		name        string
		environment string
		want        float64
	}{
		{name: "production_keeps_ratio", environment: "production", want: 0.1},
		{name: "local_samples_all", environment: "local", want: 1},
		{name: "test_samples_all", environment: "test", want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := leasingTracingConfig(Config{
				ServiceName:       "leasing",
				Environment:       tc.environment,
				OtelSamplingRatio: 0.1,
			})
			assert.Equal(t, tc.want, got.SamplingRatio)
			assert.Equal(t, "leasing", got.ServiceName)
		})
	}
}

func TestLeasingLoggerConfigDebug(t *testing.T) {
	got := leasingLoggerConfig(Config{ServiceName: "leasing", Environment: "production", LogLevel: "debug"})
	assert.True(t, got.Debug)
	assert.True(t, got.IncludeStackOnError)

	got = leasingLoggerConfig(Config{ServiceName: "leasing", Environment: "production", LogLevel: "info"})
	assert.False(t, got.Debug)
	assert.True(t, got.IncludeCaller)
}

func TestLogObservability(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logObservability(zap.New(core), Config{ServiceName: "leasing", Environment: "staging", OtelEnabled: true})

	entries := logs.FilterMessage("observability configured").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "leasing", fields["service"])
		assert.Equal(t, true, fields["otel_enabled"])
	}
}
