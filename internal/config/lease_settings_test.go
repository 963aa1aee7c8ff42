package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIntervalMonths(t *testing.T) {
	settings := DefaultLeaseSettings()

	cases := []struct {
		payType string
		want    int
	}{
		{payType: "1 month", want: 1},
		{payType: "3 Month", want: 3},
		{payType: " 6  month ", want: 6},
		{payType: "1 year", want: 12},
		{payType: "weekly", want: 1},
		{payType: "", want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.payType, func(t *testing.T) {
			assert.Equal(t, tc.want, settings.IntervalMonths(tc.payType))
		})
	}
}

func TestLeaseSettingsHolderFallsBackToDefaults(t *testing.T) {
	holder, err := NewLeaseSettingsHolder(Config{
		LeaseSettingsFile: filepath.Join(t.TempDir(), "missing.yml"),
	}, zap.NewNop())
	require.NoError(t, err)

	settings := holder.Get()
	assert.Equal(t, 12, settings.IntervalMonths("1 year"))
	assert.Equal(t, "Rent", settings.DefaultRentItem)
}

func TestLeaseSettingsHolderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.yml")
	content := []byte(`lease:
  payTypes:
    "1 month": 1
    "quarterly": 3
  defaultRentItem: "Mall Rent"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	holder, err := NewLeaseSettingsHolder(Config{LeaseSettingsFile: path}, zap.NewNop())
	require.NoError(t, err)

	settings := holder.Get()
	assert.Equal(t, 3, settings.IntervalMonths("Quarterly"))
	assert.Equal(t, "Mall Rent", settings.DefaultRentItem)
	assert.Equal(t, "Allowance", settings.AllowanceLabel)
}

func TestLeaseSettingsHolderRejectsNonPositiveInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.yml")
	content := []byte(`lease:
  payTypes:
    "1 month": 0
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	_, err := NewLeaseSettingsHolder(Config{LeaseSettingsFile: path}, zap.NewNop())
	require.Error(t, err)
}
