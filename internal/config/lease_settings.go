package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LeaseSettings are operator-tunable lease rules that may change without a restart.
type LeaseSettings struct {
	PayTypes        map[string]int `mapstructure:"payTypes"`
	DefaultRentItem string         `mapstructure:"defaultRentItem"`
	AllowanceLabel  string         `mapstructure:"allowanceLabel"`
}

func DefaultLeaseSettings() LeaseSettings {
	return LeaseSettings{
		PayTypes: map[string]int{
			"1 month": 1,
			"2 month": 2,
			"3 month": 3,
			"4 month": 4,
			"6 month": 6,
			"1 year":  12,
		},
		DefaultRentItem: "Rent",
		AllowanceLabel:  "Allowance",
	}
}

// IntervalMonths resolves a pay type to its billing interval. Unknown pay types bill monthly.
func (s LeaseSettings) IntervalMonths(payType string) int {
	key := normalizePayType(payType)
	if months, ok := s.PayTypes[key]; ok && months > 0 {
		return months
	}
	return 1
}

// KnownPayType reports whether the pay type is configured.
func (s LeaseSettings) KnownPayType(payType string) bool {
	_, ok := s.PayTypes[normalizePayType(payType)]
	return ok
}

type LeaseSettingsHolder struct {
	current atomic.Value // holds LeaseSettings
}

// NewStaticLeaseSettingsHolder pins the holder to fixed settings.
func NewStaticLeaseSettingsHolder(settings LeaseSettings) *LeaseSettingsHolder {
	holder := &LeaseSettingsHolder{}
	holder.current.Store(normalizeLeaseSettings(settings))
	return holder
}

func NewLeaseSettingsHolder(cfg Config, log *zap.Logger) (*LeaseSettingsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.lease")

	v := viper.New()
	if cfg.LeaseSettingsFile != "" {
		v.SetConfigFile(cfg.LeaseSettingsFile)
	} else {
		v.SetConfigName("lease")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/leasing")
		v.AddConfigPath(".")
	}

	defaults := DefaultLeaseSettings()
	v.SetDefault("lease.payTypes", defaults.PayTypes)
	v.SetDefault("lease.defaultRentItem", defaults.DefaultRentItem)
	v.SetDefault("lease.allowanceLabel", defaults.AllowanceLabel)

	holder := &LeaseSettingsHolder{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfg.LeaseSettingsFile != "" {
			log.Warn("lease settings unreadable, using defaults", zap.Error(err))
		}
		holder.current.Store(defaults)
		return holder, nil
	}

	settings, err := decodeLeaseSettings(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(settings)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeLeaseSettings(v)
		if err != nil {
			log.Warn("lease settings reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("lease settings reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *LeaseSettingsHolder) Get() LeaseSettings {
	if h == nil {
		return DefaultLeaseSettings()
	}
	settings, ok := h.current.Load().(LeaseSettings)
	if !ok {
		return DefaultLeaseSettings()
	}
	return settings
}

func decodeLeaseSettings(v *viper.Viper) (LeaseSettings, error) {
	var settings LeaseSettings
	if err := v.UnmarshalKey("lease", &settings); err != nil {
		return LeaseSettings{}, err
	}
	settings = normalizeLeaseSettings(settings)
	if err := validateLeaseSettings(settings); err != nil {
		return LeaseSettings{}, err
	}
	return settings, nil
}

func normalizeLeaseSettings(settings LeaseSettings) LeaseSettings {
	payTypes := make(map[string]int, len(settings.PayTypes))
	for key, months := range settings.PayTypes {
		payTypes[normalizePayType(key)] = months
	}
	settings.PayTypes = payTypes
	settings.DefaultRentItem = strings.TrimSpace(settings.DefaultRentItem)
	if settings.DefaultRentItem == "" {
		settings.DefaultRentItem = "Rent"
	}
	settings.AllowanceLabel = strings.TrimSpace(settings.AllowanceLabel)
	if settings.AllowanceLabel == "" {
		settings.AllowanceLabel = "Allowance"
	}
	return settings
}

func validateLeaseSettings(settings LeaseSettings) error {
	if len(settings.PayTypes) == 0 {
		return errors.New("lease.payTypes cannot be empty")
	}
	for key, months := range settings.PayTypes {
		if months <= 0 {
			return fmt.Errorf("lease.payTypes[%s] must be positive", key)
		}
	}
	return nil
}

func normalizePayType(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
