// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Shopify       ShopifyConfig       `mapstructure:"shopify"`
	Cart          CartConfig          `mapstructure:"cart"`
	Redis         RedisConfig         `mapstructure:"redis"`
	AWS           AWSConfig           `mapstructure:"aws"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Pricing       PricingConfig       `mapstructure:"pricing"`
	Lifecycle     LifecycleConfig     `mapstructure:"lifecycle"`
	EventLog      EventLogConfig      `mapstructure:"eventlog"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Addr              string `mapstructure:"addr"`
	ReadTimeout       int    `mapstructure:"read_timeout"`        // seconds
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout"` // seconds
	WriteTimeout      int    `mapstructure:"write_timeout"`       // seconds
	IdleTimeout       int    `mapstructure:"idle_timeout"`        // seconds
}

// ShopifyConfig holds the Admin API connection settings.
type ShopifyConfig struct {
	ShopDomain  string `mapstructure:"shop_domain"`
	AccessToken string `mapstructure:"access_token"`
	APIVersion  string `mapstructure:"api_version"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

// CartConfig holds the storefront cart endpoint settings.
type CartConfig struct {
	StorefrontURL string `mapstructure:"storefront_url"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AWSConfig struct {
	Region string    `mapstructure:"region"`
	SNS    SNSConfig `mapstructure:"sns"`
}

// SNSConfig controls the error-spike alarm notification topic.
type SNSConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	AlarmTopicARN string `mapstructure:"alarm_topic_arn"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// PricingConfig is the explicit material/coefficient configuration the
// calculator is built from. Nothing pricing-related is hard-coded.
type PricingConfig struct {
	Currency     string                    `mapstructure:"currency"`
	Materials    map[string]MaterialConfig `mapstructure:"materials"`
	Coefficients []CoefficientBreakpoint   `mapstructure:"coefficients"`
}

type MaterialConfig struct {
	Label          string  `mapstructure:"label"`
	BasePricePerM2 float64 `mapstructure:"base_price_per_m2"`
}

// CoefficientBreakpoint is one row of the ascending size-coefficient table.
// MaxArea <= 0 marks the unbounded final row.
type CoefficientBreakpoint struct {
	MaxArea     float64 `mapstructure:"max_area"`
	Coefficient float64 `mapstructure:"coefficient"`
}

// LifecycleConfig holds the temporary-variant lifecycle constants.
type LifecycleConfig struct {
	RetentionWindow    time.Duration `mapstructure:"retention_window"`
	MaxVariantAge      time.Duration `mapstructure:"max_variant_age"`
	ProvisionListLimit int           `mapstructure:"provision_list_limit"`
	SweepListLimit     int           `mapstructure:"sweep_list_limit"`
	ReservationTTL     time.Duration `mapstructure:"reservation_ttl"`
}

type EventLogConfig struct {
	Capacity       int           `mapstructure:"capacity"`
	AlarmThreshold int           `mapstructure:"alarm_threshold"`
	AlarmWindow    time.Duration `mapstructure:"alarm_window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
