package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Alert    AlertConfig
	Export   ExportConfig
	Forecast ForecastPolicy
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

type AlertConfig struct {
	Enabled  bool
	QueueKey string
}

type ExportConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ForecastPolicy holds the tunable business constants of the forecasting
// engine. Thresholds and decay values are policy, not algorithm structure,
// and are tested independently.
type ForecastPolicy struct {
	LookbackDays            int
	SeasonalityWindowDays   int
	SeasonalityMinSpanDays  int
	TrendSampleDays         int
	DefaultLeadTimeDays     int
	SafetyStockDays         int
	HighRiskBufferDays      int
	MediumRiskThresholdDays int
	CurveHorizonDays        int
	StockoutSentinelDays    float64
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "woodash")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("ALERT_ENABLED", false)
		viper.SetDefault("ALERT_QUEUE_KEY", "forecast:alerts:pending")
		viper.SetDefault("EXPORT_ENABLED", false)
		viper.SetDefault("EXPORT_ENDPOINT", "")
		viper.SetDefault("EXPORT_ACCESS_KEY", "")
		viper.SetDefault("EXPORT_SECRET_KEY", "")
		viper.SetDefault("EXPORT_BUCKET", "")
		viper.SetDefault("EXPORT_REGION", "us-east-1")
		viper.SetDefault("EXPORT_USE_SSL", true)
		viper.SetDefault("FORECAST_LOOKBACK_DAYS", 90)
		viper.SetDefault("FORECAST_SEASONALITY_WINDOW_DAYS", 365)
		viper.SetDefault("FORECAST_SEASONALITY_MIN_SPAN_DAYS", 180)
		viper.SetDefault("FORECAST_TREND_SAMPLE_DAYS", 5)
		viper.SetDefault("FORECAST_DEFAULT_LEAD_TIME_DAYS", 7)
		viper.SetDefault("FORECAST_SAFETY_STOCK_DAYS", 7)
		viper.SetDefault("FORECAST_HIGH_RISK_BUFFER_DAYS", 7)
		viper.SetDefault("FORECAST_MEDIUM_RISK_THRESHOLD_DAYS", 30)
		viper.SetDefault("FORECAST_CURVE_HORIZON_DAYS", 30)
		viper.SetDefault("FORECAST_STOCKOUT_SENTINEL_DAYS", 9999)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Alert: AlertConfig{
				Enabled:  viper.GetBool("ALERT_ENABLED"),
				QueueKey: viper.GetString("ALERT_QUEUE_KEY"),
			},
			Export: ExportConfig{
				Enabled:   viper.GetBool("EXPORT_ENABLED"),
				Endpoint:  viper.GetString("EXPORT_ENDPOINT"),
				AccessKey: viper.GetString("EXPORT_ACCESS_KEY"),
				SecretKey: viper.GetString("EXPORT_SECRET_KEY"),
				Bucket:    viper.GetString("EXPORT_BUCKET"),
				Region:    viper.GetString("EXPORT_REGION"),
				UseSSL:    viper.GetBool("EXPORT_USE_SSL"),
			},
			Forecast: LoadForecastPolicy(),
		}
	})

	return instance
}

// LoadForecastPolicy reads only the forecast policy constants. The CLI and
// tests use this without pulling in server or database configuration.
func LoadForecastPolicy() ForecastPolicy {
	return ForecastPolicy{
		LookbackDays:            viper.GetInt("FORECAST_LOOKBACK_DAYS"),
		SeasonalityWindowDays:   viper.GetInt("FORECAST_SEASONALITY_WINDOW_DAYS"),
		SeasonalityMinSpanDays:  viper.GetInt("FORECAST_SEASONALITY_MIN_SPAN_DAYS"),
		TrendSampleDays:         viper.GetInt("FORECAST_TREND_SAMPLE_DAYS"),
		DefaultLeadTimeDays:     viper.GetInt("FORECAST_DEFAULT_LEAD_TIME_DAYS"),
		SafetyStockDays:         viper.GetInt("FORECAST_SAFETY_STOCK_DAYS"),
		HighRiskBufferDays:      viper.GetInt("FORECAST_HIGH_RISK_BUFFER_DAYS"),
		MediumRiskThresholdDays: viper.GetInt("FORECAST_MEDIUM_RISK_THRESHOLD_DAYS"),
		CurveHorizonDays:        viper.GetInt("FORECAST_CURVE_HORIZON_DAYS"),
		StockoutSentinelDays:    viper.GetFloat64("FORECAST_STOCKOUT_SENTINEL_DAYS"),
	}
}

// DefaultForecastPolicy returns the built-in policy constants, independent of
// any environment. Used by tests and as a fallback when config is absent.
func DefaultForecastPolicy() ForecastPolicy {
	return ForecastPolicy{
		LookbackDays:            90,
		SeasonalityWindowDays:   365,
		SeasonalityMinSpanDays:  180,
		TrendSampleDays:         5,
		DefaultLeadTimeDays:     7,
		SafetyStockDays:         7,
		HighRiskBufferDays:      7,
		MediumRiskThresholdDays: 30,
		CurveHorizonDays:        30,
		StockoutSentinelDays:    9999,
	}
}
