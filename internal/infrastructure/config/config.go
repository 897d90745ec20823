package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Modules    ModulesConfig
	Virtual    VirtualConfig
	Stock      StockConfig
	Pricing    PricingConfig
	Telemetry  TelemetryConfig
	Currencies []CurrencyConfig
	Items      []ItemConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Path            string // sqlite file, ":memory:" for a private in-memory database
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	SlowQuery       time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled   bool
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// HTTPConfig holds admin HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	// MaxBodyBytes caps request bodies
	MaxBodyBytes int64
	// RateLimit is the number of requests a client may send per RateLimitWindow, zero disables it
	RateLimit       int
	RateLimitWindow time.Duration
}

// ModulesConfig switches shop modules on or off
type ModulesConfig struct {
	VirtualShop bool
	ChestShop   bool
	Auction     bool
}

// VirtualConfig holds virtual shop settings
type VirtualConfig struct {
	// MultiplierPrefix is prepended to rank names to form permission nodes
	MultiplierPrefix string
	// SellMultipliers maps rank names to sell price multipliers
	SellMultipliers map[string]decimal.Decimal
}

// StockConfig holds trade limit persistence settings
type StockConfig struct {
	FlushInterval time.Duration
}

// PricingConfig holds pricer maintenance settings
type PricingConfig struct {
	// FloatRollInterval is how often float pricers roll a new price
	FloatRollInterval time.Duration
	// SaveInterval is how often pricer state such as demand is persisted
	SaveInterval time.Duration
}

// TelemetryConfig holds OpenTelemetry export settings. Nothing is exported
// unless Enabled is set.
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	Insecure          bool    // plain text connection to the collector
	ServiceName       string  // defaults to app.name
	SamplingRatio     float64 // 0.0-1.0
	MetricInterval    time.Duration
	// DBTrace adds a span per SQL statement
	DBTrace bool
	// DBFullSQL keeps query variables in statement spans
	DBFullSQL bool
}

// CurrencyConfig describes one tradeable currency
type CurrencyConfig struct {
	ID        string `mapstructure:"id"`
	Symbol    string `mapstructure:"symbol"`
	Precision int32  `mapstructure:"precision"`
	Rounding  string `mapstructure:"rounding"`
}

// ItemConfig registers an item template with the item registry
type ItemConfig struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	MaxStack int    `mapstructure:"max_stack"`
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SHOP_ prefix (e.g., SHOP_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	return load(v)
}

// LoadFile loads configuration from an explicit file path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	multipliers, err := parseMultipliers(v.GetStringMapString("virtual.sell_multipliers"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			SlowQuery:       v.GetDuration("database.slow_query"),
		},
		Redis: RedisConfig{
			Enabled:   v.GetBool("redis.enabled"),
			Host:      v.GetString("redis.host"),
			Port:      v.GetInt("redis.port"),
			Password:  v.GetString("redis.password"),
			DB:        v.GetInt("redis.db"),
			KeyPrefix: v.GetString("redis.key_prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			MaxBodyBytes:     v.GetInt64("http.max_body_bytes"),
			RateLimit:        v.GetInt("http.rate_limit"),
			RateLimitWindow:  v.GetDuration("http.rate_limit_window"),
		},
		Modules: ModulesConfig{
			VirtualShop: v.GetBool("modules.virtual_shop"),
			ChestShop:   v.GetBool("modules.chest_shop"),
			Auction:     v.GetBool("modules.auction"),
		},
		Virtual: VirtualConfig{
			MultiplierPrefix: v.GetString("virtual.multiplier_prefix"),
			SellMultipliers:  multipliers,
		},
		Pricing: PricingConfig{
			FloatRollInterval: v.GetDuration("pricing.float_roll_interval"),
			SaveInterval:      v.GetDuration("pricing.save_interval"),
		},
		Stock: StockConfig{
			FlushInterval: v.GetDuration("stock.flush_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ServiceName:       v.GetString("telemetry.service_name"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			MetricInterval:    v.GetDuration("telemetry.metric_interval"),
			DBTrace:           v.GetBool("telemetry.db_trace"),
			DBFullSQL:         v.GetBool("telemetry.db_full_sql"),
		},
	}

	if err := v.UnmarshalKey("currencies", &cfg.Currencies); err != nil {
		return nil, fmt.Errorf("error reading currencies: %w", err)
	}
	if err := v.UnmarshalKey("items", &cfg.Items); err != nil {
		return nil, fmt.Errorf("error reading items: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers defaults that cannot be told apart from zero values
func setDefaults(v *viper.Viper) {
	v.SetDefault("modules.virtual_shop", true)
	v.SetDefault("modules.chest_shop", true)
	v.SetDefault("modules.auction", false)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.db_trace", true)
}

func parseMultipliers(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for rank, value := range raw {
		m, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("virtual.sell_multipliers.%s: %w", rank, err)
		}
		out[rank] = m
	}
	return out, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "gameshop"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "gameshop.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "gameshop"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQuery == 0 {
		cfg.Database.SlowQuery = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "gameshop:"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// An empty origin list allows no cross-origin requests.
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 64 << 10
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Virtual.MultiplierPrefix == "" {
		cfg.Virtual.MultiplierPrefix = "shop.sellmultiplier."
	}
	if cfg.Pricing.FloatRollInterval == 0 {
		cfg.Pricing.FloatRollInterval = time.Hour
	}
	if cfg.Pricing.SaveInterval == 0 {
		cfg.Pricing.SaveInterval = 5 * time.Minute
	}
	if cfg.Stock.FlushInterval == 0 {
		cfg.Stock.FlushInterval = time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricInterval == 0 {
		cfg.Telemetry.MetricInterval = time.Minute
	}
	if len(cfg.Currencies) == 0 {
		cfg.Currencies = []CurrencyConfig{{ID: "coins", Symbol: "$", Precision: 2}}
	}
	for i := range cfg.Currencies {
		if cfg.Currencies[i].Rounding == "" {
			cfg.Currencies[i].Rounding = "half_up"
		}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	for rank, m := range c.Virtual.SellMultipliers {
		if m.IsNegative() {
			return fmt.Errorf("virtual.sell_multipliers.%s cannot be negative", rank)
		}
	}

	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %g", c.Telemetry.SamplingRatio)
	}

	seen := make(map[string]bool, len(c.Currencies))
	for _, cur := range c.Currencies {
		id := strings.ToLower(strings.TrimSpace(cur.ID))
		if id == "" {
			return fmt.Errorf("currencies: id is required")
		}
		if seen[id] {
			return fmt.Errorf("currencies: duplicate id %q", id)
		}
		seen[id] = true
		if cur.Precision < 0 {
			return fmt.Errorf("currencies.%s: precision cannot be negative", id)
		}
	}

	for i, item := range c.Items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("items[%d]: id is required", i)
		}
		if item.MaxStack < 0 {
			return fmt.Errorf("items.%s: max_stack cannot be negative", item.ID)
		}
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.Driver == DriverPostgres && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
