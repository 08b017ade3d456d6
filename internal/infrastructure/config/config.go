package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App                AppConfig
	Database           DatabaseConfig
	Redis              RedisConfig
	JWT                JWTConfig
	Log                LogConfig
	HTTP               HTTPConfig
	Storage            StorageConfig
	DocumentRepository DocumentRepositoryConfig
	MemberData         MemberDataConfig
	Catalog            CatalogConfig
	Telemetry          TelemetryConfig
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

// IsProduction reports whether the service runs in production mode
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
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
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for validating caller tokens
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64 // multipart template uploads
	MaxJSONBodySize   int64
	RateLimitEnabled  bool
	RateLimitRequests int // letter generations per tenant per window
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// StorageConfig holds S3-compatible object storage settings for rendered letters
type StorageConfig struct {
	Driver            string // s3 or memory
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	PresignExpiration time.Duration
	EnsureBucket      bool
}

// DocumentRepositoryConfig holds settings for the drive API that stores template files
type DocumentRepositoryConfig struct {
	BaseURL      string
	DriveID      string
	FolderID     string
	TenantID     string // identity provider tenant, used to build the default token URL
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	AllowedHosts []string
	Timeout      time.Duration
	TokenMargin  time.Duration
}

// MemberSourceConfig describes one upstream member record service
type MemberSourceConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	Path    string `mapstructure:"path"` // must contain {id}
}

// MemberDataConfig holds settings for the member data aggregator
type MemberDataConfig struct {
	Sources      []MemberSourceConfig
	AllowedHosts []string
	Timeout      time.Duration
	DateLayout   string
}

// CatalogConfig holds field catalog cache settings
type CatalogConfig struct {
	CacheDriver string // memory or redis
	CacheTTL    time.Duration
}

// TelemetryConfig holds OpenTelemetry and metrics configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to export traces
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool    // Expose /metrics
	DBTracing         bool    // Emit a span per SQL statement
	DBLogFullSQL      bool    // Include bound variables in SQL spans (development only)
	SlowQuery         time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with COMMHUB_ prefix (e.g., COMMHUB_DATABASE_PASSWORD)
// 2. Variables from a local .env file (never overriding the real environment)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("COMMHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

// loadDotEnv copies variables from path into the process environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	var sources []MemberSourceConfig
	if err := v.UnmarshalKey("member_data.sources", &sources); err != nil {
		return nil, fmt.Errorf("invalid member_data.sources: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
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
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			MaxJSONBodySize:   v.GetInt64("http.max_json_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Driver:            v.GetString("storage.driver"),
			Endpoint:          v.GetString("storage.endpoint"),
			Region:            v.GetString("storage.region"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			EnsureBucket:      v.GetBool("storage.ensure_bucket"),
		},
		DocumentRepository: DocumentRepositoryConfig{
			BaseURL:      v.GetString("document_repository.base_url"),
			DriveID:      v.GetString("document_repository.drive_id"),
			FolderID:     v.GetString("document_repository.folder_id"),
			TenantID:     v.GetString("document_repository.tenant_id"),
			TokenURL:     v.GetString("document_repository.token_url"),
			ClientID:     v.GetString("document_repository.client_id"),
			ClientSecret: v.GetString("document_repository.client_secret"),
			Scopes:       v.GetStringSlice("document_repository.scopes"),
			AllowedHosts: v.GetStringSlice("document_repository.allowed_hosts"),
			Timeout:      v.GetDuration("document_repository.timeout"),
			TokenMargin:  v.GetDuration("document_repository.token_margin"),
		},
		MemberData: MemberDataConfig{
			Sources:      sources,
			AllowedHosts: v.GetStringSlice("member_data.allowed_hosts"),
			Timeout:      v.GetDuration("member_data.timeout"),
			DateLayout:   v.GetString("member_data.date_layout"),
		},
		Catalog: CatalogConfig{
			CacheDriver: v.GetString("catalog.cache_driver"),
			CacheTTL:    v.GetDuration("catalog.cache_ttl"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    !v.IsSet("telemetry.metrics_enabled") || v.GetBool("telemetry.metrics_enabled"),
			DBTracing:         v.GetBool("telemetry.db_tracing"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			SlowQuery:         v.GetDuration("telemetry.slow_query_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "commhub"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
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
		cfg.Database.DBName = "commhub"
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
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "commhub"
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
		// generation fans out to several upstreams with 10s timeouts each
		cfg.HTTP.WriteTimeout = 90 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 20 << 20
	}
	if cfg.HTTP.MaxJSONBodySize == 0 {
		cfg.HTTP.MaxJSONBodySize = 1 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 60
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// An empty CORS origin list means no cross-origin requests are allowed.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "s3"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = time.Hour
	}
	if cfg.DocumentRepository.BaseURL == "" {
		cfg.DocumentRepository.BaseURL = "https://graph.microsoft.com/v1.0"
	}
	if cfg.DocumentRepository.TokenURL == "" && cfg.DocumentRepository.TenantID != "" {
		cfg.DocumentRepository.TokenURL = "https://login.microsoftonline.com/" +
			url.PathEscape(cfg.DocumentRepository.TenantID) + "/oauth2/v2.0/token"
	}
	if len(cfg.DocumentRepository.Scopes) == 0 {
		cfg.DocumentRepository.Scopes = []string{"https://graph.microsoft.com/.default"}
	}
	if cfg.DocumentRepository.Timeout == 0 {
		cfg.DocumentRepository.Timeout = 30 * time.Second
	}
	if cfg.DocumentRepository.TokenMargin == 0 {
		cfg.DocumentRepository.TokenMargin = 10 * time.Minute
	}
	if len(cfg.MemberData.Sources) == 0 {
		cfg.MemberData.Sources = []MemberSourceConfig{
			{Name: "profile", BaseURL: "http://profile-service", Path: "/api/members/{id}"},
			{Name: "subscription", BaseURL: "http://subscription-service", Path: "/api/subscriptions/member/{id}"},
			{Name: "account", BaseURL: "http://account-service", Path: "/api/accounts/member/{id}"},
		}
	}
	if len(cfg.MemberData.AllowedHosts) == 0 {
		for _, s := range cfg.MemberData.Sources {
			if u, err := url.Parse(s.BaseURL); err == nil && u.Hostname() != "" {
				cfg.MemberData.AllowedHosts = append(cfg.MemberData.AllowedHosts, u.Hostname())
			}
		}
	}
	if cfg.MemberData.Timeout == 0 {
		cfg.MemberData.Timeout = 10 * time.Second
	}
	if cfg.MemberData.DateLayout == "" {
		cfg.MemberData.DateLayout = "02/01/2006"
	}
	if cfg.Catalog.CacheDriver == "" {
		cfg.Catalog.CacheDriver = "memory"
	}
	if cfg.Catalog.CacheTTL == 0 {
		cfg.Catalog.CacheTTL = 5 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.SlowQuery == 0 {
		cfg.Telemetry.SlowQuery = 200 * time.Millisecond
	}
}

// validate rejects configurations the service cannot start with
func (c *Config) validate() error {
	checks := []func() error{c.validatePool, c.validateDrivers, c.validateUpstreams}
	if c.App.IsProduction() {
		checks = append(checks, c.validateProduction)
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validatePool() error {
	db := c.Database
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	}
	return nil
}

func (c *Config) validateDrivers() error {
	if !slices.Contains([]string{"s3", "memory"}, c.Storage.Driver) {
		return fmt.Errorf("storage.driver must be 's3' or 'memory', got %q", c.Storage.Driver)
	}
	if !slices.Contains([]string{"memory", "redis"}, c.Catalog.CacheDriver) {
		return fmt.Errorf("catalog.cache_driver must be 'memory' or 'redis', got %q", c.Catalog.CacheDriver)
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", r)
	}
	return nil
}

func (c *Config) validateUpstreams() error {
	for i, s := range c.MemberData.Sources {
		if s.Name == "" || s.BaseURL == "" {
			return fmt.Errorf("member_data.sources[%d] requires name and base_url", i)
		}
		if !strings.Contains(s.Path, "{id}") {
			return fmt.Errorf("member_data.sources[%d].path must contain {id}", i)
		}
	}
	if c.MemberData.Timeout < 0 || c.DocumentRepository.Timeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	return nil
}

// validateProduction applies the rules checked in order on a production boot
func (c *Config) validateProduction() error {
	rules := []struct {
		broken bool
		msg    string
	}{
		{c.JWT.Secret == "", "jwt.secret is required in production"},
		{len(c.JWT.Secret) < 32, "jwt.secret must be at least 32 characters in production"},
		{c.Database.Password == "", "database.password is required in production"},
		{c.Database.SSLMode == "disable", "database.sslmode cannot be 'disable' in production"},
		{c.Storage.Driver != "s3", "storage.driver must be 's3' in production"},
		{c.Storage.Bucket == "", "storage.bucket is required in production"},
		{c.DocumentRepository.ClientID == "" || c.DocumentRepository.ClientSecret == "",
			"document_repository client credentials are required in production"},
		{slices.Contains(c.HTTP.CORSAllowOrigins, "*"), "http.cors_allow_origins cannot be '*' in production"},
	}
	for _, r := range rules {
		if r.broken {
			return errors.New(r.msg)
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
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
