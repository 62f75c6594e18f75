// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Ingest   IngestConfig
	Mailbox  MailboxConfig
	LLM      LLMConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds CSV upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel uploads (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// BatchSize is the number of rows to insert per batch (default: 1000)
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"1000"`

	// Timeout is the maximum duration for a single upload operation (default: 10m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"10m"`

	// ResetTimeout is the maximum duration for a reset operation (default: 30s)
	ResetTimeout time.Duration `env:"UPLOAD_RESET_TIMEOUT" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey gates the HTTP API behind one of APIKeys (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is the comma-separated set of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// IngestConfig holds bordereaux ingestion settings: where files and
// templates live on disk and which rule set governs validation.
type IngestConfig struct {
	// StorageBasePath is the root directory for content-addressed file storage
	StorageBasePath string `env:"INGEST_STORAGE_PATH" default:"./data/files"`

	// AllowedFileTypes is the comma-separated set of accepted upload extensions
	AllowedFileTypes []string `env:"INGEST_ALLOWED_FILE_TYPES" default:"csv,xlsx,xls"`

	// TemplatesDir is where template JSON sidecars are read from and written to
	TemplatesDir string `env:"INGEST_TEMPLATES_DIR" default:"./data/templates"`

	// RulesPath is the validation rules JSON file; absent means use Default()
	RulesPath string `env:"INGEST_RULES_PATH" default:"./data/rules.json"`

	// ReportsDir is where per-run validation error reports are written
	ReportsDir string `env:"INGEST_REPORTS_DIR" default:"./data/validation_reports"`

	// MaxConcurrentProcessing bounds simultaneous pipeline runs (default: 5)
	MaxConcurrentProcessing int `env:"INGEST_MAX_CONCURRENT_PROCESSING" default:"5"`

	// ProcessingWaitTime is how long to wait for a processing slot (default: 30s)
	ProcessingWaitTime time.Duration `env:"INGEST_PROCESSING_WAIT_TIME" default:"30s"`

	// BatchPoolSize bounds concurrent files per batch run (default: 5)
	BatchPoolSize int `env:"INGEST_BATCH_POOL_SIZE" default:"5"`

	// BatchPollInterval is how often the scheduler runs the batch processor (default: 1m)
	BatchPollInterval time.Duration `env:"INGEST_BATCH_POLL_INTERVAL" default:"1m"`
}

// MailboxConfig holds IMAP poller settings. Authentication uses either
// IMAPPassword or IMAPOAuthToken, never both.
type MailboxConfig struct {
	// Enabled turns the poller on; when false, no IMAP connection is made
	Enabled bool `env:"MAILBOX_ENABLED" default:"false"`

	// IMAPHost is the IMAP server hostname
	IMAPHost string `env:"MAILBOX_IMAP_HOST"`

	// IMAPPort is the IMAP server port (default: 993)
	IMAPPort int `env:"MAILBOX_IMAP_PORT" default:"993"`

	// IMAPUsername is the mailbox login name
	IMAPUsername string `env:"MAILBOX_IMAP_USERNAME"`

	// IMAPPassword authenticates via plain login when set
	IMAPPassword string `env:"MAILBOX_IMAP_PASSWORD"`

	// IMAPOAuthToken authenticates via OAUTHBEARER when set
	IMAPOAuthToken string `env:"MAILBOX_IMAP_OAUTH_TOKEN"`

	// Folder is the mailbox folder to poll (default: INBOX)
	Folder string `env:"MAILBOX_FOLDER" default:"INBOX"`

	// AttachmentExtensions is the comma-separated allow-list of attachment extensions
	AttachmentExtensions []string `env:"MAILBOX_ATTACHMENT_EXTENSIONS" default:"csv,xlsx,xls"`

	// PollingInterval is how often the scheduler polls (default: 5m)
	PollingInterval time.Duration `env:"MAILBOX_POLLING_INTERVAL" default:"5m"`

	// ConnectTimeout bounds the IMAP dial and login (default: 30s)
	ConnectTimeout time.Duration `env:"MAILBOX_CONNECT_TIMEOUT" default:"30s"`
}

// LLMConfig holds settings for the optional LLM-assisted template proposal
// augmentation, routed through OpenRouter.
type LLMConfig struct {
	// UseAISuggestions enables LLM augmentation of the heuristic proposal (default: true)
	UseAISuggestions bool `env:"LLM_USE_AI_SUGGESTIONS" default:"true"`

	// OpenRouterAPIKey authenticates with OpenRouter; empty disables LLM use
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`

	// OpenRouterModel is the model identifier to request (default: openai/gpt-3.5-turbo)
	OpenRouterModel string `env:"OPENROUTER_MODEL" default:"openai/gpt-3.5-turbo"`

	// Timeout bounds a single LLM call (default: 30s)
	Timeout time.Duration `env:"LLM_TIMEOUT" default:"30s"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
