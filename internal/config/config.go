package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

const (
	AuthModeNone    = "none"
	AuthModeAPIKey  = "apikey"
	AuthModeCognito = "cognito"
)

// maxPageSize is the largest limit the todo API accepts.
const maxPageSize = 200

type Config struct {
	ServerPort       string
	AppEnv           string
	LogLevel         string
	API              APIConfig
	Auth             AuthConfig
	Cognito          CognitoConfig
	ListPageSize     int
	Dashboard        DashboardConfig
	SnapshotsEnabled bool
	DB               DBConfig

	// parse errors collected by Load, reported by Validate
	errs []error
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	Mode   string
	APIKey string
}

type DashboardConfig struct {
	PageSize int
	MaxPages int
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if len(c.errs) > 0 {
		return errors.Join(c.errs...)
	}
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid API_TIMEOUT %s: must be positive", c.API.Timeout)
	}
	if c.ListPageSize < 1 || c.ListPageSize > maxPageSize {
		return fmt.Errorf("invalid LIST_PAGE_SIZE %d: must be between 1 and %d", c.ListPageSize, maxPageSize)
	}
	if c.Dashboard.PageSize < 1 || c.Dashboard.PageSize > maxPageSize {
		return fmt.Errorf("invalid DASHBOARD_PAGE_SIZE %d: must be between 1 and %d", c.Dashboard.PageSize, maxPageSize)
	}
	if c.Dashboard.MaxPages < 1 {
		return fmt.Errorf("invalid DASHBOARD_MAX_PAGES %d: must be positive", c.Dashboard.MaxPages)
	}

	switch c.Auth.Mode {
	case AuthModeNone, AuthModeAPIKey:
	case AuthModeCognito:
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_MODE is cognito")
		}
		if c.Cognito.Username == "" || c.Cognito.Password == "" {
			return fmt.Errorf("COGNITO_USERNAME and COGNITO_PASSWORD are required when AUTH_MODE is cognito")
		}
	default:
		return fmt.Errorf("invalid AUTH_MODE %q: must be one of none, apikey, cognito", c.Auth.Mode)
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region          string
	AppClientID     string
	AppClientSecret string
	Username        string
	Password        string
}

func Load() Config {
	var errs []error
	cfg := Config{
		ServerPort: envOrDefault("SERVER_PORT", "8080"),
		AppEnv:     envOrDefault("APP_ENV", "local"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
		API: APIConfig{
			BaseURL: strings.TrimRight(envOrDefault("API_BASE_URL", "http://localhost:8000"), "/"),
			Timeout: durationOrDefault("API_TIMEOUT", 10*time.Second, &errs),
		},
		Auth: AuthConfig{
			Mode:   strings.ToLower(envOrDefault("AUTH_MODE", AuthModeAPIKey)),
			APIKey: os.Getenv("TODO_API_KEY"),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
			Username:        os.Getenv("COGNITO_USERNAME"),
			Password:        os.Getenv("COGNITO_PASSWORD"),
		},
		ListPageSize: intOrDefault("LIST_PAGE_SIZE", 10, &errs),
		Dashboard: DashboardConfig{
			PageSize: intOrDefault("DASHBOARD_PAGE_SIZE", maxPageSize, &errs),
			MaxPages: intOrDefault("DASHBOARD_MAX_PAGES", 100, &errs),
		},
		SnapshotsEnabled: strings.EqualFold(envOrDefault("SNAPSHOTS_ENABLED", "false"), "true"),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "todo"),
			Password: envOrDefault("DB_PASSWORD", "todo"),
			Name:     envOrDefault("DB_NAME", "todo"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
	}
	cfg.errs = errs
	return cfg
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func intOrDefault(key string, defaultVal int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return defaultVal
	}
	return n
}

func durationOrDefault(key string, defaultVal time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
		return defaultVal
	}
	return d
}
