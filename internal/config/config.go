package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderSecret is the value shipped in sample environments. It must
// never reach a running server.
const PlaceholderSecret = "defaultSecretKeyThatShouldBeReplacedInProduction"

var DefaultPublicPaths = []string{
	"/api/auth/",
	"/api/roles/",
	"/api/institutions/",
	"/api/health",
	"/api/test/",
	"/actuator/",
	"/swagger-ui/",
	"/v3/api-docs/",
	"/error",
	"/favicon.ico",
}

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	LogFormat               string
	LogLevel                string
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	JWTSecret               string
	JWTValidity             time.Duration
	AuthLookupTimeout       time.Duration
	PublicPaths             []string
	BcryptCost              int
	BootstrapAdminEmail     string
	BootstrapAdminPassword  string
	CORSOrigins             []string
	RateLimitRPM            int
	AuthRateLimitRPM        int
	TrustedProxies          []netip.Prefix
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	publicPaths := splitCSV(strings.TrimSpace(os.Getenv("AUTH_PUBLIC_PATHS")))
	if publicPaths == nil {
		publicPaths = append([]string(nil), DefaultPublicPaths...)
	}

	trustedProxies, err := parseTrustedProxies(splitCSV(os.Getenv("TRUSTED_PROXIES")))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		LogFormat:               getEnv("LOG_FORMAT", "pretty"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 1)),
		JWTSecret:               strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTValidity:             getDuration("JWT_VALIDITY", 24*time.Hour),
		AuthLookupTimeout:       getDuration("AUTH_LOOKUP_TIMEOUT", 5*time.Second),
		PublicPaths:             publicPaths,
		BcryptCost:              getInt("BCRYPT_COST", 12),
		BootstrapAdminEmail:     strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL")),
		BootstrapAdminPassword:  os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:            getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:        getInt("AUTH_RATE_LIMIT_RPM", 20),
		TrustedProxies:          trustedProxies,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWTSecret == PlaceholderSecret {
		return fmt.Errorf("JWT_SECRET must be overridden; the placeholder value is not accepted")
	}

	if c.JWTValidity <= 0 {
		return fmt.Errorf("JWT_VALIDITY must be positive")
	}

	if c.AuthLookupTimeout <= 0 {
		return fmt.Errorf("AUTH_LOOKUP_TIMEOUT must be positive")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	for _, prefix := range c.PublicPaths {
		if prefix == "/" {
			return fmt.Errorf("AUTH_PUBLIC_PATHS must not contain %q: it matches every request", prefix)
		}
	}

	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		return fmt.Errorf("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

// parseTrustedProxies accepts CIDR ranges and bare addresses. Without
// entries, forwarding headers are never believed.
func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry %q is neither an address nor a CIDR range", entry)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return out, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
