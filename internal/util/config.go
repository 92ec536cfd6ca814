package util

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 5 * time.Minute
	defaultRefreshTTL = 24 * time.Hour

	defaultBaseURL       = "http://localhost:8080/api"
	defaultHTTPTimeout   = 15 * time.Second
	defaultCredentialDir = ".credentials"

	TokenPartsExpected = 2
	RawTokenLength     = 32
	JWTLeeWay          = 5 * time.Second
)

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	JwtSecretKey []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

func NewTokenConfig() *TokenConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return &TokenConfig{
		JwtSecretKey: []byte(secret),
		AccessTTL:    parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:   parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
	}
}

// StorageConfig selects the mock API backends.
type StorageConfig struct {
	Backend        Backend
	TokenBlacklist Backend
}

func NewStorageConfig() *StorageConfig {
	return &StorageConfig{
		Backend:        backendOrDefault("STORAGE_BACKEND", BackendMemory),
		TokenBlacklist: backendOrDefault("TOKEN_BLACKLIST", BackendMemory),
	}
}

// ClientConfig drives the session client.
type ClientConfig struct {
	BaseURL         string
	HTTPTimeout     time.Duration
	CredentialStore Backend
	CredentialDir   string
	CoalesceRefresh bool
}

func NewClientConfig() *ClientConfig {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	dir := os.Getenv("CREDENTIAL_DIR")
	if dir == "" {
		dir = defaultCredentialDir
	}

	return &ClientConfig{
		BaseURL:         strings.TrimRight(baseURL, "/"),
		HTTPTimeout:     parseDurationOrDefault("HTTP_TIMEOUT", defaultHTTPTimeout),
		CredentialStore: backendOrDefault("CREDENTIAL_STORE", BackendFile),
		CredentialDir:   dir,
		CoalesceRefresh: parseBoolOrDefault("COALESCE_REFRESH", false),
	}
}

func GetLogLevel() string {
	return os.Getenv("LOG_LEVEL")
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func parseBoolOrDefault(varName string, def bool) bool {
	if v := os.Getenv(varName); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("Invalid bool in %s: %s, using default %t", varName, v, def)
	}
	return def
}

func backendOrDefault(varName string, def Backend) Backend {
	v := Backend(strings.ToLower(os.Getenv(varName)))
	switch v {
	case "":
		return def
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
		return v
	}
	log.Printf("Invalid backend in %s: %s, using default %s", varName, v, def)
	return def
}
