package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/heartgame/internal/auth"
	"github.com/vytor/heartgame/internal/heartapi"
)

var errNotLoggedIn = errors.New("not logged in: run `heartctl login` first")

// Config holds CLI configuration
type Config struct {
	ServerURL       string
	Token           string
	TokenFile       string
	HeartAPIURL     string
	HeartAPITimeout time.Duration
	Output          string
	Verbose         bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       getEnvOrDefault("HEARTCTL_SERVER", "http://localhost:8080"),
		Token:           os.Getenv("HEARTCTL_TOKEN"),
		TokenFile:       getEnvOrDefault("HEARTCTL_TOKEN_FILE", defaultTokenFile()),
		HeartAPIURL:     getEnvOrDefault("HEART_API_URL", heartapi.DefaultBaseURL),
		HeartAPITimeout: time.Duration(getEnvIntOrDefault("HEART_API_TIMEOUT_SECONDS", 15)) * time.Second,
		Output:          "text",
	}
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

// Session returns who the stored token belongs to.
func (c *Config) Session() (*auth.Session, error) {
	if c.Token == "" {
		return nil, errNotLoggedIn
	}
	return auth.Peek(c.Token)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".heartctl/token"
	}
	return filepath.Join(home, ".heartctl", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}
