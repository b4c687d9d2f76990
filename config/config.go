package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

// AssistantConfig selects the provider and shapes new sessions.
type AssistantConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	SystemPrompt   string `toml:"system_prompt,omitempty"`
	UserName       string `toml:"user_name,omitempty"`
	ContextWindow  int    `toml:"context_window,omitempty"`
	RequestTimeout string `toml:"request_timeout,omitempty"`
	FilesRoot      string `toml:"files_root,omitempty"`
}

// ProviderConfig holds per-provider connection settings.
type ProviderConfig struct {
	ID      string `toml:"id"`
	BaseURL string `toml:"base_url,omitempty"`
}

type SecurityConfig struct {
	CredentialStorage SecurityMethod `toml:"credential_storage"`
	SSHKeyPath        string         `toml:"ssh_key_path,omitempty"`
}

type UserConfig struct {
	Assistant AssistantConfig  `toml:"assistant"`
	Providers []ProviderConfig `toml:"providers"`
	Security  SecurityConfig   `toml:"security"`
}

// envOverrides are read from the environment on every Load and win over the
// files on disk.
type envOverrides struct {
	Provider       string        `env:"TEROS_PROVIDER"`
	Model          string        `env:"TEROS_MODEL"`
	APIKey         string        `env:"TEROS_API_KEY"`
	BaseURL        string        `env:"TEROS_BASE_URL"`
	SystemPrompt   string        `env:"TEROS_SYSTEM_PROMPT"`
	UserName       string        `env:"TEROS_USER"`
	DataDir        string        `env:"TEROS_DATA_DIR"`
	RequestTimeout time.Duration `env:"TEROS_REQUEST_TIMEOUT"`
	ContextWindow  int           `env:"TEROS_CONTEXT_WINDOW"`
	FilesRoot      string        `env:"TEROS_FILES_ROOT"`
	Debug          bool          `env:"TEROS_DEBUG"`
}

// Config is the resolved configuration used to build a session.
type Config struct {
	DataDirectory  string
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	SystemPrompt   string
	UserName       string
	ContextWindow  int
	RequestTimeout time.Duration
	Debug          bool

	// FilesRoot bounds what read_file may open. Empty means the working
	// directory.
	FilesRoot string

	CredentialStore *CredentialStore
}

const DefaultRequestTimeout = 120 * time.Second

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// Load reads settings.toml and the user config.toml from the data directory,
// then applies TEROS_* environment overrides. Missing files are created from
// templates.
func Load() (*Config, error) {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}

	cfg := &Config{DataDirectory: systemCfg.DataDirectory}
	if overrides.DataDir != "" {
		cfg.DataDirectory = overrides.DataDir
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if err := cfg.apply(userCfg, overrides); err != nil {
		return nil, err
	}

	store, err := openCredentialStore(userCfg.Security, dataDir)
	if err != nil {
		return nil, err
	}
	cfg.CredentialStore = store
	if cfg.APIKey == "" && store != nil {
		cfg.APIKey = store.Get(cfg.Provider)
	}

	return cfg, nil
}

// apply merges the user config and the environment into c.
func (c *Config) apply(u *UserConfig, o envOverrides) error {
	a := u.Assistant
	c.Provider = firstNonEmpty(o.Provider, a.Provider, DefaultProvider)
	c.Model = firstNonEmpty(o.Model, a.Model)
	c.SystemPrompt = firstNonEmpty(o.SystemPrompt, a.SystemPrompt)
	c.UserName = firstNonEmpty(o.UserName, a.UserName, currentUserName())
	c.APIKey = o.APIKey
	c.Debug = o.Debug
	c.FilesRoot = ExpandPath(firstNonEmpty(o.FilesRoot, a.FilesRoot))

	c.BaseURL = o.BaseURL
	if c.BaseURL == "" {
		for _, p := range u.Providers {
			if p.ID == c.Provider {
				c.BaseURL = p.BaseURL
				break
			}
		}
	}

	c.ContextWindow = a.ContextWindow
	if o.ContextWindow > 0 {
		c.ContextWindow = o.ContextWindow
	}

	c.RequestTimeout = DefaultRequestTimeout
	if a.RequestTimeout != "" {
		d, err := time.ParseDuration(a.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", a.RequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if o.RequestTimeout > 0 {
		c.RequestTimeout = o.RequestTimeout
	}

	return nil
}

func openCredentialStore(sec SecurityConfig, dataDir string) (*CredentialStore, error) {
	method := sec.CredentialStorage
	if method == "" {
		method = SecurityPlainText
	}

	keyPath := ExpandPath(sec.SSHKeyPath)
	if method == SecuritySSHKey && keyPath == "" {
		keys, err := FindSSHKeys()
		if err != nil || len(keys) == 0 {
			return nil, fmt.Errorf("credential_storage is ssh_key but no SSH key was found")
		}
		keyPath = keys[0]
	}

	store := NewCredentialStore(method, keyPath)
	if pass := os.Getenv("TEROS_SSH_PASSPHRASE"); pass != "" {
		store.SetPassphrase(pass)
	}
	if err := store.Load(dataDir); err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return store, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func currentUserName() string {
	if u, err := user.Current(); err == nil {
		if u.Name != "" {
			return u.Name
		}
		return u.Username
	}
	return "user"
}

var (
	loggerMu sync.RWMutex
	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Logger returns the process logger. It discards everything until
// InitLogger enables debug logging.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the process logger.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// InitLogger opens debug.log in dataDir when debug is set and routes the
// process logger there. The returned closer is never nil.
func InitLogger(dataDir string, debug bool) (io.Closer, error) {
	if !debug {
		return io.NopCloser(nil), nil
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may contain prompts and tool output
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("could not open debug log at %s: %w", logPath, err)
	}

	l := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}))
	SetLogger(l)
	l.Info("debug logging started", "path", logPath)
	return f, nil
}
