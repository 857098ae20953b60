package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cwrk-planet/news-chat/internal/domain"
)

// EnvPrefix — префикс переменных окружения, перекрывающих yaml.
const EnvPrefix = "NEWSCHAT_"

type API struct {
	BaseURL string        `yaml:"baseURL" env:"URL"`     // "http://localhost:8000"
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"` // "10s"
}

type WS struct {
	BaseURL          string        `yaml:"baseURL" env:"URL"`                        // "ws://localhost:8000", пусто -> из api.baseURL
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout" env:"HANDSHAKE_TIMEOUT"` // "10s"
	WriteTimeout     time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`         // "5s"
	MaxMessageSize   int64         `yaml:"maxMessageSize" env:"MAX_MESSAGE_SIZE"`    // 1 MiB
	Sentinel         string        `yaml:"sentinel" env:"SENTINEL"`                  // "📢"
	AttachToken      bool          `yaml:"attachToken" env:"ATTACH_TOKEN"`           // Authorization при dial
}

type Auth struct {
	TokenFile string `yaml:"tokenFile" env:"TOKEN_FILE"`
}

type Reconnect struct {
	Enabled         bool          `yaml:"enabled" env:"ENABLED"`
	InitialInterval time.Duration `yaml:"initialInterval" env:"INITIAL_INTERVAL"` // "500ms"
	MaxInterval     time.Duration `yaml:"maxInterval" env:"MAX_INTERVAL"`         // "10s"
	MaxElapsed      time.Duration `yaml:"maxElapsed" env:"MAX_ELAPSED"`           // "2m"
}

type Chat struct {
	Reconnect Reconnect `yaml:"reconnect" envPrefix:"RECONNECT_"`
}

type Logging struct {
	Env       string `yaml:"env" env:"ENV"`              // dev|stage|prod
	Service   string `yaml:"service" env:"SERVICE"`      // "newschat"
	Version   string `yaml:"version" env:"VERSION"`      // "v0.1.0"
	Backend   string `yaml:"backend" env:"BACKEND"`      // std|zap
	File      string `yaml:"file" env:"FILE"`            // пусто -> stderr
	AddSource bool   `yaml:"addSource" env:"ADD_SOURCE"` // false|true
	Debug     bool   `yaml:"debug" env:"DEBUG"`          // false|true
}

type Config struct {
	API     API     `yaml:"api" envPrefix:"API_"`
	WS      WS      `yaml:"ws" envPrefix:"WS_"`
	Auth    Auth    `yaml:"auth"`
	Chat    Chat    `yaml:"chat" envPrefix:"CHAT_"`
	Logging Logging `yaml:"logging" envPrefix:"LOG_"`
}

// Dir возвращает каталог клиента в домашней директории.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".newschat"
	}

	return filepath.Join(home, ".newschat")
}

func Default() *Config {
	return &Config{
		API: API{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		WS: WS{
			HandshakeTimeout: 10 * time.Second,
			WriteTimeout:     5 * time.Second,
			MaxMessageSize:   1 << 20,
			Sentinel:         domain.SystemSender,
		},
		Auth: Auth{TokenFile: filepath.Join(Dir(), "token.json")},
		Chat: Chat{Reconnect: Reconnect{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
			MaxElapsed:      2 * time.Minute,
		}},
		Logging: Logging{
			Service: "newschat",
			Version: "v0.1.0",
		},
	}
}

// Load читает .env, затем yaml из CONFIG_PATH (или ~/.newschat/config.yaml), затем env-переменные.
func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = filepath.Join(Dir(), "config.yaml")
	}

	return LoadFrom(path)
}

func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// нет файла: живём на дефолтах и env
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()

	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.Timeout <= 0 {
		c.API.Timeout = def.API.Timeout
	}

	c.WS.BaseURL = strings.TrimRight(strings.TrimSpace(c.WS.BaseURL), "/")
	if c.WS.BaseURL == "" {
		c.WS.BaseURL = deriveWSURL(c.API.BaseURL)
	}
	if c.WS.HandshakeTimeout <= 0 {
		c.WS.HandshakeTimeout = def.WS.HandshakeTimeout
	}
	if c.WS.WriteTimeout <= 0 {
		c.WS.WriteTimeout = def.WS.WriteTimeout
	}
	if c.WS.MaxMessageSize <= 0 {
		c.WS.MaxMessageSize = def.WS.MaxMessageSize
	}
	if c.WS.Sentinel == "" {
		c.WS.Sentinel = def.WS.Sentinel
	}

	if c.Auth.TokenFile == "" {
		c.Auth.TokenFile = def.Auth.TokenFile
	}

	r := &c.Chat.Reconnect
	if r.InitialInterval <= 0 {
		r.InitialInterval = def.Chat.Reconnect.InitialInterval
	}
	if r.MaxInterval <= 0 {
		r.MaxInterval = def.Chat.Reconnect.MaxInterval
	}
	if r.MaxElapsed <= 0 {
		r.MaxElapsed = def.Chat.Reconnect.MaxElapsed
	}

	if c.Logging.Service == "" {
		c.Logging.Service = def.Logging.Service
	}
	if c.Logging.Version == "" {
		c.Logging.Version = def.Logging.Version
	}
}

func (c *Config) Validate() error {
	if err := checkURL("api.baseURL", c.API.BaseURL, "http", "https"); err != nil {
		return err
	}
	if err := checkURL("ws.baseURL", c.WS.BaseURL, "ws", "wss"); err != nil {
		return err
	}
	if c.Chat.Reconnect.InitialInterval > c.Chat.Reconnect.MaxInterval {
		return errors.New("chat.reconnect.initialInterval must be <= maxInterval")
	}
	switch c.Logging.Backend {
	case "", "std", "zap":
	default:
		return fmt.Errorf("logging.backend must be std|zap, got %q", c.Logging.Backend)
	}

	return nil
}

func checkURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}

	return fmt.Errorf("%s must be %s://host, got %q", field, strings.Join(schemes, "|"), raw)
}

// http://host -> ws://host, https://host -> wss://host
func deriveWSURL(api string) string {
	switch {
	case strings.HasPrefix(api, "https://"):
		return "wss://" + strings.TrimPrefix(api, "https://")
	case strings.HasPrefix(api, "http://"):
		return "ws://" + strings.TrimPrefix(api, "http://")
	default:
		return api
	}
}
